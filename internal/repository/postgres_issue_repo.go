package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MHammad33/error-tracker/internal/model"
	"github.com/MHammad33/error-tracker/internal/query"
)

// PostgresIssueRepo はPostgreSQLを使用した課題リポジトリ。
type PostgresIssueRepo struct {
	db *sql.DB
}

// NewPostgresIssueRepo はPostgresIssueRepoを生成する。
func NewPostgresIssueRepo(db *sql.DB) *PostgresIssueRepo {
	return &PostgresIssueRepo{db: db}
}

// issueColumns は課題一覧・詳細のSELECT句。担当者サマリーをLEFT JOINで含む。
const issueColumns = `
	SELECT i.id, i.title, i.description, i.status, i.assigned_user_id,
	       i.created_at, i.updated_at,
	       u.id, u.name, u.email, u.image
	FROM issues i
	LEFT JOIN users u ON i.assigned_user_id = u.id`

// buildIssueFilter はListQueryのフィルタ条件からWHERE句と位置引数を構築する。
// ListとCountの両方がこの述語を共有する。フィルタが空の場合は空のWHERE句を返す
// （述語は "true" に縮退する）。
//   - ステータス: 完全一致。
//   - 検索語: タイトルまたは説明の部分一致（大文字小文字を区別しない）。
func buildIssueFilter(q query.ListQuery) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if q.Status != "" {
		args = append(args, string(q.Status))
		conds = append(conds, fmt.Sprintf("i.status = $%d", len(args)))
	}

	if q.Search != "" {
		args = append(args, "%"+escapeLikePattern(q.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(i.title ILIKE $%d ESCAPE '\' OR i.description ILIKE $%d ESCAPE '\')`, n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLikePattern はILIKEパターンのメタ文字をエスケープする。
// 検索語に含まれる % や _ がワイルドカードとして解釈されることを防ぐ。
func escapeLikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// orderDirectionSQL はソート方向をSQLキーワードに変換する。
// Resolveを通過した値のみを受け取るが、未知の値はDESCに縮退させる。
func orderDirectionSQL(d query.Direction) string {
	if d == query.Asc {
		return "ASC"
	}
	return "DESC"
}

// List はListQueryに従った課題一覧を担当者サマリー付きで取得する。
// ORDER BY句の列名はResolveのホワイトリスト由来の値のみが渡される。
// ソート列の値が等しい課題同士の相対順序はストアの自然順に従う。
func (r *PostgresIssueRepo) List(ctx context.Context, q query.ListQuery) ([]model.IssueWithUser, error) {
	where, args := buildIssueFilter(q)

	sqlQuery := issueColumns + where + fmt.Sprintf(
		" ORDER BY i.%s %s LIMIT $%d OFFSET $%d",
		q.OrderColumn(), orderDirectionSQL(q.OrderDirection), len(args)+1, len(args)+2)
	args = append(args, q.PageSize, q.Offset())

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("課題一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var issues []model.IssueWithUser
	for rows.Next() {
		iwu, err := scanIssueWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("課題行の読み取りに失敗しました: %w", err)
		}
		issues = append(issues, *iwu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("課題一覧の走査に失敗しました: %w", err)
	}

	return issues, nil
}

// Count はフィルタ条件に一致する課題の総数を返す。page/pageSizeは無視する。
func (r *PostgresIssueRepo) Count(ctx context.Context, q query.ListQuery) (int, error) {
	where, args := buildIssueFilter(q)

	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM issues i"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("課題数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// FindByID は指定IDの課題を担当者サマリー付きで取得する。見つからない場合はnilを返す。
func (r *PostgresIssueRepo) FindByID(ctx context.Context, id string) (*model.IssueWithUser, error) {
	row := r.db.QueryRowContext(ctx, issueColumns+" WHERE i.id = $1", id)

	iwu, err := scanIssueWithUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("課題の取得に失敗しました: %w", err)
	}
	return iwu, nil
}

// Create は新規課題を作成する。
func (r *PostgresIssueRepo) Create(ctx context.Context, issue *model.Issue) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO issues (id, title, description, status, assigned_user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		issue.ID, issue.Title, issue.Description, string(issue.Status),
		nullableString(issue.AssignedUserID), issue.CreatedAt, issue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("課題の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は既存課題を上書き更新する。更新日時はストア側のnow()で更新する。
func (r *PostgresIssueRepo) Update(ctx context.Context, issue *model.Issue) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE issues SET
		    title = $2, description = $3, status = $4, assigned_user_id = $5,
		    updated_at = now()
		 WHERE id = $1`,
		issue.ID, issue.Title, issue.Description, string(issue.Status),
		nullableString(issue.AssignedUserID),
	)
	if err != nil {
		return false, fmt.Errorf("課題の更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	return affected > 0, nil
}

// Delete は指定IDの課題を削除する。
func (r *PostgresIssueRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("課題の削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	return affected > 0, nil
}

// CountByStatus はステータス別の課題数を返す。
func (r *PostgresIssueRepo) CountByStatus(ctx context.Context) (model.StatusSummary, error) {
	var summary model.StatusSummary

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM issues GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("ステータス別課題数の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, fmt.Errorf("ステータス別課題数の読み取りに失敗しました: %w", err)
		}
		switch model.Status(status) {
		case model.StatusOpen:
			summary.Open = count
		case model.StatusInProgress:
			summary.InProgress = count
		case model.StatusClosed:
			summary.Closed = count
		}
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("ステータス別課題数の走査に失敗しました: %w", err)
	}

	return summary, nil
}

// ListRecent は作成日時降順で直近の課題を担当者サマリー付きで返す。
func (r *PostgresIssueRepo) ListRecent(ctx context.Context, limit int) ([]model.IssueWithUser, error) {
	rows, err := r.db.QueryContext(ctx,
		issueColumns+" ORDER BY i.created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("直近課題の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var issues []model.IssueWithUser
	for rows.Next() {
		iwu, err := scanIssueWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("直近課題の行読み取りに失敗しました: %w", err)
		}
		issues = append(issues, *iwu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("直近課題の走査に失敗しました: %w", err)
	}

	return issues, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanIssueWithUser は課題行を担当者サマリー付きで読み取る。
// LEFT JOIN側の列はすべてnil許容として扱う。
func scanIssueWithUser(row rowScanner) (*model.IssueWithUser, error) {
	var iwu model.IssueWithUser
	var status string
	var assignedUserID sql.NullString
	var userID, userName, userEmail, userImage sql.NullString

	if err := row.Scan(
		&iwu.ID, &iwu.Title, &iwu.Description, &status, &assignedUserID,
		&iwu.CreatedAt, &iwu.UpdatedAt,
		&userID, &userName, &userEmail, &userImage,
	); err != nil {
		return nil, err
	}

	iwu.Status = model.Status(status)
	if assignedUserID.Valid {
		iwu.AssignedUserID = &assignedUserID.String
	}
	if userID.Valid {
		iwu.AssignedUser = &model.UserSummary{
			ID:    userID.String,
			Name:  userName.String,
			Email: userEmail.String,
			Image: userImage.String,
		}
	}

	return &iwu, nil
}

// nullableString は*stringをsql.NullStringに変換する。
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// compile-time interface check
var _ IssueRepository = (*PostgresIssueRepo)(nil)
