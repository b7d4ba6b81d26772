// Package issue は課題の管理機能を提供する。
package issue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MHammad33/error-tracker/internal/model"
	"github.com/MHammad33/error-tracker/internal/query"
	"github.com/MHammad33/error-tracker/internal/repository"
	"github.com/MHammad33/error-tracker/internal/security"
)

// Service は課題の一覧取得・CRUD・ダッシュボード集計のサービス。
type Service struct {
	repo      repository.IssueRepository
	sanitizer security.DescriptionSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.IssueRepository, sanitizer security.DescriptionSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// ListResult は一覧取得の結果。1ページ分の課題とフィルタ条件に一致する
// 総件数を含む。TotalPagesはTotalCountとPageSizeから導出される。
type ListResult struct {
	Issues     []model.IssueWithUser
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
}

// countOutcome は総件数取得の結果をチャネルで受け渡すための型。
type countOutcome struct {
	count int
	err   error
}

// List は正規化済みのListQueryを実行し、ListResultを返す。
//
// 総件数とページ分の取得は同一の述語に対して計算される。両者は互いの結果に
// 依存しないため並行に発行し、両方の完了を待ってから返す。2つの取得の間に
// 別リクエストの書き込みが挟まるレースは許容する。件数はページネーション
// 表示のための参考値であり、トランザクションは張らない。
//
// ストア障害時は単一のStoreUnavailableエラーを返す。リトライは行わない。
// 一覧はユーザー操作で再取得されるためである。
func (s *Service) List(ctx context.Context, q query.ListQuery) (*ListResult, error) {
	countCh := make(chan countOutcome, 1)
	go func() {
		count, err := s.repo.Count(ctx, q)
		countCh <- countOutcome{count: count, err: err}
	}()

	issues, listErr := s.repo.List(ctx, q)
	counted := <-countCh

	if listErr != nil {
		return nil, storeUnavailable("list issues", listErr)
	}
	if counted.err != nil {
		return nil, storeUnavailable("count issues", counted.err)
	}

	return &ListResult{
		Issues:     issues,
		TotalCount: counted.count,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: query.TotalPages(counted.count, q.PageSize),
	}, nil
}

// Get は指定IDの課題を担当者サマリー付きで返す。
func (s *Service) Get(ctx context.Context, id string) (*model.IssueWithUser, error) {
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeUnavailable("find issue", err)
	}
	if issue == nil {
		return nil, model.NewIssueNotFoundError(id)
	}
	return issue, nil
}

// CreateIssueInput は課題作成の入力。
// Statusが空の場合はOPENで作成される。
type CreateIssueInput struct {
	Title       string
	Description string
	Status      string
}

// Create は新規課題を作成する。説明はサニタイズしてから永続化する。
func (s *Service) Create(ctx context.Context, in CreateIssueInput) (*model.IssueWithUser, error) {
	if fields := validateCreate(in); len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	status := model.StatusOpen
	if in.Status != "" {
		status = model.Status(in.Status)
	}

	now := time.Now()
	issue := &model.Issue{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: s.sanitizer.Sanitize(in.Description),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, storeUnavailable("create issue", err)
	}

	slog.Info("issue created",
		slog.String("issue_id", issue.ID),
		slog.String("status", string(issue.Status)),
	)

	return &model.IssueWithUser{Issue: *issue}, nil
}

// UpdateIssueInput は課題の部分更新の入力。nilフィールドは変更しない。
// AssignedUserIDSetがtrueかつAssignedUserIDがnilの場合は担当者を解除する。
type UpdateIssueInput struct {
	Title             *string
	Description       *string
	Status            *string
	AssignedUserID    *string
	AssignedUserIDSet bool
}

// Update は課題を部分更新する。更新日時はストア側で更新される。
// 対象が存在しない場合はIssueNotFoundを返す。
func (s *Service) Update(ctx context.Context, id string, in UpdateIssueInput) (*model.IssueWithUser, error) {
	if fields := validateUpdate(in); len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeUnavailable("find issue", err)
	}
	if existing == nil {
		return nil, model.NewIssueNotFoundError(id)
	}

	updated := existing.Issue
	if in.Title != nil {
		updated.Title = *in.Title
	}
	if in.Description != nil {
		updated.Description = s.sanitizer.Sanitize(*in.Description)
	}
	if in.Status != nil {
		updated.Status = model.Status(*in.Status)
	}
	if in.AssignedUserIDSet {
		updated.AssignedUserID = in.AssignedUserID
	}

	found, err := s.repo.Update(ctx, &updated)
	if err != nil {
		return nil, storeUnavailable("update issue", err)
	}
	if !found {
		// FindByIDとUpdateの間に削除されたケース
		return nil, model.NewIssueNotFoundError(id)
	}

	// JOIN済みの担当者サマリーと最新の更新日時を取り直す
	result, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeUnavailable("reload issue", err)
	}
	if result == nil {
		return nil, model.NewIssueNotFoundError(id)
	}

	slog.Info("issue updated", slog.String("issue_id", id))
	return result, nil
}

// Delete は指定IDの課題を削除する。対象が存在しない場合はIssueNotFoundを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeUnavailable("delete issue", err)
	}
	if !found {
		return model.NewIssueNotFoundError(id)
	}

	slog.Info("issue deleted", slog.String("issue_id", id))
	return nil
}

// Summary はダッシュボード用のステータス別課題数を返す。
func (s *Service) Summary(ctx context.Context) (model.StatusSummary, error) {
	summary, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return model.StatusSummary{}, storeUnavailable("count by status", err)
	}
	return summary, nil
}

// Recent は作成日時降順で直近の課題を返す。ダッシュボードの最近の活動欄用。
func (s *Service) Recent(ctx context.Context, limit int) ([]model.IssueWithUser, error) {
	issues, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, storeUnavailable("list recent issues", err)
	}
	return issues, nil
}

// storeUnavailable はストア障害の詳細をログに記録し、
// 呼び出し元へは一般化したStoreUnavailableエラーを返す。
func storeUnavailable(op string, err error) error {
	slog.Error("issue store unavailable",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return model.NewStoreUnavailableError()
}
