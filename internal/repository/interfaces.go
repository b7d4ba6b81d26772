// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/MHammad33/error-tracker/internal/model"
	"github.com/MHammad33/error-tracker/internal/query"
)

// IssueRepository は課題データの永続化インターフェース。
// ListとCountは同一の述語ビルダーを共有し、一覧と総件数が
// 同じフィルタ条件に対して計算されることを保証する。
type IssueRepository interface {
	// FindByID は指定IDの課題を担当者サマリー付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.IssueWithUser, error)

	// List はListQueryに従ってソート・ページネーション済みの課題一覧を
	// 担当者サマリーとJOINして返す。
	List(ctx context.Context, q query.ListQuery) ([]model.IssueWithUser, error)

	// Count はListQueryのフィルタ条件（ステータス・検索語）に一致する
	// 課題の総数を返す。page/pageSizeは無視する。
	Count(ctx context.Context, q query.ListQuery) (int, error)

	// Create は新規課題を作成する。
	Create(ctx context.Context, issue *model.Issue) error

	// Update は既存課題を上書き更新する。更新日時はストア側で更新する。
	// 対象が存在しない場合はfound=falseを返す。
	Update(ctx context.Context, issue *model.Issue) (found bool, err error)

	// Delete は指定IDの課題を削除する。
	// 対象が存在しない場合はfound=falseを返す。
	Delete(ctx context.Context, id string) (found bool, err error)

	// CountByStatus はステータス別の課題数を返す。ダッシュボード用。
	CountByStatus(ctx context.Context) (model.StatusSummary, error)

	// ListRecent は作成日時降順で直近の課題を担当者サマリー付きで返す。
	ListRecent(ctx context.Context, limit int) ([]model.IssueWithUser, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List は全ユーザーを名前の昇順で返す。担当者選択UI用。
	List(ctx context.Context) ([]*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// UpdateProfile はユーザーの表示名とプロフィール画像URLを更新する。
	// ログイン時にIdPの最新プロフィールを反映するために使う。
	UpdateProfile(ctx context.Context, id, name, image string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}
