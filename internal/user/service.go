// Package user はユーザー参照のドメインロジックを提供する。
package user

import (
	"context"
	"log/slog"

	"github.com/MHammad33/error-tracker/internal/model"
	"github.com/MHammad33/error-tracker/internal/repository"
)

// Service はユーザー参照のサービス層。
// 担当者選択用の一覧と個別取得を提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// List は全ユーザーのサマリーを名前の昇順で返す。
func (s *Service) List(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		slog.Error("ユーザー一覧の取得に失敗しました", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}

	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}

// Get は指定IDのユーザーを返す。存在しない場合はUserNotFoundを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		slog.Error("ユーザーの取得に失敗しました",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreUnavailableError()
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}
	return u, nil
}
