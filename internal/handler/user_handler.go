package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MHammad33/error-tracker/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// List は全ユーザーのサマリーを名前の昇順で返す。
	List(ctx context.Context) ([]model.UserSummary, error)
}

// UserHandler はユーザー参照のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// List は担当者選択用のユーザー一覧を返す。
// GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]userSummaryResponse, len(users))
	for i, u := range users {
		resp[i] = userSummaryResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Image: u.Image,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
