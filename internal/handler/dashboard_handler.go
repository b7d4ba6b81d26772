package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MHammad33/error-tracker/internal/model"
	"github.com/MHammad33/error-tracker/internal/query"
)

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	// Summary はステータス別の課題数を返す。
	Summary(ctx context.Context) (model.StatusSummary, error)
	// Recent は作成日時降順で直近の課題を返す。
	Recent(ctx context.Context, limit int) ([]model.IssueWithUser, error)
}

// DashboardHandler はダッシュボードのHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// statusSummaryResponse はステータス別課題数のレスポンス。
type statusSummaryResponse struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
	Total      int `json:"total"`
}

// dashboardResponse はダッシュボードのレスポンス。
type dashboardResponse struct {
	StatusSummary statusSummaryResponse `json:"statusSummary"`
	LatestIssues  []issueResponse       `json:"latestIssues"`
}

// Show はダッシュボード用の集計と直近の課題を返す。
// GET /api/dashboard
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	recent, err := h.service.Recent(r.Context(), query.DefaultDashboardPageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	latest := make([]issueResponse, len(recent))
	for i, iwu := range recent {
		latest[i] = toIssueResponse(&iwu)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dashboardResponse{
		StatusSummary: statusSummaryResponse{
			Open:       summary.Open,
			InProgress: summary.InProgress,
			Closed:     summary.Closed,
			Total:      summary.Total(),
		},
		LatestIssues: latest,
	})
}
