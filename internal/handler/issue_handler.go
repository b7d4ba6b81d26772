package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/MHammad33/error-tracker/internal/issue"
	"github.com/MHammad33/error-tracker/internal/metrics"
	"github.com/MHammad33/error-tracker/internal/model"
	"github.com/MHammad33/error-tracker/internal/query"
)

// IssueServiceInterface は課題ハンドラーが必要とするサービスインターフェース。
type IssueServiceInterface interface {
	// List はフィルタ・ソート・ページネーション済みの課題一覧と総件数を返す。
	List(ctx context.Context, q query.ListQuery) (*issue.ListResult, error)
	// Get は課題詳細を返す。存在しない場合はIssueNotFoundを返す。
	Get(ctx context.Context, id string) (*model.IssueWithUser, error)
	// Create は新規課題を作成する。
	Create(ctx context.Context, in issue.CreateIssueInput) (*model.IssueWithUser, error)
	// Update は課題を部分更新する。
	Update(ctx context.Context, id string, in issue.UpdateIssueInput) (*model.IssueWithUser, error)
	// Delete は課題を削除する。
	Delete(ctx context.Context, id string) error
}

// IssueHandler は課題管理のHTTPハンドラー。
type IssueHandler struct {
	service   IssueServiceInterface
	collector metrics.MetricsCollector
}

// NewIssueHandler はIssueHandlerを生成する。collectorはnil可。
func NewIssueHandler(service IssueServiceInterface, collector metrics.MetricsCollector) *IssueHandler {
	return &IssueHandler{
		service:   service,
		collector: collector,
	}
}

// --- リクエスト・レスポンス型 ---

// userSummaryResponse は担当者サマリーのレスポンス。
type userSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

// issueResponse は課題のAPIレスポンス。
// assignedUserは未割り当ての場合null。
type issueResponse struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Status         string               `json:"status"`
	AssignedUserID *string              `json:"assignedUserId"`
	AssignedUser   *userSummaryResponse `json:"assignedUser"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// listIssuesResponse は課題一覧のレスポンス。
type listIssuesResponse struct {
	Issues     []issueResponse `json:"issues"`
	TotalCount int             `json:"totalCount"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// createIssueRequest は課題作成リクエストのボディ。
type createIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
}

// updateIssueRequest は課題更新リクエストのボディ。
// assignedUserIdはnull指定（担当解除）とキー省略（変更なし）を区別するため、
// キーの有無はデコード時に別途判定する。
type updateIssueRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Status         *string `json:"status"`
	AssignedUserID *string `json:"assignedUserId"`
}

// messageResponse は操作結果のメッセージのみを返すレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// List は課題一覧を取得する。
// GET /api/issues?page=1&pageSize=10&status=OPEN&search=xxx&orderBy=createdAt&orderDirection=desc
// 不正なクエリパラメータはエラーにせずデフォルト値に縮退する。
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	q := query.Resolve(r.URL.Query(), query.DefaultListPageSize)

	start := time.Now()
	result, err := h.service.List(r.Context(), q)
	if h.collector != nil {
		h.collector.RecordListLatency(time.Since(start))
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	issues := make([]issueResponse, len(result.Issues))
	for i, iwu := range result.Issues {
		issues[i] = toIssueResponse(&iwu)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listIssuesResponse{
		Issues:     issues,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// Get は課題詳細を取得する。
// GET /api/issues/:id
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	iwu, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toIssueResponse(iwu))
}

// Create は課題を作成する。
// POST /api/issues
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	created, err := h.service.Create(r.Context(), issue.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordIssueCreated()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toIssueResponse(created))
}

// Update は課題を部分更新する。
// PATCH /api/issues/:id
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	var req updateIssueRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	// assignedUserIdキーの有無を判定（null指定と省略を区別する）
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}
	_, assignedSet := keys["assignedUserId"]

	updated, err := h.service.Update(r.Context(), id, issue.UpdateIssueInput{
		Title:             req.Title,
		Description:       req.Description,
		Status:            req.Status,
		AssignedUserID:    req.AssignedUserID,
		AssignedUserIDSet: assignedSet,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordIssueUpdated()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toIssueResponse(updated))
}

// Delete は課題を削除する。
// DELETE /api/issues/:id
func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordIssueDeleted()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Issue deleted successfully"})
}

// --- ヘルパー関数 ---

// toIssueResponse はmodel.IssueWithUserからAPIレスポンスに変換する。
func toIssueResponse(iwu *model.IssueWithUser) issueResponse {
	resp := issueResponse{
		ID:             iwu.ID,
		Title:          iwu.Title,
		Description:    iwu.Description,
		Status:         string(iwu.Status),
		AssignedUserID: iwu.AssignedUserID,
		CreatedAt:      iwu.CreatedAt,
		UpdatedAt:      iwu.UpdatedAt,
	}
	if iwu.AssignedUser != nil {
		resp.AssignedUser = &userSummaryResponse{
			ID:    iwu.AssignedUser.ID,
			Name:  iwu.AssignedUser.Name,
			Email: iwu.AssignedUser.Email,
			Image: iwu.AssignedUser.Image,
		}
	}
	return resp
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Category string             `json:"category"`
	Action   string             `json:"action"`
	Fields   []model.FieldError `json:"fields,omitempty"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
		Fields:   apiErr.Fields,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeIssueNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeStoreUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
