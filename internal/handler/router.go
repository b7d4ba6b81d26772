package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/MHammad33/error-tracker/internal/metrics"
	"github.com/MHammad33/error-tracker/internal/middleware"
)

// Pinger はヘルスチェックで使用するストア疎通確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 課題
	IssueService IssueServiceInterface

	// ユーザー・ダッシュボード
	UserService      UserServiceInterface
	DashboardService DashboardServiceInterface

	// 運用
	DB        Pinger
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → CORS → SecurityHeaders → (公開: RateLimit(General)) /
//	(変更系: Session → CSRF → RateLimit(Mutation))
//
// 一覧・詳細・ユーザー・ダッシュボードの読み取りは公開。
// 課題の作成・更新・削除は認証必須。
func NewRouter(logger *slog.Logger, deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	issueHandler := NewIssueHandler(deps.IssueService, deps.Collector)
	userHandler := NewUserHandler(deps.UserService)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)

	// --- 運用エンドポイント ---

	r.Get("/health", healthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証ルート（OAuthフロー） ---

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 公開の読み取りルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/issues", issueHandler.List)
		r.Get("/api/issues/{id}", issueHandler.Get)
		r.Get("/api/users", userHandler.List)
		r.Get("/api/dashboard", dashboardHandler.Show)
	})

	// --- 認証が必要な変更系ルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(Mutation)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.MutationMiddleware())

		r.Post("/api/issues", issueHandler.Create)
		r.Patch("/api/issues/{id}", issueHandler.Update)
		r.Delete("/api/issues/{id}", issueHandler.Delete)
	})

	return r
}

// healthHandler はストア疎通確認付きのヘルスチェックハンドラーを返す。
// GET /health
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
