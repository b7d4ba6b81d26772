// Package model はドメインモデルを定義する。
package model

import "fmt"

// FieldError はバリデーション失敗時のフィールド単位のエラーを表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// Fieldsはバリデーションエラー時のみ設定される。
type APIError struct {
	Code     string       // エラーコード
	Message  string       // エラーメッセージ
	Category string       // カテゴリ: auth, validation, issue, system
	Action   string       // ユーザー向け対処方法
	Fields   []FieldError // バリデーション失敗の詳細（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeIssueNotFound    = "ISSUE_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// NewValidationError はスキーマ検証失敗エラーを生成する。
// フィールド単位の詳細を含み、HTTP 400で返される。
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "入力内容の検証に失敗しました。",
		Category: "validation",
		Action:   "各フィールドのエラー内容を確認して修正してください。",
		Fields:   fields,
	}
}

// NewInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewIssueNotFoundError は課題未検出エラーを生成する。
func NewIssueNotFoundError(issueID string) *APIError {
	return &APIError{
		Code:     ErrCodeIssueNotFound,
		Message:  fmt.Sprintf("指定された課題が見つかりません: %s", issueID),
		Category: "issue",
		Action:   "課題IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewStoreUnavailableError はデータストア接続失敗エラーを生成する。
// 詳細はログにのみ記録し、ユーザーには一般的なメッセージを返す。
// 一覧取得はユーザー操作で再実行されるため、サーバー側での自動リトライは行わない。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "データストアへのアクセスに失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
