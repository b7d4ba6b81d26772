// Package security はアプリケーションのセキュリティ機能を提供する。
//
// DescriptionSanitizerService は課題説明のリッチテキストをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// 説明はブラウザのエディタから送信される信頼できないHTMLを含みうるため、
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させてから永続化する。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// DescriptionSanitizerService は課題説明のサニタイズ機能のインターフェースを定義する。
// 課題の作成・更新時、説明の保存前に使用される。
type DescriptionSanitizerService interface {
	// Sanitize は説明のHTMLをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em, h1-h4）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	// プレーンテキストの説明は変更されない。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// descriptionSanitizer はDescriptionSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type descriptionSanitizer struct {
	policy *bluemonday.Policy
}

// NewDescriptionSanitizer はDescriptionSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayのカスタムポリシーを構築する。
// ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em, h1〜h4
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - aタグ: target="_blank" と rel="noopener noreferrer" を自動付与
func NewDescriptionSanitizer() *descriptionSanitizer {
	p := bluemonday.NewPolicy()

	// 許可リストに含めないタグは自動的に除去される。
	// on*イベント属性はbluemondayのデフォルトで許可されないため除去される。
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
		"h1", "h2", "h3", "h4",
	)

	// aタグ:
	// - href属性を許可、相対URLは不許可
	// - target="_blank" と rel="noreferrer noopener" を強制付与
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &descriptionSanitizer{
		policy: p,
	}
}

// Sanitize は説明のHTMLをサニタイズして安全なHTMLを返す。
func (s *descriptionSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}

// compile-time interface check
var _ DescriptionSanitizerService = (*descriptionSanitizer)(nil)
