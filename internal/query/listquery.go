// Package query は一覧取得リクエストのクエリパラメータ正規化を提供する。
//
// URLはユーザーが手で書き換えられるため、生のクエリパラメータは常に不正な
// 値を含みうる。Resolveはあらゆる入力を防御的に既定値へ縮退させ、エラーを
// 返さない。ソート列はホワイトリストで制限し、不正なフィールド名が
// データストアへ到達することを防ぐ。
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/MHammad33/error-tracker/internal/model"
)

// SortField はソート可能な列を表す。
// ホワイトリストのメンバーのみが有効であり、一覧画面のクリック可能な
// テーブルヘッダーと同じ集合を公開する。
type SortField string

const (
	// SortByTitle はタイトルでのソートを示す。
	SortByTitle SortField = "title"
	// SortByStatus はステータスでのソートを示す。
	SortByStatus SortField = "status"
	// SortByCreatedAt は作成日時でのソートを示す。既定のソート列。
	SortByCreatedAt SortField = "createdAt"
)

// Direction はソート方向を表す。
type Direction string

const (
	// Asc は昇順ソートを示す。
	Asc Direction = "asc"
	// Desc は降順ソートを示す。既定のソート方向。
	Desc Direction = "desc"
)

const (
	// MaxPageSize は1ページあたりの上限件数。
	MaxPageSize = 100

	// DefaultListPageSize は通常の一覧ビューの既定ページサイズ。
	DefaultListPageSize = 10
	// DefaultDashboardPageSize はダッシュボード一覧の既定ページサイズ。
	DefaultDashboardPageSize = 12
	// DefaultInfinitePageSize は無限スクロール取得の既定ページサイズ。
	DefaultInfinitePageSize = 50
)

// sortColumns はSortFieldからデータストアの列名へのマッピング。
// Resolveを通過した値のみがSQLのORDER BY句に渡される。
var sortColumns = map[SortField]string{
	SortByTitle:     "title",
	SortByStatus:    "status",
	SortByCreatedAt: "created_at",
}

// ListQuery は正規化済みの一覧取得条件を表す値オブジェクト。
// Resolveを経由して生成された値は常に完全に正規化されており、
// 下流のコンポーネントは再検証しない。
type ListQuery struct {
	Page           int
	PageSize       int
	Status         model.Status // 空文字列はフィルタなし
	Search         string       // 空文字列はフィルタなし
	OrderBy        SortField
	OrderDirection Direction
}

// Offset はページネーションのスキップ件数を返す。
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// OrderColumn はORDER BY句に使用するデータストアの列名を返す。
// ホワイトリスト外の値を持つことはないが、万一の場合はcreated_atを返す。
func (q ListQuery) OrderColumn() string {
	if col, ok := sortColumns[q.OrderBy]; ok {
		return col
	}
	return sortColumns[SortByCreatedAt]
}

// Resolve は生のクエリパラメータをListQueryへ正規化する。
// defaultPageSizeは呼び出し元ごとの既定ページサイズ
// （通常一覧10、ダッシュボード12、無限スクロール50）。
//
// すべての入力に対して定義済みの出力を持ち、エラーを返さない。
//   - page: 整数として解析できない、または1未満の場合は1。
//   - pageSize: 解析不能または1..MaxPageSizeの範囲外の場合はdefaultPageSize。
//   - status: 列挙値と完全一致する場合のみ採用。それ以外はフィルタなし。
//   - search: トリム後に非空なら採用。空や空白のみはフィルタなし。
//   - orderBy: ホワイトリストのメンバーのみ採用。それ以外はcreatedAt。
//   - orderDirection: "asc"または"desc"のみ採用。それ以外はdesc。
func Resolve(raw url.Values, defaultPageSize int) ListQuery {
	if defaultPageSize < 1 || defaultPageSize > MaxPageSize {
		defaultPageSize = DefaultListPageSize
	}

	q := ListQuery{
		Page:           1,
		PageSize:       defaultPageSize,
		OrderBy:        SortByCreatedAt,
		OrderDirection: Desc,
	}

	if page, err := strconv.Atoi(raw.Get("page")); err == nil && page >= 1 {
		q.Page = page
	}

	if size, err := strconv.Atoi(raw.Get("pageSize")); err == nil && size >= 1 && size <= MaxPageSize {
		q.PageSize = size
	}

	// ステータスは列挙値と完全一致した場合のみフィルタとして採用する。
	// 不一致はエラーではなく「フィルタなし」として扱う。
	if status := raw.Get("status"); model.ValidStatus(status) {
		q.Status = model.Status(status)
	}

	if search := strings.TrimSpace(raw.Get("search")); search != "" {
		q.Search = search
	}

	if field := SortField(raw.Get("orderBy")); field != "" {
		if _, ok := sortColumns[field]; ok {
			q.OrderBy = field
		}
	}

	switch Direction(raw.Get("orderDirection")) {
	case Asc:
		q.OrderDirection = Asc
	case Desc:
		q.OrderDirection = Desc
	}

	return q
}

// TotalPages は総件数とページサイズから総ページ数を計算する。
// totalCountが0の場合は0を返す。それ以外はceil(totalCount / pageSize)。
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
