package query

import (
	"net/url"
	"testing"

	"github.com/MHammad33/error-tracker/internal/model"
)

// --- Resolve テスト ---

func TestResolve_EmptyInput_ReturnsDefaults(t *testing.T) {
	q := Resolve(url.Values{}, DefaultListPageSize)

	if q.Page != 1 {
		t.Errorf("Page = %d, want 1", q.Page)
	}
	if q.PageSize != DefaultListPageSize {
		t.Errorf("PageSize = %d, want %d", q.PageSize, DefaultListPageSize)
	}
	if q.Status != "" {
		t.Errorf("Status = %q, want empty", q.Status)
	}
	if q.Search != "" {
		t.Errorf("Search = %q, want empty", q.Search)
	}
	if q.OrderBy != SortByCreatedAt {
		t.Errorf("OrderBy = %q, want %q", q.OrderBy, SortByCreatedAt)
	}
	if q.OrderDirection != Desc {
		t.Errorf("OrderDirection = %q, want %q", q.OrderDirection, Desc)
	}
}

func TestResolve_ValidInput_PassesThrough(t *testing.T) {
	raw := url.Values{
		"page":           {"3"},
		"pageSize":       {"25"},
		"status":         {"IN_PROGRESS"},
		"search":         {"payment"},
		"orderBy":        {"title"},
		"orderDirection": {"asc"},
	}

	q := Resolve(raw, DefaultListPageSize)

	if q.Page != 3 {
		t.Errorf("Page = %d, want 3", q.Page)
	}
	if q.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", q.PageSize)
	}
	if q.Status != model.StatusInProgress {
		t.Errorf("Status = %q, want %q", q.Status, model.StatusInProgress)
	}
	if q.Search != "payment" {
		t.Errorf("Search = %q, want %q", q.Search, "payment")
	}
	if q.OrderBy != SortByTitle {
		t.Errorf("OrderBy = %q, want %q", q.OrderBy, SortByTitle)
	}
	if q.OrderDirection != Asc {
		t.Errorf("OrderDirection = %q, want %q", q.OrderDirection, Asc)
	}
}

// 不正な入力がすべて既定値へ縮退することを検証する。
// Resolveはどの入力に対してもエラーを返さない。
func TestResolve_MalformedInput_DegradesToDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  url.Values
	}{
		{"非数値のpage", url.Values{"page": {"abc"}}},
		{"0のpage", url.Values{"page": {"0"}}},
		{"負のpage", url.Values{"page": {"-5"}}},
		{"非数値のpageSize", url.Values{"pageSize": {"ten"}}},
		{"0のpageSize", url.Values{"pageSize": {"0"}}},
		{"上限超過のpageSize", url.Values{"pageSize": {"1000"}}},
		{"未知のstatus", url.Values{"status": {"DONE"}}},
		{"小文字のstatus", url.Values{"status": {"open"}}},
		{"空白のみのsearch", url.Values{"search": {"   "}}},
		{"未知のorderBy", url.Values{"orderBy": {"updatedAt"}}},
		{"未知のorderDirection", url.Values{"orderDirection": {"descending"}}},
		{"大文字のorderDirection", url.Values{"orderDirection": {"ASC"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Resolve(tt.raw, DefaultListPageSize)

			if q.Page != 1 {
				t.Errorf("Page = %d, want 1", q.Page)
			}
			if q.PageSize != DefaultListPageSize {
				t.Errorf("PageSize = %d, want %d", q.PageSize, DefaultListPageSize)
			}
			if q.Status != "" {
				t.Errorf("Status = %q, want empty", q.Status)
			}
			if q.Search != "" {
				t.Errorf("Search = %q, want empty", q.Search)
			}
			if q.OrderBy != SortByCreatedAt {
				t.Errorf("OrderBy = %q, want %q", q.OrderBy, SortByCreatedAt)
			}
			if q.OrderDirection != Desc {
				t.Errorf("OrderDirection = %q, want %q", q.OrderDirection, Desc)
			}
		})
	}
}

// ホワイトリスト外のソート列が既定列へ縮退し、
// 不正なフィールド名がそのまま通過しないことを検証する。
func TestResolve_SortWhitelist_RejectsUnsafeField(t *testing.T) {
	raw := url.Values{"orderBy": {"assignedUserId"}}

	q := Resolve(raw, DefaultListPageSize)

	if q.OrderBy != SortByCreatedAt {
		t.Errorf("OrderBy = %q, want fallback to %q", q.OrderBy, SortByCreatedAt)
	}
	if q.OrderColumn() != "created_at" {
		t.Errorf("OrderColumn() = %q, want %q", q.OrderColumn(), "created_at")
	}
}

func TestResolve_SearchIsTrimmed(t *testing.T) {
	raw := url.Values{"search": {"  payment gateway  "}}

	q := Resolve(raw, DefaultListPageSize)

	if q.Search != "payment gateway" {
		t.Errorf("Search = %q, want %q", q.Search, "payment gateway")
	}
}

// 呼び出し元ごとの既定ページサイズが尊重されることを検証する。
func TestResolve_CallerSuppliedDefaultPageSize(t *testing.T) {
	tests := []struct {
		name        string
		defaultSize int
		want        int
	}{
		{"通常一覧", DefaultListPageSize, 10},
		{"ダッシュボード一覧", DefaultDashboardPageSize, 12},
		{"無限スクロール", DefaultInfinitePageSize, 50},
		{"不正な既定値は通常一覧の値に縮退", -1, 10},
		{"上限超過の既定値も縮退", 500, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Resolve(url.Values{}, tt.defaultSize)
			if q.PageSize != tt.want {
				t.Errorf("PageSize = %d, want %d", q.PageSize, tt.want)
			}
		})
	}
}

func TestResolve_OrderColumnMapping(t *testing.T) {
	tests := []struct {
		orderBy string
		want    string
	}{
		{"title", "title"},
		{"status", "status"},
		{"createdAt", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.orderBy, func(t *testing.T) {
			q := Resolve(url.Values{"orderBy": {tt.orderBy}}, DefaultListPageSize)
			if got := q.OrderColumn(); got != tt.want {
				t.Errorf("OrderColumn() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Offset / TotalPages テスト ---

func TestListQuery_Offset(t *testing.T) {
	tests := []struct {
		page     int
		pageSize int
		want     int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 10, 20},
		{5, 12, 48},
	}

	for _, tt := range tests {
		q := ListQuery{Page: tt.page, PageSize: tt.pageSize}
		if got := q.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, size=%d) = %d, want %d", tt.page, tt.pageSize, got, tt.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		totalCount int
		pageSize   int
		want       int
	}{
		{0, 10, 0},    // 0件は0ページ
		{1, 10, 1},    // 端数切り上げ
		{10, 10, 1},   // ちょうど1ページ
		{11, 10, 2},   // 1件はみ出し
		{25, 10, 3},   // シナリオD: 25件/10件 = 3ページ
		{25, 12, 3},   // ダッシュボードページサイズ
		{-3, 10, 0},   // 負数は0ページ
		{100, 0, 0},   // 不正なページサイズ
	}

	for _, tt := range tests {
		if got := TotalPages(tt.totalCount, tt.pageSize); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.totalCount, tt.pageSize, got, tt.want)
		}
	}
}
