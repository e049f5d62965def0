package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantPage  int
		wantLimit int64
	}{
		{
			name:      "defaults",
			target:    "/cases",
			wantPage:  1,
			wantLimit: DefaultPageSize,
		},
		{
			name:      "explicit page and limit",
			target:    "/cases?page=3&limit=50",
			wantPage:  3,
			wantLimit: 50,
		},
		{
			name:      "limit clamped to max",
			target:    "/cases?limit=5000",
			wantPage:  1,
			wantLimit: MaxPageSize,
		},
		{
			name:      "zero page falls back",
			target:    "/cases?page=0",
			wantPage:  1,
			wantLimit: DefaultPageSize,
		},
		{
			name:      "negative values fall back",
			target:    "/cases?page=-2&limit=-10",
			wantPage:  1,
			wantLimit: DefaultPageSize,
		},
		{
			name:      "garbage values fall back",
			target:    "/cases?page=abc&limit=xyz",
			wantPage:  1,
			wantLimit: DefaultPageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			p := Parse(r)
			if p.Page != tt.wantPage {
				t.Errorf("Parse() Page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.Limit != tt.wantLimit {
				t.Errorf("Parse() Limit = %d, want %d", p.Limit, tt.wantLimit)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want int64
	}{
		{"first page", Params{Page: 1, Limit: 20}, 0},
		{"second page", Params{Page: 2, Limit: 20}, 20},
		{"later page with custom limit", Params{Page: 5, Limit: 50}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Skip(); got != tt.want {
				t.Errorf("Skip() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		p         Params
		total     int64
		wantPages int64
	}{
		{"no results still one page", Params{Page: 1, Limit: 20}, 0, 1},
		{"exact fit", Params{Page: 1, Limit: 20}, 40, 2},
		{"partial last page", Params{Page: 1, Limit: 20}, 41, 3},
		{"single row", Params{Page: 1, Limit: 20}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeta(tt.p, tt.total)
			if m.TotalPages != tt.wantPages {
				t.Errorf("NewMeta() TotalPages = %d, want %d", m.TotalPages, tt.wantPages)
			}
			if m.Total != tt.total {
				t.Errorf("NewMeta() Total = %d, want %d", m.Total, tt.total)
			}
			if m.Page != tt.p.Page || m.Limit != tt.p.Limit {
				t.Errorf("NewMeta() echoed params = (%d, %d), want (%d, %d)", m.Page, m.Limit, tt.p.Page, tt.p.Limit)
			}
		})
	}
}
