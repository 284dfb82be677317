package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/x", 1, DefaultLimit},
		{"explicit", "/x?page=3&limit=50", 3, 50},
		{"zero page", "/x?page=0", 1, DefaultLimit},
		{"negative page", "/x?page=-2", 1, DefaultLimit},
		{"garbage", "/x?page=abc&limit=def", 1, DefaultLimit},
		{"limit capped", "/x?limit=5000", 1, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(httptest.NewRequest("GET", tt.url, nil))
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
				t.Errorf("Parse() = %+v, want page=%d limit=%d", p, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	if got := p.Skip(); got != 40 {
		t.Errorf("Skip() = %d, want 40", got)
	}
}

func TestPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{199, 20, 10},
		{200, 20, 10},
		{201, 20, 11},
	}

	for _, tt := range tests {
		p := Params{Page: 1, Limit: tt.limit}
		if got := p.Pages(tt.total); got != tt.want {
			t.Errorf("Pages(%d) with limit %d = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
