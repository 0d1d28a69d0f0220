package http

import (
	"net/url"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", raw, err)
	}
	return u
}

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		query          string
		expectedOffset int
		expectedLimit  int
	}{
		{"", 0, defaultLimit},
		{"offset=10&limit=50", 10, 50},
		{"limit=500", 0, maxLimit},
		{"offset=-5", 0, defaultLimit},
		{"offset=abc&limit=0", 0, defaultLimit},
		{"offset=7&limit=-1", 7, defaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			offset, limit := parsePaginationParams(mustParseURL(t, "/api/v1/runs?"+tt.query))
			if offset != tt.expectedOffset || limit != tt.expectedLimit {
				t.Errorf("Expected offset=%d limit=%d, got offset=%d limit=%d", tt.expectedOffset, tt.expectedLimit, offset, limit)
			}
		})
	}
}

func TestCalculateOffsetOfLastPage(t *testing.T) {
	tests := []struct {
		total, limit, expected int
	}{
		{0, 20, 0},
		{1, 20, 0},
		{20, 20, 0},
		{21, 20, 20},
		{45, 10, 40},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := calculateOffsetOfLastPage(tt.total, tt.limit); got != tt.expected {
			t.Errorf("calculateOffsetOfLastPage(%d, %d) = %d; expected %d", tt.total, tt.limit, got, tt.expected)
		}
	}
}

func TestBuildNavigationLinks(t *testing.T) {
	u := mustParseURL(t, "/api/v1/runs?limit=10&offset=10")

	tests := []struct {
		name     string
		offset   int
		total    int
		expected PaginationLinks
	}{
		{
			name:     "No runs",
			offset:   0,
			total:    0,
			expected: PaginationLinks{},
		},
		{
			name:   "Single page",
			offset: 0,
			total:  3,
			expected: PaginationLinks{
				First: "/api/v1/runs?limit=10&offset=0",
				Last:  "/api/v1/runs?limit=10&offset=0",
			},
		},
		{
			name:   "Middle page",
			offset: 10,
			total:  25,
			expected: PaginationLinks{
				First: "/api/v1/runs?limit=10&offset=0",
				Last:  "/api/v1/runs?limit=10&offset=20",
				Next:  "/api/v1/runs?limit=10&offset=20",
				Prev:  "/api/v1/runs?limit=10&offset=0",
			},
		},
		{
			name:   "Unaligned offset clamps prev at zero",
			offset: 4,
			total:  25,
			expected: PaginationLinks{
				First: "/api/v1/runs?limit=10&offset=0",
				Last:  "/api/v1/runs?limit=10&offset=20",
				Next:  "/api/v1/runs?limit=10&offset=14",
				Prev:  "/api/v1/runs?limit=10&offset=0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildNavigationLinks(u, tt.offset, 10, tt.total)
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestBuildPaginatedResponse(t *testing.T) {
	resp := buildPaginatedResponse(mustParseURL(t, "/api/v1/runs"), 0, 2, 5, []RunResponse{{ID: "a"}, {ID: "b"}})

	if resp.Meta.Count != 5 {
		t.Errorf("Expected count 5, got %d", resp.Meta.Count)
	}
	if resp.Links.Next != "/api/v1/runs?limit=2&offset=2" {
		t.Errorf("Expected next link, got %q", resp.Links.Next)
	}
	if resp.Links.Prev != "" {
		t.Errorf("Expected no prev link on first page, got %q", resp.Links.Prev)
	}
	if data, ok := resp.Data.([]RunResponse); !ok || len(data) != 2 {
		t.Errorf("Expected 2 runs in data, got %v", resp.Data)
	}
}
