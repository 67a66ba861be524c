package db

import (
	"reflect"
	"testing"
)

func TestSearchPattern(t *testing.T) {
	tests := []struct {
		name     string
		search   string
		expected string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"single token", "golang", "%golang%"},
		{"two tokens combined into one pattern", "go routines", "%go%routines%"},
		{"extra whitespace collapsed", "  go   routines ", "%go%routines%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchPattern(tt.search); got != tt.expected {
				t.Errorf("SearchPattern(%q) = %q, want %q", tt.search, got, tt.expected)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		expected []string
	}{
		{"nil", nil, []string{}},
		{"lowercased", []string{"Go", "SQL"}, []string{"go", "sql"}},
		{"trimmed and blanks dropped", []string{" go ", "", "  "}, []string{"go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTags(tt.tags); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.tags, got, tt.expected)
			}
		})
	}
}

func TestOrderClauses(t *testing.T) {
	tests := []struct {
		name     string
		sort     string
		expected []string
	}{
		{"default is newest first", "", []string{"posts.created_at DESC"}},
		{"new is newest first", "new", []string{"posts.created_at DESC"}},
		{"anything else sorts by likes with created_at tiebreak", "popular",
			[]string{"likes_count DESC", "posts.created_at DESC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrderClauses(tt.sort); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("OrderClauses(%q) = %v, want %v", tt.sort, got, tt.expected)
			}
		})
	}
}

func TestPageOffset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		perPage  int
		expected int
	}{
		{"first page", 1, 10, 0},
		{"second page", 2, 10, 10},
		{"fifth page", 5, 10, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageOffset(tt.page, tt.perPage); got != tt.expected {
				t.Errorf("PageOffset(%d, %d) = %d, want %d", tt.page, tt.perPage, got, tt.expected)
			}
		})
	}
}

func TestPagesCount(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		perPage  int
		expected int64
	}{
		{"zero rows", 0, 10, 0},
		{"exact page", 10, 10, 1},
		{"partial page rounds up", 11, 10, 2},
		{"many pages", 95, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PagesCount(tt.total, tt.perPage); got != tt.expected {
				t.Errorf("PagesCount(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.expected)
			}
		})
	}
}
