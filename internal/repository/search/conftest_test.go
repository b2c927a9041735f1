package search

import (
	"context"
	"testing"

	"github.com/DavidZachariahWC/trademarks-public/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn  func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	suggestFn func(ctx context.Context, q *db.SuggestQuery) ([]string, error)
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Suggest(ctx context.Context, q *db.SuggestQuery) ([]string, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, q)
	}
	return []string{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
