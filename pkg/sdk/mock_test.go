package tmsearch

import (
	"context"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
	healthuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/health"
	suggestuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/suggest"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, root *tree.Node, page, perPage int) (record.Page, error)
}

func (m *mockSearchUC) Search(ctx context.Context, root *tree.Node, page, perPage int) (record.Page, error) {
	return m.searchFn(ctx, root, page, perPage)
}

// --- suggestUseCase mock ---

type mockSuggestUC struct {
	suggestFn func(ctx context.Context, field suggestuc.Field, prefix string) ([]string, error)
}

func (m *mockSuggestUC) Suggest(ctx context.Context, field suggestuc.Field, prefix string) ([]string, error) {
	return m.suggestFn(ctx, field, prefix)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

// testClient creates a Client with mocked use cases, bypassing the database.
func testClient(searchSvc searchUseCase, suggestSvc suggestUseCase, healthSvc healthUseCase) *Client {
	return &Client{
		registry:   strategy.MustBuiltin(),
		searchSvc:  searchSvc,
		suggestSvc: suggestSvc,
		healthSvc:  healthSvc,
	}
}
