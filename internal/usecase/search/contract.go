package search

import (
	"context"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
)

// Repository evaluates a compiled plan against the record store.
type Repository interface {
	Fetch(ctx context.Context, plan Plan) (Result, error)
}

// Resolver maps strategy names to constructors.
type Resolver interface {
	Resolve(name string) (strategy.Constructor, bool)
}

// Plan is the store-ready form of a compiled tree for one page.
type Plan struct {
	// Candidates selects every id admitted by the tree structure.
	Candidates predicate.Predicate
	// Scores is the aggregated (sn, combined_score) query; zero when the tree has no scoring leaves.
	Scores predicate.ScoreExpr
	Offset int
	Limit  int
}

// Result is the admitted total and one ordered page of records.
type Result struct {
	Records []record.Record
	Total   int
}
