package db

import (
	"time"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
)

// SearchQuery is the input for one compiled search.
type SearchQuery struct {
	// Candidates selects the serial numbers admitted by the filter tree.
	Candidates predicate.Predicate
	// Scores selects (sn, combined_score) pairs. Zero when the tree has no scoring leaves.
	Scores predicate.ScoreExpr
	// MinScore is the admission floor for scored records.
	MinScore float64
	Offset   int
	Limit    int
}

// Scored reports whether the query carries score aggregation.
func (q *SearchQuery) Scored() bool { return !q.Scores.IsZero() }

// SearchResult is the output of a search: admitted total and one ordered page.
type SearchResult struct {
	Total int
	Rows  []RecordRow
}

// RecordRow is one projected case file row.
type RecordRow struct {
	SerialNumber       int64
	RegistrationNumber *string
	MarkIdentification *string
	StatusCode         *string
	MarkDrawingCode    *string
	AttorneyName       *string
	FilingDate         *time.Time
	RegistrationDate   *time.Time
	CombinedScore      *float64
}

// SuggestField selects the column autocomplete reads.
type SuggestField string

const (
	SuggestMark     SuggestField = "mark"
	SuggestAttorney SuggestField = "attorney"
)

// SuggestQuery is the input for autocomplete.
type SuggestQuery struct {
	Field  SuggestField
	Prefix string
	Limit  int
}
