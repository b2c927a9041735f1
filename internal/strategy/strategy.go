// Package strategy turns named search conditions into id-set predicates and optional
// relevance scores over the trademark record store.
package strategy

import (
	"strings"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
)

// Family groups strategies by behaviour.
type Family string

const (
	FamilyPresence    Family = "presence"
	FamilySimilarity  Family = "similarity"
	FamilyPhonetic    Family = "phonetic"
	FamilyDateRange   Family = "date_range"
	FamilyExact       Family = "exact"
	FamilyCoordinated Family = "coordinated"
)

// Params are the per-leaf inputs a strategy is constructed from.
type Params struct {
	Query   string
	Page    int
	PerPage int
}

// Strategy evaluates one leaf of a filter tree.
// Implementations never return errors: bad input yields an Unsatisfiable outcome.
type Strategy interface {
	Name() string
	IsScoring() bool
	Evaluate() Outcome
}

// Constructor builds a strategy for one leaf.
type Constructor func(Params) Strategy

// Outcome is the result of evaluating a leaf: Matched or Unsatisfiable.
type Outcome struct {
	matched bool
	pred    predicate.Predicate
	score   predicate.ScoreExpr
	reason  string
}

// Matched is a satisfiable leaf. score may be the zero ScoreExpr for non-scoring strategies.
func Matched(p predicate.Predicate, score predicate.ScoreExpr) Outcome {
	return Outcome{matched: true, pred: p, score: score}
}

// Unsatisfiable is a leaf that can match nothing, with the reason for logs.
func Unsatisfiable(reason string) Outcome {
	return Outcome{reason: reason}
}

// IsMatched reports whether the outcome carries a predicate.
func (o Outcome) IsMatched() bool { return o.matched }

// Predicate returns the id-set predicate of a matched outcome.
func (o Outcome) Predicate() predicate.Predicate { return o.pred }

// Score returns the score expression, if the outcome has one.
func (o Outcome) Score() (predicate.ScoreExpr, bool) {
	return o.score, o.matched && !o.score.IsZero()
}

// Reason explains an unsatisfiable outcome.
func (o Outcome) Reason() string { return o.reason }

// escapeLike escapes LIKE metacharacters so the query matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}
