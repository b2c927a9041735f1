package strategy

import (
	"fmt"
	"strings"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/score"
)

// textTarget is one text column compared against the query.
type textTarget struct {
	// table is the source relation aliased x.
	table string
	// text is the compared expression, e.g. x.party_name.
	text string
	// guard is an extra condition on the row, may be empty.
	guard string
}

// similarity matches trigram similarity above score.SimilarityThreshold or a
// case-insensitive substring, and scores similarity x 100.
type similarity struct {
	name    string
	query   string
	targets []textTarget
}

func (s *similarity) Name() string    { return s.name }
func (s *similarity) IsScoring() bool { return true }

func (s *similarity) Evaluate() Outcome {
	if s.query == "" {
		return Unsatisfiable("empty query")
	}
	pattern := containsPattern(s.query)

	preds := make([]predicate.Set, 0, len(s.targets))
	var scoreSQL []string
	var scoreArgs []any
	for _, t := range s.targets {
		where := t.where()
		preds = append(preds, predicate.Of(predicate.New(
			fmt.Sprintf("SELECT x.serial_number FROM %s x WHERE %s", t.table, where),
			s.query, pattern,
		)))
		scoreSQL = append(scoreSQL, fmt.Sprintf(
			"SELECT x.serial_number AS sn, (similarity(coalesce(%s, ''), ?) * 100)::float8 AS score FROM %s x WHERE %s",
			t.text, t.table, where,
		))
		scoreArgs = append(scoreArgs, s.query, s.query, pattern)
	}

	p := predicate.Union(preds...).Predicate()
	sc := predicate.NewScore(s.name, strings.Join(scoreSQL, " UNION ALL "), scoreArgs...)
	return Matched(p, sc)
}

func (t textTarget) where() string {
	cond := fmt.Sprintf(
		"(similarity(coalesce(%[1]s, ''), ?) > %[2]v OR coalesce(%[1]s, '') ILIKE ?)",
		t.text, score.SimilarityThreshold,
	)
	if t.guard != "" {
		return t.guard + " AND " + cond
	}
	return cond
}

func similarityEntry(name string, targets ...textTarget) Entry {
	return Entry{
		Name:    name,
		Family:  FamilySimilarity,
		Scoring: true,
		New: func(p Params) Strategy {
			return &similarity{name: name, query: strings.TrimSpace(p.Query), targets: targets}
		},
	}
}
