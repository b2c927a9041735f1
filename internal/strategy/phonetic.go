package strategy

import (
	"fmt"
	"strings"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/score"
)

// phoneticFrom derives the query's distinct soundex codes once per row source.
const phoneticFrom = `casefileheader h
CROSS JOIN LATERAL (
	SELECT ARRAY(
		SELECT DISTINCT soundex(w)
		FROM unnest(regexp_split_to_array(trim(?::text), '\s+')) AS w
		WHERE length(w) > 0
	) AS codes
) q`

// phoneticScore is the share of query codes present in the mark's codes, over the longer array.
const phoneticScore = `((SELECT count(*) FROM unnest(q.codes) AS c WHERE c = ANY(h.mark_identification_soundex))::float8 * 100
	/ GREATEST(cardinality(q.codes), cardinality(h.mark_identification_soundex), 1))`

// phonetic matches marks whose soundex codes overlap the query's codes and
// whose overlap score exceeds score.PhoneticFloor.
type phonetic struct {
	name  string
	query string
}

func (s *phonetic) Name() string    { return s.name }
func (s *phonetic) IsScoring() bool { return true }

func (s *phonetic) Evaluate() Outcome {
	if s.query == "" {
		return Unsatisfiable("empty query")
	}
	if !hasLetter(s.query) {
		return Unsatisfiable("query has no phonetic content")
	}

	where := fmt.Sprintf(
		"cardinality(q.codes) > 0 AND h.mark_identification_soundex && q.codes AND %s > %v",
		phoneticScore, score.PhoneticFloor,
	)
	p := predicate.New(
		fmt.Sprintf("SELECT h.serial_number FROM %s WHERE %s", phoneticFrom, where),
		s.query,
	)
	sc := predicate.NewScore(s.name,
		fmt.Sprintf("SELECT h.serial_number AS sn, %s AS score FROM %s WHERE %s", phoneticScore, phoneticFrom, where),
		s.query,
	)
	return Matched(p, sc)
}

// hasLetter reports whether soundex can encode anything in q.
func hasLetter(q string) bool {
	return strings.IndexFunc(q, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
}

func phoneticEntry(name string) Entry {
	return Entry{
		Name:    name,
		Family:  FamilyPhonetic,
		Scoring: true,
		New: func(p Params) Strategy {
			return &phonetic{name: name, query: strings.TrimSpace(p.Query)}
		},
	}
}
