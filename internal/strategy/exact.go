package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
)

// normalizer converts a trimmed query into the bound value, or fails.
type normalizer func(q string) (any, error)

// exact matches rows whose column equals the normalised query.
type exact struct {
	name      string
	query     string
	table     string
	column    string
	normalize normalizer
}

func (s *exact) Name() string    { return s.name }
func (s *exact) IsScoring() bool { return false }

func (s *exact) Evaluate() Outcome {
	if s.query == "" {
		return Unsatisfiable("empty query")
	}
	v, err := s.normalize(s.query)
	if err != nil {
		return Unsatisfiable(err.Error())
	}
	return Matched(
		predicate.New(fmt.Sprintf("SELECT x.serial_number FROM %s x WHERE %s = ?", s.table, s.column), v),
		predicate.ScoreExpr{},
	)
}

func exactEntry(name, table, column string, normalize normalizer) Entry {
	return Entry{
		Name:   name,
		Family: FamilyExact,
		New: func(p Params) Strategy {
			return &exact{
				name:      name,
				query:     strings.TrimSpace(p.Query),
				table:     table,
				column:    column,
				normalize: normalize,
			}
		},
	}
}

func asText(q string) (any, error) { return q, nil }

// asInt binds against integer columns; values outside int32 would fail in the store.
func asInt(q string) (any, error) {
	n, err := strconv.ParseInt(q, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%q is not a 32-bit integer", q)
	}
	return n, nil
}

func asBigint(q string) (any, error) {
	n, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a 64-bit integer", q)
	}
	return n, nil
}

// asClassCode left-pads numeric class codes to three digits ("25" -> "025").
func asClassCode(q string) (any, error) {
	if len(q) > 3 {
		return nil, fmt.Errorf("class code %q longer than 3 characters", q)
	}
	if isDigits(q) {
		return strings.Repeat("0", 3-len(q)) + q, nil
	}
	return strings.ToUpper(q), nil
}

// asLegalEntity requires the two-digit legal entity type code.
func asLegalEntity(q string) (any, error) {
	if len(q) != 2 {
		return nil, fmt.Errorf("legal entity code %q must be 2 characters", q)
	}
	return asInt(q)
}

// asDrawingType accepts the leading digit 0..6 of a mark drawing code.
func asDrawingType(q string) (any, error) {
	n, err := strconv.Atoi(q)
	if err != nil || n < 0 || n > 6 {
		return nil, fmt.Errorf("drawing code type %q must be 0..6", q)
	}
	return strconv.Itoa(n), nil
}

func isDigits(q string) bool {
	for _, r := range q {
		if r < '0' || r > '9' {
			return false
		}
	}
	return q != ""
}
