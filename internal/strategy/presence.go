package strategy

import (
	"fmt"
	"strings"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
)

// presence matches records carrying a flag or a related row. The query is ignored.
type presence struct {
	name string
	sql  string
}

func (s *presence) Name() string    { return s.name }
func (s *presence) IsScoring() bool { return false }

func (s *presence) Evaluate() Outcome {
	return Matched(predicate.New(s.sql), predicate.ScoreExpr{})
}

// headerFlag matches case files whose header has any of the given boolean columns set.
func headerFlag(name string, columns ...string) Entry {
	conds := make([]string, len(columns))
	for i, c := range columns {
		conds[i] = "h." + c + " IS TRUE"
	}
	sql := fmt.Sprintf("SELECT h.serial_number FROM casefileheader h WHERE %s", strings.Join(conds, " OR "))
	return presenceEntry(name, sql)
}

// related matches case files having at least one row in table (aliased x) satisfying where.
func related(name, table, where string) Entry {
	sql := fmt.Sprintf("SELECT x.serial_number FROM %s x", table)
	if where != "" {
		sql += " WHERE " + where
	}
	return presenceEntry(name, sql)
}

func presenceEntry(name, sql string) Entry {
	return Entry{
		Name:   name,
		Family: FamilyPresence,
		New: func(Params) Strategy {
			return &presence{name: name, sql: sql}
		},
	}
}
