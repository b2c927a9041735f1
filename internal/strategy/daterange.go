package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
)

const dateLayout = "2006-01-02"

// dateRange matches rows whose date column falls within an inclusive range.
// Accepted query forms: "YYYY-MM-DD - YYYY-MM-DD", "YYYY-MM-DD,YYYY-MM-DD" and a single "YYYY-MM-DD".
type dateRange struct {
	name   string
	query  string
	table  string
	column string
	guard  string
}

func (s *dateRange) Name() string    { return s.name }
func (s *dateRange) IsScoring() bool { return false }

func (s *dateRange) Evaluate() Outcome {
	from, to, err := ParseDateRange(s.query)
	if err != nil {
		return Unsatisfiable(err.Error())
	}
	where := fmt.Sprintf("x.%s BETWEEN ? AND ?", s.column)
	if s.guard != "" {
		where = s.guard + " AND " + where
	}
	return Matched(
		predicate.New(fmt.Sprintf("SELECT x.serial_number FROM %s x WHERE %s", s.table, where), from, to),
		predicate.ScoreExpr{},
	)
}

// ParseDateRange parses an inclusive date range. A single date is a one-day range.
func ParseDateRange(q string) (time.Time, time.Time, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("empty date range")
	}

	start, end, found := strings.Cut(q, " - ")
	if !found {
		start, end, found = strings.Cut(q, ",")
	}
	if !found {
		d, err := time.Parse(dateLayout, q)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q", q)
		}
		return d, d, nil
	}

	from, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q", start)
	}
	to, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q", end)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("range end %s precedes start %s", end, start)
	}
	return from, to, nil
}

func dateEntry(name, table, column, guard string) Entry {
	return Entry{
		Name:   name,
		Family: FamilyDateRange,
		New: func(p Params) Strategy {
			return &dateRange{name: name, query: p.Query, table: table, column: column, guard: guard}
		},
	}
}
