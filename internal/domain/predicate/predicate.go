// Package predicate holds composable query descriptions over record identifiers.
//
// A Predicate is SQL selecting exactly one integer column, serial_number. A ScoreExpr is SQL
// selecting two columns, sn and score. Both use '?' placeholders; the store rebinds them.
// Neither type holds data: they describe sets, the store evaluates them.
package predicate

import "strings"

// Predicate is an id-set query: SELECT serial_number ... with '?' placeholders.
type Predicate struct {
	sql  string
	args []any
}

// New creates a Predicate from SQL and its positional arguments.
func New(sql string, args ...any) Predicate {
	return Predicate{sql: strings.TrimSpace(sql), args: args}
}

// SQL returns the query text.
func (p Predicate) SQL() string { return p.sql }

// Args returns the positional arguments.
func (p Predicate) Args() []any { return p.args }

// IsZero reports whether the predicate is unset.
func (p Predicate) IsZero() bool { return p.sql == "" }

// ScoreExpr is a per-record relevance query: SELECT <id> AS sn, <0..100> AS score ...
type ScoreExpr struct {
	source string
	sql    string
	args   []any
}

// NewScore creates a ScoreExpr. source names the strategy that produced it.
func NewScore(source, sql string, args ...any) ScoreExpr {
	return ScoreExpr{source: source, sql: strings.TrimSpace(sql), args: args}
}

// Source returns the name of the producing strategy.
func (s ScoreExpr) Source() string { return s.source }

// SQL returns the query text.
func (s ScoreExpr) SQL() string { return s.sql }

// Args returns the positional arguments.
func (s ScoreExpr) Args() []any { return s.args }

// IsZero reports whether the expression is unset.
func (s ScoreExpr) IsZero() bool { return s.sql == "" }
