package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrTimeout     = errors.New("db: timeout")
	ErrBadQuery    = errors.New("db: malformed query")
)

// Op constants name store operations for error context.
const (
	OpBegin      = "BEGIN"
	OpCandidates = "CANDIDATES"
	OpScores     = "SCORES"
	OpCount      = "COUNT"
	OpPage       = "PAGE"
	OpSuggest    = "SUGGEST"
	OpMigrate    = "MIGRATE"
	OpPing       = "PING"
	OpGet        = "GET"
	OpSet        = "SET"
	OpDel        = "DEL"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
