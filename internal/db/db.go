package db

import (
	"context"
	"time"
)

// RecordStore is the relational record store facade.
type RecordStore interface {
	Pinger
	Searcher
	Suggester
	Migrator
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// CacheStore is the key-value store backing the result cache.
type CacheStore interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Searcher evaluates a compiled search against the record store.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
}

// Suggester returns autocomplete candidates.
type Suggester interface {
	Suggest(ctx context.Context, q *SuggestQuery) ([]string, error)
}

// Migrator applies schema migrations.
type Migrator interface {
	Migrate(ctx context.Context) error
}
