package tmsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn      string
	maxConns int32
	migrate  bool

	limits         Limits
	maxPerPage     int
	queryTimeout   time.Duration
	compileWorkers int
	suggestLimit   int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres sets the record store connection string.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithMaxConns caps the connection pool size. Default: pgx default.
func WithMaxConns(n int32) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConns = n
	})
}

// WithMigrations applies pending schema migrations on New.
func WithMigrations() Option {
	return optionFunc(func(c *clientConfig) {
		c.migrate = true
	})
}

// WithLimits overrides the filter tree depth and width bounds.
func WithLimits(l Limits) Option {
	return optionFunc(func(c *clientConfig) {
		c.limits = l
	})
}

// WithMaxPerPage sets the largest accepted page size. Default: 100.
func WithMaxPerPage(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPerPage = n
	})
}

// WithQueryTimeout bounds the store time of each search. Zero disables it.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithCompileWorkers compiles root operands on a worker pool of size n.
// n <= 1 compiles on the calling goroutine (default).
func WithCompileWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.compileWorkers = n
	})
}

// WithSuggestLimit sets the number of autocomplete suggestions. Default: 5.
func WithSuggestLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.suggestLimit = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
