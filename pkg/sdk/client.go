package tmsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DavidZachariahWC/trademarks-public/internal/db"
	"github.com/DavidZachariahWC/trademarks-public/internal/db/postgres"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	searchrepo "github.com/DavidZachariahWC/trademarks-public/internal/repository/search"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
	healthuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/health"
	searchuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/search"
	suggestuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/suggest"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultMaxPerPage       = 100
)

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, root *tree.Node, page, perPage int) (record.Page, error)
}

type suggestUseCase interface {
	Suggest(ctx context.Context, field suggestuc.Field, prefix string) ([]string, error)
}

// Client is the tmsearch SDK entry point.
type Client struct {
	store      db.RecordStore
	compiler   *searchuc.Compiler
	registry   *strategy.Registry
	searchSvc  searchUseCase
	suggestSvc suggestUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the record store.
// The provided context is used for the readiness check and migrations.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		limits:     tree.DefaultLimits(),
		maxPerPage: defaultMaxPerPage,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("tmsearch: database dsn required (use WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := postgres.NewStore(ctx, postgres.Config{
		DSN:      cfg.dsn,
		MaxConns: cfg.maxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("tmsearch: create postgres store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("tmsearch: database not ready: %w", err)
	}

	if cfg.migrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("tmsearch: migrate: %w", err)
		}
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store db.RecordStore, cfg *clientConfig, obs *observer) (*Client, error) {
	registry := strategy.MustBuiltin()
	compiler, err := searchuc.NewCompiler(registry, cfg.compileWorkers)
	if err != nil {
		return nil, fmt.Errorf("tmsearch: %w", err)
	}

	repo := searchrepo.New(store)
	searchSvc := searchuc.New(compiler, repo, searchuc.Config{
		MaxPerPage:   cfg.maxPerPage,
		Limits:       cfg.limits,
		QueryTimeout: cfg.queryTimeout,
	})

	return &Client{
		store:      store,
		compiler:   compiler,
		registry:   registry,
		searchSvc:  searchSvc,
		suggestSvc: suggestuc.New(repo, cfg.suggestLimit),
		healthSvc:  healthuc.New(store, nil),
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.compiler != nil {
		c.compiler.Release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search returns one page of records admitted by filter, best scores first
// when the filter carries scoring strategies. A nil filter yields an empty page.
func (c *Client) Search(ctx context.Context, filter *Filter, page, perPage int) (_ Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	res, err := c.searchSvc.Search(ctx, filter, page, perPage)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	return pageFromDomain(res), nil
}

// Suggest returns autocomplete values for field ("mark" or "attorney") starting with prefix.
func (c *Client) Suggest(ctx context.Context, field, prefix string) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, err) }()

	f, err := suggestuc.ParseField(field)
	if err != nil {
		return nil, err
	}
	out, err := c.suggestSvc.Suggest(ctx, f, prefix)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return out, nil
}

// Strategies lists the registered strategies sorted by name.
func (c *Client) Strategies() []StrategyInfo {
	if c.registry == nil {
		return nil
	}
	entries := c.registry.Entries()
	out := make([]StrategyInfo, len(entries))
	for i, e := range entries {
		out[i] = strategyFromEntry(e)
	}
	return out
}
