package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	"github.com/DavidZachariahWC/trademarks-public/internal/logger"
	"github.com/DavidZachariahWC/trademarks-public/internal/metrics"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
)

// Config bounds what a single search may ask for.
type Config struct {
	MaxPerPage int
	Limits     tree.Limits
	// QueryTimeout caps store time per search. Zero leaves only the caller's deadline.
	QueryTimeout time.Duration
}

// Service runs filter-tree searches: validate, compile, aggregate, fetch, paginate.
type Service struct {
	compiler *Compiler
	repo     Repository
	cfg      Config
	tracer   trace.Tracer
}

// New creates a search service.
func New(compiler *Compiler, repo Repository, cfg Config) *Service {
	return &Service{
		compiler: compiler,
		repo:     repo,
		cfg:      cfg,
		tracer:   otel.Tracer("tmsearch-search"),
	}
}

// Search returns one page of records admitted by root.
// A nil tree returns the empty first page without touching the store.
func (s *Service) Search(ctx context.Context, root *tree.Node, page, perPage int) (record.Page, error) {
	if err := record.ValidatePaging(page, perPage, s.cfg.MaxPerPage); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("bad_request").Inc()
		return record.Page{}, err
	}
	if err := tree.Validate(root, s.cfg.Limits); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("bad_request").Inc()
		return record.Page{}, err
	}
	if root == nil {
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
		return record.EmptyPage(perPage), nil
	}

	start := time.Now()
	compiled := s.compiler.Compile(ctx, root, strategy.Params{Page: page, PerPage: perPage})
	metrics.SearchDuration.WithLabelValues("compile").Observe(time.Since(start).Seconds())

	if compiled.Set.IsEmpty() {
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
		return record.Page{
			Records:    []record.Record{},
			Pagination: record.NewPagination(page, perPage, 0),
		}, nil
	}

	scores, _ := Aggregate(compiled.Scores)
	plan := Plan{
		Candidates: compiled.Set.Predicate(),
		Scores:     scores,
		Offset:     record.Offset(page, perPage),
		Limit:      perPage,
	}

	res, err := s.execute(ctx, plan)
	if err != nil {
		status := "error"
		if errors.Is(err, domain.ErrStoreTimeout) {
			status = "timeout"
		}
		metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
		return record.Page{}, err
	}

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	metrics.SearchResults.Observe(float64(res.Total))
	logger.FromContext(ctx).Debug("Search complete",
		zap.Int("leaves", compiled.Leaves),
		zap.Int("scoring_leaves", len(compiled.Scores)),
		zap.Int("degradations", len(compiled.Degradations)),
		zap.Int("total", res.Total),
		zap.Duration("duration", time.Since(start)),
	)

	records := res.Records
	if records == nil {
		records = []record.Record{}
	}
	return record.Page{
		Records:    records,
		Pagination: record.NewPagination(page, perPage, res.Total),
	}, nil
}

func (s *Service) execute(ctx context.Context, plan Plan) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "search.execute",
		trace.WithAttributes(
			attribute.Bool("search.scored", !plan.Scores.IsZero()),
			attribute.Int("search.offset", plan.Offset),
			attribute.Int("search.limit", plan.Limit),
		),
	)
	defer span.End()

	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.repo.Fetch(ctx, plan)
	metrics.SearchDuration.WithLabelValues("execute").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return Result{}, fmt.Errorf("fetch page: %w", err)
	}

	span.SetAttributes(attribute.Int("search.total", res.Total))
	return res, nil
}
