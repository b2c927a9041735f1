package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/DavidZachariahWC/trademarks-public/internal/db"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	ucsearch "github.com/DavidZachariahWC/trademarks-public/internal/usecase/search"
)

const cacheKeyPrefix = "tmsearch:page:"

// DefaultTTL keeps a cached page for two days.
const DefaultTTL = 48 * time.Hour

// store is the consumer interface for the page cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedRepository caches fetched pages in a key-value store.
type CachedRepository struct {
	inner      ucsearch.Repository
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner ucsearch.Repository,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedRepository{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Fetch returns a cached page or fetches it from the inner repository.
// Cache failures never fail the request.
func (c *CachedRepository) Fetch(ctx context.Context, plan ucsearch.Plan) (ucsearch.Result, error) {
	key, err := cacheKey(plan)
	if err != nil {
		c.logger.Warn("Failed to build page cache key", zap.Error(err))
		return c.inner.Fetch(ctx, plan)
	}

	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return res, nil
	}

	c.incCache("miss")

	res, err := c.inner.Fetch(ctx, plan)
	if err != nil {
		return ucsearch.Result{}, err
	}

	c.putToCache(ctx, key, res)
	return res, nil
}

func (c *CachedRepository) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// keyMaterial is the canonical form of a plan for hashing.
type keyMaterial struct {
	Candidates string `json:"c"`
	CandArgs   []any  `json:"ca"`
	Scores     string `json:"s"`
	ScoreArgs  []any  `json:"sa"`
	Offset     int    `json:"o"`
	Limit      int    `json:"l"`
}

func cacheKey(plan ucsearch.Plan) (string, error) {
	data, err := json.Marshal(keyMaterial{
		Candidates: plan.Candidates.SQL(),
		CandArgs:   plan.Candidates.Args(),
		Scores:     plan.Scores.SQL(),
		ScoreArgs:  plan.Scores.Args(),
		Offset:     plan.Offset,
		Limit:      plan.Limit,
	})
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}
	h := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(h[:]), nil
}

// cachedPage is the stored form of a result page.
type cachedPage struct {
	Total   int            `json:"total"`
	Records []cachedRecord `json:"records"`
}

type cachedRecord struct {
	SerialNumber       int64      `json:"sn"`
	RegistrationNumber string     `json:"rn,omitempty"`
	MarkIdentification string     `json:"mark,omitempty"`
	StatusCode         string     `json:"status,omitempty"`
	MarkDrawingCode    string     `json:"drawing,omitempty"`
	AttorneyName       string     `json:"attorney,omitempty"`
	FilingDate         *time.Time `json:"filed,omitempty"`
	RegistrationDate   *time.Time `json:"registered,omitempty"`
	Score              *float64   `json:"score,omitempty"`
}

func (c *CachedRepository) getFromCache(ctx context.Context, key string) (ucsearch.Result, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached page", zap.String("key", key), zap.Error(err))
		}
		return ucsearch.Result{}, false
	}
	if len(data) == 0 {
		return ucsearch.Result{}, false
	}

	var page cachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		c.logger.Warn("Failed to parse cached page, evicting", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to evict cached page", zap.String("key", key), zap.Error(err))
		}
		return ucsearch.Result{}, false
	}

	records := make([]record.Record, len(page.Records))
	for i, r := range page.Records {
		records[i] = record.Record{
			SerialNumber:       r.SerialNumber,
			RegistrationNumber: r.RegistrationNumber,
			MarkIdentification: r.MarkIdentification,
			StatusCode:         r.StatusCode,
			MarkDrawingCode:    r.MarkDrawingCode,
			AttorneyName:       r.AttorneyName,
			FilingDate:         r.FilingDate,
			RegistrationDate:   r.RegistrationDate,
			Score:              r.Score,
		}
	}
	return ucsearch.Result{Records: records, Total: page.Total}, true
}

func (c *CachedRepository) putToCache(ctx context.Context, key string, res ucsearch.Result) {
	page := cachedPage{Total: res.Total, Records: make([]cachedRecord, len(res.Records))}
	for i, r := range res.Records {
		page.Records[i] = cachedRecord{
			SerialNumber:       r.SerialNumber,
			RegistrationNumber: r.RegistrationNumber,
			MarkIdentification: r.MarkIdentification,
			StatusCode:         r.StatusCode,
			MarkDrawingCode:    r.MarkDrawingCode,
			AttorneyName:       r.AttorneyName,
			FilingDate:         r.FilingDate,
			RegistrationDate:   r.RegistrationDate,
			Score:              r.Score,
		}
	}

	data, err := json.Marshal(page)
	if err != nil {
		c.logger.Warn("Failed to encode page for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache page", zap.String("key", key), zap.Error(err))
	}
}
