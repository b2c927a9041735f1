package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/DavidZachariahWC/trademarks-public/internal/db"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/score"
	ucsearch "github.com/DavidZachariahWC/trademarks-public/internal/usecase/search"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	Suggest(ctx context.Context, q *db.SuggestQuery) ([]string, error)
}

// Repo implements usecase/search.Repository and usecase/suggest.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Fetch evaluates a compiled plan and maps store rows to records.
func (r *Repo) Fetch(ctx context.Context, plan ucsearch.Plan) (ucsearch.Result, error) {
	q := &db.SearchQuery{
		Candidates: plan.Candidates,
		Scores:     plan.Scores,
		MinScore:   score.MinAdmission,
		Offset:     plan.Offset,
		Limit:      plan.Limit,
	}

	sr, err := r.store.Search(ctx, q)
	if err != nil {
		return ucsearch.Result{}, mapStoreErr("search", err)
	}

	records := make([]record.Record, 0, len(sr.Rows))
	for _, row := range sr.Rows {
		records = append(records, toRecord(row))
	}
	return ucsearch.Result{Records: records, Total: sr.Total}, nil
}

// Suggest returns autocomplete values for a field ("mark" or "attorney").
func (r *Repo) Suggest(ctx context.Context, field, prefix string, limit int) ([]string, error) {
	q := &db.SuggestQuery{Field: db.SuggestField(field), Prefix: prefix, Limit: limit}
	out, err := r.store.Suggest(ctx, q)
	if err != nil {
		return nil, mapStoreErr("suggest", err)
	}
	return out, nil
}

func toRecord(row db.RecordRow) record.Record {
	rec := record.Record{
		SerialNumber:       row.SerialNumber,
		RegistrationNumber: deref(row.RegistrationNumber),
		MarkIdentification: deref(row.MarkIdentification),
		StatusCode:         deref(row.StatusCode),
		MarkDrawingCode:    deref(row.MarkDrawingCode),
		AttorneyName:       deref(row.AttorneyName),
		FilingDate:         row.FilingDate,
		RegistrationDate:   row.RegistrationDate,
	}
	if row.CombinedScore != nil {
		v := score.Clamp(*row.CombinedScore)
		rec.Score = &v
	}
	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// mapStoreErr hides store detail behind domain sentinels.
func mapStoreErr(op string, err error) error {
	if errors.Is(err, db.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
