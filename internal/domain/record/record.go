package record

import (
	"fmt"
	"math"
	"time"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/score"
)

// Record is the projected display row of a trademark case file.
type Record struct {
	SerialNumber       int64
	RegistrationNumber string
	MarkIdentification string
	StatusCode         string
	MarkDrawingCode    string
	AttorneyName       string
	FilingDate         *time.Time
	RegistrationDate   *time.Time
	// Score is the aggregated relevance, nil when no scoring strategy matched the record.
	Score *float64
}

// Quality returns the display bucket of the score, or "" for unscored records.
func (r Record) Quality() string {
	if r.Score == nil {
		return ""
	}
	return score.Quality(*r.Score)
}

// Pagination describes the slice of an ordered result.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalResults int
	PerPage      int
}

// Page is one slice of a search result.
type Page struct {
	Records    []Record
	Pagination Pagination
}

// ValidatePaging checks page >= 1 and 1 <= perPage <= maxPerPage. maxPerPage <= 0 disables the cap.
func ValidatePaging(page, perPage, maxPerPage int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidPagination, page)
	}
	if perPage < 1 {
		return fmt.Errorf("%w: per_page must be >= 1, got %d", domain.ErrInvalidPagination, perPage)
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		return fmt.Errorf("%w: per_page must be <= %d, got %d", domain.ErrInvalidPagination, maxPerPage, perPage)
	}
	return nil
}

// NewPagination computes totals for a page of an ordered result of total records.
func NewPagination(page, perPage, total int) Pagination {
	pages := 0
	if perPage > 0 {
		pages = total / perPage
		if total%perPage != 0 {
			pages++
		}
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalResults: total,
		PerPage:      perPage,
	}
}

// Offset returns the number of records preceding page, saturating at math.MaxInt.
func Offset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

// EmptyPage is the result of an empty or fully degraded tree.
func EmptyPage(perPage int) Page {
	return Page{
		Records:    []Record{},
		Pagination: Pagination{CurrentPage: 1, PerPage: perPage},
	}
}
