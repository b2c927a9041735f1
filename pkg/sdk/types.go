package tmsearch

import (
	"time"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
)

// Filter is a node of a filter tree: a strategy leaf or an AND/OR operator.
type Filter = tree.Node

// Limits bounds the shape of accepted filter trees.
type Limits = tree.Limits

// DefaultLimits returns the service default tree bounds.
func DefaultLimits() Limits { return tree.DefaultLimits() }

// Leaf builds a strategy leaf.
func Leaf(strategy, query string) *Filter { return tree.Leaf(strategy, query) }

// And builds an intersection of operands.
func And(operands ...*Filter) *Filter { return tree.And(operands...) }

// Or builds a union of operands.
func Or(operands ...*Filter) *Filter { return tree.Or(operands...) }

// ParseFilter decodes the JSON wire form of a filter tree.
// An empty document, null or {} yield a nil filter, which searches nothing.
func ParseFilter(data []byte) (*Filter, error) { return tree.Decode(data) }

// Record is one trademark case file in a result page.
type Record struct {
	SerialNumber       int64
	RegistrationNumber string
	MarkIdentification string
	StatusCode         string
	MarkDrawingCode    string
	AttorneyName       string
	FilingDate         *time.Time
	RegistrationDate   *time.Time
	// Score is nil when no scoring strategy matched the record.
	Score *float64
	// Quality is the display bucket of Score, "" when unscored.
	Quality string
}

// Pagination describes a page of an ordered result.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalResults int
	PerPage      int
}

// Page is one page of search results.
type Page struct {
	Records    []Record
	Pagination Pagination
}

// StrategyInfo describes a registered search strategy.
type StrategyInfo struct {
	Name    string
	Family  string
	Scoring bool
}

func pageFromDomain(p record.Page) Page {
	records := make([]Record, len(p.Records))
	for i, r := range p.Records {
		records[i] = Record{
			SerialNumber:       r.SerialNumber,
			RegistrationNumber: r.RegistrationNumber,
			MarkIdentification: r.MarkIdentification,
			StatusCode:         r.StatusCode,
			MarkDrawingCode:    r.MarkDrawingCode,
			AttorneyName:       r.AttorneyName,
			FilingDate:         r.FilingDate,
			RegistrationDate:   r.RegistrationDate,
			Score:              r.Score,
			Quality:            r.Quality(),
		}
	}
	return Page{
		Records: records,
		Pagination: Pagination{
			CurrentPage:  p.Pagination.CurrentPage,
			TotalPages:   p.Pagination.TotalPages,
			TotalResults: p.Pagination.TotalResults,
			PerPage:      p.Pagination.PerPage,
		},
	}
}

func strategyFromEntry(e strategy.Entry) StrategyInfo {
	return StrategyInfo{Name: e.Name, Family: string(e.Family), Scoring: e.Scoring}
}
