package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/record"
)

// ErrorResponseCode is the machine-readable error class of a failed request.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest    ErrorResponseCode = "bad_request"
	ErrorResponseCodeInvalidTree   ErrorResponseCode = "invalid_tree"
	ErrorResponseCodeUnauthorized  ErrorResponseCode = "unauthorized"
	ErrorResponseCodeNotFound      ErrorResponseCode = "not_found"
	ErrorResponseCodeStoreTimeout  ErrorResponseCode = "store_timeout"
	ErrorResponseCodeInternalError ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// CombinedSearchRequest is the body of POST /api/combined_search.
type CombinedSearchRequest struct {
	FilterTree json.RawMessage `json:"filter_tree"`
	Page       *flexInt        `json:"page"`
	PerPage    *flexInt        `json:"per_page"`
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err //nolint:wrapcheck // json error is already descriptive
		}
		data = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("expected integer, got %s", data)
	}
	*f = flexInt(n)
	return nil
}

// SearchResponse is the body of a successful combined search.
type SearchResponse struct {
	Results    []RecordItem   `json:"results"`
	Pagination PaginationInfo `json:"pagination"`
}

// RecordItem is one projected trademark record.
type RecordItem struct {
	SerialNumber       int64    `json:"serial_number"`
	RegistrationNumber string   `json:"registration_number"`
	MarkIdentification string   `json:"mark_identification"`
	StatusCode         string   `json:"status_code"`
	MarkDrawingCode    string   `json:"mark_drawing_code"`
	AttorneyName       string   `json:"attorney_name"`
	FilingDate         *string  `json:"filing_date"`
	RegistrationDate   *string  `json:"registration_date"`
	CombinedScore      *float64 `json:"combined_score,omitempty"`
	MatchQuality       string   `json:"match_quality,omitempty"`
}

// PaginationInfo mirrors record.Pagination on the wire.
type PaginationInfo struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
	PerPage      int `json:"per_page"`
}

// SuggestResponse is the body of GET /api/autocomplete.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// StrategyItem describes one registered strategy.
type StrategyItem struct {
	Name    string `json:"name"`
	Family  string `json:"family"`
	Scoring bool   `json:"scoring"`
}

// StrategyListResponse is the body of GET /api/strategies.
type StrategyListResponse struct {
	Strategies []StrategyItem `json:"strategies"`
	Count      int            `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

const dateLayout = "2006-01-02"

func pageToResponse(p record.Page) SearchResponse {
	items := make([]RecordItem, len(p.Records))
	for i, r := range p.Records {
		items[i] = recordToItem(r)
	}
	return SearchResponse{
		Results: items,
		Pagination: PaginationInfo{
			CurrentPage:  p.Pagination.CurrentPage,
			TotalPages:   p.Pagination.TotalPages,
			TotalResults: p.Pagination.TotalResults,
			PerPage:      p.Pagination.PerPage,
		},
	}
}

func recordToItem(r record.Record) RecordItem {
	return RecordItem{
		SerialNumber:       r.SerialNumber,
		RegistrationNumber: r.RegistrationNumber,
		MarkIdentification: r.MarkIdentification,
		StatusCode:         r.StatusCode,
		MarkDrawingCode:    r.MarkDrawingCode,
		AttorneyName:       r.AttorneyName,
		FilingDate:         formatDate(r.FilingDate),
		RegistrationDate:   formatDate(r.RegistrationDate),
		CombinedScore:      r.Score,
		MatchQuality:       r.Quality(),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
