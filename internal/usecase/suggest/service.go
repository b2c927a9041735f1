package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain"
)

// Field selects the text autocomplete reads.
type Field string

// Supported fields.
const (
	Mark     Field = "mark"
	Attorney Field = "attorney"
)

// DefaultLimit is the number of suggestions returned.
const DefaultLimit = 5

// ParseField validates a field name. Empty defaults to Mark.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Mark, nil
	case Mark, Attorney:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSuggestType, s)
	}
}

// Service serves prefix autocomplete for marks and attorneys.
type Service struct {
	repo  Repository
	limit int
}

// New creates a suggest service. limit <= 0 uses DefaultLimit.
func New(repo Repository, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{repo: repo, limit: limit}
}

// Suggest returns up to the configured number of values starting with prefix.
// An empty prefix returns an empty list without touching the store.
func (s *Service) Suggest(ctx context.Context, field Field, prefix string) ([]string, error) {
	if field != Mark && field != Attorney {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSuggestType, field)
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}

	out, err := s.repo.Suggest(ctx, string(field), prefix, s.limit)
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", field, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
