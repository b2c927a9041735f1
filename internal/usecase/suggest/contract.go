package suggest

import "context"

// Repository reads autocomplete candidates from the record store.
type Repository interface {
	Suggest(ctx context.Context, field, prefix string, limit int) ([]string, error)
}
