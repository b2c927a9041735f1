package tmsearch

import "github.com/DavidZachariahWC/trademarks-public/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidTree        = domain.ErrInvalidTree
	ErrTreeTooLarge       = domain.ErrTreeTooLarge
	ErrInvalidPagination  = domain.ErrInvalidPagination
	ErrInvalidSuggestType = domain.ErrInvalidSuggestType
	ErrStoreTimeout       = domain.ErrStoreTimeout
	ErrStoreUnavailable   = domain.ErrStoreUnavailable
)
