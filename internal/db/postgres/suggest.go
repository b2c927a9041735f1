package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/DavidZachariahWC/trademarks-public/internal/db"
)

var suggestColumns = map[db.SuggestField]string{
	db.SuggestMark:     "mark_identification",
	db.SuggestAttorney: "attorney_name",
}

// Suggest returns distinct values of the field starting with the prefix,
// best trigram match first, ties broken alphabetically.
func (s *Store) Suggest(ctx context.Context, q *db.SuggestQuery) ([]string, error) {
	col, ok := suggestColumns[q.Field]
	if !ok {
		return nil, &db.Error{Op: db.OpSuggest, Err: fmt.Errorf("%w: field %q", db.ErrBadQuery, q.Field)}
	}
	prefix := strings.TrimSpace(q.Prefix)
	if prefix == "" || q.Limit <= 0 {
		return []string{}, nil
	}

	sql := fmt.Sprintf(`SELECT t.v FROM (
		SELECT DISTINCT h.%[1]s AS v FROM casefileheader h
		WHERE h.%[1]s IS NOT NULL AND h.%[1]s ILIKE $1
	) t
	ORDER BY similarity(t.v, $2) DESC, lower(t.v) ASC
	LIMIT $3`, col)

	rows, err := s.pool.Query(ctx, sql, escapeLike(prefix)+"%", prefix, q.Limit)
	if err != nil {
		return nil, wrapErr(db.OpSuggest, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapErr(db.OpSuggest, err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
