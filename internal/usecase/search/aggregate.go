package search

import (
	"fmt"
	"strings"

	"github.com/DavidZachariahWC/trademarks-public/internal/domain/predicate"
)

// Aggregate folds score contributions into one (sn, combined_score) query
// keeping the maximum contribution per record. Identical contributions are
// emitted once. It reports false when there is nothing to aggregate.
func Aggregate(scores []predicate.ScoreExpr) (predicate.ScoreExpr, bool) {
	seen := make(map[string]struct{}, len(scores))
	parts := make([]string, 0, len(scores))
	var args []any
	var sources []string

	for _, sc := range scores {
		if sc.IsZero() {
			continue
		}
		key := sc.SQL() + "\x00" + fmt.Sprintf("%#v", sc.Args())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		parts = append(parts, "("+sc.SQL()+")")
		args = append(args, sc.Args()...)
		sources = append(sources, sc.Source())
	}
	if len(parts) == 0 {
		return predicate.ScoreExpr{}, false
	}

	sql := fmt.Sprintf(
		"SELECT u.sn, MAX(u.score) AS combined_score FROM (%s) u GROUP BY u.sn",
		strings.Join(parts, " UNION ALL "),
	)
	return predicate.NewScore(strings.Join(sources, "+"), sql, args...), true
}
