package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// missingIDs returns the ids absent from table, in ascending order.
func missingIDs(ctx context.Context, db sqlx.QueryerContext, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT id FROM %s WHERE id = ANY($1)", table)
	var found []int64
	if err := sqlx.SelectContext(ctx, db, &found, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("check %s ids: %w", table, err)
	}
	present := make(map[int64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

func sortedKeys(m map[int64]bool) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
