package history

import (
	"context"
	"math"
	"time"

	"github.com/uptrace/bun"
)

// maxAgeDays is the largest age a time.Duration can express. Larger ages
// reach past any storable timestamp, so nothing is old enough to remove.
const maxAgeDays = int(math.MaxInt64 / int64(24*time.Hour))

// Cleanup prunes unpinned entries in two steps: entries older than
// ageDays are removed, then all but the newest maxEntries unpinned entries
// are removed. A negative argument skips its step. Pinned entries are never
// touched. It returns the number of entries removed.
func (s *Store) Cleanup(ctx context.Context, ageDays, maxEntries int) (int64, error) {
	var removed int64
	err := s.write(ctx, "cleanup", func(ctx context.Context, tx bun.Tx) error {
		if ageDays >= 0 && ageDays <= maxAgeDays {
			cutoff := s.now().Add(-time.Duration(ageDays) * 24 * time.Hour).UnixNano()
			res, err := tx.NewDelete().
				Model((*entryRow)(nil)).
				Where("is_pinned = 0").
				Where("created_at < ?", cutoff).
				Exec(ctx)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			removed += n
		}

		if maxEntries >= 0 {
			q := tx.NewDelete().
				Model((*entryRow)(nil)).
				Where("is_pinned = 0")
			if maxEntries > 0 {
				// Limit(0) would mean "no limit", so zero is handled by
				// dropping the subquery entirely.
				keep := tx.NewSelect().
					Model((*entryRow)(nil)).
					Column("id").
					Where("is_pinned = 0").
					OrderExpr("created_at DESC, id DESC").
					Limit(maxEntries)
				q = q.Where("id NOT IN (?)", keep)
			}
			res, err := q.Exec(ctx)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			removed += n
		}
		return nil
	})
	return removed, err
}
