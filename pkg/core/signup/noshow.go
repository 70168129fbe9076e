package signup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// MarkNoShows flips confirmed signups on shifts that ended at least grace
// ago to NO_SHOW, and reports how many changed. Volunteers confirmed within
// the grace window are left alone so shift leads can still record late
// arrivals.
func MarkNoShows(ctx context.Context, store db.Store, clock *civiltime.Clock, logger *zap.Logger, grace time.Duration) (int64, error) {
	cutoff := clock.Now().Add(-grace)
	changed, err := store.MarkNoShows(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		logger.Info("Marked no-shows",
			zap.Int64("count", changed),
			zap.Time("ended_before", cutoff))
	}
	return changed, nil
}
