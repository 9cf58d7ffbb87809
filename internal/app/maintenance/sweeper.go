package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bengalbreeze/backend/pkg/logger"
)

const defaultSweepSpec = "@hourly"

// Sweeper runs background consistency repairs: reviews and wishlist entries
// pointing at deleted listings are removed, and listings whose agent account
// no longer exists are pulled from advertisement.
//
// Deletions in the request path never cascade; this keeps the interactive
// writes single-row and concentrates the fan-out here.
type Sweeper struct {
	db       *gorm.DB
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults.
func NewSweeper(db *gorm.DB, opts ...Option) *Sweeper {
	s := &Sweeper{
		db:       db,
		now:      time.Now,
		schedule: defaultSweepSpec,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return s
}

// Start registers the sweep with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("consistency sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// SweepStats captures the number of rows repaired by a single sweep.
type SweepStats struct {
	OrphanedReviews  int64
	OrphanedWishlist int64
	Unadvertised     int64
}

// RunOnce executes the full sweep sequentially. Primarily used in tests and
// during graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := Sweep(ctx, s.db)
	if err != nil {
		return err
	}

	if stats.OrphanedReviews > 0 || stats.OrphanedWishlist > 0 || stats.Unadvertised > 0 {
		s.log.Info("consistency sweep repaired rows",
			zap.Int64("orphaned_reviews", stats.OrphanedReviews),
			zap.Int64("orphaned_wishlist", stats.OrphanedWishlist),
			zap.Int64("unadvertised", stats.Unadvertised),
		)
	}
	return nil
}

// Sweep removes dangling references and repairs advertisement state.
func Sweep(ctx context.Context, db *gorm.DB) (SweepStats, error) {
	var stats SweepStats
	if db == nil {
		return stats, nil
	}

	var errs error

	res := db.WithContext(ctx).Exec(
		`DELETE FROM reviews WHERE property_id NOT IN (SELECT id FROM properties)`)
	if res.Error != nil {
		errs = multierr.Append(errs, res.Error)
	} else {
		stats.OrphanedReviews = res.RowsAffected
	}

	res = db.WithContext(ctx).Exec(
		`DELETE FROM wishlist_entries WHERE property_id NOT IN (SELECT id FROM properties)`)
	if res.Error != nil {
		errs = multierr.Append(errs, res.Error)
	} else {
		stats.OrphanedWishlist = res.RowsAffected
	}

	res = db.WithContext(ctx).Exec(
		`UPDATE properties SET is_advertised = ? WHERE is_advertised = ? AND agent_email NOT IN (SELECT email FROM users)`,
		false, true)
	if res.Error != nil {
		errs = multierr.Append(errs, res.Error)
	} else {
		stats.Unadvertised = res.RowsAffected
	}

	return stats, errs
}
