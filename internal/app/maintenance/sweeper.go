package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskhive-io/taskhive/internal/models"
	"github.com/taskhive-io/taskhive/internal/services"
	"github.com/taskhive-io/taskhive/pkg/logger"
	"github.com/taskhive-io/taskhive/pkg/metrics"
)

const (
	defaultAuditRetentionDays = 90
	defaultSweepSpec          = "@hourly"
	defaultAuditSpec          = "@daily"
)

// Sweeper coordinates background maintenance: flagging records whose
// workspace has been deleted and pruning stale audit logs. Workspace
// deletion does not cascade, so orphans are expected; the sweeper reports
// them rather than repairing them.
type Sweeper struct {
	db        *gorm.DB
	audit     *services.AuditService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int

	sweepSchedule string
	auditSchedule string
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

// WithNow overrides the clock used for scheduling comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.retention = days
		}
	}
}

// WithSweepSchedule overrides the cron specification for the orphan sweep.
func WithSweepSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.sweepSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.auditSchedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults. A nil audit
// service disables the retention job.
func NewSweeper(db *gorm.DB, audit *services.AuditService, opts ...Option) *Sweeper {
	sweeper := &Sweeper{
		db:            db,
		audit:         audit,
		now:           time.Now,
		retention:     defaultAuditRetentionDays,
		sweepSchedule: defaultSweepSpec,
		auditSchedule: defaultAuditSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper
}

// Start registers the jobs with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if s.db != nil {
		if _, err := s.cron.AddFunc(s.sweepSchedule, func() {
			if _, err := s.SweepOrphans(context.Background()); err != nil {
				s.log.Warn("orphan sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if s.audit != nil && s.retention > 0 {
		if _, err := s.cron.AddFunc(s.auditSchedule, func() {
			if _, err := s.audit.CleanupOlderThan(context.Background(), s.retention); err != nil {
				s.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
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

// RunOnce executes all maintenance routines sequentially. Primarily used in
// tests and during graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if s.db != nil {
		if _, err := s.SweepOrphans(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if s.audit != nil && s.retention > 0 {
		if _, err := s.audit.CleanupOlderThan(ctx, s.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// OrphanStats counts records whose workspace no longer exists.
type OrphanStats struct {
	Projects int64
	Tasks    int64
	Members  int64
}

// SweepOrphans counts projects, tasks and members pointing at missing
// workspaces, logs the totals and publishes them as gauges.
func (s *Sweeper) SweepOrphans(ctx context.Context) (OrphanStats, error) {
	if s.db == nil {
		return OrphanStats{}, errors.New("sweeper: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := OrphanStats{}
	collections := []struct {
		name  string
		model any
		count *int64
	}{
		{"projects", &models.Project{}, &stats.Projects},
		{"tasks", &models.Task{}, &stats.Tasks},
		{"members", &models.Member{}, &stats.Members},
	}

	for _, collection := range collections {
		err := s.db.WithContext(ctx).
			Model(collection.model).
			Where("workspace_id NOT IN (?)", s.db.Model(&models.Workspace{}).Select("id")).
			Count(collection.count).Error
		if err != nil {
			return stats, fmt.Errorf("sweeper: count orphaned %s: %w", collection.name, err)
		}
		metrics.OrphanedRecords.WithLabelValues(collection.name).Set(float64(*collection.count))
	}

	if stats.Projects > 0 || stats.Tasks > 0 || stats.Members > 0 {
		s.log.Warn("orphaned records detected",
			zap.Int64("projects", stats.Projects),
			zap.Int64("tasks", stats.Tasks),
			zap.Int64("members", stats.Members),
		)
	}

	return stats, nil
}
