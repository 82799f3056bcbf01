package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskhive-io/taskhive/internal/models"
)

// AnalyticsScope bounds a metric computation to a workspace or to a single
// project inside it. ProjectID empty means the whole workspace.
type AnalyticsScope struct {
	WorkspaceID string
	ProjectID   string
}

// MetricSet is the flat month-over-month analytics payload. Each difference
// is this month's count minus last month's count for the same dimension.
type MetricSet struct {
	TaskCount                int64 `json:"taskCount"`
	TaskDifference           int64 `json:"taskDifference"`
	AssignedTaskCount        int64 `json:"assignedTaskCount"`
	AssignedTaskDifference   int64 `json:"assignedTaskDifference"`
	IncompleteTaskCount      int64 `json:"incompleteTaskCount"`
	IncompleteTaskDifference int64 `json:"incompleteTaskDifference"`
	CompletedTaskCount       int64 `json:"completedTaskCount"`
	CompletedTaskDifference  int64 `json:"completedTaskDifference"`
	OverdueTaskCount         int64 `json:"overdueTaskCount"`
	OverdueTaskDifference    int64 `json:"overdueTaskDifference"`
}

// AnalyticsOption customises AnalyticsService behaviour.
type AnalyticsOption func(*AnalyticsService)

// WithAnalyticsClock injects a custom clock primarily for testing.
func WithAnalyticsClock(clock func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// AnalyticsService computes comparative monthly task metrics for a workspace
// or project scope. One parameterized routine serves both scopes.
type AnalyticsService struct {
	db         *gorm.DB
	membership *MembershipService
	now        func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService instance.
func NewAnalyticsService(db *gorm.DB, membership *MembershipService, opts ...AnalyticsOption) (*AnalyticsService, error) {
	if db == nil {
		return nil, errors.New("analytics service: db is required")
	}
	if membership == nil {
		return nil, errors.New("analytics service: membership service is required")
	}

	service := &AnalyticsService{
		db:         db,
		membership: membership,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// monthWindow is an inclusive [start, end] range over task creation time.
type monthWindow struct {
	start time.Time
	end   time.Time
}

func monthOf(t time.Time) monthWindow {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return monthWindow{start: start, end: end}
}

// Compute resolves the actor's membership in the scope's workspace and then
// counts five task dimensions for the current and previous calendar month.
// Counts are issued per dimension and window; any query failure aborts the
// whole computation with no partial result.
func (s *AnalyticsService) Compute(ctx context.Context, scope AnalyticsScope, actorUserID string) (*MetricSet, error) {
	ctx = ensureContext(ctx)

	member, err := s.membership.RequireMember(ctx, scope.WorkspaceID, actorUserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	thisMonth := monthOf(now)
	lastMonth := monthOf(thisMonth.start.AddDate(0, -1, 0))

	count := func(window monthWindow, refine func(*gorm.DB) *gorm.DB) (int64, error) {
		query := s.db.WithContext(ctx).
			Model(&models.Task{}).
			Where("workspace_id = ?", strings.TrimSpace(scope.WorkspaceID)).
			Where("created_at >= ? AND created_at <= ?", window.start, window.end)
		if projectID := strings.TrimSpace(scope.ProjectID); projectID != "" {
			query = query.Where("project_id = ?", projectID)
		}
		if refine != nil {
			query = refine(query)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return 0, fmt.Errorf("analytics service: count tasks: %w", err)
		}
		return total, nil
	}

	all := func(q *gorm.DB) *gorm.DB { return q }
	assigned := func(q *gorm.DB) *gorm.DB {
		return q.Where("assignee_id = ?", member.ID)
	}
	incomplete := func(q *gorm.DB) *gorm.DB {
		return q.Where("status <> ?", models.StatusDone)
	}
	completed := func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.StatusDone)
	}
	overdue := func(q *gorm.DB) *gorm.DB {
		return q.Where("status <> ? AND due_date < ?", models.StatusDone, now)
	}

	metrics := &MetricSet{}
	dimensions := []struct {
		refine     func(*gorm.DB) *gorm.DB
		count      *int64
		difference *int64
	}{
		{all, &metrics.TaskCount, &metrics.TaskDifference},
		{assigned, &metrics.AssignedTaskCount, &metrics.AssignedTaskDifference},
		{incomplete, &metrics.IncompleteTaskCount, &metrics.IncompleteTaskDifference},
		{completed, &metrics.CompletedTaskCount, &metrics.CompletedTaskDifference},
		{overdue, &metrics.OverdueTaskCount, &metrics.OverdueTaskDifference},
	}

	for _, dim := range dimensions {
		current, err := count(thisMonth, dim.refine)
		if err != nil {
			return nil, err
		}
		previous, err := count(lastMonth, dim.refine)
		if err != nil {
			return nil, err
		}

		*dim.count = current
		*dim.difference = current - previous
	}

	return metrics, nil
}
