package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uni-adm/assignment-api/internal/models"
	"github.com/uni-adm/assignment-api/internal/repository"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
)

const workloadCacheKeyPrefix = "workload:person:"

type openAssignmentReader interface {
	ListOpenWithHours(ctx context.Context, personID string, now time.Time) ([]repository.OpenAssignmentHours, error)
	CountOpenByPerson(ctx context.Context, personID string, now time.Time) (int, error)
}

type workloadCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// WorkloadSummary is the aggregate returned by the reporting path.
type WorkloadSummary struct {
	PersonID        string    `json:"person_id"`
	WeeklyHours     int       `json:"weekly_hours"`
	OpenAssignments int       `json:"open_assignments"`
	ComputedAt      time.Time `json:"computed_at"`
}

// WorkloadService folds a teacher's open assignments into weekly contact
// hours. Aggregation is deterministic and side effect free; the cached path
// exists only for reporting reads.
type WorkloadService struct {
	assignments openAssignmentReader
	cache       workloadCache
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewWorkloadService creates a service instance.
func NewWorkloadService(assignments openAssignmentReader, cache workloadCache, cacheTTL time.Duration, logger *zap.Logger) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &WorkloadService{
		assignments: assignments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// HoursFor returns the weekly hours a position type credits from the
// offering's split. LECTURE counts theory, PRACTICAL counts practice and
// COMBINED counts the full load.
func HoursFor(position models.PositionType, row repository.OpenAssignmentHours) int {
	switch position {
	case models.PositionLecture:
		return row.TheoryHours
	case models.PositionPractical:
		return row.PracticeHours
	case models.PositionCombined:
		return row.TotalHours
	}
	return 0
}

// Aggregate sums the weekly hours of the person's open assignments.
func (s *WorkloadService) Aggregate(ctx context.Context, personID string) (int, error) {
	rows, err := s.assignments.ListOpenWithHours(ctx, personID, s.now())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load open assignments")
	}
	total := 0
	for _, row := range rows {
		total += HoursFor(row.PositionType, row)
	}
	return total, nil
}

// AggregateCached returns the reporting summary, served from redis when
// fresh. A cache failure falls through to the database.
func (s *WorkloadService) AggregateCached(ctx context.Context, personID string) (*WorkloadSummary, error) {
	key := workloadCacheKeyPrefix + personID
	if s.cache != nil {
		var cached WorkloadSummary
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("workload cache read failed", zap.String("person_id", personID), zap.Error(err))
		}
	}

	now := s.now()
	hours, err := s.Aggregate(ctx, personID)
	if err != nil {
		return nil, err
	}
	open, err := s.assignments.CountOpenByPerson(ctx, personID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count open assignments")
	}

	summary := &WorkloadSummary{
		PersonID:        personID,
		WeeklyHours:     hours,
		OpenAssignments: open,
		ComputedAt:      now,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn("workload cache write failed", zap.String("person_id", personID), zap.Error(err))
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary after an assignment write.
func (s *WorkloadService) Invalidate(ctx context.Context, personID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("%s%s*", workloadCacheKeyPrefix, personID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("workload cache invalidation failed", zap.String("person_id", personID), zap.Error(err))
	}
}
