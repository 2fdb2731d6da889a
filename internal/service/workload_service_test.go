package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-adm/assignment-api/internal/models"
	"github.com/uni-adm/assignment-api/internal/repository"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
)

type openAssignmentReaderStub struct {
	rows  []repository.OpenAssignmentHours
	count int
}

func (s *openAssignmentReaderStub) ListOpenWithHours(ctx context.Context, personID string, now time.Time) ([]repository.OpenAssignmentHours, error) {
	return s.rows, nil
}

func (s *openAssignmentReaderStub) CountOpenByPerson(ctx context.Context, personID string, now time.Time) (int, error) {
	return s.count, nil
}

type cacheStub struct {
	values map[string][]byte
	sets   int
}

func newCacheStub() *cacheStub {
	return &cacheStub{values: map[string][]byte{}}
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if _, ok := s.values[key]; !ok {
		return appErrors.ErrCacheMiss
	}
	if summary, ok := dest.(*WorkloadSummary); ok {
		summary.PersonID = "cached"
	}
	return nil
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.values[key] = []byte("x")
	s.sets++
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range s.values {
		delete(s.values, key)
	}
	return nil
}

func TestWorkloadServiceAggregateCreditsPositionShare(t *testing.T) {
	reader := &openAssignmentReaderStub{rows: []repository.OpenAssignmentHours{
		{AssignmentID: "a1", PositionType: models.PositionLecture, TheoryHours: 4, PracticeHours: 2, TotalHours: 6},
		{AssignmentID: "a2", PositionType: models.PositionPractical, TheoryHours: 3, PracticeHours: 3, TotalHours: 6},
		{AssignmentID: "a3", PositionType: models.PositionCombined, TheoryHours: 2, PracticeHours: 2, TotalHours: 4},
	}}
	service := NewWorkloadService(reader, nil, 0, nil)

	total, err := service.Aggregate(context.Background(), "person-1")
	require.NoError(t, err)
	// 4 theory + 3 practice + 4 combined.
	assert.Equal(t, 11, total)
}

func TestWorkloadServiceAggregateEmpty(t *testing.T) {
	service := NewWorkloadService(&openAssignmentReaderStub{}, nil, 0, nil)

	total, err := service.Aggregate(context.Background(), "person-1")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWorkloadServiceAggregateCachedRoundTrip(t *testing.T) {
	reader := &openAssignmentReaderStub{
		rows:  []repository.OpenAssignmentHours{{AssignmentID: "a1", PositionType: models.PositionCombined, TotalHours: 6}},
		count: 1,
	}
	cache := newCacheStub()
	service := NewWorkloadService(reader, cache, time.Minute, nil)

	first, err := service.AggregateCached(context.Background(), "person-1")
	require.NoError(t, err)
	assert.Equal(t, 6, first.WeeklyHours)
	assert.Equal(t, 1, first.OpenAssignments)
	assert.Equal(t, 1, cache.sets)

	second, err := service.AggregateCached(context.Background(), "person-1")
	require.NoError(t, err)
	assert.Equal(t, "cached", second.PersonID)
	assert.Equal(t, 1, cache.sets)
}

func TestWorkloadServiceInvalidateDropsCachedSummary(t *testing.T) {
	reader := &openAssignmentReaderStub{}
	cache := newCacheStub()
	service := NewWorkloadService(reader, cache, time.Minute, nil)

	_, err := service.AggregateCached(context.Background(), "person-1")
	require.NoError(t, err)
	require.NotEmpty(t, cache.values)

	service.Invalidate(context.Background(), "person-1")
	assert.Empty(t, cache.values)
}
