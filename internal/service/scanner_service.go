package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uni-adm/assignment-api/internal/models"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
)

type expiringAssignmentReader interface {
	ListExpiringWithin(ctx context.Context, now time.Time, window time.Duration) ([]models.ExpiringAssignment, error)
}

type uncoveredSubjectReader interface {
	ListUncoveredSubjects(ctx context.Context, now time.Time) ([]models.UncoveredSubject, error)
}

type coordinatorReader interface {
	ListActiveCoordinatorsByCareer(ctx context.Context, careerID string, now time.Time) ([]string, error)
}

type scanMetrics interface {
	RecordJobRun(job string)
	RecordJobFailure(job string)
	RecordNotificationsSent(job string, count int)
}

// Job names used for scheduling and metrics labels.
const (
	JobNearExpiry        = "scan:near_expiry"
	JobUncoveredSubjects = "scan:uncovered_subjects"
)

// ScannerService runs the periodic coverage scans. Each scan aggregates its
// findings per career and notifies that career's active coordinators. One
// failing career never aborts the rest of the scan.
type ScannerService struct {
	assignments expiringAssignmentReader
	catalog     uncoveredSubjectReader
	people      coordinatorReader
	notify      notifier
	metrics     scanMetrics
	window      time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewScannerService creates a service instance.
func NewScannerService(
	assignments expiringAssignmentReader,
	catalog uncoveredSubjectReader,
	people coordinatorReader,
	notify notifier,
	metrics scanMetrics,
	window time.Duration,
	logger *zap.Logger,
) *ScannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &ScannerService{
		assignments: assignments,
		catalog:     catalog,
		people:      people,
		notify:      notify,
		metrics:     metrics,
		window:      window,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type careerGroup struct {
	careerName string
	count      int
}

// NotifyExpiringAssignments warns coordinators about open assignments whose
// end date falls inside the configured window.
func (s *ScannerService) NotifyExpiringAssignments(ctx context.Context) error {
	s.recordRun(JobNearExpiry)
	now := s.now()
	expiring, err := s.assignments.ListExpiringWithin(ctx, now, s.window)
	if err != nil {
		s.recordFailure(JobNearExpiry)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expiring assignments")
	}
	if len(expiring) == 0 {
		return nil
	}

	groups := make(map[string]*careerGroup)
	for _, item := range expiring {
		group, ok := groups[item.CareerID]
		if !ok {
			group = &careerGroup{careerName: item.CareerName}
			groups[item.CareerID] = group
		}
		group.count++
	}

	days := int(s.window / (24 * time.Hour))
	for careerID, group := range groups {
		body := fmt.Sprintf("%d assignment(s) in %s reach their end date within the next %d days.",
			group.count, group.careerName, days)
		s.notifyCareer(ctx, JobNearExpiry, careerID, now, NotifyRequest{
			Title:    "Assignments expiring soon",
			Body:     body,
			Category: models.NotificationWarning,
		})
	}
	return nil
}

// NotifyUncoveredSubjects alerts coordinators about subjects on current
// plans with no open primary assignment.
func (s *ScannerService) NotifyUncoveredSubjects(ctx context.Context) error {
	s.recordRun(JobUncoveredSubjects)
	now := s.now()
	uncovered, err := s.catalog.ListUncoveredSubjects(ctx, now)
	if err != nil {
		s.recordFailure(JobUncoveredSubjects)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list uncovered subjects")
	}
	if len(uncovered) == 0 {
		return nil
	}

	groups := make(map[string]*careerGroup)
	for _, subject := range uncovered {
		group, ok := groups[subject.CareerID]
		if !ok {
			group = &careerGroup{careerName: subject.CareerName}
			groups[subject.CareerID] = group
		}
		group.count++
	}

	for careerID, group := range groups {
		body := fmt.Sprintf("%d subject(s) in %s currently have no assigned instructor.",
			group.count, group.careerName)
		s.notifyCareer(ctx, JobUncoveredSubjects, careerID, now, NotifyRequest{
			Title:    "Subjects without an instructor",
			Body:     body,
			Category: models.NotificationAlert,
		})
	}
	return nil
}

// notifyCareer resolves the career's coordinators and delivers one
// aggregate notification. Failures are logged per career and skipped.
func (s *ScannerService) notifyCareer(ctx context.Context, job, careerID string, now time.Time, req NotifyRequest) {
	coordinators, err := s.people.ListActiveCoordinatorsByCareer(ctx, careerID, now)
	if err != nil {
		s.recordFailure(job)
		s.logger.Error("scan coordinator lookup failed", zap.String("job", job), zap.String("career_id", careerID), zap.Error(err))
		return
	}
	if len(coordinators) == 0 {
		s.logger.Debug("scan found career without active coordinator", zap.String("job", job), zap.String("career_id", careerID))
		return
	}
	req.Recipients = coordinators
	if err := s.notify.Notify(ctx, req); err != nil {
		s.recordFailure(job)
		s.logger.Error("scan notification failed", zap.String("job", job), zap.String("career_id", careerID), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordNotificationsSent(job, len(coordinators))
	}
}

func (s *ScannerService) recordRun(job string) {
	if s.metrics != nil {
		s.metrics.RecordJobRun(job)
	}
}

func (s *ScannerService) recordFailure(job string) {
	if s.metrics != nil {
		s.metrics.RecordJobFailure(job)
	}
}
