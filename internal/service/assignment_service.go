package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/uni-adm/assignment-api/internal/models"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
	"github.com/uni-adm/assignment-api/pkg/interval"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByPerson(ctx context.Context, personID string) ([]models.AssignmentDetail, error)
	ListBySection(ctx context.Context, personID, sectionID, excludeID string) ([]models.Assignment, error)
	ListByPosition(ctx context.Context, personID string, position models.PositionType, excludeID string) ([]models.Assignment, error)
	CountOpenByPerson(ctx context.Context, personID string, now time.Time) (int, error)
	CountOpenPrimaryBySubject(ctx context.Context, sectionID, excludeID string, now time.Time) (int, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Close(ctx context.Context, id string, endDate time.Time) error
}

type personReader interface {
	FindByID(ctx context.Context, id string) (*models.Person, error)
	ListActiveCoordinatorsByCareer(ctx context.Context, careerID string, now time.Time) ([]string, error)
}

type sectionChainResolver interface {
	ResolveChain(ctx context.Context, sectionID string) (*models.SectionChain, error)
	ListCareersBySubject(ctx context.Context, subjectID string) ([]string, error)
}

type regimeResolver interface {
	Resolve(ctx context.Context, modality, dedication string) (*models.WorkloadRegime, error)
}

type workloadAggregator interface {
	Aggregate(ctx context.Context, personID string) (int, error)
	Invalidate(ctx context.Context, personID string)
}

type notifier interface {
	Notify(ctx context.Context, req NotifyRequest) error
}

// CreateAssignmentRequest describes a new appointment.
type CreateAssignmentRequest struct {
	SectionID    string              `json:"section_id" validate:"required"`
	PositionType models.PositionType `json:"position_type" validate:"required"`
	StartDate    time.Time           `json:"start_date" validate:"required"`
	EndDate      *time.Time          `json:"end_date,omitempty"`
	Dedication   string              `json:"dedication" validate:"required"`
	Note         *string             `json:"note,omitempty"`
	DocumentID   *string             `json:"document_id,omitempty"`
}

// UpdateAssignmentRequest mutates an existing appointment's dates, position
// and contractual snapshot. Person and section are fixed at creation.
type UpdateAssignmentRequest struct {
	PositionType models.PositionType `json:"position_type" validate:"required"`
	StartDate    time.Time           `json:"start_date" validate:"required"`
	EndDate      *time.Time          `json:"end_date,omitempty"`
	Dedication   string              `json:"dedication" validate:"required"`
	Note         *string             `json:"note,omitempty"`
	DocumentID   *string             `json:"document_id,omitempty"`
}

// AssignmentResult pairs a persisted assignment with a workload advisory.
// The advisory never fails the write; it surfaces in the response meta.
type AssignmentResult struct {
	Assignment *models.Assignment `json:"assignment"`
	Advisory   string             `json:"advisory,omitempty"`
}

// AssignmentService validates and persists teaching assignments. Every
// rule either rejects the write outright or lets it through untouched;
// the workload ceiling alone is advisory.
type AssignmentService struct {
	assignments assignmentRepository
	people      personReader
	catalog     sectionChainResolver
	regimes     regimeResolver
	workload    workloadAggregator
	notify      notifier
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService creates a service instance.
func NewAssignmentService(
	assignments assignmentRepository,
	people personReader,
	catalog sectionChainResolver,
	regimes regimeResolver,
	workload workloadAggregator,
	notify notifier,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		people:      people,
		catalog:     catalog,
		regimes:     regimes,
		workload:    workload,
		notify:      notify,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// ListByPerson returns the person's assignments with section context.
func (s *AssignmentService) ListByPerson(ctx context.Context, personID string) ([]models.AssignmentDetail, error) {
	if _, err := s.loadTeacher(ctx, personID); err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByPerson(ctx, personID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Create runs the full validation pipeline and persists a new assignment.
func (s *AssignmentService) Create(ctx context.Context, personID, createdBy string, req CreateAssignmentRequest) (*AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment := &models.Assignment{
		PersonID:     personID,
		SectionID:    req.SectionID,
		PositionType: req.PositionType,
		StartDate:    interval.NormalizeDate(req.StartDate),
		EndDate:      normalizeEnd(req.EndDate),
		Dedication:   req.Dedication,
		Note:         req.Note,
		DocumentID:   req.DocumentID,
		CreatedBy:    createdBy,
	}
	if err := s.validate(ctx, assignment, ""); err != nil {
		return nil, err
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, mapPersistError(err)
	}
	s.workload.Invalidate(ctx, personID)
	return s.withAdvisory(ctx, assignment)
}

// Update revalidates and rewrites an existing assignment. The instance
// being updated never conflicts with itself.
func (s *AssignmentService) Update(ctx context.Context, personID, assignmentID string, req UpdateAssignmentRequest) (*AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.ownedAssignment(ctx, personID, assignmentID)
	if err != nil {
		return nil, err
	}
	assignment.PositionType = req.PositionType
	assignment.StartDate = interval.NormalizeDate(req.StartDate)
	assignment.EndDate = normalizeEnd(req.EndDate)
	assignment.Dedication = req.Dedication
	assignment.Note = req.Note
	assignment.DocumentID = req.DocumentID

	if err := s.validate(ctx, assignment, assignment.ID); err != nil {
		return nil, err
	}
	if err := s.assignments.Update(ctx, assignment); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, mapPersistError(err)
	}
	s.workload.Invalidate(ctx, personID)
	return s.withAdvisory(ctx, assignment)
}

// Close ends an assignment as of today. No close may leave the subject
// without an open assignment holding a primary position type; the guard runs
// regardless of the position being closed.
func (s *AssignmentService) Close(ctx context.Context, personID, assignmentID string) (*models.Assignment, error) {
	assignment, err := s.ownedAssignment(ctx, personID, assignmentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !assignment.IsOpen(now) {
		return nil, appErrors.ErrAssignmentFinished
	}
	remaining, err := s.assignments.CountOpenPrimaryBySubject(ctx, assignment.SectionID, assignment.ID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject coverage")
	}
	if remaining == 0 {
		return nil, appErrors.ErrSubjectUncovered
	}

	endDate := interval.NormalizeDate(now)
	if err := s.assignments.Close(ctx, assignment.ID, endDate); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrAssignmentFinished
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close assignment")
	}
	assignment.EndDate = &endDate
	assignment.Active = false
	s.workload.Invalidate(ctx, personID)
	return assignment, nil
}

// validate runs the rejection rules shared by create and update. excludeID
// removes the instance being updated from overlap candidates.
func (s *AssignmentService) validate(ctx context.Context, assignment *models.Assignment, excludeID string) error {
	if assignment.EndDate != nil && assignment.EndDate.Before(assignment.StartDate) {
		return appErrors.ErrInvalidDateRange
	}
	if !assignment.PositionType.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown position type")
	}

	person, err := s.loadTeacher(ctx, assignment.PersonID)
	if err != nil {
		return err
	}
	if person.TeacherProfile.Modality == "" {
		return appErrors.ErrMissingModality
	}
	assignment.Modality = person.TeacherProfile.Modality

	regime, err := s.regimes.Resolve(ctx, assignment.Modality, assignment.Dedication)
	if err != nil {
		return err
	}
	assignment.RegimeID = regime.ID

	if _, err := s.catalog.ResolveChain(ctx, assignment.SectionID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve section")
	}

	candidate := interval.New(assignment.StartDate, assignment.EndDate)

	sectionPeers, err := s.assignments.ListBySection(ctx, assignment.PersonID, assignment.SectionID, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section assignments")
	}
	for _, peer := range sectionPeers {
		if candidate.Overlaps(interval.New(peer.StartDate, peer.EndDate)) {
			return appErrors.ErrOverlapInSection
		}
	}

	positionPeers, err := s.assignments.ListByPosition(ctx, assignment.PersonID, assignment.PositionType, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load position assignments")
	}
	for _, peer := range positionPeers {
		if candidate.Overlaps(interval.New(peer.StartDate, peer.EndDate)) {
			return appErrors.ErrOverlapInPosition
		}
	}
	return nil
}

// withAdvisory computes the post-write workload and, when a ceiling is
// exceeded, attaches an advisory and notifies the careers' coordinators.
// Advisory computation never fails the write.
func (s *AssignmentService) withAdvisory(ctx context.Context, assignment *models.Assignment) (*AssignmentResult, error) {
	result := &AssignmentResult{Assignment: assignment}

	regime, err := s.regimes.Resolve(ctx, assignment.Modality, assignment.Dedication)
	if err != nil {
		s.logger.Warn("advisory regime lookup failed", zap.String("assignment_id", assignment.ID), zap.Error(err))
		return result, nil
	}
	hours, err := s.workload.Aggregate(ctx, assignment.PersonID)
	if err != nil {
		s.logger.Warn("advisory workload aggregation failed", zap.String("assignment_id", assignment.ID), zap.Error(err))
		return result, nil
	}

	var sentences []string
	if hours > regime.MaxWeeklyHours {
		sentences = append(sentences, fmt.Sprintf(
			"the teacher now holds %d weekly hours, above the regime maximum of %d", hours, regime.MaxWeeklyHours))
	}
	open, err := s.assignments.CountOpenByPerson(ctx, assignment.PersonID, s.now())
	if err != nil {
		s.logger.Warn("advisory open count failed", zap.String("assignment_id", assignment.ID), zap.Error(err))
	} else if open >= regime.MaxConcurrent {
		sentences = append(sentences, fmt.Sprintf(
			"the teacher now holds %d open assignments, at or above the regime cap of %d", open, regime.MaxConcurrent))
	}
	if len(sentences) == 0 {
		return result, nil
	}
	result.Advisory = strings.Join(sentences, "; ")

	if hours > regime.MaxWeeklyHours {
		s.notifyCoordinators(ctx, assignment, hours, regime.MaxWeeklyHours)
	}
	return result, nil
}

// notifyCoordinators fans the workload alert out to the active coordinators
// of every career whose current plan includes the assignment's subject.
// Failures are logged and never surfaced.
func (s *AssignmentService) notifyCoordinators(ctx context.Context, assignment *models.Assignment, hours, max int) {
	chain, err := s.catalog.ResolveChain(ctx, assignment.SectionID)
	if err != nil {
		s.logger.Error("coordinator fan-out chain resolution failed", zap.String("section_id", assignment.SectionID), zap.Error(err))
		return
	}
	careers, err := s.catalog.ListCareersBySubject(ctx, chain.SubjectID)
	if err != nil {
		s.logger.Error("coordinator fan-out career lookup failed", zap.String("subject_id", chain.SubjectID), zap.Error(err))
		return
	}

	now := s.now()
	recipients := make(map[string]struct{})
	for _, careerID := range careers {
		ids, err := s.people.ListActiveCoordinatorsByCareer(ctx, careerID, now)
		if err != nil {
			s.logger.Warn("coordinator lookup failed", zap.String("career_id", careerID), zap.Error(err))
			continue
		}
		for _, id := range ids {
			recipients[id] = struct{}{}
		}
	}
	if len(recipients) == 0 {
		return
	}

	ids := make([]string, 0, len(recipients))
	for id := range recipients {
		ids = append(ids, id)
	}
	req := NotifyRequest{
		Title:      "Teaching load above regime maximum",
		Body:       fmt.Sprintf("A teacher you coordinate now holds %d weekly hours against a maximum of %d.", hours, max),
		Category:   models.NotificationAlert,
		Recipients: ids,
	}
	if err := s.notify.Notify(ctx, req); err != nil {
		s.logger.Error("coordinator notification failed", zap.String("assignment_id", assignment.ID), zap.Error(err))
	}
}

func (s *AssignmentService) loadTeacher(ctx context.Context, personID string) (*models.Person, error) {
	person, err := s.people.FindByID(ctx, personID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person")
	}
	if !person.IsTeacher() {
		return nil, appErrors.ErrMissingModality
	}
	return person, nil
}

func (s *AssignmentService) ownedAssignment(ctx context.Context, personID, assignmentID string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.PersonID != personID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return assignment, nil
}

func normalizeEnd(end *time.Time) *time.Time {
	if end == nil {
		return nil
	}
	normalized := interval.NormalizeDate(*end)
	return &normalized
}

// mapPersistError converts unique-constraint violations raced past the
// in-process checks into a conflict.
func mapPersistError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return appErrors.Clone(appErrors.ErrConflict, "an identical open assignment already exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignment")
}
