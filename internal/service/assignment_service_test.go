package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-adm/assignment-api/internal/models"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
)

type assignmentRepoStub struct {
	byID           map[string]*models.Assignment
	details        []models.AssignmentDetail
	sectionPeers   []models.Assignment
	positionPeers  []models.Assignment
	openCount      int
	primaryCount   int
	created        []*models.Assignment
	updated        []*models.Assignment
	closed         []string
	createErr      error
	primaryCounted bool
}

func (s *assignmentRepoStub) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := s.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentRepoStub) ListByPerson(ctx context.Context, personID string) ([]models.AssignmentDetail, error) {
	return s.details, nil
}

func (s *assignmentRepoStub) ListBySection(ctx context.Context, personID, sectionID, excludeID string) ([]models.Assignment, error) {
	return s.sectionPeers, nil
}

func (s *assignmentRepoStub) ListByPosition(ctx context.Context, personID string, position models.PositionType, excludeID string) ([]models.Assignment, error) {
	return s.positionPeers, nil
}

func (s *assignmentRepoStub) CountOpenByPerson(ctx context.Context, personID string, now time.Time) (int, error) {
	return s.openCount, nil
}

func (s *assignmentRepoStub) CountOpenPrimaryBySubject(ctx context.Context, sectionID, excludeID string, now time.Time) (int, error) {
	s.primaryCounted = true
	return s.primaryCount, nil
}

func (s *assignmentRepoStub) Create(ctx context.Context, assignment *models.Assignment) error {
	if s.createErr != nil {
		return s.createErr
	}
	assignment.ID = "assign-new"
	assignment.Active = true
	s.created = append(s.created, assignment)
	return nil
}

func (s *assignmentRepoStub) Update(ctx context.Context, assignment *models.Assignment) error {
	s.updated = append(s.updated, assignment)
	return nil
}

func (s *assignmentRepoStub) Close(ctx context.Context, id string, endDate time.Time) error {
	s.closed = append(s.closed, id)
	return nil
}

type personStub struct {
	people       map[string]*models.Person
	coordinators map[string][]string
}

func (s *personStub) FindByID(ctx context.Context, id string) (*models.Person, error) {
	if p, ok := s.people[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (s *personStub) ListActiveCoordinatorsByCareer(ctx context.Context, careerID string, now time.Time) ([]string, error) {
	return s.coordinators[careerID], nil
}

type catalogStub struct {
	chains           map[string]*models.SectionChain
	careersBySubject map[string][]string
}

func (s *catalogStub) ResolveChain(ctx context.Context, sectionID string) (*models.SectionChain, error) {
	if c, ok := s.chains[sectionID]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (s *catalogStub) ListCareersBySubject(ctx context.Context, subjectID string) ([]string, error) {
	return s.careersBySubject[subjectID], nil
}

type regimeResolverStub struct {
	regime *models.WorkloadRegime
	err    error
}

func (s *regimeResolverStub) Resolve(ctx context.Context, modality, dedication string) (*models.WorkloadRegime, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.regime, nil
}

type workloadStub struct {
	hours       int
	invalidated []string
}

func (s *workloadStub) Aggregate(ctx context.Context, personID string) (int, error) {
	return s.hours, nil
}

func (s *workloadStub) Invalidate(ctx context.Context, personID string) {
	s.invalidated = append(s.invalidated, personID)
}

type notifierStub struct {
	requests []NotifyRequest
}

func (s *notifierStub) Notify(ctx context.Context, req NotifyRequest) error {
	s.requests = append(s.requests, req)
	return nil
}

type assignmentFixture struct {
	service     *AssignmentService
	assignments *assignmentRepoStub
	people      *personStub
	catalog     *catalogStub
	regimes     *regimeResolverStub
	workload    *workloadStub
	notify      *notifierStub
}

func newAssignmentFixture() *assignmentFixture {
	assignments := &assignmentRepoStub{byID: map[string]*models.Assignment{}}
	people := &personStub{
		people: map[string]*models.Person{
			"person-1": {
				ID:             "person-1",
				Active:         true,
				TeacherProfile: &models.TeacherProfile{PersonID: "person-1", Modality: "VIRTUAL", Active: true},
			},
		},
		coordinators: map[string][]string{},
	}
	catalog := &catalogStub{
		chains: map[string]*models.SectionChain{
			"section-1": {SectionID: "section-1", SubjectID: "subject-1", CareerID: "career-1", TotalHours: 6, TheoryHours: 4, PracticeHours: 2},
		},
		careersBySubject: map[string][]string{"subject-1": {"career-1"}},
	}
	regimes := &regimeResolverStub{regime: &models.WorkloadRegime{
		ID: "regime-1", Modality: "VIRTUAL", Dedication: "SIMPLE",
		MaxWeeklyHours: 12, MaxConcurrent: 2, Active: true,
	}}
	workload := &workloadStub{hours: 6}
	notify := &notifierStub{}
	service := NewAssignmentService(assignments, people, catalog, regimes, workload, notify, nil, nil)
	return &assignmentFixture{
		service:     service,
		assignments: assignments,
		people:      people,
		catalog:     catalog,
		regimes:     regimes,
		workload:    workload,
		notify:      notify,
	}
}

func day(offset int) time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func dayPtr(offset int) *time.Time {
	d := day(offset)
	return &d
}

func baseCreateRequest() CreateAssignmentRequest {
	return CreateAssignmentRequest{
		SectionID:    "section-1",
		PositionType: models.PositionLecture,
		StartDate:    day(0),
		EndDate:      dayPtr(120),
		Dedication:   "SIMPLE",
	}
}

func TestAssignmentServiceCreateRejectsInvertedDates(t *testing.T) {
	f := newAssignmentFixture()
	req := baseCreateRequest()
	req.StartDate = day(10)
	req.EndDate = dayPtr(0)

	_, err := f.service.Create(context.Background(), "person-1", "admin-1", req)
	assert.ErrorIs(t, err, appErrors.ErrInvalidDateRange)
	assert.Empty(t, f.assignments.created)
}

func TestAssignmentServiceCreateRequiresTeacherModality(t *testing.T) {
	f := newAssignmentFixture()
	f.people.people["person-2"] = &models.Person{ID: "person-2", Active: true}

	_, err := f.service.Create(context.Background(), "person-2", "admin-1", baseCreateRequest())
	assert.ErrorIs(t, err, appErrors.ErrMissingModality)
}

func TestAssignmentServiceCreateRegimeNotFound(t *testing.T) {
	f := newAssignmentFixture()
	f.regimes.err = appErrors.ErrRegimeNotFound

	_, err := f.service.Create(context.Background(), "person-1", "admin-1", baseCreateRequest())
	assert.ErrorIs(t, err, appErrors.ErrRegimeNotFound)
	assert.Empty(t, f.assignments.created)
}

func TestAssignmentServiceCreateOverlapInSection(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.sectionPeers = []models.Assignment{
		{ID: "assign-old", SectionID: "section-1", PositionType: models.PositionPractical,
			StartDate: day(30), EndDate: nil, Active: true},
	}

	_, err := f.service.Create(context.Background(), "person-1", "admin-1", baseCreateRequest())
	assert.ErrorIs(t, err, appErrors.ErrOverlapInSection)
}

func TestAssignmentServiceCreateOverlapWithClosedAssignment(t *testing.T) {
	f := newAssignmentFixture()
	// A finished assignment still occupies its historical interval.
	closedEnd := dayPtr(10)
	f.assignments.sectionPeers = []models.Assignment{
		{ID: "assign-old", SectionID: "section-1", PositionType: models.PositionLecture,
			StartDate: day(-20), EndDate: closedEnd, Active: false},
	}

	_, err := f.service.Create(context.Background(), "person-1", "admin-1", baseCreateRequest())
	assert.ErrorIs(t, err, appErrors.ErrOverlapInSection)
	assert.Empty(t, f.assignments.created)
}

func TestAssignmentServiceCreateTouchingBoundaryOverlaps(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.positionPeers = []models.Assignment{
		{ID: "assign-old", SectionID: "section-2", PositionType: models.PositionLecture,
			StartDate: day(-60), EndDate: dayPtr(0), Active: true},
	}

	// Existing ends on the exact day the candidate starts.
	_, err := f.service.Create(context.Background(), "person-1", "admin-1", baseCreateRequest())
	assert.ErrorIs(t, err, appErrors.ErrOverlapInPosition)
}

func TestAssignmentServiceCreateAdjacentIntervalsAllowed(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.positionPeers = []models.Assignment{
		{ID: "assign-old", SectionID: "section-2", PositionType: models.PositionLecture,
			StartDate: day(-60), EndDate: dayPtr(-1), Active: true},
	}

	result, err := f.service.Create(context.Background(), "person-1", "admin-1", baseCreateRequest())
	require.NoError(t, err)
	assert.Empty(t, result.Advisory)
	require.Len(t, f.assignments.created, 1)
	assert.Equal(t, "regime-1", f.assignments.created[0].RegimeID)
	assert.Equal(t, "VIRTUAL", f.assignments.created[0].Modality)
	assert.Contains(t, f.workload.invalidated, "person-1")
}

func TestAssignmentServiceCreateAdvisoryNotifiesCoordinators(t *testing.T) {
	f := newAssignmentFixture()
	f.workload.hours = 14
	f.people.coordinators["career-1"] = []string{"coord-1", "coord-2"}

	result, err := f.service.Create(context.Background(), "person-1", "admin-1", baseCreateRequest())
	require.NoError(t, err)
	assert.Contains(t, result.Advisory, "14 weekly hours")
	require.Len(t, f.notify.requests, 1)
	assert.ElementsMatch(t, []string{"coord-1", "coord-2"}, f.notify.requests[0].Recipients)
	assert.Equal(t, models.NotificationAlert, f.notify.requests[0].Category)
}

func TestAssignmentServiceCreateAdvisoryReachesAllCareersSharingSubject(t *testing.T) {
	f := newAssignmentFixture()
	f.workload.hours = 14
	// The subject sits on the current plans of two careers; both sets of
	// coordinators hear about the overload, not just the section's career.
	f.catalog.careersBySubject["subject-1"] = []string{"career-1", "career-2"}
	f.people.coordinators["career-1"] = []string{"coord-1"}
	f.people.coordinators["career-2"] = []string{"coord-2"}

	_, err := f.service.Create(context.Background(), "person-1", "admin-1", baseCreateRequest())
	require.NoError(t, err)
	require.Len(t, f.notify.requests, 1)
	assert.ElementsMatch(t, []string{"coord-1", "coord-2"}, f.notify.requests[0].Recipients)
}

func TestAssignmentServiceCreateConcurrentCapAdvisory(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.openCount = 2

	result, err := f.service.Create(context.Background(), "person-1", "admin-1", baseCreateRequest())
	require.NoError(t, err)
	assert.Contains(t, result.Advisory, "2 open assignments")
	// Hours stayed under the ceiling so no coordinator fan-out happens.
	assert.Empty(t, f.notify.requests)
}

func TestAssignmentServiceUpdateExcludesSelfFromOverlap(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.byID["assign-1"] = &models.Assignment{
		ID: "assign-1", PersonID: "person-1", SectionID: "section-1",
		PositionType: models.PositionLecture, StartDate: day(0), Active: true,
	}

	result, err := f.service.Update(context.Background(), "person-1", "assign-1", UpdateAssignmentRequest{
		PositionType: models.PositionLecture,
		StartDate:    day(0),
		EndDate:      dayPtr(90),
		Dedication:   "SIMPLE",
	})
	require.NoError(t, err)
	require.Len(t, f.assignments.updated, 1)
	assert.Equal(t, dayPtr(90), result.Assignment.EndDate)
}

func TestAssignmentServiceCloseGuardsLastPrimary(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.byID["assign-1"] = &models.Assignment{
		ID: "assign-1", PersonID: "person-1", SectionID: "section-1",
		PositionType: models.PositionLecture, StartDate: day(-30), Active: true,
	}
	f.assignments.primaryCount = 0

	_, err := f.service.Close(context.Background(), "person-1", "assign-1")
	assert.ErrorIs(t, err, appErrors.ErrSubjectUncovered)
	assert.Empty(t, f.assignments.closed)
}

func TestAssignmentServiceCloseAllowedWithRemainingPrimary(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.byID["assign-1"] = &models.Assignment{
		ID: "assign-1", PersonID: "person-1", SectionID: "section-1",
		PositionType: models.PositionLecture, StartDate: day(-30), Active: true,
	}
	f.assignments.primaryCount = 1

	closed, err := f.service.Close(context.Background(), "person-1", "assign-1")
	require.NoError(t, err)
	assert.False(t, closed.Active)
	assert.NotNil(t, closed.EndDate)
	assert.Contains(t, f.workload.invalidated, "person-1")
}

func TestAssignmentServiceClosePracticalGuardsCoverageToo(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.byID["assign-1"] = &models.Assignment{
		ID: "assign-1", PersonID: "person-1", SectionID: "section-1",
		PositionType: models.PositionPractical, StartDate: day(-30), Active: true,
	}
	f.assignments.primaryCount = 0

	// The coverage check runs on every close, whatever the position held.
	_, err := f.service.Close(context.Background(), "person-1", "assign-1")
	assert.ErrorIs(t, err, appErrors.ErrSubjectUncovered)
	assert.True(t, f.assignments.primaryCounted)
	assert.Empty(t, f.assignments.closed)
}

func TestAssignmentServiceClosePracticalAllowedWithPrimaryCoverage(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.byID["assign-1"] = &models.Assignment{
		ID: "assign-1", PersonID: "person-1", SectionID: "section-1",
		PositionType: models.PositionPractical, StartDate: day(-30), Active: true,
	}
	f.assignments.primaryCount = 1

	closed, err := f.service.Close(context.Background(), "person-1", "assign-1")
	require.NoError(t, err)
	assert.False(t, closed.Active)
}

func TestAssignmentServiceCloseAlreadyFinished(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.byID["assign-1"] = &models.Assignment{
		ID: "assign-1", PersonID: "person-1", SectionID: "section-1",
		PositionType: models.PositionLecture, StartDate: day(-60), EndDate: dayPtr(-360), Active: true,
	}

	_, err := f.service.Close(context.Background(), "person-1", "assign-1")
	assert.ErrorIs(t, err, appErrors.ErrAssignmentFinished)
}

func TestAssignmentServiceCloseNotOwned(t *testing.T) {
	f := newAssignmentFixture()
	f.assignments.byID["assign-1"] = &models.Assignment{
		ID: "assign-1", PersonID: "someone-else", SectionID: "section-1",
		PositionType: models.PositionLecture, StartDate: day(-30), Active: true,
	}

	_, err := f.service.Close(context.Background(), "person-1", "assign-1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
