package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type professorRepoMock struct {
	professors map[string]*models.Professor
	byCode     map[string]*models.Professor
	assigned   map[string]*string
	linked     map[string]string
}

func (m *professorRepoMock) List(ctx context.Context) ([]models.Professor, error) {
	var out []models.Professor
	for _, p := range m.professors {
		out = append(out, *p)
	}
	return out, nil
}

func (m *professorRepoMock) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	if p, ok := m.professors[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *professorRepoMock) FindByCode(ctx context.Context, code string) (*models.Professor, error) {
	if p, ok := m.byCode[code]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *professorRepoMock) FindByTelegramID(ctx context.Context, telegramID string) (*models.Professor, error) {
	for _, p := range m.professors {
		if p.TelegramID != nil && *p.TelegramID == telegramID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *professorRepoMock) Create(ctx context.Context, professor *models.Professor) error {
	if professor.ID == "" {
		professor.ID = "prof-1"
	}
	if m.professors == nil {
		m.professors = make(map[string]*models.Professor)
	}
	m.professors[professor.ID] = professor
	return nil
}

func (m *professorRepoMock) AssignCourse(ctx context.Context, id string, courseID *string) error {
	if m.assigned == nil {
		m.assigned = make(map[string]*string)
	}
	m.assigned[id] = courseID
	return nil
}

func (m *professorRepoMock) LinkTelegram(ctx context.Context, id, telegramID string) error {
	if m.linked == nil {
		m.linked = make(map[string]string)
	}
	m.linked[id] = telegramID
	return nil
}

func (m *professorRepoMock) SetActive(ctx context.Context, id string, active bool) error {
	return nil
}

type profCourseLookupMock struct {
	courses map[string]models.Course
}

func (m *profCourseLookupMock) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type uploadCounterMock struct {
	count int
}

func (m *uploadCounterMock) CountByUploader(ctx context.Context, uploaderID string) (int, error) {
	return m.count, nil
}

func newProfessorService(repo *professorRepoMock) *ProfessorService {
	courses := &profCourseLookupMock{courses: map[string]models.Course{
		"course-1": {ID: "course-1", Name: "Introduction to Programming"},
	}}
	return NewProfessorService(repo, courses, &uploadCounterMock{}, nil, zap.NewNop())
}

func TestProfessorServiceCreateGeneratesCode(t *testing.T) {
	repo := &professorRepoMock{}
	svc := newProfessorService(repo)

	professor, err := svc.Create(context.Background(), CreateProfessorRequest{FullName: "Dr. Ada", CourseID: "course-1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(professor.Code, "PROF-"))
	assert.True(t, professor.Active)
	require.NotNil(t, professor.CourseID)
	assert.Equal(t, "course-1", *professor.CourseID)
}

func TestProfessorServiceCreateDuplicateCode(t *testing.T) {
	repo := &professorRepoMock{byCode: map[string]*models.Professor{
		"PROF-TAKEN": {ID: "prof-9", Code: "PROF-TAKEN"},
	}}
	svc := newProfessorService(repo)

	_, err := svc.Create(context.Background(), CreateProfessorRequest{FullName: "Dr. Ada", CourseID: "course-1", Code: "PROF-TAKEN"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestProfessorServiceCreateUnknownCourse(t *testing.T) {
	svc := newProfessorService(&professorRepoMock{})

	_, err := svc.Create(context.Background(), CreateProfessorRequest{FullName: "Dr. Ada", CourseID: "course-9"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestProfessorServiceAuthenticate(t *testing.T) {
	repo := &professorRepoMock{byCode: map[string]*models.Professor{
		"PROF-ABC123": {ID: "prof-1", Code: "PROF-ABC123", Active: true},
	}}
	svc := newProfessorService(repo)

	professor, err := svc.Authenticate(context.Background(), " PROF-ABC123 ")
	require.NoError(t, err)
	assert.Equal(t, "prof-1", professor.ID)
}

func TestProfessorServiceAuthenticateInvalidCode(t *testing.T) {
	svc := newProfessorService(&professorRepoMock{})

	_, err := svc.Authenticate(context.Background(), "PROF-NOPE")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestProfessorServiceAuthenticateInactive(t *testing.T) {
	repo := &professorRepoMock{byCode: map[string]*models.Professor{
		"PROF-ABC123": {ID: "prof-1", Code: "PROF-ABC123", Active: false},
	}}
	svc := newProfessorService(repo)

	_, err := svc.Authenticate(context.Background(), "PROF-ABC123")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestProfessorServiceReassign(t *testing.T) {
	repo := &professorRepoMock{professors: map[string]*models.Professor{
		"prof-1": {ID: "prof-1", FullName: "Dr. Ada"},
	}}
	svc := newProfessorService(repo)

	err := svc.Reassign(context.Background(), "prof-1", "course-1")
	require.NoError(t, err)
	require.NotNil(t, repo.assigned["prof-1"])
	assert.Equal(t, "course-1", *repo.assigned["prof-1"])
}

func TestProfessorServiceListWithUploads(t *testing.T) {
	repo := &professorRepoMock{professors: map[string]*models.Professor{
		"prof-1": {ID: "prof-1", FullName: "Dr. Ada"},
	}}
	courses := &profCourseLookupMock{}
	svc := NewProfessorService(repo, courses, &uploadCounterMock{count: 3}, nil, zap.NewNop())

	overviews, err := svc.ListWithUploads(context.Background())
	require.NoError(t, err)
	require.Len(t, overviews, 1)
	assert.Equal(t, "Dr. Ada", overviews[0].FullName)
	assert.Equal(t, 3, overviews[0].Uploads)
}

func TestProfessorServiceReassignUnknownCourse(t *testing.T) {
	repo := &professorRepoMock{professors: map[string]*models.Professor{
		"prof-1": {ID: "prof-1", FullName: "Dr. Ada"},
	}}
	svc := newProfessorService(repo)

	err := svc.Reassign(context.Background(), "prof-1", "course-9")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.assigned)
}
