package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type studentRepoMock struct {
	students map[string]*models.Student
	byTg     map[string]*models.Student
	existing map[string]bool
	deleted  []string
	approved []string
}

func (m *studentRepoMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *studentRepoMock) FindByTelegramID(ctx context.Context, telegramID string) (*models.Student, error) {
	if s, ok := m.byTg[telegramID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *studentRepoMock) ExistsByStudentNo(ctx context.Context, studentNo string) (bool, error) {
	return m.existing[studentNo], nil
}

func (m *studentRepoMock) ListPending(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.students {
		if !s.Approved {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *studentRepoMock) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "student-1"
	}
	if m.students == nil {
		m.students = make(map[string]*models.Student)
	}
	m.students[student.ID] = student
	return nil
}

func (m *studentRepoMock) Approve(ctx context.Context, id string, at time.Time) error {
	m.approved = append(m.approved, id)
	if s, ok := m.students[id]; ok {
		s.Approved = true
		s.ApprovedAt = &at
	}
	return nil
}

func (m *studentRepoMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.students, id)
	return nil
}

type majorLookupMock struct {
	majors map[string]models.Major
}

func (m *majorLookupMock) FindByID(ctx context.Context, id string) (*models.Major, error) {
	if major, ok := m.majors[id]; ok {
		return &major, nil
	}
	return nil, sql.ErrNoRows
}

func registrationRequest() RegisterStudentRequest {
	return RegisterStudentRequest{
		TelegramID:   "555001",
		StudentNo:    "U123456",
		FullName:     "Jordan Smith",
		UniversityID: "uni-1",
		MajorID:      "major-1",
		Year:         1,
	}
}

func newStudentService(repo *studentRepoMock) *StudentService {
	majors := &majorLookupMock{majors: map[string]models.Major{
		"major-1": {ID: "major-1", UniversityID: "uni-1", Name: "Computer Science"},
	}}
	return NewStudentService(repo, majors, nil, zap.NewNop())
}

func TestStudentServiceRegister(t *testing.T) {
	repo := &studentRepoMock{}
	svc := newStudentService(repo)

	student, err := svc.Register(context.Background(), registrationRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.Approved)
	require.NotNil(t, student.TelegramID)
	assert.Equal(t, "555001", *student.TelegramID)
}

func TestStudentServiceRegisterDuplicateTelegram(t *testing.T) {
	repo := &studentRepoMock{byTg: map[string]*models.Student{
		"555001": {ID: "student-9", StudentNo: "U999999"},
	}}
	svc := newStudentService(repo)

	_, err := svc.Register(context.Background(), registrationRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentServiceRegisterDuplicateStudentNo(t *testing.T) {
	repo := &studentRepoMock{existing: map[string]bool{"U123456": true}}
	svc := newStudentService(repo)

	_, err := svc.Register(context.Background(), registrationRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentServiceRegisterMajorMismatch(t *testing.T) {
	svc := newStudentService(&studentRepoMock{})

	req := registrationRequest()
	req.UniversityID = "uni-2"
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceRegisterUnknownMajor(t *testing.T) {
	svc := newStudentService(&studentRepoMock{})

	req := registrationRequest()
	req.MajorID = "major-9"
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceApprove(t *testing.T) {
	repo := &studentRepoMock{students: map[string]*models.Student{
		"student-1": {ID: "student-1", StudentNo: "U123456"},
	}}
	svc := newStudentService(repo)

	student, err := svc.Approve(context.Background(), "student-1")
	require.NoError(t, err)
	assert.True(t, student.Approved)
	assert.NotNil(t, student.ApprovedAt)
	assert.Contains(t, repo.approved, "student-1")
}

func TestStudentServiceApproveIdempotent(t *testing.T) {
	repo := &studentRepoMock{students: map[string]*models.Student{
		"student-1": {ID: "student-1", StudentNo: "U123456", Approved: true},
	}}
	svc := newStudentService(repo)

	student, err := svc.Approve(context.Background(), "student-1")
	require.NoError(t, err)
	assert.True(t, student.Approved)
	assert.Empty(t, repo.approved)
}

func TestStudentServiceRejectPending(t *testing.T) {
	repo := &studentRepoMock{students: map[string]*models.Student{
		"student-1": {ID: "student-1", StudentNo: "U123456"},
	}}
	svc := newStudentService(repo)

	err := svc.Reject(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, "student-1")
}

func TestStudentServiceRejectApproved(t *testing.T) {
	repo := &studentRepoMock{students: map[string]*models.Student{
		"student-1": {ID: "student-1", StudentNo: "U123456", Approved: true},
	}}
	svc := newStudentService(repo)

	err := svc.Reject(context.Background(), "student-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, repo.deleted)
}
