package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type materialRepoMock struct {
	materials map[string]*models.Material
	created   []*models.Material
	createErr error
	weeks     []int
}

func (m *materialRepoMock) ListByCourseWeek(ctx context.Context, courseID string, week int) ([]models.Material, error) {
	var out []models.Material
	for _, mat := range m.materials {
		if mat.CourseID == courseID && mat.Week == week {
			out = append(out, *mat)
		}
	}
	return out, nil
}

func (m *materialRepoMock) ListByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	return nil, nil
}

func (m *materialRepoMock) ListByUploader(ctx context.Context, uploaderID string) ([]models.Material, error) {
	var out []models.Material
	for _, mat := range m.materials {
		if mat.UploaderID == uploaderID {
			out = append(out, *mat)
		}
	}
	return out, nil
}

func (m *materialRepoMock) FindByID(ctx context.Context, id string) (*models.Material, error) {
	if mat, ok := m.materials[id]; ok {
		copied := *mat
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *materialRepoMock) DistinctWeeks(ctx context.Context, courseID string) ([]int, error) {
	return m.weeks, nil
}

func (m *materialRepoMock) Create(ctx context.Context, material *models.Material) error {
	if m.createErr != nil {
		return m.createErr
	}
	if material.ID == "" {
		material.ID = "material-1"
	}
	if m.materials == nil {
		m.materials = make(map[string]*models.Material)
	}
	m.materials[material.ID] = material
	m.created = append(m.created, material)
	return nil
}

func (m *materialRepoMock) Delete(ctx context.Context, id string) error {
	delete(m.materials, id)
	return nil
}

type fileStoreMock struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func (m *fileStoreMock) Save(relPath string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[relPath] = data
	return nil
}

func (m *fileStoreMock) Open(relPath string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (m *fileStoreMock) Delete(relPath string) error {
	m.deleted = append(m.deleted, relPath)
	return nil
}

type courseResolverMock struct {
	course *models.Course
}

func (m *courseResolverMock) ResolveCourse(ctx context.Context, universityName, majorName string, year int, courseName string) (*models.Course, error) {
	if m.course == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return m.course, nil
}

type rateLimiterMock struct {
	count       int
	incremented int
}

func (m *rateLimiterMock) Count(ctx context.Context, professorID, action, day string) (int, error) {
	return m.count, nil
}

func (m *rateLimiterMock) Increment(ctx context.Context, professorID, action, day string) error {
	m.incremented++
	return nil
}

type notifierMock struct {
	notified []models.Material
}

func (m *notifierMock) NotifyUpload(material models.Material, course models.Course) {
	m.notified = append(m.notified, material)
}

type materialCourseLookupMock struct {
	courses map[string]models.Course
}

func (m *materialCourseLookupMock) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func uploadCourse() *models.Course {
	return &models.Course{ID: "course-1", UniversityID: "uni-1", MajorID: "major-1", Year: 1, Name: "Introduction to Programming"}
}

func assignedProfessor() *models.Professor {
	courseID := "course-1"
	return &models.Professor{ID: "prof-1", FullName: "Dr. Ada", Code: "PROF-ABC123", CourseID: &courseID, Active: true}
}

func uploadRequest() UploadMaterialRequest {
	return UploadMaterialRequest{
		University:  "Tech University",
		Major:       "Computer Science",
		Course:      "Introduction to Programming",
		Year:        1,
		Week:        1,
		Filename:    "lecture1.pdf",
		Description: "Intro slides",
		Data:        []byte("%PDF-1.4 dummy"),
	}
}

func newMaterialService(repo *materialRepoMock, store *fileStoreMock, limiter *rateLimiterMock, notifier *notifierMock) *MaterialService {
	lookup := &materialCourseLookupMock{courses: map[string]models.Course{"course-1": *uploadCourse()}}
	var n uploadNotifier
	if notifier != nil {
		n = notifier
	}
	return NewMaterialService(repo, &courseResolverMock{course: uploadCourse()}, lookup, store, limiter, n, 50, nil, zap.NewNop())
}

func TestMaterialServiceUpload(t *testing.T) {
	repo := &materialRepoMock{}
	store := &fileStoreMock{}
	limiter := &rateLimiterMock{}
	notifier := &notifierMock{}
	svc := newMaterialService(repo, store, limiter, notifier)

	material, err := svc.Upload(context.Background(), assignedProfessor(), uploadRequest())
	require.NoError(t, err)

	wantPath := filepath.Join("Tech University", "Computer Science", "Introduction to Programming", "Week 1", "lecture1.pdf")
	assert.Equal(t, wantPath, material.Filepath)
	assert.Contains(t, store.saved, wantPath)
	assert.Equal(t, "lecture1.pdf", material.Filename)
	assert.Equal(t, "course-1", material.CourseID)
	assert.Equal(t, 1, limiter.incremented)
	assert.Len(t, notifier.notified, 1)
}

func TestMaterialServiceUploadUnsupportedType(t *testing.T) {
	svc := newMaterialService(&materialRepoMock{}, &fileStoreMock{}, &rateLimiterMock{}, nil)

	req := uploadRequest()
	req.Filename = "malware.exe"
	_, err := svc.Upload(context.Background(), assignedProfessor(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestMaterialServiceUploadNotAssigned(t *testing.T) {
	store := &fileStoreMock{}
	svc := newMaterialService(&materialRepoMock{}, store, &rateLimiterMock{}, nil)

	otherCourse := "course-9"
	professor := assignedProfessor()
	professor.CourseID = &otherCourse

	_, err := svc.Upload(context.Background(), professor, uploadRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, store.saved)
}

func TestMaterialServiceUploadRateLimited(t *testing.T) {
	store := &fileStoreMock{}
	svc := newMaterialService(&materialRepoMock{}, store, &rateLimiterMock{count: 50}, nil)

	_, err := svc.Upload(context.Background(), assignedProfessor(), uploadRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrRateLimited))
	assert.Empty(t, store.saved)
}

func TestMaterialServiceUploadRowFailureRemovesFile(t *testing.T) {
	repo := &materialRepoMock{createErr: errors.New("insert failed")}
	store := &fileStoreMock{}
	limiter := &rateLimiterMock{}
	svc := newMaterialService(repo, store, limiter, nil)

	_, err := svc.Upload(context.Background(), assignedProfessor(), uploadRequest())
	require.Error(t, err)

	wantPath := filepath.Join("Tech University", "Computer Science", "Introduction to Programming", "Week 1", "lecture1.pdf")
	assert.Contains(t, store.deleted, wantPath)
	assert.Zero(t, limiter.incremented)
}

func TestMaterialServiceListForStudentUnapproved(t *testing.T) {
	svc := newMaterialService(&materialRepoMock{}, &fileStoreMock{}, &rateLimiterMock{}, nil)

	student := approvedStudent()
	student.Approved = false
	_, err := svc.ListForStudent(context.Background(), student, "course-1", 1)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestMaterialServiceListForStudentWrongProgram(t *testing.T) {
	svc := newMaterialService(&materialRepoMock{}, &fileStoreMock{}, &rateLimiterMock{}, nil)

	student := approvedStudent()
	student.MajorID = "major-9"
	_, err := svc.ListForStudent(context.Background(), student, "course-1", 1)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestMaterialServiceDeleteNotOwner(t *testing.T) {
	repo := &materialRepoMock{materials: map[string]*models.Material{
		"material-1": {ID: "material-1", CourseID: "course-1", UploaderID: "prof-2", Filepath: "some/path.pdf"},
	}}
	store := &fileStoreMock{}
	svc := newMaterialService(repo, store, &rateLimiterMock{}, nil)

	err := svc.Delete(context.Background(), assignedProfessor(), "material-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, store.deleted)
}

func TestMaterialServiceDelete(t *testing.T) {
	repo := &materialRepoMock{materials: map[string]*models.Material{
		"material-1": {ID: "material-1", CourseID: "course-1", UploaderID: "prof-1", Filepath: "some/path.pdf"},
	}}
	store := &fileStoreMock{}
	svc := newMaterialService(repo, store, &rateLimiterMock{}, nil)

	err := svc.Delete(context.Background(), assignedProfessor(), "material-1")
	require.NoError(t, err)
	assert.Contains(t, store.deleted, "some/path.pdf")
	assert.Empty(t, repo.materials)
}
