package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type universityRepoMock struct {
	universities map[string]*models.University
	byName       map[string]*models.University
}

func (m *universityRepoMock) List(ctx context.Context) ([]models.University, error) {
	var out []models.University
	for _, u := range m.universities {
		out = append(out, *u)
	}
	return out, nil
}

func (m *universityRepoMock) FindByID(ctx context.Context, id string) (*models.University, error) {
	if u, ok := m.universities[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *universityRepoMock) FindByName(ctx context.Context, name string) (*models.University, error) {
	if u, ok := m.byName[name]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *universityRepoMock) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, ok := m.byName[name]
	return ok, nil
}

func (m *universityRepoMock) Create(ctx context.Context, university *models.University) error {
	if university.ID == "" {
		university.ID = "uni-1"
	}
	if m.universities == nil {
		m.universities = make(map[string]*models.University)
	}
	if m.byName == nil {
		m.byName = make(map[string]*models.University)
	}
	m.universities[university.ID] = university
	m.byName[university.Name] = university
	return nil
}

func (m *universityRepoMock) Rename(ctx context.Context, id, name string) error {
	if u, ok := m.universities[id]; ok {
		u.Name = name
	}
	return nil
}

func (m *universityRepoMock) Delete(ctx context.Context, id string) error {
	delete(m.universities, id)
	return nil
}

type majorRepoMock struct {
	majors map[string]*models.Major
}

func (m *majorRepoMock) ListByUniversity(ctx context.Context, universityID string) ([]models.Major, error) {
	var out []models.Major
	for _, major := range m.majors {
		if major.UniversityID == universityID {
			out = append(out, *major)
		}
	}
	return out, nil
}

func (m *majorRepoMock) FindByID(ctx context.Context, id string) (*models.Major, error) {
	if major, ok := m.majors[id]; ok {
		copied := *major
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *majorRepoMock) FindByName(ctx context.Context, universityID, name string) (*models.Major, error) {
	for _, major := range m.majors {
		if major.UniversityID == universityID && major.Name == name {
			copied := *major
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *majorRepoMock) ExistsByName(ctx context.Context, universityID, name string) (bool, error) {
	_, err := m.FindByName(ctx, universityID, name)
	return err == nil, nil
}

func (m *majorRepoMock) Create(ctx context.Context, major *models.Major) error {
	if major.ID == "" {
		major.ID = "major-1"
	}
	if m.majors == nil {
		m.majors = make(map[string]*models.Major)
	}
	m.majors[major.ID] = major
	return nil
}

func (m *majorRepoMock) Delete(ctx context.Context, id string) error {
	delete(m.majors, id)
	return nil
}

type courseRepoMock struct {
	courses map[string]*models.Course
	deleted []string
}

func (m *courseRepoMock) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (m *courseRepoMock) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *courseRepoMock) Find(ctx context.Context, universityID, majorID string, year int, name string) (*models.Course, error) {
	for _, c := range m.courses {
		if c.UniversityID == universityID && c.MajorID == majorID && c.Year == year && c.Name == name {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *courseRepoMock) Exists(ctx context.Context, universityID, majorID string, year int, name string) (bool, error) {
	_, err := m.Find(ctx, universityID, majorID, year, name)
	return err == nil, nil
}

func (m *courseRepoMock) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "course-1"
	}
	if m.courses == nil {
		m.courses = make(map[string]*models.Course)
	}
	m.courses[course.ID] = course
	return nil
}

func (m *courseRepoMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.courses, id)
	return nil
}

type materialCleanerMock struct {
	materials []models.Material
	deleted   []string
}

func (m *materialCleanerMock) ListByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	return m.materials, nil
}

func (m *materialCleanerMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type attemptCleanerMock struct {
	deletedCourses []string
}

func (m *attemptCleanerMock) DeleteByCourse(ctx context.Context, courseID string) error {
	m.deletedCourses = append(m.deletedCourses, courseID)
	return nil
}

type unassignerMock struct {
	courses []string
}

func (m *unassignerMock) UnassignByCourse(ctx context.Context, courseID string) error {
	m.courses = append(m.courses, courseID)
	return nil
}

type fileRemoverMock struct {
	removed []string
}

func (m *fileRemoverMock) Delete(relPath string) error {
	m.removed = append(m.removed, relPath)
	return nil
}

type cacheMock struct {
	data        map[string][]byte
	invalidated int
}

func (m *cacheMock) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *cacheMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = raw
	return nil
}

func (m *cacheMock) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated++
	m.data = nil
	return nil
}

type cacheRecorderMock struct {
	hits   int
	misses int
}

func (m *cacheRecorderMock) RecordCacheLookup(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

type taxonomyFixture struct {
	universities *universityRepoMock
	majors       *majorRepoMock
	courses      *courseRepoMock
	professors   *unassignerMock
	materials    *materialCleanerMock
	attempts     *attemptCleanerMock
	store        *fileRemoverMock
	cache        *cacheMock
	recorder     *cacheRecorderMock
	svc          *TaxonomyService
}

func newTaxonomyFixture() *taxonomyFixture {
	f := &taxonomyFixture{
		universities: &universityRepoMock{},
		majors:       &majorRepoMock{},
		courses:      &courseRepoMock{},
		professors:   &unassignerMock{},
		materials:    &materialCleanerMock{},
		attempts:     &attemptCleanerMock{},
		store:        &fileRemoverMock{},
		cache:        &cacheMock{},
		recorder:     &cacheRecorderMock{},
	}
	f.svc = NewTaxonomyService(f.universities, f.majors, f.courses, f.professors, f.materials, f.attempts, f.store, f.cache, f.recorder, nil, zap.NewNop())
	return f
}

func (f *taxonomyFixture) seed(t *testing.T) {
	t.Helper()
	require.NoError(t, f.universities.Create(context.Background(), &models.University{ID: "uni-1", Name: "Tech University"}))
	require.NoError(t, f.majors.Create(context.Background(), &models.Major{ID: "major-1", UniversityID: "uni-1", Name: "Computer Science"}))
	require.NoError(t, f.courses.Create(context.Background(), &models.Course{ID: "course-1", UniversityID: "uni-1", MajorID: "major-1", Year: 1, Name: "Introduction to Programming"}))
}

func TestTaxonomyServiceCreateUniversity(t *testing.T) {
	f := newTaxonomyFixture()

	university, err := f.svc.CreateUniversity(context.Background(), CreateUniversityRequest{Name: "  Tech University  "})
	require.NoError(t, err)
	assert.Equal(t, "Tech University", university.Name)
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestTaxonomyServiceCreateUniversityDuplicate(t *testing.T) {
	f := newTaxonomyFixture()
	f.seed(t)

	_, err := f.svc.CreateUniversity(context.Background(), CreateUniversityRequest{Name: "Tech University"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestTaxonomyServiceCreateMajorMismatchedUniversity(t *testing.T) {
	f := newTaxonomyFixture()
	f.seed(t)

	_, err := f.svc.CreateMajor(context.Background(), CreateMajorRequest{UniversityID: "uni-9", Name: "Physics"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTaxonomyServiceCreateCourseDuplicate(t *testing.T) {
	f := newTaxonomyFixture()
	f.seed(t)

	_, err := f.svc.CreateCourse(context.Background(), CreateCourseRequest{
		UniversityID: "uni-1",
		MajorID:      "major-1",
		Year:         1,
		Name:         "Introduction to Programming",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestTaxonomyServiceResolveCourse(t *testing.T) {
	f := newTaxonomyFixture()
	f.seed(t)

	course, err := f.svc.ResolveCourse(context.Background(), "Tech University", "Computer Science", 1, "Introduction to Programming")
	require.NoError(t, err)
	assert.Equal(t, "course-1", course.ID)
}

func TestTaxonomyServiceResolveCourseUnknownUniversity(t *testing.T) {
	f := newTaxonomyFixture()
	f.seed(t)

	_, err := f.svc.ResolveCourse(context.Background(), "Other University", "Computer Science", 1, "Introduction to Programming")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTaxonomyServiceDeleteCourseCascades(t *testing.T) {
	f := newTaxonomyFixture()
	f.seed(t)
	f.materials.materials = []models.Material{
		{ID: "m1", CourseID: "course-1", Filepath: "Tech University/Computer Science/Introduction to Programming/Week 1/lecture1.pdf"},
	}

	err := f.svc.DeleteCourse(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Contains(t, f.professors.courses, "course-1")
	assert.Contains(t, f.attempts.deletedCourses, "course-1")
	assert.Contains(t, f.materials.deleted, "m1")
	assert.Contains(t, f.store.removed, "Tech University/Computer Science/Introduction to Programming/Week 1/lecture1.pdf")
	assert.Contains(t, f.courses.deleted, "course-1")
}

func TestTaxonomyServiceDescribeCourse(t *testing.T) {
	f := newTaxonomyFixture()
	f.seed(t)

	courseCtx, err := f.svc.DescribeCourse(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, "Tech University", courseCtx.University)
	assert.Equal(t, "Computer Science", courseCtx.Major)
	assert.Equal(t, "Introduction to Programming", courseCtx.Course.Name)
}

func TestTaxonomyServiceListUniversitiesCacheLookups(t *testing.T) {
	f := newTaxonomyFixture()
	f.seed(t)

	first, err := f.svc.ListUniversities(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.svc.ListUniversities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1, f.recorder.misses)
	assert.Equal(t, 1, f.recorder.hits)
}
