package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	"github.com/coursemate/coursemate-api/internal/repository"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type universityRepository interface {
	List(ctx context.Context) ([]models.University, error)
	FindByID(ctx context.Context, id string) (*models.University, error)
	FindByName(ctx context.Context, name string) (*models.University, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, university *models.University) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type majorRepository interface {
	ListByUniversity(ctx context.Context, universityID string) ([]models.Major, error)
	FindByID(ctx context.Context, id string) (*models.Major, error)
	FindByName(ctx context.Context, universityID, name string) (*models.Major, error)
	ExistsByName(ctx context.Context, universityID, name string) (bool, error)
	Create(ctx context.Context, major *models.Major) error
	Delete(ctx context.Context, id string) error
}

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Find(ctx context.Context, universityID, majorID string, year int, name string) (*models.Course, error)
	Exists(ctx context.Context, universityID, majorID string, year int, name string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type taxonomyCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheLookupRecorder interface {
	RecordCacheLookup(hit bool)
}

type courseMaterialCleaner interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Material, error)
	Delete(ctx context.Context, id string) error
}

type courseAttemptCleaner interface {
	DeleteByCourse(ctx context.Context, courseID string) error
}

type courseUnassigner interface {
	UnassignByCourse(ctx context.Context, courseID string) error
}

type fileRemover interface {
	Delete(relPath string) error
}

const taxonomyCacheTTL = 10 * time.Minute

// CreateUniversityRequest holds payload for creating a university.
type CreateUniversityRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// CreateMajorRequest holds payload for creating a major.
type CreateMajorRequest struct {
	UniversityID string `json:"university_id" validate:"required"`
	Name         string `json:"name" validate:"required,min=2"`
}

// CreateCourseRequest holds payload for creating a course.
type CreateCourseRequest struct {
	UniversityID string `json:"university_id" validate:"required"`
	MajorID      string `json:"major_id" validate:"required"`
	Year         int    `json:"year" validate:"required,min=1"`
	Name         string `json:"name" validate:"required,min=2"`
}

// TaxonomyService implements the admin-gated university/major/course CRUD.
type TaxonomyService struct {
	universities universityRepository
	majors       majorRepository
	courses      courseRepository
	professors   courseUnassigner
	materials    courseMaterialCleaner
	attempts     courseAttemptCleaner
	store        fileRemover
	cache        taxonomyCache
	metrics      cacheLookupRecorder
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewTaxonomyService constructs the taxonomy service.
func NewTaxonomyService(
	universities universityRepository,
	majors majorRepository,
	courses courseRepository,
	professors courseUnassigner,
	materials courseMaterialCleaner,
	attempts courseAttemptCleaner,
	store fileRemover,
	cache taxonomyCache,
	metrics cacheLookupRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
) *TaxonomyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxonomyService{
		universities: universities,
		majors:       majors,
		courses:      courses,
		professors:   professors,
		materials:    materials,
		attempts:     attempts,
		store:        store,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
	}
}

// ListUniversities returns all universities, served from cache when warm.
func (s *TaxonomyService) ListUniversities(ctx context.Context) ([]models.University, error) {
	var cached []models.University
	if s.cache != nil {
		if err := s.cache.Get(ctx, repository.CacheKeyUniversities, &cached); err == nil {
			s.recordLookup(true)
			return cached, nil
		}
		s.recordLookup(false)
	}

	universities, err := s.universities.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list universities")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, repository.CacheKeyUniversities, universities, taxonomyCacheTTL); err != nil {
			s.logger.Warn("cache universities", zap.Error(err))
		}
	}
	return universities, nil
}

// CreateUniversity inserts a new uniquely named university.
func (s *TaxonomyService) CreateUniversity(ctx context.Context, req CreateUniversityRequest) (*models.University, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid university payload")
	}
	exists, err := s.universities.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate university name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "university already exists")
	}
	university := &models.University{Name: req.Name}
	if err := s.universities.Create(ctx, university); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create university")
	}
	s.invalidate(ctx)
	return university, nil
}

// RenameUniversity updates a university's name keeping uniqueness.
func (s *TaxonomyService) RenameUniversity(ctx context.Context, id, name string) (*models.University, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "university name is required")
	}
	university, err := s.universities.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	exists, err := s.universities.ExistsByName(ctx, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate university name")
	}
	if exists && university.Name != name {
		return nil, appErrors.Clone(appErrors.ErrConflict, "university name already used")
	}
	if err := s.universities.Rename(ctx, id, name); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rename university")
	}
	university.Name = name
	s.invalidate(ctx)
	return university, nil
}

// ListMajors returns the majors of a university, served from cache when warm.
func (s *TaxonomyService) ListMajors(ctx context.Context, universityID string) ([]models.Major, error) {
	key := fmt.Sprintf(repository.CacheKeyMajorsFmt, universityID)
	var cached []models.Major
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordLookup(true)
			return cached, nil
		}
		s.recordLookup(false)
	}

	majors, err := s.majors.ListByUniversity(ctx, universityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list majors")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, majors, taxonomyCacheTTL); err != nil {
			s.logger.Warn("cache majors", zap.Error(err))
		}
	}
	return majors, nil
}

// CreateMajor inserts a major under an existing university.
func (s *TaxonomyService) CreateMajor(ctx context.Context, req CreateMajorRequest) (*models.Major, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid major payload")
	}
	if _, err := s.universities.FindByID(ctx, req.UniversityID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	exists, err := s.majors.ExistsByName(ctx, req.UniversityID, req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate major name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "major already exists for this university")
	}
	major := &models.Major{UniversityID: req.UniversityID, Name: req.Name}
	if err := s.majors.Create(ctx, major); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create major")
	}
	s.invalidate(ctx)
	return major, nil
}

// ListCourses returns courses matching the filter, cached per university+major.
func (s *TaxonomyService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	key := fmt.Sprintf(repository.CacheKeyCoursesFmt, filter.UniversityID, filter.MajorID)
	cacheable := filter.UniversityID != "" && filter.MajorID != "" && filter.Year == 0
	if cacheable && s.cache != nil {
		var cached []models.Course
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordLookup(true)
			return cached, nil
		}
		s.recordLookup(false)
	}

	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if cacheable && s.cache != nil {
		if err := s.cache.Set(ctx, key, courses, taxonomyCacheTTL); err != nil {
			s.logger.Warn("cache courses", zap.Error(err))
		}
	}
	return courses, nil
}

// CreateCourse inserts a course after checking the university/major pairing is
// consistent and the identifying quad is unique.
func (s *TaxonomyService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	major, err := s.majors.FindByID(ctx, req.MajorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "major not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major")
	}
	if major.UniversityID != req.UniversityID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "major does not belong to the given university")
	}
	exists, err := s.courses.Exists(ctx, req.UniversityID, req.MajorID, req.Year, req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course already exists")
	}
	course := &models.Course{
		UniversityID: req.UniversityID,
		MajorID:      req.MajorID,
		Year:         req.Year,
		Name:         req.Name,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidate(ctx)
	return course, nil
}

// DeleteCourse removes a course and cascades: professors are unassigned,
// attempts deleted, materials deleted together with their stored files.
func (s *TaxonomyService) DeleteCourse(ctx context.Context, id string) error {
	if _, err := s.courses.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.professors.UnassignByCourse(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign professors")
	}
	if err := s.attempts.DeleteByCourse(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course attempts")
	}

	materials, err := s.materials.ListByCourse(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course materials")
	}
	for _, material := range materials {
		if err := s.materials.Delete(ctx, material.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course material")
		}
		if s.store != nil {
			if err := s.store.Delete(material.Filepath); err != nil {
				s.logger.Warn("delete material file", zap.String("path", material.Filepath), zap.Error(err))
			}
		}
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidate(ctx)
	return nil
}

// ResolveCourse maps university/major/course names plus year to a course row.
func (s *TaxonomyService) ResolveCourse(ctx context.Context, universityName, majorName string, year int, courseName string) (*models.Course, error) {
	university, err := s.universities.FindByName(ctx, strings.TrimSpace(universityName))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "university not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	major, err := s.majors.FindByName(ctx, university.ID, strings.TrimSpace(majorName))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "major not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major")
	}
	course, err := s.courses.Find(ctx, university.ID, major.ID, year, strings.TrimSpace(courseName))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// CourseContext is a course together with the names of its university and
// major, for rendering menus and deriving storage paths.
type CourseContext struct {
	Course     models.Course
	University string
	Major      string
}

// DescribeCourse loads a course with its university and major names.
func (s *TaxonomyService) DescribeCourse(ctx context.Context, courseID string) (*CourseContext, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	university, err := s.universities.FindByID(ctx, course.UniversityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load university")
	}
	major, err := s.majors.FindByID(ctx, course.MajorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major")
	}
	return &CourseContext{Course: *course, University: university.Name, Major: major.Name}, nil
}

func (s *TaxonomyService) recordLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}

func (s *TaxonomyService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.CacheTaxonomyPattern); err != nil {
		s.logger.Warn("invalidate taxonomy cache", zap.Error(err))
	}
}
