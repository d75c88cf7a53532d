package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
	"github.com/coursemate/coursemate-api/pkg/storage"
)

type materialRepository interface {
	ListByCourseWeek(ctx context.Context, courseID string, week int) ([]models.Material, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Material, error)
	ListByUploader(ctx context.Context, uploaderID string) ([]models.Material, error)
	FindByID(ctx context.Context, id string) (*models.Material, error)
	DistinctWeeks(ctx context.Context, courseID string) ([]int, error)
	Create(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id string) error
}

type materialFileStore interface {
	Save(relPath string, data []byte) error
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
}

type courseResolver interface {
	ResolveCourse(ctx context.Context, universityName, majorName string, year int, courseName string) (*models.Course, error)
}

type uploadRateLimiter interface {
	Count(ctx context.Context, professorID, action, day string) (int, error)
	Increment(ctx context.Context, professorID, action, day string) error
}

// uploadNotifier broadcasts new materials to enrolled students. Delivery is
// best effort and must not block the upload path.
type uploadNotifier interface {
	NotifyUpload(material models.Material, course models.Course)
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".txt":  true,
	".md":   true,
}

// UploadMaterialRequest carries an upload addressed by taxonomy names, the way
// professors phrase it.
type UploadMaterialRequest struct {
	University  string `json:"university" validate:"required"`
	Major       string `json:"major" validate:"required"`
	Course      string `json:"course" validate:"required"`
	Year        int    `json:"year" validate:"required,min=1"`
	Week        int    `json:"week" validate:"required,min=1"`
	Filename    string `json:"filename" validate:"required"`
	Description string `json:"description"`
	Data        []byte `json:"-" validate:"required"`
}

// MaterialService owns the upload path and material access rules.
type MaterialService struct {
	materials     materialRepository
	courses       courseResolver
	courseLookup  professorCourseLookup
	store         materialFileStore
	rateLimits    uploadRateLimiter
	notifier      uploadNotifier
	uploadsPerDay int
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewMaterialService constructs the material service. notifier may be nil.
func NewMaterialService(
	materials materialRepository,
	courses courseResolver,
	courseLookup professorCourseLookup,
	store materialFileStore,
	rateLimits uploadRateLimiter,
	notifier uploadNotifier,
	uploadsPerDay int,
	validate *validator.Validate,
	logger *zap.Logger,
) *MaterialService {
	if uploadsPerDay <= 0 {
		uploadsPerDay = 50
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{
		materials:     materials,
		courses:       courses,
		courseLookup:  courseLookup,
		store:         store,
		rateLimits:    rateLimits,
		notifier:      notifier,
		uploadsPerDay: uploadsPerDay,
		validator:     validate,
		logger:        logger,
	}
}

// SetNotifier attaches the upload broadcaster. The notifier is built around
// the bot, which itself depends on this service, so it is wired after
// construction.
func (s *MaterialService) SetNotifier(notifier uploadNotifier) {
	s.notifier = notifier
}

// Upload stores a professor's document and records it. The file is written to
// disk before the row is inserted so a row never points at a missing file. The
// professor must be assigned to the course the names resolve to.
func (s *MaterialService) Upload(ctx context.Context, professor *models.Professor, req UploadMaterialRequest) (*models.Material, error) {
	req.Filename = strings.TrimSpace(req.Filename)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload payload")
	}
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !allowedExtensions[ext] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported file type, send PDF, DOCX, PPTX, TXT or MD")
	}

	course, err := s.courses.ResolveCourse(ctx, req.University, req.Major, req.Year, req.Course)
	if err != nil {
		return nil, err
	}
	if professor.CourseID == nil || *professor.CourseID != course.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this course")
	}

	day := time.Now().UTC().Format("2006-01-02")
	used, err := s.rateLimits.Count(ctx, professor.ID, models.ActionUpload, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check upload quota")
	}
	if used >= s.uploadsPerDay {
		return nil, appErrors.Clone(appErrors.ErrRateLimited, "daily upload limit reached, try again tomorrow")
	}

	relPath := storage.MaterialPath(req.University, req.Major, req.Course, req.Week, req.Filename)
	if err := s.store.Save(relPath, req.Data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store file")
	}

	material := &models.Material{
		CourseID:    course.ID,
		UploaderID:  professor.ID,
		Filename:    storage.SanitizeFilename(req.Filename),
		Filepath:    relPath,
		Week:        req.Week,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.materials.Create(ctx, material); err != nil {
		if rmErr := s.store.Delete(relPath); rmErr != nil {
			s.logger.Warn("failed to remove orphaned file", zap.String("path", relPath), zap.Error(rmErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record material")
	}

	if err := s.rateLimits.Increment(ctx, professor.ID, models.ActionUpload, day); err != nil {
		s.logger.Warn("failed to bump upload counter", zap.String("professor_id", professor.ID), zap.Error(err))
	}
	if s.notifier != nil {
		s.notifier.NotifyUpload(*material, *course)
	}

	s.logger.Info("material uploaded",
		zap.String("material_id", material.ID),
		zap.String("course_id", course.ID),
		zap.Int("week", material.Week))
	return material, nil
}

// ListForStudent returns the materials of one course week for an approved,
// enrolled student.
func (s *MaterialService) ListForStudent(ctx context.Context, student *models.Student, courseID string, week int) ([]models.Material, error) {
	course, err := s.authorizeStudent(ctx, student, courseID)
	if err != nil {
		return nil, err
	}
	materials, err := s.materials.ListByCourseWeek(ctx, course.ID, week)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	return materials, nil
}

// Weeks returns the weeks that have materials, for building course menus.
func (s *MaterialService) Weeks(ctx context.Context, student *models.Student, courseID string) ([]int, error) {
	course, err := s.authorizeStudent(ctx, student, courseID)
	if err != nil {
		return nil, err
	}
	weeks, err := s.materials.DistinctWeeks(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weeks")
	}
	return weeks, nil
}

// ListMine returns the professor's own uploads.
func (s *MaterialService) ListMine(ctx context.Context, professorID string) ([]models.Material, error) {
	materials, err := s.materials.ListByUploader(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list uploads")
	}
	return materials, nil
}

// Download opens a stored material for an approved, enrolled student.
func (s *MaterialService) Download(ctx context.Context, student *models.Student, materialID string) (*models.Material, *os.File, error) {
	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if _, err := s.authorizeStudent(ctx, student, material.CourseID); err != nil {
		return nil, nil, err
	}
	file, err := s.store.Open(material.Filepath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "stored file is unavailable")
	}
	return material, file, nil
}

// Delete removes a material the professor owns, file first then row.
func (s *MaterialService) Delete(ctx context.Context, professor *models.Professor, materialID string) error {
	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if material.UploaderID != professor.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "you can only delete your own uploads")
	}
	if err := s.store.Delete(material.Filepath); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to remove file")
	}
	if err := s.materials.Delete(ctx, material.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete material")
	}
	return nil
}

// authorizeStudent verifies approval and enrollment against the course's
// university, major and year.
func (s *MaterialService) authorizeStudent(ctx context.Context, student *models.Student, courseID string) (*models.Course, error) {
	if !student.Approved {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "your registration is awaiting approval")
	}
	course, err := s.courseLookup.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.UniversityID != student.UniversityID || course.MajorID != student.MajorID || course.Year != student.Year {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this course is not part of your program")
	}
	return course, nil
}
