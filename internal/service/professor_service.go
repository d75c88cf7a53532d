package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type professorRepository interface {
	List(ctx context.Context) ([]models.Professor, error)
	FindByID(ctx context.Context, id string) (*models.Professor, error)
	FindByCode(ctx context.Context, code string) (*models.Professor, error)
	FindByTelegramID(ctx context.Context, telegramID string) (*models.Professor, error)
	Create(ctx context.Context, professor *models.Professor) error
	AssignCourse(ctx context.Context, id string, courseID *string) error
	LinkTelegram(ctx context.Context, id, telegramID string) error
	SetActive(ctx context.Context, id string, active bool) error
}

type professorCourseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type uploadCounter interface {
	CountByUploader(ctx context.Context, uploaderID string) (int, error)
}

// CreateProfessorRequest holds payload for creating professors. Code is
// generated when omitted.
type CreateProfessorRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	CourseID string `json:"course_id" validate:"required"`
	Code     string `json:"code"`
}

// ProfessorService handles professor lifecycle and code authentication.
type ProfessorService struct {
	professors professorRepository
	courses    professorCourseLookup
	materials  uploadCounter
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewProfessorService constructs the professor service.
func NewProfessorService(professors professorRepository, courses professorCourseLookup, materials uploadCounter, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{professors: professors, courses: courses, materials: materials, validator: validate, logger: logger}
}

// ProfessorOverview is a professor together with their upload tally, for the
// admin listing.
type ProfessorOverview struct {
	models.Professor
	Uploads int `json:"uploads"`
}

// List returns all professors.
func (s *ProfessorService) List(ctx context.Context) ([]models.Professor, error) {
	professors, err := s.professors.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	return professors, nil
}

// ListWithUploads returns all professors with their upload counts.
func (s *ProfessorService) ListWithUploads(ctx context.Context) ([]ProfessorOverview, error) {
	professors, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	overviews := make([]ProfessorOverview, 0, len(professors))
	for _, professor := range professors {
		count, err := s.UploadCount(ctx, professor.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, ProfessorOverview{Professor: professor, Uploads: count})
	}
	return overviews, nil
}

// Create registers a professor bound to an existing course and returns the
// record including the access code the admin hands out.
func (s *ProfessorService) Create(ctx context.Context, req CreateProfessorRequest) (*models.Professor, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = generateAccessCode()
	}
	if _, err := s.professors.FindByCode(ctx, code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "professor code already in use")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate professor code")
	}

	professor := &models.Professor{
		FullName: req.FullName,
		Code:     code,
		CourseID: &req.CourseID,
		Active:   true,
	}
	if err := s.professors.Create(ctx, professor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create professor")
	}
	return professor, nil
}

// Authenticate resolves an access code to an active professor.
func (s *ProfessorService) Authenticate(ctx context.Context, code string) (*models.Professor, error) {
	professor, err := s.professors.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid professor code")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up professor")
	}
	if !professor.Active {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "professor account is inactive")
	}
	return professor, nil
}

// FindByTelegram resolves a previously linked Telegram identity.
func (s *ProfessorService) FindByTelegram(ctx context.Context, telegramID string) (*models.Professor, error) {
	professor, err := s.professors.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up professor")
	}
	return professor, nil
}

// LinkTelegram remembers the professor's Telegram identity after code login.
func (s *ProfessorService) LinkTelegram(ctx context.Context, professorID, telegramID string) error {
	if err := s.professors.LinkTelegram(ctx, professorID, telegramID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link telegram")
	}
	return nil
}

// Reassign moves the professor to a different course; historical materials
// keep referencing their original course.
func (s *ProfessorService) Reassign(ctx context.Context, professorID, courseID string) error {
	if _, err := s.professors.FindByID(ctx, professorID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if err := s.professors.AssignCourse(ctx, professorID, &courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign professor")
	}
	return nil
}

// UploadCount returns how many materials the professor has uploaded.
func (s *ProfessorService) UploadCount(ctx context.Context, professorID string) (int, error) {
	count, err := s.materials.CountByUploader(ctx, professorID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count uploads")
	}
	return count, nil
}

func generateAccessCode() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "PROF-FALLBACK"
	}
	return "PROF-" + strings.ToUpper(hex.EncodeToString(buf))
}
