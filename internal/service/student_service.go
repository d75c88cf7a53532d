package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByTelegramID(ctx context.Context, telegramID string) (*models.Student, error)
	ExistsByStudentNo(ctx context.Context, studentNo string) (bool, error)
	ListPending(ctx context.Context) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Approve(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type studentMajorLookup interface {
	FindByID(ctx context.Context, id string) (*models.Major, error)
}

// RegisterStudentRequest holds the self-registration payload.
type RegisterStudentRequest struct {
	TelegramID   string `json:"telegram_id" validate:"required"`
	StudentNo    string `json:"student_no" validate:"required,min=3"`
	FullName     string `json:"full_name" validate:"required,min=2"`
	UniversityID string `json:"university_id" validate:"required"`
	MajorID      string `json:"major_id" validate:"required"`
	Year         int    `json:"year" validate:"required,min=1"`
}

// StudentService handles registration and admin approval.
type StudentService struct {
	students  studentRepository
	majors    studentMajorLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students studentRepository, majors studentMajorLookup, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, majors: majors, validator: validate, logger: logger}
}

// Register creates a pending student after consistency checks. The student
// cannot browse materials or request quizzes until an admin approves them.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	req.StudentNo = strings.TrimSpace(req.StudentNo)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
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

	if _, err := s.students.FindByTelegramID(ctx, req.TelegramID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "this Telegram account is already registered")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}

	exists, err := s.students.ExistsByStudentNo(ctx, req.StudentNo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number already registered")
	}

	telegramID := req.TelegramID
	student := &models.Student{
		TelegramID:   &telegramID,
		StudentNo:    req.StudentNo,
		FullName:     req.FullName,
		UniversityID: req.UniversityID,
		MajorID:      req.MajorID,
		Year:         req.Year,
		Approved:     false,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
	}
	return student, nil
}

// FindByTelegram looks up a student by Telegram identity.
func (s *StudentService) FindByTelegram(ctx context.Context, telegramID string) (*models.Student, error) {
	student, err := s.students.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
	}
	return student, nil
}

// ListPending returns students awaiting approval.
func (s *StudentService) ListPending(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending students")
	}
	return students, nil
}

// Approve marks a pending student approved.
func (s *StudentService) Approve(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Approved {
		return student, nil
	}
	now := time.Now().UTC()
	if err := s.students.Approve(ctx, studentID, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve student")
	}
	student.Approved = true
	student.ApprovedAt = &now
	return student, nil
}

// Reject deletes a pending registration.
func (s *StudentService) Reject(ctx context.Context, studentID string) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Approved {
		return appErrors.Clone(appErrors.ErrConflict, "cannot reject an approved student")
	}
	if err := s.students.Delete(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject student")
	}
	return nil
}
