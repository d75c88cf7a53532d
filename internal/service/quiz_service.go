package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/ai"
	"github.com/coursemate/coursemate-api/internal/extract"
	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
)

type quizAttemptRepository interface {
	FindByID(ctx context.Context, id string) (*models.QuizAttempt, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error)
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	Score(ctx context.Context, id string, answers models.AnswerList, score float64, at time.Time) error
}

type quizMaterialLister interface {
	ListByCourseWeek(ctx context.Context, courseID string, week int) ([]models.Material, error)
}

type quizFileStore interface {
	Path(relPath string) string
}

// minFileChars drops extractions too thin to teach from, per source file.
const minFileChars = 100

// QuizConfig bounds generation inputs and the call to the model.
type QuizConfig struct {
	Questions      int
	MinSourceWords int
	PromptBudget   int
	Timeout        time.Duration
}

func (c QuizConfig) withDefaults() QuizConfig {
	if c.Questions <= 0 {
		c.Questions = 5
	}
	if c.MinSourceWords <= 0 {
		c.MinSourceWords = 100
	}
	if c.PromptBudget <= 0 {
		c.PromptBudget = 12000
	}
	if c.Timeout <= 0 {
		c.Timeout = 90 * time.Second
	}
	return c
}

// QuizService generates per-student quizzes from stored materials and scores
// submitted answers.
type QuizService struct {
	attempts  quizAttemptRepository
	materials quizMaterialLister
	courses   professorCourseLookup
	store     quizFileStore
	generator ai.Generator
	extract   func(path string) (string, error)
	cfg       QuizConfig
	logger    *zap.Logger
}

// NewQuizService constructs the quiz service.
func NewQuizService(
	attempts quizAttemptRepository,
	materials quizMaterialLister,
	courses professorCourseLookup,
	store quizFileStore,
	generator ai.Generator,
	cfg QuizConfig,
	logger *zap.Logger,
) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		attempts:  attempts,
		materials: materials,
		courses:   courses,
		store:     store,
		generator: generator,
		extract:   extract.FromFile,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// Generate builds a fresh attempt for the student from the week's materials.
// The call blocks until the question set is ready; question and choice order
// are shuffled per attempt so no two students see the same layout.
func (s *QuizService) Generate(ctx context.Context, student *models.Student, courseID string, week int, difficulty models.Difficulty) (*models.QuizAttempt, error) {
	if week < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "week must be 1 or greater")
	}
	if _, err := s.authorizeStudent(ctx, student, courseID); err != nil {
		return nil, err
	}

	materials, err := s.materials.ListByCourseWeek(ctx, courseID, week)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	if len(materials) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no materials uploaded for this week yet")
	}

	sourceText, err := s.combineSources(materials)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	questions, err := s.generator.GenerateQuiz(genCtx, sourceText, s.cfg.Questions, difficulty)
	if err != nil {
		s.logger.Error("quiz generation failed",
			zap.String("course_id", courseID),
			zap.Int("week", week),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "could not generate a quiz, please try again")
	}

	attempt := &models.QuizAttempt{
		StudentID:  student.ID,
		CourseID:   courseID,
		Week:       week,
		Difficulty: difficulty,
		Questions:  shuffleQuestions(questions),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save quiz")
	}

	s.logger.Info("quiz generated",
		zap.String("attempt_id", attempt.ID),
		zap.String("student_id", student.ID),
		zap.String("course_id", courseID),
		zap.Int("week", week),
		zap.String("difficulty", string(difficulty)),
		zap.Int("questions", len(attempt.Questions)))
	return attempt, nil
}

// Submit scores the student's answers against the stored attempt. Attempts
// score exactly once; re-takes go through Generate.
func (s *QuizService) Submit(ctx context.Context, student *models.Student, attemptID string, answers []int) (*models.QuizResult, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz attempt not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attempt")
	}
	if attempt.StudentID != student.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this quiz belongs to another student")
	}
	if attempt.Scored {
		return nil, appErrors.Clone(appErrors.ErrConflict, "this quiz has already been scored")
	}
	if len(answers) != len(attempt.Questions) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("expected %d answers, got %d", len(attempt.Questions), len(answers)))
	}

	correct := 0
	incorrect := make([]int, 0)
	for i, q := range attempt.Questions {
		if answers[i] == q.Answer {
			correct++
		} else {
			incorrect = append(incorrect, i)
		}
	}
	score := float64(correct) / float64(len(attempt.Questions)) * 100

	if err := s.attempts.Score(ctx, attempt.ID, models.AnswerList(answers), score, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "failed to score attempt")
	}

	return &models.QuizResult{
		AttemptID: attempt.ID,
		Score:     score,
		Correct:   correct,
		Total:     len(attempt.Questions),
		Incorrect: incorrect,
	}, nil
}

// History returns the student's past attempts, newest first.
func (s *QuizService) History(ctx context.Context, student *models.Student) ([]models.QuizAttempt, error) {
	attempts, err := s.attempts.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attempts")
	}
	return attempts, nil
}

// combineSources extracts and concatenates material texts under per-file
// headers, then enforces the minimum word threshold and the prompt budget.
func (s *QuizService) combineSources(materials []models.Material) (string, error) {
	var sb strings.Builder
	for _, m := range materials {
		text, err := s.extract(s.store.Path(m.Filepath))
		if err != nil {
			s.logger.Warn("skipping unreadable material",
				zap.String("material_id", m.ID),
				zap.String("filename", m.Filename),
				zap.Error(err))
			continue
		}
		text = strings.TrimSpace(text)
		if len(text) < minFileChars {
			continue
		}
		fmt.Fprintf(&sb, "=== From %s ===\n%s\n\n", m.Filename, text)
	}

	combined := sb.String()
	if extract.WordCount(combined) < s.cfg.MinSourceWords {
		return "", appErrors.Clone(appErrors.ErrContentTooSmall,
			fmt.Sprintf("not enough readable content for a quiz, at least %d words are required", s.cfg.MinSourceWords))
	}
	return extract.TruncateSmart(combined, s.cfg.PromptBudget), nil
}

func (s *QuizService) authorizeStudent(ctx context.Context, student *models.Student, courseID string) (*models.Course, error) {
	if !student.Approved {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "your registration is awaiting approval")
	}
	course, err := s.courses.FindByID(ctx, courseID)
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

// shuffleQuestions randomises question order and choice order, rebasing each
// answer index onto the shuffled choices.
func shuffleQuestions(questions []models.Question) models.QuestionList {
	shuffled := make(models.QuestionList, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for qi, q := range shuffled {
		perm := rand.Perm(len(q.Choices))
		choices := make([]string, len(q.Choices))
		answer := q.Answer
		for newIdx, oldIdx := range perm {
			choices[newIdx] = q.Choices[oldIdx]
			if oldIdx == q.Answer {
				answer = newIdx
			}
		}
		shuffled[qi].Choices = choices
		shuffled[qi].Answer = answer
	}
	return shuffled
}
