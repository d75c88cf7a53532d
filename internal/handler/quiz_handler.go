package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coursemate/coursemate-api/internal/models"
	"github.com/coursemate/coursemate-api/internal/service"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
	"github.com/coursemate/coursemate-api/pkg/response"
)

// HeaderTelegramID identifies the student on quiz routes. Students normally
// drive quizzes through the bot; this surface mirrors it for integrations.
const HeaderTelegramID = "X-Telegram-ID"

// QuizHandler wires quiz generation and scoring to HTTP routes.
type QuizHandler struct {
	quizzes  *service.QuizService
	students *service.StudentService
	metrics  *service.MetricsService
}

// NewQuizHandler constructs a QuizHandler.
func NewQuizHandler(quizzes *service.QuizService, students *service.StudentService, metrics *service.MetricsService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, students: students, metrics: metrics}
}

func (h *QuizHandler) student(c *gin.Context) (*models.Student, error) {
	tgID := c.GetHeader(HeaderTelegramID)
	if tgID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "student identification required")
	}
	return h.students.FindByTelegram(c.Request.Context(), tgID)
}

// GenerateQuizRequest addresses the materials a quiz is built from.
type GenerateQuizRequest struct {
	CourseID   string `json:"course_id"`
	Week       int    `json:"week"`
	Difficulty string `json:"difficulty"`
}

// SubmitQuizRequest carries the chosen answer indices in question order.
type SubmitQuizRequest struct {
	Answers []int `json:"answers"`
}

// Generate godoc
// @Summary Generate a quiz from one week's materials
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param X-Telegram-ID header string true "Student Telegram ID"
// @Param payload body handler.GenerateQuizRequest true "Quiz target"
// @Success 201 {object} response.Envelope
// @Router /quizzes [post]
func (h *QuizHandler) Generate(c *gin.Context) {
	student, err := h.student(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quiz payload"))
		return
	}

	difficulty := models.ParseDifficulty(req.Difficulty)
	start := time.Now()
	attempt, err := h.quizzes.Generate(c.Request.Context(), student, req.CourseID, req.Week, difficulty)
	h.metrics.ObserveGeneration(string(difficulty), err == nil, time.Since(start))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"attempt_id": attempt.ID,
		"week":       attempt.Week,
		"difficulty": attempt.Difficulty,
		"questions":  attempt.Presented(),
	}, nil)
}

// Submit godoc
// @Summary Submit answers for a quiz attempt
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param X-Telegram-ID header string true "Student Telegram ID"
// @Param id path string true "Attempt ID"
// @Param payload body handler.SubmitQuizRequest true "Answers"
// @Success 200 {object} response.Envelope
// @Router /quizzes/{id}/answers [post]
func (h *QuizHandler) Submit(c *gin.Context) {
	student, err := h.student(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answers payload"))
		return
	}
	result, err := h.quizzes.Submit(c.Request.Context(), student, c.Param("id"), req.Answers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// historyAttempt is one row of the quiz history listing. Questions go out in
// presented form so correct-choice markers never leave the server, even for
// attempts that are not scored yet.
type historyAttempt struct {
	ID         string                     `json:"id"`
	CourseID   string                     `json:"course_id"`
	Week       int                        `json:"week"`
	Difficulty models.Difficulty          `json:"difficulty"`
	Questions  []models.PresentedQuestion `json:"questions"`
	Score      *float64                   `json:"score,omitempty"`
	Scored     bool                       `json:"scored"`
	CreatedAt  time.Time                  `json:"created_at"`
	ScoredAt   *time.Time                 `json:"scored_at,omitempty"`
}

func historyView(attempts []models.QuizAttempt) []historyAttempt {
	out := make([]historyAttempt, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		out = append(out, historyAttempt{
			ID:         a.ID,
			CourseID:   a.CourseID,
			Week:       a.Week,
			Difficulty: a.Difficulty,
			Questions:  a.Presented(),
			Score:      a.Score,
			Scored:     a.Scored,
			CreatedAt:  a.CreatedAt,
			ScoredAt:   a.ScoredAt,
		})
	}
	return out
}

// History godoc
// @Summary List the student's quiz attempts
// @Tags Quizzes
// @Produce json
// @Param X-Telegram-ID header string true "Student Telegram ID"
// @Success 200 {object} response.Envelope
// @Router /quizzes/history [get]
func (h *QuizHandler) History(c *gin.Context) {
	student, err := h.student(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	attempts, err := h.quizzes.History(c.Request.Context(), student)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, historyView(attempts), nil)
}
