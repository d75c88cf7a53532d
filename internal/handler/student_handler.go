package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursemate/coursemate-api/internal/service"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
	"github.com/coursemate/coursemate-api/pkg/response"
)

// StudentHandler wires registration and approval to HTTP routes.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Register godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /students/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	student, err := h.students.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// ListPending godoc
// @Summary List students awaiting approval
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/students/pending [get]
func (h *StudentHandler) ListPending(c *gin.Context) {
	students, err := h.students.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Approve godoc
// @Summary Approve a pending student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{id}/approve [post]
func (h *StudentHandler) Approve(c *gin.Context) {
	student, err := h.students.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Reject godoc
// @Summary Reject a pending student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /admin/students/{id} [delete]
func (h *StudentHandler) Reject(c *gin.Context) {
	if err := h.students.Reject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
