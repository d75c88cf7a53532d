package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursemate/coursemate-api/internal/service"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
	"github.com/coursemate/coursemate-api/pkg/response"
)

// ProfessorHandler wires professor administration to HTTP routes.
type ProfessorHandler struct {
	professors *service.ProfessorService
}

// NewProfessorHandler constructs a ProfessorHandler.
func NewProfessorHandler(professors *service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{professors: professors}
}

// List godoc
// @Summary List professors with upload counts
// @Tags Professors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/professors [get]
func (h *ProfessorHandler) List(c *gin.Context) {
	professors, err := h.professors.ListWithUploads(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professors, nil)
}

// Create godoc
// @Summary Create a professor with an access code
// @Tags Professors
// @Accept json
// @Produce json
// @Param payload body service.CreateProfessorRequest true "Professor payload"
// @Success 201 {object} response.Envelope
// @Router /admin/professors [post]
func (h *ProfessorHandler) Create(c *gin.Context) {
	var req service.CreateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid professor payload"))
		return
	}
	professor, err := h.professors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	// The code is returned once on creation so the admin can hand it out.
	response.JSON(c, http.StatusCreated, gin.H{"professor": professor, "code": professor.Code}, nil)
}

// Reassign godoc
// @Summary Reassign a professor to another course
// @Tags Professors
// @Accept json
// @Param id path string true "Professor ID"
// @Success 204
// @Router /admin/professors/{id}/course [put]
func (h *ProfessorHandler) Reassign(c *gin.Context) {
	var req struct {
		CourseID string `json:"course_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.professors.Reassign(c.Request.Context(), c.Param("id"), req.CourseID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
