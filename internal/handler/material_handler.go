package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coursemate/coursemate-api/internal/middleware"
	"github.com/coursemate/coursemate-api/internal/service"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
	"github.com/coursemate/coursemate-api/pkg/response"
)

// maxUploadSize caps multipart uploads at 50 MB.
const maxUploadSize = 50 << 20

// MaterialHandler wires the upload path to HTTP routes.
type MaterialHandler struct {
	materials  *service.MaterialService
	professors *service.ProfessorService
	metrics    *service.MetricsService
}

// NewMaterialHandler constructs a MaterialHandler.
func NewMaterialHandler(materials *service.MaterialService, professors *service.ProfessorService, metrics *service.MetricsService) *MaterialHandler {
	return &MaterialHandler{materials: materials, professors: professors, metrics: metrics}
}

// Upload godoc
// @Summary Upload course material
// @Tags Materials
// @Accept mpfd
// @Produce json
// @Param X-Professor-Code header string false "Professor access code (alternative to the professor_code field)"
// @Param professor_code formData string false "Professor access code"
// @Param file formData file true "Material file (PDF, DOCX, PPTX, TXT, MD)"
// @Param university formData string true "University name"
// @Param major formData string true "Major name"
// @Param course formData string true "Course name"
// @Param year formData int true "Program year"
// @Param week formData int true "Week number"
// @Param description formData string false "Description"
// @Success 201 {object} response.Envelope
// @Router /materials [post]
func (h *MaterialHandler) Upload(c *gin.Context) {
	code := c.GetHeader(middleware.HeaderProfessorCode)
	if code == "" {
		code = c.PostForm("professor_code")
	}
	professor, err := h.professors.Authenticate(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the 50 MB limit"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck
	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	year, _ := strconv.Atoi(c.PostForm("year"))
	week, _ := strconv.Atoi(c.PostForm("week"))
	material, err := h.materials.Upload(c.Request.Context(), professor, service.UploadMaterialRequest{
		University:  c.PostForm("university"),
		Major:       c.PostForm("major"),
		Course:      c.PostForm("course"),
		Year:        year,
		Week:        week,
		Filename:    fileHeader.Filename,
		Description: c.PostForm("description"),
		Data:        data,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordUpload()
	response.Created(c, material)
}

// ListMine godoc
// @Summary List the professor's uploads
// @Tags Materials
// @Produce json
// @Param X-Professor-Code header string true "Professor access code"
// @Success 200 {object} response.Envelope
// @Router /materials/mine [get]
func (h *MaterialHandler) ListMine(c *gin.Context) {
	professor, ok := professorFrom(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "professor authentication required"))
		return
	}
	materials, err := h.materials.ListMine(c.Request.Context(), professor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, nil)
}

// Delete godoc
// @Summary Delete one of the professor's uploads
// @Tags Materials
// @Param X-Professor-Code header string true "Professor access code"
// @Param id path string true "Material ID"
// @Success 204
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	professor, ok := professorFrom(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "professor authentication required"))
		return
	}
	if err := h.materials.Delete(c.Request.Context(), professor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
