package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coursemate/coursemate-api/internal/models"
	"github.com/coursemate/coursemate-api/internal/service"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
	"github.com/coursemate/coursemate-api/pkg/response"
)

// TaxonomyHandler wires the university/major/course catalog to HTTP routes.
type TaxonomyHandler struct {
	taxonomy *service.TaxonomyService
}

// NewTaxonomyHandler constructs a TaxonomyHandler.
func NewTaxonomyHandler(taxonomy *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

// ListUniversities godoc
// @Summary List universities
// @Tags Taxonomy
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /universities [get]
func (h *TaxonomyHandler) ListUniversities(c *gin.Context) {
	universities, err := h.taxonomy.ListUniversities(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, universities, nil)
}

// CreateUniversity godoc
// @Summary Create university
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Param payload body service.CreateUniversityRequest true "University payload"
// @Success 201 {object} response.Envelope
// @Router /admin/universities [post]
func (h *TaxonomyHandler) CreateUniversity(c *gin.Context) {
	var req service.CreateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid university payload"))
		return
	}
	university, err := h.taxonomy.CreateUniversity(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, university)
}

// RenameUniversity godoc
// @Summary Rename university
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /admin/universities/{id} [put]
func (h *TaxonomyHandler) RenameUniversity(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	university, err := h.taxonomy.RenameUniversity(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, university, nil)
}

// ListMajors godoc
// @Summary List majors of a university
// @Tags Taxonomy
// @Produce json
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /universities/{id}/majors [get]
func (h *TaxonomyHandler) ListMajors(c *gin.Context) {
	majors, err := h.taxonomy.ListMajors(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, majors, nil)
}

// CreateMajor godoc
// @Summary Create major
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Param payload body service.CreateMajorRequest true "Major payload"
// @Success 201 {object} response.Envelope
// @Router /admin/majors [post]
func (h *TaxonomyHandler) CreateMajor(c *gin.Context) {
	var req service.CreateMajorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid major payload"))
		return
	}
	major, err := h.taxonomy.CreateMajor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, major)
}

// ListCourses godoc
// @Summary List courses
// @Tags Taxonomy
// @Produce json
// @Param university_id query string false "University ID"
// @Param major_id query string false "Major ID"
// @Param year query int false "Program year"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *TaxonomyHandler) ListCourses(c *gin.Context) {
	filter := models.CourseFilter{
		UniversityID: c.Query("university_id"),
		MajorID:      c.Query("major_id"),
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	courses, err := h.taxonomy.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// CreateCourse godoc
// @Summary Create course
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /admin/courses [post]
func (h *TaxonomyHandler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.taxonomy.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// DeleteCourse godoc
// @Summary Delete course and its materials
// @Tags Taxonomy
// @Param id path string true "Course ID"
// @Success 204
// @Router /admin/courses/{id} [delete]
func (h *TaxonomyHandler) DeleteCourse(c *gin.Context) {
	if err := h.taxonomy.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
