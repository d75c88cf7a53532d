package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coursemate/coursemate-api/internal/service"
	"github.com/coursemate/coursemate-api/pkg/response"
)

// StatsHandler wires admin reporting to HTTP routes.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Totals godoc
// @Summary Global entity counts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *StatsHandler) Totals(c *gin.Context) {
	totals, err := h.stats.Totals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, totals, nil)
}

// ExportCSV godoc
// @Summary Export scored quiz attempts as CSV
// @Tags Admin
// @Produce text/csv
// @Success 200
// @Router /admin/exports/attempts.csv [get]
func (h *StatsHandler) ExportCSV(c *gin.Context) {
	out, err := h.stats.ExportAttemptsCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("attempts-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", out)
}

// ExportPDF godoc
// @Summary Export scored quiz attempts as PDF
// @Tags Admin
// @Produce application/pdf
// @Success 200
// @Router /admin/exports/attempts.pdf [get]
func (h *StatsHandler) ExportPDF(c *gin.Context) {
	out, err := h.stats.ExportAttemptsPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("attempts-%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", out)
}
