package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exam-coach/coach-service/internal/services"
	"github.com/exam-coach/coach-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalysisHandler struct {
	BaseHandler
	service services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService, logger utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetAnalysis returns the ranked weak/strong topic partition for a student.
// @Summary Get weakness analysis
// @Tags analysis
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} services.AnalysisResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Router /analysis/{student_id} [get]
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	h.LogRequest(c, "Getting weakness analysis")

	studentID, ok := h.studentIDParam(c)
	if !ok {
		return
	}

	analysis, err := h.service.GetAnalysis(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// ExportAnalysis returns the analysis as a downloadable xlsx workbook.
// @Summary Export weakness analysis as xlsx
// @Tags analysis
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param student_id path string true "Student ID"
// @Router /analysis/{student_id}/export [get]
func (h *AnalysisHandler) ExportAnalysis(c *gin.Context) {
	h.LogRequest(c, "Exporting weakness analysis")

	studentID, ok := h.studentIDParam(c)
	if !ok {
		return
	}

	data, err := h.service.ExportAnalysis(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("weakness-report-%s.xlsx", studentID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetProgress returns the per-test accuracy history for a student.
// @Summary Get progress history
// @Tags analysis
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} services.ProgressResponse
// @Router /progress/{student_id} [get]
func (h *AnalysisHandler) GetProgress(c *gin.Context) {
	h.LogRequest(c, "Getting progress history")

	studentID, ok := h.studentIDParam(c)
	if !ok {
		return
	}

	progress, err := h.service.GetProgress(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
