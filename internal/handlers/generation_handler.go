package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exam-coach/coach-service/internal/services"
	"github.com/exam-coach/coach-service/internal/utils"
)

type GenerationHandler struct {
	BaseHandler
	service services.GenerationService
}

func NewGenerationHandler(service services.GenerationService, logger utils.Logger) *GenerationHandler {
	return &GenerationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GenerateStudyPlan creates and stores a fresh 7-day study plan.
// @Summary Generate study plan
// @Tags study-plan
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} services.StudyPlanResponse
// @Router /study-plan/{student_id} [post]
func (h *GenerationHandler) GenerateStudyPlan(c *gin.Context) {
	h.LogRequest(c, "Generating study plan")

	studentID, ok := h.studentIDParam(c)
	if !ok {
		return
	}

	plan, err := h.service.GenerateStudyPlan(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// GetLatestStudyPlan returns the most recently generated plan, or an empty
// plan when none exists yet.
// @Summary Get latest study plan
// @Tags study-plan
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} services.StudyPlanResponse
// @Router /study-plan/{student_id}/latest [get]
func (h *GenerationHandler) GetLatestStudyPlan(c *gin.Context) {
	h.LogRequest(c, "Getting latest study plan")

	studentID, ok := h.studentIDParam(c)
	if !ok {
		return
	}

	plan, err := h.service.GetLatestStudyPlan(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// GenerateRecommendations creates and stores a fresh recommendation set.
// @Summary Generate recommendations
// @Tags recommendations
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} services.RecommendationsResponse
// @Router /recommendations/{student_id} [post]
func (h *GenerationHandler) GenerateRecommendations(c *gin.Context) {
	h.LogRequest(c, "Generating recommendations")

	studentID, ok := h.studentIDParam(c)
	if !ok {
		return
	}

	recs, err := h.service.GenerateRecommendations(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recs)
}

// GetLatestRecommendations returns the most recent recommendation set, or an
// empty set when none exists yet.
// @Summary Get latest recommendations
// @Tags recommendations
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} services.RecommendationsResponse
// @Router /recommendations/{student_id}/latest [get]
func (h *GenerationHandler) GetLatestRecommendations(c *gin.Context) {
	h.LogRequest(c, "Getting latest recommendations")

	studentID, ok := h.studentIDParam(c)
	if !ok {
		return
	}

	recs, err := h.service.GetLatestRecommendations(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recs)
}
