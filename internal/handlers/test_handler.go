package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exam-coach/coach-service/internal/services"
	"github.com/exam-coach/coach-service/internal/utils"
)

type TestHandler struct {
	BaseHandler
	service services.ScoringService
}

func NewTestHandler(service services.ScoringService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// submitTestBody is the submission payload. The student_id field is only
// honoured when the request carries no authenticated identity.
type submitTestBody struct {
	StudentID string `json:"student_id"`
	services.SubmitTestRequest
}

// SubmitTest records a completed mock test and returns the grading summary.
// @Summary Submit a mock test
// @Tags tests
// @Accept json
// @Produce json
// @Success 200 {object} services.TestSubmissionResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /tests/submit [post]
func (h *TestHandler) SubmitTest(c *gin.Context) {
	h.LogRequest(c, "Submitting mock test")

	var body submitTestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	studentID := body.StudentID
	if id, err := GetUserIDFromContext(c); err == nil {
		studentID = id
	}
	if studentID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Student identity missing",
			Details: "authenticate or provide student_id",
		})
		return
	}

	resp, err := h.service.SubmitTest(c.Request.Context(), studentID, &body.SubmitTestRequest)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
