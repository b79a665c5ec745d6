package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exam-coach/coach-service/internal/config"
	"github.com/exam-coach/coach-service/internal/services"
	"github.com/exam-coach/coach-service/internal/utils"
)

type HandlerManager struct {
	testHandler       *TestHandler
	analysisHandler   *AnalysisHandler
	generationHandler *GenerationHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	return &HandlerManager{
		testHandler:       NewTestHandler(serviceManager.Scoring(), logger),
		analysisHandler:   NewAnalysisHandler(serviceManager.Analysis(), logger),
		generationHandler: NewGenerationHandler(serviceManager.Generation(), logger),
		authMiddleware:    NewCasdoorAuthMiddleware(casdoorConfig),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		tests := v1.Group("/tests")
		{
			tests.POST("/submit", hm.testHandler.SubmitTest)
		}

		analysis := v1.Group("/analysis")
		{
			analysis.GET("/:student_id", hm.analysisHandler.GetAnalysis)
			analysis.GET("/:student_id/export", hm.analysisHandler.ExportAnalysis)
		}

		v1.GET("/progress/:student_id", hm.analysisHandler.GetProgress)

		studyPlan := v1.Group("/study-plan")
		{
			studyPlan.POST("/:student_id", hm.generationHandler.GenerateStudyPlan)
			studyPlan.GET("/:student_id/latest", hm.generationHandler.GetLatestStudyPlan)
		}

		recommendations := v1.Group("/recommendations")
		{
			recommendations.POST("/:student_id", hm.generationHandler.GenerateRecommendations)
			recommendations.GET("/:student_id/latest", hm.generationHandler.GetLatestRecommendations)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "coach-service",
		})
	})
}
