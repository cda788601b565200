package controllers

import (
	"context"
	"net/http"

	"eqcoach/middlewares"
	"eqcoach/models"
	"eqcoach/services"
	"eqcoach/structs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyticsSource builds a user's dashboard.
type AnalyticsSource interface {
	Analytics(ctx context.Context, email string) (*models.AnalyticsData, error)
}

type CoachController struct {
	analyzer  *services.Analyzer
	chat      *services.CoachChat
	analytics AnalyticsSource
	log       *zap.Logger
}

func NewCoachController(analyzer *services.Analyzer, chat *services.CoachChat, analytics AnalyticsSource, log *zap.Logger) *CoachController {
	return &CoachController{analyzer: analyzer, chat: chat, analytics: analytics, log: log}
}

// Analyze scores a single message. It always answers, falling back to the
// local analysis when the model is unavailable.
func (co *CoachController) Analyze(c *gin.Context) {
	var req structs.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, co.analyzer.AnalyzeResponse(c.Request.Context(), req.Message))
}

func (co *CoachController) Chat(c *gin.Context) {
	var req structs.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reply, err := co.chat.Respond(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, co.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}

func (co *CoachController) Analytics(c *gin.Context) {
	data, err := co.analytics.Analytics(c.Request.Context(), middlewares.UserEmail(c))
	if err != nil {
		respondError(c, co.log, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
