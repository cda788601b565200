package controllers

import (
	"net/http"

	"eqcoach/middlewares"
	"eqcoach/services"
	"eqcoach/structs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type JourneyController struct {
	journeys *services.JourneyService
	log      *zap.Logger
}

func NewJourneyController(journeys *services.JourneyService, log *zap.Logger) *JourneyController {
	return &JourneyController{journeys: journeys, log: log}
}

func (j *JourneyController) Start(c *gin.Context) {
	snap, err := j.journeys.Start(c.Request.Context(), middlewares.UserEmail(c))
	if err != nil {
		respondError(c, j.log, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (j *JourneyController) Get(c *gin.Context) {
	snap, err := j.journeys.Get(c.Request.Context(), c.Param("id"), middlewares.UserEmail(c))
	if err != nil {
		respondError(c, j.log, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (j *JourneyController) Respond(c *gin.Context) {
	var req structs.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reply, err := j.journeys.Respond(c.Request.Context(), c.Param("id"), middlewares.UserEmail(c), req.Message)
	if err != nil {
		respondError(c, j.log, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (j *JourneyController) Reset(c *gin.Context) {
	snap, err := j.journeys.Reset(c.Request.Context(), c.Param("id"), middlewares.UserEmail(c))
	if err != nil {
		respondError(c, j.log, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
