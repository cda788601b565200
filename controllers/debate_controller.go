package controllers

import (
	"context"
	"net/http"
	"strconv"

	"eqcoach/middlewares"
	"eqcoach/models"
	"eqcoach/services"
	"eqcoach/structs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventReader returns a debate's newest events, oldest first.
type EventReader interface {
	Recent(ctx context.Context, sessionID string, count int64) ([]*services.Event, error)
}

type DebateController struct {
	sessions *services.SessionManager
	events   EventReader
	log      *zap.Logger
}

func NewDebateController(sessions *services.SessionManager, events EventReader, log *zap.Logger) *DebateController {
	return &DebateController{sessions: sessions, events: events, log: log}
}

type debateView struct {
	ID           string             `json:"id"`
	State        models.DebateState `json:"state"`
	Draft        string             `json:"draft"`
	Busy         bool               `json:"busy"`
	Instructions string             `json:"instructions"`
}

func viewOf(s *services.DebateSession) debateView {
	state := s.State()
	return debateView{
		ID:           s.ID(),
		State:        state,
		Draft:        s.Draft(),
		Busy:         s.Busy(),
		Instructions: services.StageInstructions(state.Stage),
	}
}

// session loads the debate in the path and checks it belongs to the caller.
func (d *DebateController) session(c *gin.Context) (*services.DebateSession, bool) {
	s, err := d.sessions.Get(c.Request.Context(), c.Param("id"), middlewares.UserEmail(c))
	if err != nil {
		respondError(c, d.log, err)
		return nil, false
	}
	return s, true
}

func (d *DebateController) Topics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"topics": models.DefaultDebateTopics})
}

func (d *DebateController) Create(c *gin.Context) {
	s := d.sessions.Create(c.Request.Context(), middlewares.UserEmail(c))
	c.JSON(http.StatusCreated, viewOf(s))
}

func (d *DebateController) Get(c *gin.Context) {
	s, ok := d.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(s))
}

func (d *DebateController) SelectTopic(c *gin.Context) {
	var req structs.TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d.apply(c, func(s *services.DebateSession) error {
		return s.SelectTopic(c.Request.Context(), req.Topic)
	})
}

func (d *DebateController) SelectSide(c *gin.Context) {
	var req structs.SideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d.apply(c, func(s *services.DebateSession) error {
		return s.SelectSide(c.Request.Context(), models.Side(req.Side))
	})
}

func (d *DebateController) Submit(c *gin.Context) {
	var req structs.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d.apply(c, func(s *services.DebateSession) error {
		return s.Submit(c.Request.Context(), req.Message)
	})
}

func (d *DebateController) Draft(c *gin.Context) {
	var req structs.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d.apply(c, func(s *services.DebateSession) error {
		s.SetDraft(req.Message)
		return nil
	})
}

func (d *DebateController) Reset(c *gin.Context) {
	d.apply(c, func(s *services.DebateSession) error {
		return s.Reset(c.Request.Context())
	})
}

func (d *DebateController) Delete(c *gin.Context) {
	s, ok := d.session(c)
	if !ok {
		return
	}
	if err := d.sessions.Remove(c.Request.Context(), s.ID()); err != nil {
		respondError(c, d.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Events returns the newest entries of the debate's event trail.
func (d *DebateController) Events(c *gin.Context) {
	s, ok := d.session(c)
	if !ok {
		return
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}
	if d.events == nil {
		c.JSON(http.StatusOK, gin.H{"events": []*services.Event{}})
		return
	}
	events, err := d.events.Recent(c.Request.Context(), s.ID(), limit)
	if err != nil {
		respondError(c, d.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (d *DebateController) apply(c *gin.Context, op func(*services.DebateSession) error) {
	s, ok := d.session(c)
	if !ok {
		return
	}
	if err := op(s); err != nil {
		respondError(c, d.log, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(s))
}
