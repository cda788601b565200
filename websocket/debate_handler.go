package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"eqcoach/middlewares"
	"eqcoach/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
	submitTimeout = 2 * time.Minute
)

// Event types only this transport sends.
const (
	eventState = "state"
	eventError = "error"
)

type statePayload struct {
	ID           string      `json:"id"`
	State        interface{} `json:"state"`
	Draft        string      `json:"draft"`
	Busy         bool        `json:"busy"`
	Instructions string      `json:"instructions"`
}

type errorPayload struct {
	Error string `json:"error"`
}

var errRateLimited = errors.New("too many requests, please slow down")

// DebateHandler streams a debate session's events over a websocket and accepts
// draft and submit messages from the client. Submits draw on the same
// generation budget as the HTTP submit route.
type DebateHandler struct {
	sessions *services.SessionManager
	limiter  middlewares.Limiter
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewDebateHandler(sessions *services.SessionManager, limiter middlewares.Limiter, allowedOrigins []string, log *zap.Logger) *DebateHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &DebateHandler{
		sessions: sessions,
		limiter:  limiter,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (cl *client) send(ev *services.Event) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return cl.conn.WriteJSON(ev)
}

func (cl *client) ping() error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	return cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Serve handles GET /ws/debate/:id.
func (h *DebateHandler) Serve(c *gin.Context) {
	email := middlewares.UserEmail(c)
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"), email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	log := h.log.With(zap.String("debateId", session.ID()))
	log.Debug("debate client connected")

	cl := &client{conn: conn}
	events, unsubscribe := session.Subscribe()

	if ev, err := services.NewEvent(eventState, snapshotOf(session)); err == nil {
		if err := cl.send(ev); err != nil {
			unsubscribe()
			conn.Close()
			return
		}
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(cl, events, done, log)
	}()

	h.readLoop(cl, session, email, &wg, log)

	close(done)
	unsubscribe()
	wg.Wait()
	conn.Close()
	log.Debug("debate client disconnected")
}

func snapshotOf(s *services.DebateSession) statePayload {
	state := s.State()
	return statePayload{
		ID:           s.ID(),
		State:        state,
		Draft:        s.Draft(),
		Busy:         s.Busy(),
		Instructions: services.StageInstructions(state.Stage),
	}
}

func (h *DebateHandler) writeLoop(cl *client, events <-chan *services.Event, done <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := cl.send(ev); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := cl.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *DebateHandler) readLoop(cl *client, session *services.DebateSession, email string, wg *sync.WaitGroup, log *zap.Logger) {
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg services.ClientMessage
		if err := cl.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "draft":
			session.SetDraft(msg.Text)
		case "submit":
			wg.Add(1)
			go func(text string) {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
				defer cancel()
				if !h.allow(ctx, email, log) {
					h.reportError(cl, errRateLimited, log)
					return
				}
				if err := session.Submit(ctx, text); err != nil {
					h.reportError(cl, err, log)
				}
			}(msg.Text)
		default:
			h.reportError(cl, errors.New("unknown message type "+msg.Type), log)
		}
	}
}

// allow charges one generation to email's budget. A failing limiter lets the
// submit through, as the HTTP middleware does.
func (h *DebateHandler) allow(ctx context.Context, email string, log *zap.Logger) bool {
	if h.limiter == nil {
		return true
	}
	ok, err := h.limiter.Allow(ctx, email)
	if err != nil {
		log.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	return ok
}

func (h *DebateHandler) reportError(cl *client, err error, log *zap.Logger) {
	text := err.Error()
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrBusy):
		text = "Still working on the previous message"
	case errors.As(err, &ve):
		text = ve.Reason
	}
	ev, encErr := services.NewEvent(eventError, errorPayload{Error: text})
	if encErr != nil {
		return
	}
	if sendErr := cl.send(ev); sendErr != nil {
		log.Debug("failed to report websocket error", zap.Error(sendErr))
	}
}
