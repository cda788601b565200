package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"eqcoach/db"
	"eqcoach/middlewares"
	"eqcoach/models"
	"eqcoach/services"
	"eqcoach/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("controllers-secret", time.Hour)
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = map[string]*models.User{}
	}
	if _, ok := m.users[user.Email]; ok {
		return db.ErrUserExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *memoryUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, db.ErrUserNotFound
}

type staticAnalytics struct{ data *models.AnalyticsData }

func (s staticAnalytics) Analytics(context.Context, string) (*models.AnalyticsData, error) {
	return s.data, nil
}

type scriptedGenerator struct{}

func (scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "As a professional debate coach"):
		return `{"overallSummary": "Good", "userDebateSkills": [{"skill": "Logic", "rating": 6}]}`, nil
	case strings.Contains(prompt, "You are an expert emotional intelligence and debate coach"):
		return "Breathe and name the feeling.", nil
	default:
		return "An opposing argument.", nil
	}
}

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	gen := scriptedGenerator{}
	policy := services.RetryPolicy{MaxAttempts: 1}

	analyzer := services.NewAnalyzer(gen, policy, log)
	journeys := services.NewJourneyService(services.JourneyDeps{Analyzer: analyzer, Log: log})
	sessions := services.NewSessionManager(services.DebateDeps{
		Coach:        services.NewDebateCoach(gen, policy, log),
		TickInterval: time.Hour,
		Log:          log,
	})
	t.Cleanup(sessions.Close)

	auth := NewAuthController(&memoryUsers{}, log)
	journeyCtl := NewJourneyController(journeys, log)
	debateCtl := NewDebateController(sessions, nil, log)
	coachCtl := NewCoachController(analyzer, services.NewCoachChat(gen, policy, log),
		staticAnalytics{data: &models.AnalyticsData{EQScore: 71, DebateScore: 60}}, log)

	r := gin.New()
	r.POST("/signup", auth.SignUp)
	r.POST("/login", auth.Login)

	api := r.Group("/", middlewares.AuthMiddleware(log))
	api.POST("/journey", journeyCtl.Start)
	api.GET("/journey/:id", journeyCtl.Get)
	api.POST("/journey/:id/respond", journeyCtl.Respond)
	api.POST("/journey/:id/reset", journeyCtl.Reset)
	api.GET("/debate/topics", debateCtl.Topics)
	api.POST("/debate", debateCtl.Create)
	api.GET("/debate/:id", debateCtl.Get)
	api.DELETE("/debate/:id", debateCtl.Delete)
	api.GET("/debate/:id/events", debateCtl.Events)
	api.POST("/debate/:id/topic", debateCtl.SelectTopic)
	api.POST("/debate/:id/side", debateCtl.SelectSide)
	api.POST("/debate/:id/draft", debateCtl.Draft)
	api.POST("/debate/:id/submit", debateCtl.Submit)
	api.POST("/debate/:id/reset", debateCtl.Reset)
	api.POST("/analyze", coachCtl.Analyze)
	api.POST("/coach/chat", coachCtl.Chat)
	api.GET("/analytics", coachCtl.Analytics)

	return &testServer{router: r}
}

func tokenFor(t *testing.T, email string) string {
	t.Helper()
	token, err := utils.GenerateJWTToken("user-id", email)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestAuthSignUpAndLogin(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"email": "Ada@Example.com", "password": "correct-horse"}

	w := s.do(t, http.MethodPost, "/signup", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var signup struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}
	decode(t, w, &signup)
	assert.NotEmpty(t, signup.AccessToken)
	assert.Equal(t, "ada@example.com", signup.User.Email)
	assert.Equal(t, "ada", signup.User.DisplayName)
	assert.NotContains(t, w.Body.String(), "correct-horse")

	email, err := utils.EmailFromToken(signup.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)

	w = s.do(t, http.MethodPost, "/signup", "", creds)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/login", "", creds)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/login", "", map[string]string{"email": "nobody@example.com", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/signup", "", map[string]string{"email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/journey", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJourneyEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := tokenFor(t, "grace@example.com")

	w := s.do(t, http.MethodPost, "/journey", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var snap models.JourneySnapshot
	decode(t, w, &snap)
	assert.Equal(t, models.StageGreeting, snap.State.Stage)

	w = s.do(t, http.MethodPost, "/journey/"+snap.ID+"/respond", token, map[string]string{"message": "ready"})
	require.Equal(t, http.StatusOK, w.Code)
	var reply services.JourneyReply
	decode(t, w, &reply)
	assert.Equal(t, models.StageQuestions, reply.State.Stage)
	require.Len(t, reply.Messages, 1)

	w = s.do(t, http.MethodPost, "/journey/"+snap.ID+"/respond", token, map[string]string{"message": ""})
	assert.Equal(t, http.StatusConflict, w.Code, "an empty answer is rejected")

	other := tokenFor(t, "mallory@example.com")
	w = s.do(t, http.MethodGet, "/journey/"+snap.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/journey/"+snap.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &snap)
	assert.Len(t, snap.Transcript, 3)

	w = s.do(t, http.MethodPost, "/journey/"+snap.ID+"/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &snap)
	assert.Equal(t, models.StageGreeting, snap.State.Stage)
	assert.Len(t, snap.Transcript, 1)
}

func TestDebateEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := tokenFor(t, "ada@example.com")

	w := s.do(t, http.MethodGet, "/debate/topics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.DefaultDebateTopics[0])

	w = s.do(t, http.MethodPost, "/debate", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var view debateView
	decode(t, w, &view)
	assert.Equal(t, models.DebateTopicSelection, view.State.Stage)
	base := "/debate/" + view.ID

	w = s.do(t, http.MethodPost, base+"/side", token, map[string]string{"side": "for"})
	assert.Equal(t, http.StatusConflict, w.Code, "side before topic")

	w = s.do(t, http.MethodPost, base+"/topic", token, map[string]string{"topic": models.DefaultDebateTopics[2]})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base+"/side", token, map[string]string{"side": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, base+"/side", token, map[string]string{"side": "against"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.Equal(t, models.DebateOpeningStatement, view.State.Stage)
	assert.True(t, view.State.TimerRunning)

	w = s.do(t, http.MethodPost, base+"/draft", token, map[string]string{"message": "thinking..."})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.Equal(t, "thinking...", view.Draft)

	for _, stage := range []models.DebateStage{models.DebateRebuttal, models.DebateClosingStatement, models.DebateConclusion} {
		w = s.do(t, http.MethodPost, base+"/submit", token, map[string]string{"message": "My point"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decode(t, w, &view)
		assert.Equal(t, stage, view.State.Stage)
	}
	require.NotNil(t, view.State.Analysis)
	assert.Equal(t, "Good", view.State.Analysis.OverallSummary)
	assert.Empty(t, view.Draft)

	w = s.do(t, http.MethodPost, base+"/submit", token, map[string]string{"message": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)

	other := tokenFor(t, "mallory@example.com")
	w = s.do(t, http.MethodGet, base, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, base+"/events?limit=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, base+"/events", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base+"/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fresh debateView
	decode(t, w, &fresh)
	assert.Equal(t, models.DebateTopicSelection, fresh.State.Stage)
	assert.Nil(t, fresh.State.Analysis)

	w = s.do(t, http.MethodDelete, base, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCoachEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := tokenFor(t, "ada@example.com")

	w := s.do(t, http.MethodPost, "/analyze", token, map[string]string{"message": "I'm ok"})
	require.Equal(t, http.StatusOK, w.Code)
	var result models.AnalysisResult
	decode(t, w, &result)
	assert.Equal(t, models.SourceLocal, result.Source)
	assert.Equal(t, 65, result.Score)

	w = s.do(t, http.MethodPost, "/analyze", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/coach/chat", token, map[string]string{"message": "I get nervous before debates"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Breathe and name the feeling.")

	w = s.do(t, http.MethodGet, "/analytics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data models.AnalyticsData
	decode(t, w, &data)
	assert.Equal(t, 71, data.EQScore)
	assert.Equal(t, 60, data.DebateScore)
}
