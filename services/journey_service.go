package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"eqcoach/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const insightsReadyMsg = "I have analyzed your responses and have some insights to share."

// JourneyDeps are the collaborators of the journey service.
type JourneyDeps struct {
	Analyzer *Analyzer
	Store    SnapshotStore
	Locker   Locker
	History  HistoryRecorder
	Log      *zap.Logger
}

// JourneyService runs EQ journeys whose state lives entirely in the snapshot
// store, so any instance can serve any journey.
type JourneyService struct {
	analyzer *Analyzer
	store    SnapshotStore
	locker   Locker
	history  HistoryRecorder
	log      *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewJourneyService(deps JourneyDeps) *JourneyService {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Analyzer == nil {
		deps.Analyzer = NewAnalyzer(nil, DefaultRetryPolicy(), deps.Log)
	}
	mem := NewMemoryStore()
	if deps.Store == nil {
		deps.Store = mem
	}
	if deps.Locker == nil {
		deps.Locker = mem
	}
	if deps.History == nil {
		deps.History = noopHistory{}
	}
	return &JourneyService{
		analyzer: deps.Analyzer,
		store:    deps.Store,
		locker:   deps.Locker,
		history:  deps.History,
		log:      deps.Log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// JourneyReply is the outcome of one user message.
type JourneyReply struct {
	Messages []models.ChatMessage     `json:"messages"`
	State    models.ConversationState `json:"state"`
}

func (j *JourneyService) chat(sender models.Sender, text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        j.newID(),
		Sender:    sender,
		Text:      text,
		Timestamp: j.now().UnixMilli(),
	}
}

func (j *JourneyService) fresh(id, email string) *models.JourneySnapshot {
	return &models.JourneySnapshot{
		ID:         id,
		Email:      email,
		State:      NewConversationState(),
		Transcript: []models.ChatMessage{j.chat(models.SenderAI, InitialGreeting())},
		UpdatedAt:  j.now().Unix(),
	}
}

// Start creates a journey for email and returns its first snapshot.
func (j *JourneyService) Start(ctx context.Context, email string) (*models.JourneySnapshot, error) {
	snap := j.fresh(j.newID(), email)
	if err := j.store.Save(ctx, KindJourney, snap.ID, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Get loads a journey owned by email.
func (j *JourneyService) Get(ctx context.Context, id, email string) (*models.JourneySnapshot, error) {
	var snap models.JourneySnapshot
	if err := j.store.Load(ctx, KindJourney, id, &snap); err != nil {
		return nil, err
	}
	if snap.Email != email {
		return nil, ErrSessionNotFound
	}
	if snap.State.Responses == nil {
		snap.State.Responses = map[string]string{}
	}
	return &snap, nil
}

// Reset replaces a journey with a fresh one under the same id.
func (j *JourneyService) Reset(ctx context.Context, id, email string) (*models.JourneySnapshot, error) {
	if _, err := j.Get(ctx, id, email); err != nil {
		return nil, err
	}
	snap := j.fresh(id, email)
	if err := j.store.Save(ctx, KindJourney, id, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Respond applies one user message. The answer that completes the questions
// triggers the journey analysis before the reply is returned. Concurrent
// messages for the same journey get ErrBusy.
func (j *JourneyService) Respond(ctx context.Context, id, email, text string) (*JourneyReply, error) {
	ok, err := j.locker.TryLock(ctx, KindJourney, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusy
	}
	defer func() {
		if err := j.locker.Unlock(context.WithoutCancel(ctx), KindJourney, id); err != nil {
			j.log.Warn("failed to release journey lock", zap.String("journeyId", id), zap.Error(err))
		}
	}()

	snap, err := j.Get(ctx, id, email)
	if err != nil {
		return nil, err
	}

	coachText, next, err := AdvanceConversation(snap.State, text)
	if err != nil {
		return nil, err
	}

	var produced []models.ChatMessage
	if strings.TrimSpace(text) != "" {
		snap.Transcript = append(snap.Transcript, j.chat(models.SenderUser, text))
	}

	switch {
	case next.Stage == models.StageAnalysis && next.AnalysisResults == nil:
		result := j.analyzer.AnalyzeConversation(ctx, next)
		attached, err := AttachAnalysis(next, result)
		if err != nil {
			return nil, err
		}
		next = attached
		produced = append(produced,
			j.chat(models.SenderAI, insightsReadyMsg),
			j.chat(models.SenderAI, result.ResponseText))
		j.record(ctx, snap, next)
	case next.Stage == models.StageFeedback && next.AnalysisResults != nil && !next.Complete:
		produced = append(produced, j.chat(models.SenderAI, next.AnalysisResults.ResponseText))
	default:
		produced = append(produced, j.chat(models.SenderAI, coachText))
	}

	snap.State = next
	snap.Transcript = append(snap.Transcript, produced...)
	snap.UpdatedAt = j.now().Unix()
	if err := j.store.Save(ctx, KindJourney, id, snap); err != nil {
		return nil, err
	}
	return &JourneyReply{Messages: produced, State: next.Clone()}, nil
}

func (j *JourneyService) record(ctx context.Context, snap *models.JourneySnapshot, state models.ConversationState) {
	result := models.JourneyResult{
		Email:     snap.Email,
		SessionID: snap.ID,
		Responses: state.Responses,
		Analysis:  *state.AnalysisResults,
		CreatedAt: j.now(),
	}
	if err := j.history.RecordJourney(ctx, result); err != nil {
		j.log.Warn("failed to record journey history", zap.String("journeyId", snap.ID), zap.Error(err))
	}
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
