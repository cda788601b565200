package services

import (
	"encoding/json"
	"time"

	"eqcoach/models"
)

// Debate session event types pushed to subscribers.
const (
	EventMessage  = "message"
	EventTick     = "tick"
	EventStage    = "stage"
	EventBusy     = "busy"
	EventAnalysis = "analysis"
	EventReset    = "reset"
)

// Event is one debate session update.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// MessagePayload carries a new transcript line.
type MessagePayload struct {
	Message models.DebateMessage `json:"message"`
}

// TickPayload carries the countdown.
type TickPayload struct {
	TimeRemaining int `json:"timeRemaining"`
}

// StagePayload is sent whenever the stage or timer state changes.
type StagePayload struct {
	Stage         models.DebateStage `json:"stage"`
	Instructions  string             `json:"instructions"`
	TimeRemaining int                `json:"timeRemaining"`
	TimerRunning  bool               `json:"timerRunning"`
}

// BusyPayload reports whether a generation is in flight.
type BusyPayload struct {
	Busy bool `json:"busy"`
}

// AnalysisPayload carries the end-of-debate report.
type AnalysisPayload struct {
	Analysis *models.DebateAnalysis `json:"analysis"`
}

// ResetPayload carries the whole fresh state.
type ResetPayload struct {
	State models.DebateState `json:"state"`
}

// ClientMessage is what a websocket client sends.
type ClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewEvent creates a new event with timestamp
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:      eventType,
		Payload:   payloadBytes,
		Timestamp: time.Now().Unix(),
	}, nil
}

func stagePayload(s models.DebateState) StagePayload {
	return StagePayload{
		Stage:         s.Stage,
		Instructions:  StageInstructions(s.Stage),
		TimeRemaining: s.TimeRemaining,
		TimerRunning:  s.TimerRunning,
	}
}
