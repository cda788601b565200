package services

import (
	"context"
	"strings"

	"eqcoach/models"

	"go.uber.org/zap"
)

// DebateCoach talks to the model on behalf of the AI debater.
type DebateCoach struct {
	gen    Generator
	policy RetryPolicy
	log    *zap.Logger
}

func NewDebateCoach(gen Generator, policy RetryPolicy, log *zap.Logger) *DebateCoach {
	if log == nil {
		log = zap.NewNop()
	}
	return &DebateCoach{gen: gen, policy: policy, log: log}
}

// Reply generates the AI's argument answering userInput in the state's current stage.
func (c *DebateCoach) Reply(ctx context.Context, state models.DebateState, userInput string) (string, error) {
	prompt := BuildDebatePrompt(DebatePromptInput{
		Stage:     state.Stage,
		Topic:     state.Topic,
		UserSide:  state.UserSide,
		UserInput: userInput,
		History:   state.Messages,
	})
	text, err := generate(ctx, c.gen, c.policy, c.log, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Analyze produces the end-of-debate report. It needs at least one argument
// from each side.
func (c *DebateCoach) Analyze(ctx context.Context, state models.DebateState) (*models.DebateAnalysis, error) {
	userTurns, aiTurns := debateTurnBlocks(state.Messages)
	if len(userTurns) == 0 || len(aiTurns) == 0 {
		return nil, invalid("analyze debate", "not enough debate content to analyze")
	}

	raw, err := generate(ctx, c.gen, c.policy, c.log,
		BuildDebateAnalysisPrompt(state.Topic, state.UserSide, state.Messages))
	if err != nil {
		return nil, err
	}
	parsed, err := ParseDebateAnalysis(raw)
	if err != nil {
		c.log.Warn("debate analysis was malformed", zap.Error(err))
		return nil, err
	}
	return parsed.ToDebateAnalysis(), nil
}

const coachChatApology = "I apologize, but I'm having trouble responding right now. Please try again in a moment."

// CoachChat answers a free-form coaching message.
type CoachChat struct {
	gen    Generator
	policy RetryPolicy
	log    *zap.Logger
}

func NewCoachChat(gen Generator, policy RetryPolicy, log *zap.Logger) *CoachChat {
	if log == nil {
		log = zap.NewNop()
	}
	return &CoachChat{gen: gen, policy: policy, log: log}
}

// Respond returns the coach's reply. Generation failures become an apology;
// only an empty message is an error.
func (c *CoachChat) Respond(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", invalid("coach chat", "message is required")
	}
	text, err := generate(ctx, c.gen, c.policy, c.log, BuildCoachChatPrompt(message))
	if err != nil {
		c.log.Warn("coach chat unavailable", zap.Error(err))
		return coachChatApology, nil
	}
	return strings.TrimSpace(text), nil
}
