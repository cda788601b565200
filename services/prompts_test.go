package services

import (
	"strings"
	"testing"
	"time"

	"eqcoach/models"

	"github.com/stretchr/testify/assert"
)

func debateHistory() []models.DebateMessage {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []models.DebateMessage{
		{ID: "1", Sender: models.SenderAI, Text: "Welcome to the arena", Timestamp: at},
		{ID: "2", Sender: models.SenderUser, Text: "Remote work saves commuting time", Stage: models.DebateOpeningStatement, Timestamp: at},
		{ID: "3", Sender: models.SenderAI, Text: "Offices build culture", Stage: models.DebateOpeningStatement, Timestamp: at},
		{ID: "4", Sender: models.SenderAI, Text: "Time's up! Let's move on with the debate.", Timestamp: at},
		{ID: "5", Sender: models.SenderUser, Text: "Culture can be built online", Stage: models.DebateRebuttal, Timestamp: at},
	}
}

func TestBuildDebatePromptIsDeterministic(t *testing.T) {
	in := DebatePromptInput{
		Stage:     models.DebateRebuttal,
		Topic:     "Remote work should be the standard for most office jobs",
		UserSide:  models.SideFor,
		UserInput: "Culture can be built online",
		History:   debateHistory(),
	}
	assert.Equal(t, BuildDebatePrompt(in), BuildDebatePrompt(in))
}

func TestBuildDebatePromptPerStage(t *testing.T) {
	base := DebatePromptInput{
		Topic:     "Nuclear energy should be expanded to combat climate change",
		UserSide:  models.SideAgainst,
		UserInput: "Waste storage is unsolved",
	}
	tests := []struct {
		stage models.DebateStage
		want  []string
	}{
		{stage: models.DebateOpeningStatement, want: []string{"opening statement", "arguing for this proposition", "Waste storage is unsolved"}},
		{stage: models.DebateRebuttal, want: []string{"strategic rebuttal", "who is arguing against"}},
		{stage: models.DebateClosingStatement, want: []string{"closing statement", "memorable concluding thought"}},
		{stage: models.DebateTopicSelection, want: []string{"Provide a thoughtful response"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			in := base
			in.Stage = tt.stage
			prompt := BuildDebatePrompt(in)
			assert.Contains(t, prompt, base.Topic)
			for _, w := range tt.want {
				assert.Contains(t, prompt, w)
			}
		})
	}
}

func TestBuildDebatePromptConclusionIsAnalysis(t *testing.T) {
	in := DebatePromptInput{
		Stage:    models.DebateConclusion,
		Topic:    "Remote work",
		UserSide: models.SideFor,
		History:  debateHistory(),
	}
	assert.Equal(t, BuildDebateAnalysisPrompt(in.Topic, in.UserSide, in.History), BuildDebatePrompt(in))
}

func TestBuildDebateAnalysisPromptUsesOnlyArgumentTurns(t *testing.T) {
	prompt := BuildDebateAnalysisPrompt("Remote work", models.SideFor, debateHistory())

	assert.Contains(t, prompt, "opening_statement: Remote work saves commuting time\n\nrebuttal: Culture can be built online")
	assert.Contains(t, prompt, "opening_statement: Offices build culture")
	assert.NotContains(t, prompt, "Welcome to the arena")
	assert.NotContains(t, prompt, "Time's up")
	assert.Contains(t, prompt, "The AI was arguing against")
}

func TestBuildConversationAnalysisPromptOrdersByQuestion(t *testing.T) {
	responses := map[string]string{
		"improvement_reflection": "Pause before replying",
		"current_feelings":       "Tired but hopeful",
		"zz_custom":              "Extra note",
	}
	prompt := BuildConversationAnalysisPrompt(responses)

	first := strings.Index(prompt, "Tired but hopeful")
	second := strings.Index(prompt, "Pause before replying")
	third := strings.Index(prompt, "Extra note")
	assert.True(t, first >= 0 && first < second && second < third)
	assert.Contains(t, prompt, "Question: zz_custom")
	assert.Equal(t, prompt, BuildConversationAnalysisPrompt(responses))
}

func TestBuildResponseAnalysisPrompt(t *testing.T) {
	prompt := BuildResponseAnalysisPrompt("I feel overwhelmed at work")
	assert.Contains(t, prompt, `"I feel overwhelmed at work"`)
	assert.Contains(t, prompt, `"Self_Awareness"`)
	assert.Contains(t, prompt, "specific examples from their response")
	assert.Contains(t, prompt, "Only include JSON")
}
