package services

import (
	"testing"

	"eqcoach/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsShortInput(t *testing.T) {
	assert.True(t, IsShortInput("I'm ok"))
	assert.True(t, IsShortInput("   fine thanks   "))
	assert.False(t, IsShortInput("I feel happy and need motivation"))
}

func TestExtractEmotionWords(t *testing.T) {
	got := ExtractEmotionWords("Happy, then SAD, then happy again and anxious about being sad")
	assert.Equal(t, []string{"happy", "sad", "anxious"}, got)

	assert.Empty(t, ExtractEmotionWords("The meeting ran long"))
	assert.NotNil(t, ExtractEmotionWords(""))
}

func TestLocalAnalysisPositiveNeed(t *testing.T) {
	result := LocalAnalysis("I feel happy and need motivation")

	assert.Equal(t, 75, result.Score)
	assert.Equal(t, models.SourceLocal, result.Source)
	assert.Equal(t, []string{"happy"}, result.EmotionalVocabulary)
	assert.Contains(t, result.ResponseText, "feeling happy")
	assert.Equal(t, []string{
		"Positive emotional awareness: You recognize your positive feelings",
		"Self-awareness: You can identify what you need emotionally",
	}, result.StrengthsAndWeaknesses.Strengths)
	assert.Equal(t, []string{"Try to express your emotions with more detail"}, result.StrengthsAndWeaknesses.Weaknesses)
	assert.Equal(t, 70, result.CategoryScores[models.CategorySelfAwareness].Score)
	assert.Equal(t, 65, result.CategoryScores[models.CategoryEmotionalExpression].Score)
}

func TestLocalAnalysisScores(t *testing.T) {
	tests := []struct {
		text  string
		score int
	}{
		{text: "I'm ok", score: 65},
		{text: "good", score: 75},
		{text: "I feel sad", score: 55},
		{text: "good and bad", score: 65},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			result := LocalAnalysis(tt.text)
			assert.Equal(t, tt.score, result.Score)
			assert.Len(t, result.CategoryScores, len(models.EQCategories))
			for _, name := range models.EQCategories {
				score := result.CategoryScores[name].Score
				assert.True(t, score >= 0 && score <= 100, name)
			}
			assert.NotEmpty(t, result.Feedback)
			assert.NotEmpty(t, result.ResponseText)
			assert.NotEmpty(t, result.KeyInsights)
			assert.NotEmpty(t, result.StrengthsAndWeaknesses.Strengths)
			assert.NotEmpty(t, result.StrengthsAndWeaknesses.Weaknesses)
		})
	}
}

func TestLocalAnalysisWithoutEmotionWords(t *testing.T) {
	result := LocalAnalysis("I'm ok")
	assert.Equal(t, []string{"No specific emotion words detected"}, result.CategoryScores[models.CategorySelfAwareness].Examples)
	assert.Equal(t, 55, result.CategoryScores[models.CategoryEmotionalExpression].Score)
	assert.Contains(t, result.ResponseText, "could you tell me more")
}

func TestConversationFallback(t *testing.T) {
	responses := map[string]string{
		"current_feelings":  "I feel anxious and stressed before deadlines but calm afterwards",
		"reaction_patterns": "I take a walk when frustrated",
	}
	result := ConversationFallback(responses)

	// 16 words over 2 answers: expression = 50 + 8/20*10 = 54.
	// 4 emotion words: self-awareness = 50 + 20 = 70.
	require.Equal(t, []string{"anxious", "stressed", "calm", "frustrated"}, result.EmotionalVocabulary)
	assert.Equal(t, 70, result.CategoryScores[models.CategorySelfAwareness].Score)
	assert.Equal(t, 54, result.CategoryScores[models.CategoryEmotionalExpression].Score)
	assert.Equal(t, 62, result.Score)
	assert.Len(t, result.CategoryScores[models.CategorySelfAwareness].Examples, 3)
	assert.Contains(t, result.ResponseText, "4 emotion-related words")
	assert.Equal(t, models.SourceLocal, result.Source)
}

func TestConversationFallbackCountsRepeatedWords(t *testing.T) {
	result := ConversationFallback(map[string]string{"current_feelings": "sad sad sad sad"})

	assert.Equal(t, []string{"sad"}, result.EmotionalVocabulary)
	// Every occurrence counts: 50 + 4*5.
	assert.Equal(t, 70, result.CategoryScores[models.CategorySelfAwareness].Score)
	assert.Contains(t, result.ResponseText, "4 emotion-related words")
}

func TestConversationFallbackEmpty(t *testing.T) {
	result := ConversationFallback(map[string]string{})
	assert.Equal(t, 50, result.Score)
	assert.Empty(t, result.EmotionalVocabulary)
}
