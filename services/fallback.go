package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"eqcoach/models"
)

// ShortInputThreshold is the trimmed length below which the model is not called.
const ShortInputThreshold = 15

var emotionLexicon = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"happy", "sad", "angry", "frustrated", "afraid", "anxious", "excited",
		"content", "upset", "surprised", "disgusted", "bored", "confused",
		"proud", "ashamed", "guilty", "jealous", "envious", "grateful", "hopeful",
		"disappointed", "embarrassed", "satisfied", "lonely", "loved", "calm",
		"stressed", "overwhelmed", "relaxed", "irritated", "joyful", "depressed",
		"motivated", "unmotivated", "confident", "insecure", "optimistic", "pessimistic",
		"good", "bad", "worried", "relieved", "enthusiastic", "apathetic",
	} {
		emotionLexicon[w] = struct{}{}
	}
}

var (
	wordPattern     = regexp.MustCompile(`\b(\w+)\b`)
	positivePattern = regexp.MustCompile(`(?i)good|happy|great|positive|excited|motivated`)
	negativePattern = regexp.MustCompile(`(?i)bad|sad|angry|frustrated|upset|anxious|worried`)
	needPattern     = regexp.MustCompile(`(?i)need|want|wish|hope|desire`)
)

// IsShortInput reports whether text carries too little signal to send to the model.
func IsShortInput(text string) bool {
	return len(strings.TrimSpace(text)) < ShortInputThreshold
}

// ExtractEmotionWords returns the distinct lexicon words found in text, in order
// of first appearance.
func ExtractEmotionWords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	found := make([]string, 0)
	seen := make(map[string]bool)
	for _, w := range words {
		if _, ok := emotionLexicon[w]; !ok || seen[w] {
			continue
		}
		seen[w] = true
		found = append(found, w)
	}
	return found
}

// countEmotionWords counts every lexicon word in text, repeats included.
func countEmotionWords(text string) int {
	n := 0
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, ok := emotionLexicon[w]; ok {
			n++
		}
	}
	return n
}

type sentiment struct {
	positive bool
	negative bool
	need     bool
}

func classify(text string) sentiment {
	return sentiment{
		positive: positivePattern.MatchString(text),
		negative: negativePattern.MatchString(text),
		need:     needPattern.MatchString(text),
	}
}

func (s sentiment) baseScore() int {
	score := 65
	if s.positive && !s.negative {
		score += 10
	}
	if s.negative && !s.positive {
		score -= 10
	}
	return score
}

func firstMatching(words []string, pattern *regexp.Regexp) string {
	for _, w := range words {
		if pattern.MatchString(w) {
			return w
		}
	}
	return ""
}

func coachingText(s sentiment, vocab []string) string {
	switch {
	case s.positive:
		feeling := firstMatching(vocab, positivePattern)
		if feeling == "" {
			feeling = "good"
		}
		return fmt.Sprintf("It's great that you're feeling %s! Building on positive emotions can be powerful. What specific area of motivation would most help you right now?", feeling)
	case s.negative:
		if feeling := firstMatching(vocab, negativePattern); feeling != "" {
			return fmt.Sprintf("I hear that you're feeling %s and facing some challenges. Recognizing your emotions is an important first step. Would you like to explore what might help improve how you're feeling?", feeling)
		}
		return "I hear that you're facing some challenges. Recognizing your emotions is an important first step. Would you like to explore what might help improve how you're feeling?"
	case s.need:
		return "Recognizing what you need is an important aspect of emotional intelligence. Let's explore what specific motivation would be most helpful for you."
	default:
		return "Thank you for sharing. To provide more personalized guidance on emotional intelligence, could you tell me more about how you're feeling and what you'd like to work on?"
	}
}

// LocalAnalysis is the network-free heuristic analysis. It never fails and
// always fills every field.
func LocalAnalysis(text string) *models.AnalysisResult {
	vocab := ExtractEmotionWords(text)
	s := classify(text)

	var strengths, weaknesses []string
	if s.positive {
		strengths = append(strengths, "Positive emotional awareness: You recognize your positive feelings")
	} else {
		weaknesses = append(weaknesses, "Emotional awareness: Try to be more specific about how you feel")
	}
	if s.need {
		strengths = append(strengths, "Self-awareness: You can identify what you need emotionally")
	} else {
		weaknesses = append(weaknesses, "Need identification: Consider reflecting on what would help you emotionally")
	}
	if len(strengths) == 0 {
		strengths = []string{"Basic emotional awareness"}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{"Try to express your emotions with more detail"}
	}

	selfAwareness := 60
	if s.positive || s.negative {
		selfAwareness = 70
	}
	expression := 55
	awarenessExamples := []string{"No specific emotion words detected"}
	if len(vocab) > 0 {
		expression = 65
		awarenessExamples = append([]string(nil), vocab...)
	}

	return &models.AnalysisResult{
		Score: models.ClampScore(s.baseScore()),
		CategoryScores: map[string]models.CategoryScore{
			models.CategorySelfAwareness: {
				Score:    models.ClampScore(selfAwareness),
				Comment:  "Your response shows some emotional awareness, but could benefit from more specific emotion words.",
				Examples: awarenessExamples,
			},
			models.CategoryEmotionalExpression: {
				Score:    models.ClampScore(expression),
				Comment:  "Your expression is straightforward but could use more emotional depth.",
				Examples: []string{text},
			},
			models.CategorySelfRegulation: {
				Score:    70,
				Comment:  "Seeking motivation shows a desire for emotional management.",
				Examples: []string{"Expressed need for motivation"},
			},
			models.CategoryEmpathy: {
				Score:    60,
				Comment:  "Not enough context to evaluate empathy fully.",
				Examples: []string{"More interaction needed to assess"},
			},
			models.CategorySocialAwareness: {
				Score:    60,
				Comment:  "Limited context to evaluate social awareness.",
				Examples: []string{"More context needed"},
			},
		},
		Feedback:     `Your brief response shows you can identify how you feel and what you need. For better emotional intelligence development, try to be more specific about your emotions and connect them to your needs. For example, instead of "feeling good," specify if you're feeling "contented," "energized," or "hopeful" and why those specific feelings lead to needing motivation.`,
		ResponseText: coachingText(s, vocab),
		StrengthsAndWeaknesses: models.StrengthsAndWeaknesses{
			Strengths:  strengths,
			Weaknesses: weaknesses,
		},
		EmotionalVocabulary: vocab,
		KeyInsights: []string{
			"You can identify your basic emotional state",
			"You recognize when you need external support",
			"Your emotional expression could benefit from more specific language",
		},
		Source: models.SourceLocal,
	}
}

func joinResponses(responses map[string]string) string {
	answers := make([]string, 0, len(responses))
	for _, id := range orderedResponseIDs(responses) {
		answers = append(answers, responses[id])
	}
	return strings.Join(answers, " ")
}

// ConversationFallback scores a whole journey from vocabulary and answer length
// when the model analysis is unavailable.
func ConversationFallback(responses map[string]string) *models.AnalysisResult {
	allText := joinResponses(responses)

	vocab := ExtractEmotionWords(allText)
	count := countEmotionWords(allText)

	wordCount := len(strings.Fields(allText))
	n := len(responses)
	if n < 1 {
		n = 1
	}
	avgWords := float64(wordCount) / float64(n)

	selfAwareness := models.ClampScore(50 + count*5)
	expression := models.ClampScore(int(math.Round(50 + avgWords/20*10)))

	examples := vocab
	if len(examples) > 3 {
		examples = examples[:3]
	}

	return &models.AnalysisResult{
		Score: models.ClampScore(int(math.Round(float64(selfAwareness+expression) / 2))),
		CategoryScores: map[string]models.CategoryScore{
			models.CategorySelfAwareness: {
				Score:    selfAwareness,
				Comment:  "Based on emotional vocabulary used across responses",
				Examples: append([]string(nil), examples...),
			},
			models.CategoryEmotionalExpression: {
				Score:    expression,
				Comment:  "Based on detail and length of responses",
				Examples: []string{fmt.Sprintf("Used approximately %.1f words per response", avgWords)},
			},
			models.CategoryEmpathy: {
				Score:    60,
				Comment:  "Limited context for full assessment",
				Examples: []string{"Need more interpersonal context to assess"},
			},
			models.CategorySelfRegulation: {
				Score:    65,
				Comment:  "Shows willingness to engage in emotional reflection",
				Examples: []string{"Completed multiple emotional intelligence questions"},
			},
			models.CategorySocialAwareness: {
				Score:    60,
				Comment:  "Limited social context for assessment",
				Examples: []string{"Need more interpersonal examples to assess"},
			},
		},
		Feedback:     "Thank you for completing this emotional intelligence exercise. You've shown a willingness to reflect on your emotions, which is foundational for EQ growth. Consider exploring your emotions in more depth by using a broader emotional vocabulary and connecting emotions to physical sensations and specific situations.",
		ResponseText: fmt.Sprintf(`Based on your responses, I notice you're engaged with the emotional intelligence process, which is excellent. Your use of %d emotion-related words shows awareness of your feelings. To further develop your EQ, try expanding your emotional vocabulary beyond basic terms like "good" or "bad" to more specific states like "fulfilled," "apprehensive," or "fascinated." This nuanced awareness can help you better understand and navigate your emotional landscape.`, count),
		StrengthsAndWeaknesses: models.StrengthsAndWeaknesses{
			Strengths:  []string{"Self-reflection: Willingness to examine emotions", "Engagement: Completed the emotional intelligence exercise"},
			Weaknesses: []string{"Emotional vocabulary: Could benefit from more specific emotion terms", "Emotional depth: Consider exploring the connections between emotions, thoughts, and behaviors"},
		},
		EmotionalVocabulary: vocab,
		KeyInsights: []string{
			"Shows willingness to engage in emotional exercises",
			"Could benefit from expanded emotional vocabulary",
			"Demonstrates basic self-reflection capabilities",
		},
		Source: models.SourceLocal,
	}
}
