package services

import (
	"fmt"
	"sort"
	"strings"

	"eqcoach/models"
)

// DebatePromptInput carries everything a debate prompt may depend on.
type DebatePromptInput struct {
	Stage     models.DebateStage
	Topic     string
	UserSide  models.Side
	UserInput string
	History   []models.DebateMessage
}

// BuildDebatePrompt returns the stage-specific prompt for the AI debater. The
// conclusion stage yields the end-of-debate analysis prompt. Output depends only
// on the input.
func BuildDebatePrompt(in DebatePromptInput) string {
	aiSide := in.UserSide.Opposite()

	switch in.Stage {
	case models.DebateOpeningStatement:
		return fmt.Sprintf(`You are participating in a formal debate on the topic: "%s".
You are arguing %s this proposition.
The user has just made their opening statement: "%s"

Provide a strong, well-structured opening statement from your side (%s).
Your response should:
1. Clearly state your position
2. Provide 2-3 key arguments with brief supporting evidence
3. Address anticipated counterarguments
4. Be persuasive and respectful
5. Keep the response under 200 words

Do not use any labels or prefixes like "Opening Statement:" - just provide the statement itself.`,
			in.Topic, aiSide, in.UserInput, aiSide)

	case models.DebateRebuttal:
		return fmt.Sprintf(`You are continuing a formal debate on the topic: "%s".
You are arguing %s this proposition.
The user, who is arguing %s, has just made this rebuttal to your previous points: "%s"

Provide a strategic rebuttal that:
1. Directly addresses and counters their strongest points
2. Strengthens your previous arguments with additional evidence
3. Introduces a new angle or perspective to strengthen your case
4. Uses persuasive language while maintaining respect
5. Keeps the response under 200 words

Do not use any labels or prefixes - just provide the rebuttal itself.`,
			in.Topic, aiSide, in.UserSide, in.UserInput)

	case models.DebateClosingStatement:
		return fmt.Sprintf(`You are concluding a formal debate on the topic: "%s".
You are arguing %s this proposition.
The user, who is arguing %s, has just made this point: "%s"

Provide a compelling closing statement that:
1. Summarizes your strongest arguments and evidence
2. Addresses the weaknesses in your opponent's position
3. Reinforces why your position is more logical/beneficial
4. Ends with a memorable concluding thought
5. Keeps the response under 200 words

Do not use any labels or prefixes - just provide the closing statement itself.`,
			in.Topic, aiSide, in.UserSide, in.UserInput)

	case models.DebateConclusion:
		return BuildDebateAnalysisPrompt(in.Topic, in.UserSide, in.History)

	default:
		return fmt.Sprintf(`You are participating in a debate on: "%s".
Provide a thoughtful response to: "%s"
Keep your response under 200 words.`, in.Topic, in.UserInput)
	}
}

// debateTurnBlocks splits argument turns into the user's and the AI's text blocks.
func debateTurnBlocks(history []models.DebateMessage) (user, ai []string) {
	for _, msg := range history {
		if !msg.Stage.IsSpeaking() {
			continue
		}
		line := fmt.Sprintf("%s: %s", msg.Stage, msg.Text)
		switch msg.Sender {
		case models.SenderUser:
			user = append(user, line)
		case models.SenderAI:
			ai = append(ai, line)
		}
	}
	return user, ai
}

// BuildDebateAnalysisPrompt asks for one JSON object scoring the whole debate.
func BuildDebateAnalysisPrompt(topic string, userSide models.Side, history []models.DebateMessage) string {
	userTurns, aiTurns := debateTurnBlocks(history)

	return fmt.Sprintf(`As a professional debate coach, analyze this completed debate on the topic: "%s".

The User was arguing %s the proposition. Here are their arguments:

%s

The AI was arguing %s the proposition. Here are their arguments:

%s

Provide a comprehensive analysis of the debate that includes:

1. An overall summary of the debate quality (150-200 words)
2. Strengths of the user's arguments (3-4 points)
3. Areas of improvement for the user's arguments (3-4 points)
4. Strengths of the AI's arguments (2-3 points)
5. Weaknesses of the AI's arguments (2-3 points)
6. Assessment of the user's debate skills with ratings (scale 1-10) for:
   - Logical Reasoning (with specific feedback)
   - Evidence Quality (with specific feedback)
   - Rebuttal Effectiveness (with specific feedback)
   - Persuasive Language (with specific feedback)
   - Structure and Organization (with specific feedback)
7. Specific suggestions for improvement (4-5 actionable recommendations)

Return the analysis as a JSON object with the following format:
{
  "overallSummary": "string",
  "userArgumentStrengths": ["point1", "point2", ...],
  "userArgumentWeaknesses": ["point1", "point2", ...],
  "aiArgumentStrengths": ["point1", "point2", ...],
  "aiArgumentWeaknesses": ["point1", "point2", ...],
  "userDebateSkills": [
    {
      "skill": "Logical Reasoning",
      "rating": number,
      "feedback": "string"
    }
  ],
  "improvementSuggestions": ["suggestion1", "suggestion2", ...]
}`,
		topic,
		userSide, strings.Join(userTurns, "\n\n"),
		userSide.Opposite(), strings.Join(aiTurns, "\n\n"))
}

const eqAnalysisSchema = `{
  "categoryScores": {
    "Self_Awareness": {
      "score": <0-100>,
      "comment": "Detailed evaluation of emotional self-awareness",
      "examples": ["specific examples from their %[1]s"]
    },
    "Emotional_Expression": {
      "score": <0-100>,
      "comment": "Analysis of how clearly they express emotions",
      "examples": ["specific phrases showing emotional expression"]
    },
    "Empathy": {
      "score": <0-100>,
      "comment": "Evaluation of empathy shown",
      "examples": ["evidence of empathetic understanding"]
    },
    "Self_Regulation": {
      "score": <0-100>,
      "comment": "Assessment of emotional management",
      "examples": ["examples of self-regulation"]
    },
    "Social_Awareness": {
      "score": <0-100>,
      "comment": "Analysis of social/contextual awareness",
      "examples": ["instances of social awareness"]
    }
  },
  "overallScore": <0-100>,
  "strengths": [
    {
      "area": "specific strength area",
      "evidence": "specific example from %[1]s"
    }
  ],
  "areas_for_improvement": [
    {
      "area": "specific area to improve",
      "suggestion": "specific, actionable suggestion"
    }
  ],
  "emotional_vocabulary": ["list of emotion words used%[2]s"],
  "key_insights": ["%[3]s"],
  "detailed_feedback": "%[4]s"
}`

// BuildResponseAnalysisPrompt asks for a structured EQ analysis of one message.
func BuildResponseAnalysisPrompt(userMessage string) string {
	schema := fmt.Sprintf(eqAnalysisSchema, "response", "",
		"2-3 main observations about their EQ",
		"2-3 sentences of specific, constructive feedback")
	return fmt.Sprintf(`As an expert emotional intelligence coach, analyze this response in detail:
"%s"

Provide a comprehensive emotional intelligence analysis using this structured format:
%s

Even for short responses, provide detailed analysis based on the limited context.
If the response is brief, extrapolate what you can about their emotional awareness,
expression patterns, and potential areas for growth.

Only include JSON in your response, nothing else.`, userMessage, schema)
}

// orderedResponseIDs lists answered ids in question order, then unknown ids sorted.
func orderedResponseIDs(responses map[string]string) []string {
	ids := make([]string, 0, len(responses))
	for _, q := range models.FoundationQuestions() {
		if _, ok := responses[q.ID]; ok {
			ids = append(ids, q.ID)
		}
	}
	known := len(ids)
	for id := range responses {
		if _, ok := models.FoundationQuestionByID(id); !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids[known:])
	return ids
}

func formatResponses(responses map[string]string) string {
	blocks := make([]string, 0, len(responses))
	for _, id := range orderedResponseIDs(responses) {
		question := id
		if q, ok := models.FoundationQuestionByID(id); ok {
			question = q.Question
		}
		blocks = append(blocks, fmt.Sprintf("Question: %s\nResponse: %s", question, responses[id]))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildConversationAnalysisPrompt asks for a structured EQ analysis of a full journey.
func BuildConversationAnalysisPrompt(responses map[string]string) string {
	schema := fmt.Sprintf(eqAnalysisSchema, "responses", " across all responses",
		"3-5 main observations about their overall EQ based on all responses",
		"3-5 sentences of specific, constructive feedback addressing patterns across all responses")
	return fmt.Sprintf(`As an expert emotional intelligence coach, analyze these responses to several emotional intelligence questions:

%s

Based on these responses, provide a comprehensive emotional intelligence analysis using this structured format:
%s

Only include JSON in your response, nothing else.`, formatResponses(responses), schema)
}

// BuildResponseCoachingPrompt asks for a short coaching reply to one message.
func BuildResponseCoachingPrompt(userMessage, analysisJSON string) string {
	return fmt.Sprintf(`As an empathetic EQ coach responding to: "%s"

Using this analysis: %s

Create a supportive, growth-oriented response that:
1. Acknowledges their emotional state
2. Highlights one specific strength with an example
3. Offers one concrete suggestion for growth
4. Encourages continued emotional exploration
5. Uses warm, supportive language

Keep the response under 3 sentences but make it meaningful and specific.`, userMessage, analysisJSON)
}

// BuildJourneyCoachingPrompt asks for the closing coaching letter of a journey.
func BuildJourneyCoachingPrompt(analysisJSON string) string {
	return fmt.Sprintf(`As an empathetic EQ coach responding to a completed emotional intelligence assessment.

Using this analysis: %s

Create a comprehensive, growth-oriented response that:
1. Summarizes their overall emotional intelligence profile
2. Highlights 2-3 specific strengths with examples
3. Offers 2-3 concrete suggestions for growth in weaker areas
4. Provides a personalized developmental pathway
5. Uses warm, supportive language throughout

Make the response feel personalized and actionable, around 3-4 paragraphs.`, analysisJSON)
}

// BuildCoachChatPrompt frames a free-form message for the general coach.
func BuildCoachChatPrompt(message string) string {
	return fmt.Sprintf(`You are an expert emotional intelligence and debate coach. Your role is to help users:
1. Understand and manage their emotions
2. Develop better communication skills
3. Master the art of persuasive argumentation
4. Build empathy and social awareness

Analyze the user's message and provide constructive feedback and guidance.

User message: %s`, message)
}
