package models

// FoundationQuestion is one of the fixed EQ journey interview prompts.
type FoundationQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Area     string `json:"area"`
	Purpose  string `json:"purpose"`
}

var foundationQuestions = [...]FoundationQuestion{
	{
		ID:       "current_feelings",
		Question: "How are you feeling right now? Try to be specific about your emotions.",
		Area:     "Self-awareness",
		Purpose:  "Gauging current emotional state and emotional vocabulary",
	},
	{
		ID:       "emotion_trigger",
		Question: "What triggered this feeling? Can you describe a recent situation that affected your emotions?",
		Area:     "Emotional awareness",
		Purpose:  "Understanding cause-effect in emotional response",
	},
	{
		ID:       "body_sensations",
		Question: "How does this emotion feel in your body? Where do you notice it physically?",
		Area:     "Self-awareness",
		Purpose:  "Assessing somatic awareness",
	},
	{
		ID:       "reaction_patterns",
		Question: "How did you react to this situation? Is this a typical response for you?",
		Area:     "Self-regulation",
		Purpose:  "Evaluating emotional regulation patterns",
	},
	{
		ID:       "others_perspective",
		Question: "How might others involved in this situation be feeling? What might their perspective be?",
		Area:     "Empathy",
		Purpose:  "Measuring perspective-taking ability",
	},
	{
		ID:       "emotional_impact",
		Question: "How did your emotions impact your decisions or actions in this situation?",
		Area:     "Emotional intelligence application",
		Purpose:  "Evaluating emotional influence on behavior",
	},
	{
		ID:       "improvement_reflection",
		Question: "If you could respond differently next time, what would you do?",
		Area:     "Growth mindset",
		Purpose:  "Assessing adaptability and learning orientation",
	},
}

// FoundationQuestionCount is the number of journey questions.
const FoundationQuestionCount = len(foundationQuestions)

// FoundationQuestions returns a copy of the question catalog.
func FoundationQuestions() []FoundationQuestion {
	out := make([]FoundationQuestion, len(foundationQuestions))
	copy(out, foundationQuestions[:])
	return out
}

// FoundationQuestionAt returns the question at index i.
func FoundationQuestionAt(i int) (FoundationQuestion, bool) {
	if i < 0 || i >= len(foundationQuestions) {
		return FoundationQuestion{}, false
	}
	return foundationQuestions[i], true
}

// FoundationQuestionByID looks a question up by its id.
func FoundationQuestionByID(id string) (FoundationQuestion, bool) {
	for _, q := range foundationQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return FoundationQuestion{}, false
}
