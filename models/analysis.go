package models

// AnalysisSource records which path produced an analysis.
type AnalysisSource string

const (
	SourceModel AnalysisSource = "model"
	SourceLocal AnalysisSource = "local"
)

// EQ category keys, in the order they are reported.
const (
	CategorySelfAwareness       = "Self_Awareness"
	CategoryEmotionalExpression = "Emotional_Expression"
	CategoryEmpathy             = "Empathy"
	CategorySelfRegulation      = "Self_Regulation"
	CategorySocialAwareness     = "Social_Awareness"
)

// EQCategories lists the five fixed EQ categories.
var EQCategories = []string{
	CategorySelfAwareness,
	CategoryEmotionalExpression,
	CategoryEmpathy,
	CategorySelfRegulation,
	CategorySocialAwareness,
}

// CategoryScore is one scored EQ sub-dimension.
type CategoryScore struct {
	Score    int      `json:"score" bson:"score"`
	Comment  string   `json:"comment" bson:"comment"`
	Examples []string `json:"examples,omitempty" bson:"examples,omitempty"`
}

// StrengthsAndWeaknesses groups the two feedback lists of an analysis.
type StrengthsAndWeaknesses struct {
	Strengths  []string `json:"strengths" bson:"strengths"`
	Weaknesses []string `json:"weaknesses" bson:"weaknesses"`
}

// AnalysisResult is the EQ analysis attached to a journey or a single response.
// Score and every category score are kept within [0,100].
type AnalysisResult struct {
	Score                  int                      `json:"score" bson:"score"`
	CategoryScores         map[string]CategoryScore `json:"categoryScores" bson:"categoryScores"`
	Feedback               string                   `json:"feedback" bson:"feedback"`
	ResponseText           string                   `json:"responseText" bson:"responseText"`
	StrengthsAndWeaknesses StrengthsAndWeaknesses   `json:"strengthsAndWeaknesses" bson:"strengthsAndWeaknesses"`
	EmotionalVocabulary    []string                 `json:"emotionalVocabulary" bson:"emotionalVocabulary"`
	KeyInsights            []string                 `json:"keyInsights" bson:"keyInsights"`
	Source                 AnalysisSource           `json:"source" bson:"source"`
}

// ClampScore bounds a score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Clone returns a deep copy so callers can hand analyses across states safely.
func (a *AnalysisResult) Clone() *AnalysisResult {
	if a == nil {
		return nil
	}
	out := *a
	if a.CategoryScores != nil {
		out.CategoryScores = make(map[string]CategoryScore, len(a.CategoryScores))
		for k, v := range a.CategoryScores {
			v.Examples = append([]string(nil), v.Examples...)
			out.CategoryScores[k] = v
		}
	}
	out.StrengthsAndWeaknesses.Strengths = append([]string(nil), a.StrengthsAndWeaknesses.Strengths...)
	out.StrengthsAndWeaknesses.Weaknesses = append([]string(nil), a.StrengthsAndWeaknesses.Weaknesses...)
	out.EmotionalVocabulary = append([]string(nil), a.EmotionalVocabulary...)
	out.KeyInsights = append([]string(nil), a.KeyInsights...)
	return &out
}
