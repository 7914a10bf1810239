package practice

import "fmt"

// QuizSize is the number of questions requested per quiz.
const QuizSize = 10

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// Question is one multiple-choice question. Answer indexes Options.
type Question struct {
	ID          string   `json:"id"`
	Scenario    string   `json:"scenario"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Validate checks the option count and answer range.
func (q Question) Validate() error {
	if len(q.Options) != OptionCount {
		return fmt.Errorf("question %q: expected %d options, got %d", q.ID, OptionCount, len(q.Options))
	}
	if q.Answer < 0 || q.Answer >= OptionCount {
		return fmt.Errorf("question %q: answer %d out of range [0,%d]", q.ID, q.Answer, OptionCount-1)
	}
	return nil
}

// clone returns a copy that shares no backing array with q.
func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func cloneQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.clone()
	}
	return out
}

// GenerateRequest asks for a quiz on one lesson. LessonContent may be empty
// when the lesson is available in the local index.
type GenerateRequest struct {
	UserID        string `json:"user_id"`
	LessonID      string `json:"lesson_id"`
	ConceptName   string `json:"concept_name"`
	LessonContent string `json:"lesson_content,omitempty"`
}

// GenerateResponse carries a generated quiz.
type GenerateResponse struct {
	LessonID    string     `json:"lesson_id"`
	ConceptName string     `json:"concept_name"`
	Questions   []Question `json:"questions"`
}

// EvaluateRequest carries a learner's answers to a previously issued quiz.
// UserAnswers aligns with Questions by position; a nil or missing entry
// means the question was not answered.
type EvaluateRequest struct {
	UserID      string     `json:"user_id"`
	LessonID    string     `json:"lesson_id"`
	ConceptName string     `json:"concept_name"`
	Questions   []Question `json:"questions"`
	UserAnswers []*int     `json:"user_answers"`
}

// Validate rejects question sets that violate the question invariants.
func (r EvaluateRequest) Validate() error {
	for i, q := range r.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("%w: questions[%d]: %v", ErrInvalidRequest, i, err)
		}
	}
	return nil
}

// answerAt returns the learner's answer for question i, or nil.
func (r EvaluateRequest) answerAt(i int) *int {
	if i < len(r.UserAnswers) {
		return r.UserAnswers[i]
	}
	return nil
}

// EvaluationResult is the model's assessment of a learner's answers.
type EvaluationResult struct {
	Score              int      `json:"score"`
	WeakAreas          []string `json:"weak_areas"`
	Feedback           string   `json:"feedback"`
	RecommendedLessons []string `json:"recommended_lessons"`
}

// EvaluateResponse is an EvaluationResult plus the derived reward deltas.
type EvaluateResponse struct {
	EvaluationResult
	XPDelta    int `json:"xp_delta"`
	CoinsDelta int `json:"coins_delta"`
}
