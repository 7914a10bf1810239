package practice

import "github.com/abhisek/practiced/internal/llm"

// QuizSchema defines the JSON schema a generated quiz must satisfy.
var QuizSchema = &llm.Schema{
	Name:        "practice-quiz",
	Description: "A set of multiple-choice scenario questions grounded in one lesson",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Stable question identifier such as q1",
						},
						"scenario": map[string]any{
							"type":        "string",
							"description": "A realistic scenario that poses the question",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    OptionCount,
							"maxItems":    OptionCount,
							"description": "Four distinct answer options",
						},
						"answer": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"maximum":     OptionCount - 1,
							"description": "Index of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is right, citing the lesson",
						},
					},
					"required": []any{"id", "scenario", "options", "answer", "explanation"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

// EvaluationSchema describes the grading result. Every field is optional;
// missing fields fall back to zero values when parsed.
var EvaluationSchema = &llm.Schema{
	Name:        "practice-evaluation",
	Description: "Score, weak areas and feedback for a learner's quiz answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"description": "Number of correct answers",
			},
			"weak_areas": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"feedback": map[string]any{
				"type": "string",
			},
			"recommended_lessons": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	},
}

// CheckSchemas compiles the quiz and evaluation schemas.
func CheckSchemas() error {
	for _, s := range []*llm.Schema{QuizSchema, EvaluationSchema} {
		if err := llm.Compile(s); err != nil {
			return err
		}
	}
	return nil
}
