package practice

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abhisek/practiced/internal/llm"
)

type quizOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	ID          string      `json:"id"`
	Scenario    string      `json:"scenario"`
	Options     []string    `json:"options"`
	Answer      json.Number `json:"answer"`
	Explanation string      `json:"explanation"`
}

// ParseQuestions extracts, validates and decodes a generated quiz. Any
// invalid question fails the whole parse with *llm.ErrInvalidResponse.
func ParseQuestions(text string) ([]Question, error) {
	raw := llm.ExtractJSON(text)

	if err := llm.Validate(QuizSchema, raw); err != nil {
		return nil, err
	}

	var out quizOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: err}
	}

	questions := make([]Question, 0, len(out.Questions))
	for i, qo := range out.Questions {
		// The schema accepts integral floats such as 2.0.
		f, err := qo.Answer.Float64()
		if err != nil {
			return nil, &llm.ErrInvalidResponse{Content: raw, Err: fmt.Errorf("questions[%d].answer: %w", i, err)}
		}
		q := Question{
			ID:          qo.ID,
			Scenario:    qo.Scenario,
			Options:     qo.Options,
			Answer:      int(f),
			Explanation: qo.Explanation,
		}
		if err := q.Validate(); err != nil {
			return nil, &llm.ErrInvalidResponse{Content: raw, Err: err}
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// ParseEvaluation reads a grading result leniently: the text must hold a
// JSON object, but every field falls back to its zero value.
func ParseEvaluation(text string) (EvaluationResult, error) {
	raw := llm.ExtractJSON(text)

	if !gjson.Valid(raw) {
		return EvaluationResult{}, &llm.ErrInvalidResponse{Content: raw, Err: errors.New("invalid JSON")}
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return EvaluationResult{}, &llm.ErrInvalidResponse{Content: raw, Err: errors.New("expected a JSON object")}
	}

	return EvaluationResult{
		Score:              coerceInt(doc.Get("score")),
		WeakAreas:          stringList(doc.Get("weak_areas")),
		Feedback:           doc.Get("feedback").String(),
		RecommendedLessons: stringList(doc.Get("recommended_lessons")),
	}, nil
}

// coerceInt truncates numbers, parses numeric strings and maps everything
// else to 0. Results are clamped to ±MaxScore.
func coerceInt(r gjson.Result) int {
	switch r.Type {
	case gjson.Number:
		return truncate(r.Num)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if n, err := strconv.Atoi(s); err == nil {
			return clampScore(n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return truncate(f)
		}
	case gjson.True:
		return 1
	}
	return 0
}

// truncate drops the fraction and saturates at ±MaxScore.
func truncate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= MaxScore:
		return MaxScore
	case f <= -MaxScore:
		return -MaxScore
	}
	return int(f)
}

// stringList returns array elements as strings. A lone string becomes a
// one-element list; anything else is empty. The result is never nil.
func stringList(r gjson.Result) []string {
	out := []string{}
	switch {
	case r.IsArray():
		for _, el := range r.Array() {
			if el.Type == gjson.Null {
				continue
			}
			out = append(out, el.String())
		}
	case r.Type == gjson.String && r.Str != "":
		out = append(out, r.Str)
	}
	return out
}
