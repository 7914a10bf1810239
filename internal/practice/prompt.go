package practice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = `You are an AI tutor for fundamental analysis. You write and grade short practice quizzes that stay strictly within the lesson material you are given, and you always answer with a single JSON object and nothing else.`

// BuildGenerationPrompt renders the quiz generation instruction. The concept
// name and lesson content are embedded verbatim.
func BuildGenerationPrompt(conceptName, lessonContent string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d multiple-choice scenario questions strictly derived from the lesson content provided.\n", QuizSize)
	fmt.Fprintf(&b, "Each question must include: a realistic investment scenario, %d distinct options (A-D), the correct option index (0-%d), and a concise explanation referencing the lesson material.\n", OptionCount, OptionCount-1)
	b.WriteString("Do NOT introduce topics outside the lesson. Keep language simple and grounded.\n\n")

	b.WriteString("Concept: ")
	b.WriteString(conceptName)
	b.WriteString("\n\n")

	b.WriteString("Lesson Content (source of truth):\n")
	b.WriteString(lessonContent)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, `Return strict JSON with this structure: {"questions":[{"id":"q1","scenario":"...","options":["...","...","...","..."],"answer":1,"explanation":"..."}, ... x%d]}`, QuizSize)

	return b.String()
}

type evaluationItem struct {
	Scenario string   `json:"scenario"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
	User     *int     `json:"user"`
}

// BuildEvaluationPrompt renders the grading instruction. Each question is
// paired with the learner's answer at the same position; unanswered
// questions carry "user": null.
func BuildEvaluationPrompt(conceptName, lessonContent string, questions []Question, userAnswers []*int) string {
	req := EvaluateRequest{Questions: questions, UserAnswers: userAnswers}
	items := make([]evaluationItem, len(questions))
	for i, q := range questions {
		items[i] = evaluationItem{
			Scenario: q.Scenario,
			Options:  q.Options,
			Correct:  q.Answer,
			User:     req.answerAt(i),
		}
	}

	var payload bytes.Buffer
	enc := json.NewEncoder(&payload)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(items) // plain structs of strings and ints always encode

	var b strings.Builder

	b.WriteString("Evaluate the user's answers against the provided questions. Identify weak sub-concepts strictly based on the lesson content.\n")
	b.WriteString(`Return JSON: {"score":int,"weak_areas":[string],"feedback":string,"recommended_lessons":[string]}`)
	b.WriteString("\n\n")

	b.WriteString("Concept: ")
	b.WriteString(conceptName)
	b.WriteString("\n\n")

	b.WriteString("Lesson Content (source of truth):\n")
	b.WriteString(lessonContent)
	b.WriteString("\n\n")

	b.WriteString("Questions and Answers: ")
	b.WriteString(strings.TrimSpace(payload.String()))

	return b.String()
}
