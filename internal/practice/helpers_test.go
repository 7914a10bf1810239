package practice

import (
	"encoding/json"
	"fmt"
)

func sampleQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:          fmt.Sprintf("q%d", i+1),
			Scenario:    fmt.Sprintf("An investor holds %d stocks in one sector.", i+1),
			Options:     []string{"Buy more", "Diversify", "Sell all", "Do nothing"},
			Answer:      1,
			Explanation: "Diversification reduces unsystematic risk.",
		}
	}
	return qs
}

func quizJSON(n int) string {
	b, err := json.Marshal(map[string]any{"questions": sampleQuestions(n)})
	if err != nil {
		panic(err)
	}
	return string(b)
}

func intp(n int) *int { return &n }
