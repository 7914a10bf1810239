package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/practiced/internal/store"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestNewLogger(t *testing.T) {
	t.Setenv("PRACTICED_LOG_LEVEL", "")

	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger, err = newLogger("")
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))

	t.Setenv("PRACTICED_LOG_LEVEL", "warn")
	logger, err = newLogger("")
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out := runCLI(t, "version")
	assert.Contains(t, out, "practiced "+version)
}

func TestLessonsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"lessons":[{"id":"pe","title":"Price to Earnings","content":"..."}]}`), 0o644))

	out := runCLI(t, "lessons", "--lessons", path)
	assert.Contains(t, out, "pe")
	assert.Contains(t, out, "Price to Earnings")
}

func TestLLMCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "practiced.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.EventRepo().AppendLLMRequest(context.Background(), store.LLMRequestEventData{
		Provider:     "gemini",
		Model:        "gemini-2.5-flash",
		Purpose:      "quiz-gen",
		InputTokens:  1000,
		OutputTokens: 4000,
		Success:      true,
		RequestBody:  "[user]\nGenerate 10 questions",
		ResponseBody: `{"questions":[]}`,
	}))
	require.NoError(t, s.Close())

	out := runCLI(t, "llm", "list", "--db", dbPath, "--purpose", "")
	assert.Contains(t, out, "quiz-gen")
	assert.Contains(t, out, "gemini-2.5-flash")

	out = runCLI(t, "llm", "view", "1", "--db", dbPath)
	assert.Contains(t, out, "Generate 10 questions")
	assert.Contains(t, out, `{"questions":[]}`)

	out = runCLI(t, "llm", "stats", "--db", dbPath)
	assert.Contains(t, out, "Usage by Purpose")
	assert.Contains(t, out, "$0.01")
}
