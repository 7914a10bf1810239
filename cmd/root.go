package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/practiced/internal/lessons"
	"github.com/abhisek/practiced/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "practiced",
	Short: "AI practice quiz service",
	Long:  "practiced turns lesson content into multiple-choice practice quizzes with a language model and grades learner answers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(); err != nil {
			return err
		}
		level, _ := cmd.Flags().GetString("log-level")
		logger, err := newLogger(level)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PRACTICED_DB env var)")
	rootCmd.PersistentFlags().String("lessons", "", "Path to a JSON or YAML lesson file (overrides PRACTICED_LESSONS_PATH env var)")
	rootCmd.PersistentFlags().String("addr", "", "HTTP listen address (overrides PRACTICED_ADDR env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides PRACTICED_LOG_LEVEL env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadDotEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// newLogger builds the JSON stderr logger. level falls back to
// PRACTICED_LOG_LEVEL, then info.
func newLogger(level string) (*slog.Logger, error) {
	if level == "" {
		level = os.Getenv("PRACTICED_LOG_LEVEL")
	}
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PRACTICED_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveLessonsPath returns the lesson file path using --lessons, then
// PRACTICED_LESSONS_PATH, then lessons.DefaultPath.
func resolveLessonsPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("lessons"); p != "" {
		return p
	}
	if p := os.Getenv("PRACTICED_LESSONS_PATH"); p != "" {
		return p
	}
	return lessons.DefaultPath
}
