package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/practiced/internal/lessons"
	"github.com/abhisek/practiced/internal/llm"
	"github.com/abhisek/practiced/internal/practice"
	"github.com/abhisek/practiced/internal/server"
	"github.com/abhisek/practiced/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the practice HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// runServe opens the store, builds dependencies, and serves HTTP until
// interrupted.
func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	if err := practice.CheckSchemas(); err != nil {
		return fmt.Errorf("check schemas: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	lessonsPath := resolveLessonsPath(cmd)
	index, err := lessons.LoadFile(lessonsPath)
	if err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}
	if index.Len() == 0 {
		logger.Warn("no local lessons loaded; generate requests must carry lesson_content",
			slog.String("path", lessonsPath))
	} else {
		logger.Info("lessons loaded", slog.String("path", lessonsPath), slog.Int("count", index.Len()))
	}

	llmCfg := llm.ConfigFromEnv()
	provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo(), logger)
	if err != nil {
		logger.Warn("LLM provider not configured; practice endpoints will fail", slog.Any("error", err))
		provider = llm.Unconfigured(err)
	}

	practiceCfg := practice.ConfigFromEnv()
	practiceCfg.Timeout = llmCfg.Timeout
	svc := practice.NewService(provider, index, practiceCfg, logger)

	serverCfg := server.ConfigFromEnv()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		serverCfg.Addr = addr
	}
	if practiceCfg.Timeout > 0 && serverCfg.RequestTimeout < practiceCfg.Timeout {
		serverCfg.RequestTimeout = practiceCfg.Timeout + practiceCfg.Retry.Delay
	}

	return server.New(serverCfg, svc, logger).ListenAndServe(ctx)
}
