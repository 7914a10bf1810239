package practice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/practiced/internal/lessons"
	"github.com/abhisek/practiced/internal/llm"
)

const (
	purposeGenerate = "quiz-gen"
	purposeEvaluate = "quiz-eval"
)

// Service generates and grades quizzes. It owns the quiz cache and is safe
// for concurrent use.
type Service struct {
	provider llm.Provider
	index    *lessons.Index
	cache    *Cache
	cfg      Config
	logger   *slog.Logger

	inflight singleflight.Group
}

// NewService creates a practice service. index may be nil when no local
// lessons are available.
func NewService(provider llm.Provider, index *lessons.Index, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		index:    index,
		cache:    NewCache(cfg.CacheTTL, time.Now),
		cfg:      cfg,
		logger:   logger,
	}
}

// ModelID returns the identifier of the underlying model.
func (s *Service) ModelID() string {
	return s.provider.ModelID()
}

// Lessons lists the locally indexed lessons.
func (s *Service) Lessons() []lessons.Summary {
	return s.index.List()
}

// Generate returns a quiz for the request's lesson, reusing a cached quiz
// for the same (user, lesson) while it is fresh. Concurrent misses for the
// same key share a single model operation.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := s.cache.now()
	if qs, ok := s.cache.Get(req.UserID, req.LessonID); ok {
		s.logger.DebugContext(ctx, "quiz cache hit",
			slog.String("user_id", req.UserID),
			slog.String("lesson_id", req.LessonID))
		return newGenerateResponse(req, qs), nil
	}

	content := strings.TrimSpace(req.LessonContent)
	if content == "" {
		content, _ = s.index.Resolve(req.LessonID, req.ConceptName)
	}
	if content == "" {
		return nil, ErrLessonContentRequired
	}

	// The flight outlives any single caller; it is bounded by cfg.Timeout.
	key := req.UserID + "\x00" + req.LessonID
	ch := s.inflight.DoChan(key, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), req, content, start)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "joined in-flight quiz generation", slog.String("lesson_id", req.LessonID))
		}
		return newGenerateResponse(req, res.Val.([]Question)), nil
	}
}

func newGenerateResponse(req GenerateRequest, qs []Question) *GenerateResponse {
	return &GenerateResponse{
		LessonID:    req.LessonID,
		ConceptName: req.ConceptName,
		Questions:   cloneQuestions(qs),
	}
}

// generate runs one model operation for a cache miss. The quiz is cached
// as of start, the time the request arrived.
func (s *Service) generate(ctx context.Context, req GenerateRequest, content string, start time.Time) ([]Question, error) {
	// A flight that finished just before this one may have filled the cache.
	if qs, ok := s.cache.Get(req.UserID, req.LessonID); ok {
		return qs, nil
	}

	ctx = llm.WithPurpose(ctx, purposeGenerate)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	llmReq := s.request(BuildGenerationPrompt(req.ConceptName, content), QuizSchema,
		s.cfg.GenerateMaxTokens, s.cfg.GenerateTemperature)

	questions, err := llm.Do(ctx, s.retryPolicy(purposeGenerate), func(ctx context.Context) ([]Question, error) {
		resp, err := s.provider.Generate(ctx, llmReq)
		if err != nil {
			return nil, err
		}
		s.noteExtraction(ctx, resp.Text)
		return ParseQuestions(resp.Text)
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	if len(questions) < s.cfg.MinQuestions {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientQuestions, len(questions), s.cfg.MinQuestions)
	}

	s.cache.Put(req.UserID, req.LessonID, questions, start)

	s.logger.InfoContext(ctx, "quiz generated",
		slog.String("user_id", req.UserID),
		slog.String("lesson_id", req.LessonID),
		slog.Int("questions", len(questions)))

	return questions, nil
}

// Evaluate grades the learner's answers. Local lesson content is used for
// grounding when available; the cache is never consulted.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	content, _ := s.index.Resolve(req.LessonID, req.ConceptName)

	ctx = llm.WithPurpose(ctx, purposeEvaluate)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	llmReq := s.request(BuildEvaluationPrompt(req.ConceptName, content, req.Questions, req.UserAnswers),
		EvaluationSchema, s.cfg.EvaluateMaxTokens, s.cfg.EvaluateTemperature)

	result, err := llm.Do(ctx, s.retryPolicy(purposeEvaluate), func(ctx context.Context) (EvaluationResult, error) {
		resp, err := s.provider.Generate(ctx, llmReq)
		if err != nil {
			return EvaluationResult{}, err
		}
		s.noteExtraction(ctx, resp.Text)
		return ParseEvaluation(resp.Text)
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate answers: %w", err)
	}

	xp, coins := Rewards(result.Score)
	return &EvaluateResponse{
		EvaluationResult: result,
		XPDelta:          xp,
		CoinsDelta:       coins,
	}, nil
}

func (s *Service) request(prompt string, schema *llm.Schema, maxTokens int, temperature float64) llm.Request {
	req := llm.UserPrompt(systemPrompt, prompt)
	req.MaxTokens = maxTokens
	req.Temperature = temperature
	if s.cfg.NativeSchema {
		req.Schema = schema
	}
	return req
}

func (s *Service) retryPolicy(purpose string) llm.RetryPolicy {
	p := s.cfg.Retry
	if p.OnRetry == nil {
		p.OnRetry = func(attempt int, err error) {
			s.logger.Warn("model attempt failed, retrying",
				slog.String("purpose", purpose),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
		}
	}
	return p
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// noteExtraction logs model output in which no JSON object could be found.
func (s *Service) noteExtraction(ctx context.Context, text string) {
	if llm.HasJSONObject(text) {
		return
	}
	const maxPreview = 200
	preview := text
	if len(preview) > maxPreview {
		preview = preview[:maxPreview]
	}
	s.logger.DebugContext(ctx, "no JSON object in model output",
		slog.String("purpose", llm.PurposeFrom(ctx)),
		slog.String("preview", preview))
}
