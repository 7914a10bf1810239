package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("not found")

// EventRepo is the write side of the LLM request log. Provider middleware
// depends on this interface only.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// LLMRequestEventData is the payload recorded for a single model call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored event with its identity and timestamp.
type LLMRequestEventRecord struct {
	ID        int64
	EventID   string
	Timestamp time.Time
	LLMRequestEventData
}

// QueryOpts filters QueryLLMEvents. Zero values mean no filter.
type QueryOpts struct {
	Purpose string
	Since   time.Time
	Limit   int
}

// UsageRow aggregates calls and tokens for one purpose or model.
type UsageRow struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventLog reads and writes LLM request events.
type EventLog struct {
	drv *entsql.Driver
	now func() time.Time
}

var _ EventRepo = (*EventLog)(nil)

const (
	colID           = "id"
	colEventID      = "event_id"
	colCreatedAt    = "created_at"
	colProvider     = "provider"
	colModel        = "model"
	colPurpose      = "purpose"
	colInputTokens  = "input_tokens"
	colOutputTokens = "output_tokens"
	colLatencyMs    = "latency_ms"
	colSuccess      = "success"
	colErrorMessage = "error_message"
	colRequestBody  = "request_body"
	colResponseBody = "response_body"
)

var eventColumns = []string{
	colID, colEventID, colCreatedAt,
	colProvider, colModel, colPurpose,
	colInputTokens, colOutputTokens, colLatencyMs, colSuccess,
	colErrorMessage, colRequestBody, colResponseBody,
}

func (l *EventLog) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// AppendLLMRequest stores one model call.
func (l *EventLog) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := builder().
		Insert(eventsTable).
		Columns(eventColumns[1:]...).
		Values(
			uuid.New().String(),
			l.clock().UTC().UnixMilli(),
			data.Provider,
			data.Model,
			data.Purpose,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
			data.RequestBody,
			data.ResponseBody,
		).
		Query()

	var res sql.Result
	if err := l.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("append llm request: %w", err)
	}
	return nil
}

// QueryLLMEvents returns events newest first.
func (l *EventLog) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	sel := builder().
		Select(eventColumns...).
		From(entsql.Table(eventsTable)).
		OrderBy(entsql.Desc(colID))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ(colPurpose, opts.Purpose))
	}
	if !opts.Since.IsZero() {
		sel.Where(entsql.GTE(colCreatedAt, opts.Since.UTC().UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	out, err := l.queryEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	return out, nil
}

// GetLLMEvent returns a single event by its row id.
func (l *EventLog) GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEventRecord, error) {
	sel := builder().
		Select(eventColumns...).
		From(entsql.Table(eventsTable)).
		Where(entsql.EQ(colID, id))
	out, err := l.queryEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get llm event %d: %w", id, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("llm event %d: %w", id, ErrNotFound)
	}
	return &out[0], nil
}

func (l *EventLog) queryEvents(ctx context.Context, sel *entsql.Selector) ([]LLMRequestEventRecord, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := l.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LLMRequestEventRecord
	for rows.Next() {
		var (
			rec     LLMRequestEventRecord
			created int64
		)
		err := rows.Scan(
			&rec.ID, &rec.EventID, &created,
			&rec.Provider, &rec.Model, &rec.Purpose,
			&rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs, &rec.Success,
			&rec.ErrorMessage, &rec.RequestBody, &rec.ResponseBody,
		)
		if err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LLMUsageByPurpose aggregates usage grouped by purpose.
func (l *EventLog) LLMUsageByPurpose(ctx context.Context) ([]UsageRow, error) {
	return l.usageBy(ctx, colPurpose)
}

// LLMUsageByModel aggregates usage grouped by model.
func (l *EventLog) LLMUsageByModel(ctx context.Context) ([]UsageRow, error) {
	return l.usageBy(ctx, colModel)
}

func (l *EventLog) usageBy(ctx context.Context, column string) ([]UsageRow, error) {
	calls := entsql.Count("*")
	query, args := builder().
		Select(
			column,
			calls,
			entsql.Sum(colSuccess),
			entsql.Sum(colInputTokens),
			entsql.Sum(colOutputTokens),
			entsql.Avg(colLatencyMs),
		).
		From(entsql.Table(eventsTable)).
		GroupBy(column).
		OrderBy(entsql.Desc(calls), column).
		Query()

	rows := &entsql.Rows{}
	if err := l.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("usage by %s: %w", column, err)
	}
	defer rows.Close()

	var out []UsageRow
	for rows.Next() {
		var (
			r         UsageRow
			successes int
			avg       float64
		)
		if err := rows.Scan(&r.Key, &r.Calls, &successes, &r.InputTokens, &r.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		r.Failures = r.Calls - successes
		r.AvgLatencyMs = int64(avg)
		out = append(out, r)
	}
	return out, rows.Err()
}
