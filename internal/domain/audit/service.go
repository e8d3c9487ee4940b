// Package audit persists one record per tool invocation.
// All operations are append-only; no updates or deletes are supported.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/matiasleandrokruk/wccmcp/internal/domain/tool"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/eventbus"
)

var ErrInvalidRecord = errors.New("invalid audit record")

// writeTimeout bounds a single insert made by the event consumer.
const writeTimeout = 5 * time.Second

// Service reads and appends audit records.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Log appends rec. An empty ID is filled with a UUIDv7 and a zero StartedAt with now.
func (s *Service) Log(ctx context.Context, rec *Record) error {
	if rec == nil || rec.Tool == "" || rec.Outcome == "" {
		return ErrInvalidRecord
	}
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("audit: generate id: %w", err)
		}
		rec.ID = id.String()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_invocation (id, tool, transport, actor, outcome, message, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Tool, rec.Transport, rec.Actor, rec.Outcome, rec.Message, rec.DurationMS,
		rec.StartedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("audit: insert %s: %w", rec.ID, err)
	}
	return nil
}

// ListRecent returns the newest records first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Record, error) {
	return s.list(ctx, `
		SELECT id, tool, transport, actor, outcome, message, duration_ms, started_at
		FROM tool_invocation
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, normalizeLimit(limit))
}

// ListByTool returns the newest records of one tool first.
func (s *Service) ListByTool(ctx context.Context, name string, limit int) ([]*Record, error) {
	return s.list(ctx, `
		SELECT id, tool, transport, actor, outcome, message, duration_ms, started_at
		FROM tool_invocation
		WHERE tool = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, name, normalizeLimit(limit))
}

func (s *Service) list(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	out := make([]*Record, 0)
	for rows.Next() {
		var (
			rec     Record
			started string
		)
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.Transport, &rec.Actor, &rec.Outcome,
			&rec.Message, &rec.DurationMS, &started); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		rec.StartedAt, err = time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("audit: parse started_at %q: %w", started, err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Consume appends every tool.Invocation received on events until the channel is closed.
// Writes are detached from ctx cancellation so events already published during shutdown
// are still recorded; closing the bus is what ends the loop.
func (s *Service) Consume(ctx context.Context, events <-chan eventbus.Event) {
	base := context.WithoutCancel(ctx)
	for evt := range events {
		inv, ok := evt.Payload.(tool.Invocation)
		if !ok {
			s.logger.Warn().Str("topic", evt.Topic).Msgf("audit: unexpected payload %T", evt.Payload)
			continue
		}
		writeCtx, cancel := context.WithTimeout(base, writeTimeout)
		if err := s.Log(writeCtx, FromInvocation(inv)); err != nil {
			s.logger.Error().Err(err).Str("tool", inv.Tool).Msg("audit: write failed")
		}
		cancel()
	}
}

// FromInvocation maps a dispatcher event onto a Record.
func FromInvocation(inv tool.Invocation) *Record {
	return &Record{
		ID:         inv.ID,
		Tool:       inv.Tool,
		Transport:  inv.Transport,
		Actor:      inv.Actor,
		Outcome:    inv.Outcome,
		Message:    inv.Message,
		DurationMS: inv.Duration.Milliseconds(),
		StartedAt:  inv.StartedAt,
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
