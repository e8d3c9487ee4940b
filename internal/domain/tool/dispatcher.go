package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matiasleandrokruk/wccmcp/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/eventbus"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/metrics"
)

// Invocation outcomes, used as metric labels and audit values.
const (
	OutcomeSuccess          = "success"
	OutcomeUnknownTool      = "unknown_tool"
	OutcomeInvalidArguments = "invalid_arguments"
	OutcomeBackendError     = "backend_error"
)

// unknownToolLabel replaces caller-supplied names in metrics so arbitrary input cannot grow label cardinality.
const unknownToolLabel = "unknown"

// Request is one tool call as decoded by a front end.
type Request struct {
	Tool      string
	Arguments map[string]any
}

// ContentBlock is a unit of response payload. Only text blocks are produced.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the protocol envelope returned for every call. Failures set IsError.
type Result struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// Text joins the text of all content blocks.
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}

func textResult(text string, isError bool) Result {
	return Result{Content: []ContentBlock{{Type: "text", Text: text}}, IsError: isError}
}

// Invocation is published on eventbus.TopicToolInvoked after every call.
type Invocation struct {
	ID        string
	Tool      string
	Transport string
	Actor     string
	Outcome   string
	Message   string
	Duration  time.Duration
	StartedAt time.Time
}

// Dispatcher turns Requests into Results. It is safe for concurrent use.
type Dispatcher struct {
	registry *Registry
	logger   zerolog.Logger
	metrics  *metrics.ToolMetrics
	bus      eventbus.EventBus
	tracer   trace.Tracer
}

type Option func(*Dispatcher)

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithMetrics(m *metrics.ToolMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithEventBus(bus eventbus.EventBus) Option {
	return func(d *Dispatcher) { d.bus = bus }
}

func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   zerolog.Nop(),
		tracer:   otel.Tracer("github.com/matiasleandrokruk/wccmcp/internal/domain/tool"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry exposes the catalog the dispatcher validates against.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Invoke runs one call. It never returns an error: every failure is folded into a Result with IsError set.
func (d *Dispatcher) Invoke(ctx context.Context, req Request) Result {
	started := time.Now()
	ctx, span := d.tracer.Start(ctx, "tool.invoke", trace.WithAttributes(attribute.String("tool.name", req.Tool)))
	defer span.End()
	if d.metrics != nil {
		defer d.metrics.Start()()
	}

	out, outcome, err := d.run(ctx, req)
	var res Result
	if err == nil {
		text, fmtErr := render(out)
		if fmtErr != nil {
			outcome, err = OutcomeBackendError, fmtErr
		} else {
			res = textResult(text, false)
		}
	}
	if err != nil {
		res = textResult(failureText(req.Tool, err), true)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.SetAttributes(attribute.String("tool.outcome", outcome))

	elapsed := time.Since(started)
	d.record(ctx, req.Tool, outcome, res, err, started, elapsed)
	return res
}

// run looks the tool up, validates and defaults its arguments, and calls the handler.
func (d *Dispatcher) run(ctx context.Context, req Request) (out Output, outcome string, err error) {
	def, ok := d.registry.Get(req.Tool)
	if !ok {
		return Output{}, OutcomeUnknownTool, fmt.Errorf("%w: %s", ErrUnknownTool, req.Tool)
	}
	args, err := prepare(def.Params, req.Arguments)
	if err != nil {
		return Output{}, OutcomeInvalidArguments, err
	}

	defer func() {
		if r := recover(); r != nil {
			out, outcome, err = Output{}, OutcomeBackendError, fmt.Errorf("internal error: %v", r)
		}
	}()
	out, err = def.Handler(ctx, args)
	switch {
	case err == nil:
		return out, OutcomeSuccess, nil
	case errors.Is(err, ErrInvalidArgument):
		return Output{}, OutcomeInvalidArguments, err
	default:
		return Output{}, OutcomeBackendError, err
	}
}

func render(out Output) (string, error) {
	if out.Saved != nil {
		return fmt.Sprintf("%s downloaded successfully to: %s", out.Saved.Kind, out.Saved.Path), nil
	}
	if len(bytes.TrimSpace(out.JSON)) == 0 {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, out.JSON, "", "  "); err != nil {
		return "", fmt.Errorf("format response: %w", err)
	}
	return buf.String(), nil
}

func failureText(tool string, err error) string {
	var argErr *ArgumentError
	switch {
	case errors.Is(err, ErrUnknownTool):
		return "Unknown tool: " + tool
	case errors.Is(err, ErrMissingArgument) && errors.As(err, &argErr):
		return fmt.Sprintf("Missing required argument for tool %s: %s", tool, argErr.Field)
	case errors.Is(err, ErrInvalidArgument):
		return fmt.Sprintf("Invalid argument for tool %s: %s", tool, err.Error())
	default:
		return fmt.Sprintf("Error executing tool %s: %s", tool, err.Error())
	}
}

func (d *Dispatcher) record(ctx context.Context, name, outcome string, res Result, err error, started time.Time, elapsed time.Duration) {
	label := name
	if outcome == OutcomeUnknownTool {
		label = unknownToolLabel
	}
	if d.metrics != nil {
		d.metrics.Observe(label, outcome, elapsed)
	}

	evt := d.logger.Info()
	if err != nil {
		evt = d.logger.Warn().Err(err)
	}
	evt.Str("tool", name).Str("outcome", outcome).Dur("duration", elapsed).Msg("tool invoked")

	if d.bus == nil {
		return
	}
	id, idErr := uuid.NewV7()
	if idErr != nil {
		id = uuid.New()
	}
	inv := Invocation{
		ID:        id.String(),
		Tool:      name,
		Transport: ctxkeys.String(ctx, ctxkeys.Transport),
		Actor:     ctxkeys.String(ctx, ctxkeys.Subject),
		Outcome:   outcome,
		Duration:  elapsed,
		StartedAt: started.UTC(),
	}
	if res.IsError {
		inv.Message = res.Text()
	}
	d.bus.Publish(eventbus.TopicToolInvoked, inv)
}
