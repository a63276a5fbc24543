package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/logging"
	"github.com/hupe1980/memquery/query"
)

const instrumentationName = "github.com/hupe1980/memquery/resolver"

// Options configures a Resolver.
type Options struct {
	// Logger receives resolution events (defaults to NoOp logger if nil).
	Logger logging.Logger

	// StrictShapes propagates type-mismatch, precondition and unmapped-action
	// faults instead of answering "I don't understand what you're asking".
	StrictShapes bool

	// TracerProvider used for resolution spans (defaults to the global provider).
	TracerProvider trace.TracerProvider
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithStrictShapes makes shape faults hard errors.
func WithStrictShapes() func(o *Options) {
	return func(o *Options) { o.StrictShapes = true }
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) func(o *Options) {
	return func(o *Options) { o.TracerProvider = tp }
}

// Resolver answers query expressions. Create one with New.
type Resolver struct {
	memory core.MemoryView
	refs   core.ReferenceResolver
	logger logging.Logger
	tracer trace.Tracer
	strict bool
}

// New creates a Resolver reading from memory and delegating reference-object
// filters to refs. refs may be nil when REFERENCE_OBJECT queries are never
// issued.
func New(memory core.MemoryView, refs core.ReferenceResolver, optFns ...func(o *Options)) *Resolver {
	opts := Options{
		Logger:         logging.NoOpLogger{},
		TracerProvider: otel.GetTracerProvider(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	return &Resolver{
		memory: memory,
		refs:   refs,
		logger: opts.Logger,
		tracer: opts.TracerProvider.Tracer(instrumentationName),
		strict: opts.StrictShapes,
	}
}

// Resolve answers expr. User-facing outcomes (including "I don't know" style
// answers) are returned as responses with a nil error. Errors are returned
// for invalid expressions (query.ErrInvalidQuery), ErrNotPositionable, shape
// faults in strict mode, cancelled contexts and collaborator failures.
func (r *Resolver) Resolve(ctx context.Context, expr query.Expression) (core.Response, error) {
	ctx, span := r.tracer.Start(ctx, "memquery.resolve", trace.WithAttributes(
		attribute.String("memquery.query", expr.String()),
	))
	defer span.End()

	start := time.Now()

	resp, soft, err := r.resolve(ctx, expr)

	span.SetAttributes(attribute.Bool("memquery.soft_fault", soft))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	r.logResolution(expr, time.Since(start), soft, err)

	return resp, err
}

func (r *Resolver) resolve(ctx context.Context, expr query.Expression) (core.Response, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.Response{}, false, fmt.Errorf("resolve: %w", err)
	}

	if err := expr.Validate(); err != nil {
		return core.Response{}, false, err
	}

	if r.memory == nil {
		return core.Response{}, false, errors.New("resolve: memory view not configured")
	}

	r.logger.Debug("resolver.resolve.start", "query", expr.String())

	out, err := r.dispatch(ctx, expr.Subject)
	if err != nil {
		return r.classify(err)
	}

	if out.direct != nil {
		return *out.direct, false, nil
	}

	resp, err := Render(ctx, r.memory, out.candidates, expr.Answer)
	if err != nil {
		return r.classify(err)
	}

	return resp, false, nil
}

// classify converts soft faults into responses. The boolean result reports
// whether err was softened.
func (r *Resolver) classify(err error) (core.Response, bool, error) {
	var fault *Fault
	if errors.As(err, &fault) {
		switch {
		case fault.Soft():
			r.logger.Debug("resolver.resolve.soft_fault", "error", fault.Error())
			return core.TextResponse(fault.Message), true, nil
		case fault.Shape() && !r.strict:
			r.logger.Warn("resolver.resolve.shape_fault", "error", fault.Error())
			return core.TextResponse(MsgNotUnderstood), true, nil
		default:
			return core.Response{}, false, err
		}
	}

	if errors.Is(err, core.ErrNotFound) {
		r.logger.Debug("resolver.resolve.not_found", "error", err.Error())
		return core.TextResponse(MsgDontKnow), true, nil
	}

	return core.Response{}, false, err
}

func (r *Resolver) logResolution(expr query.Expression, dur time.Duration, soft bool, err error) {
	subject, answer := "", ""
	if expr.Subject != nil {
		subject = expr.Subject.Type()
	}

	if expr.Answer != nil {
		answer = expr.Answer.Type()
		if tag, ok := expr.Answer.(query.TagAnswer); ok {
			answer = tag.String()
		}
	}

	if rl, ok := r.logger.(logging.ResolutionLogger); ok {
		rl.LogResolution(subject, answer, dur, soft, err)
		return
	}

	if err != nil {
		r.logger.Error("resolver.resolve.error", "subject", subject, "answer", answer, "error", err.Error())
		return
	}

	r.logger.Info("resolver.resolve.done", "subject", subject, "answer", answer, "duration_ms", dur.Milliseconds(), "soft_fault", soft)
}
