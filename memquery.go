// Package memquery provides a high-level façade over the query resolver and
// its collaborators (working memory, reference resolution, logging). Most
// applications interact with this package by:
//  1. Creating a MemQuery via New() (optionally overriding the default in‑memory store)
//  2. Asking GET_MEMORY questions as expressions (Ask), parser logical forms
//     (AskActionDict) or raw JSON (AskJSON)
//  3. Optionally exposing the resolver to a planner as a tool (Tool)
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable store (see memory/sqlite) and a
// structured logger.
package memquery

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/logging"
	"github.com/hupe1980/memquery/memory"
	"github.com/hupe1980/memquery/query"
	"github.com/hupe1980/memquery/resolver"
	"github.com/hupe1980/memquery/tool"
)

// Options configures the MemQuery instance.
type Options struct {
	// Memory is read by the resolver (defaults to an empty in-memory store).
	Memory core.MemoryView

	// ReferenceResolver maps REFERENCE_OBJECT descriptors to candidates. When
	// nil and Memory implements memory.Index, a memory.ReferenceResolver over
	// Memory is used.
	ReferenceResolver core.ReferenceResolver

	// StrictShapes propagates shape faults instead of softening them.
	StrictShapes bool

	// TracerProvider for resolution spans (defaults to the global provider).
	TracerProvider trace.TracerProvider

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// MemQuery is the high-level façade aggregating the resolver and its collaborators.
type MemQuery struct {
	opts     Options
	resolver *resolver.Resolver
}

// New creates a new MemQuery instance with optional overrides.
func New(optFns ...func(o *Options)) *MemQuery {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Memory == nil {
		opts.Memory = memory.NewInMemoryStore()
	}

	if opts.ReferenceResolver == nil {
		if idx, ok := opts.Memory.(memory.Index); ok {
			opts.ReferenceResolver = memory.NewReferenceResolver(idx, func(o *memory.ReferenceResolverOptions) {
				o.Logger = opts.Logger
			})
		}
	}

	r := resolver.New(opts.Memory, opts.ReferenceResolver, func(o *resolver.Options) {
		o.Logger = opts.Logger
		o.StrictShapes = opts.StrictShapes
		o.TracerProvider = opts.TracerProvider
	})

	return &MemQuery{opts: opts, resolver: r}
}

// Memory returns the memory view the resolver reads.
func (m *MemQuery) Memory() core.MemoryView { return m.opts.Memory }

// Resolver returns the underlying resolver.
func (m *MemQuery) Resolver() *resolver.Resolver { return m.resolver }

// Ask resolves a query expression.
func (m *MemQuery) Ask(ctx context.Context, expr query.Expression) (core.Response, error) {
	return m.resolver.Resolve(ctx, expr)
}

// AskActionDict decodes a parser logical form and resolves it.
func (m *MemQuery) AskActionDict(ctx context.Context, d map[string]any) (core.Response, error) {
	expr, err := query.FromActionDict(d)
	if err != nil {
		return core.Response{}, err
	}

	return m.Ask(ctx, expr)
}

// AskJSON decodes a JSON logical form and resolves it.
func (m *MemQuery) AskJSON(ctx context.Context, data []byte) (core.Response, error) {
	expr, err := query.ParseJSON(data)
	if err != nil {
		return core.Response{}, err
	}

	return m.Ask(ctx, expr)
}

// Tool returns the resolver exposed as the get_memory tool.
func (m *MemQuery) Tool() tool.Tool {
	return tool.NewGetMemoryTool(m.resolver, tool.WithLogger(m.opts.Logger))
}
