package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/logging"
)

// DescriptorFilters is the descriptor key holding attribute filters.
const DescriptorFilters = "filters"

// ReferenceResolverOptions configures a ReferenceResolver.
type ReferenceResolverOptions struct {
	// Logger receives search events (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Limit caps the number of candidates returned. Zero means no limit.
	Limit int
}

// ReferenceResolver is a core.ReferenceResolver that searches reference
// objects in an Index. It understands descriptors of the form
//
//	{"filters": {"has_name": "hut", "has_colour": ["red", "blue"]}}
//
// A reference object matches when, for every has_* key, it carries a triple
// with that predicate and one of the listed values (case-insensitive).
// Candidates are returned newest first. Descriptor keys it cannot evaluate
// ("special", "location", coreference) yield an error wrapping
// core.ErrNotFound.
type ReferenceResolver struct {
	index  Index
	logger logging.Logger
	limit  int
}

var _ core.ReferenceResolver = (*ReferenceResolver)(nil)

// NewReferenceResolver creates a ReferenceResolver over index.
func NewReferenceResolver(index Index, optFns ...func(o *ReferenceResolverOptions)) *ReferenceResolver {
	opts := ReferenceResolverOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &ReferenceResolver{index: index, logger: opts.Logger, limit: opts.Limit}
}

// ResolveReferenceObject implements core.ReferenceResolver.
func (r *ReferenceResolver) ResolveReferenceObject(ctx context.Context, d core.Descriptor) ([]core.Entity, error) {
	filters, err := parseFilters(d)
	if err != nil {
		return nil, err
	}

	all, err := r.index.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	var out []core.Entity

	for _, e := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, ok := e.(*core.ReferenceObjectNode); !ok {
			continue
		}

		ok, err := r.matches(ctx, e.MemID(), filters)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		out = append(out, e)

		if r.limit > 0 && len(out) == r.limit {
			break
		}
	}

	r.logger.Debug("memory.reference.resolve", "filters", len(filters), "candidates", len(out))

	return out, nil
}

func (r *ReferenceResolver) matches(ctx context.Context, id core.MemID, filters []attributeFilter) (bool, error) {
	for _, f := range filters {
		triples, err := r.index.Triples(ctx, id, f.predicate)
		if err != nil {
			return false, fmt.Errorf("get triples (%s, %s): %w", id, f.predicate, err)
		}

		if !f.accepts(triples) {
			return false, nil
		}
	}

	return true, nil
}

type attributeFilter struct {
	predicate string
	values    []string
}

func (f attributeFilter) accepts(triples []core.Triple) bool {
	for _, t := range triples {
		for _, v := range f.values {
			if strings.EqualFold(t.Value, v) {
				return true
			}
		}
	}

	return false
}

// parseFilters extracts attribute filters in predicate order so evaluation is
// deterministic.
func parseFilters(d core.Descriptor) ([]attributeFilter, error) {
	for k := range d {
		if k != DescriptorFilters {
			return nil, fmt.Errorf("descriptor key %q: %w", k, core.ErrNotFound)
		}
	}

	raw, ok := d[DescriptorFilters]
	if !ok || raw == nil {
		return nil, nil
	}

	m, ok := raw.(map[string]any)
	if !ok {
		if cd, isDesc := raw.(core.Descriptor); isDesc {
			m = cd
		} else {
			return nil, fmt.Errorf("descriptor filters of type %T: %w", raw, core.ErrNotFound)
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	filters := make([]attributeFilter, 0, len(keys))

	for _, k := range keys {
		if !core.IsAttribute(k) {
			return nil, fmt.Errorf("filter %q: %w", k, core.ErrNotFound)
		}

		values, err := filterValues(m[k])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", k, err)
		}

		filters = append(filters, attributeFilter{predicate: k, values: values})
	}

	return filters, nil
}

func filterValues(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))

		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("value of type %T: %w", item, core.ErrNotFound)
			}

			out = append(out, s)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("value of type %T: %w", v, core.ErrNotFound)
	}
}
