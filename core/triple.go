package core

import "strings"

// Well-known predicates.
const (
	PredicateHasName = "has_name"
	PredicateHasTag  = "has_tag"

	// AttributePrefix marks attribute predicates (has_name, has_colour, ...).
	AttributePrefix = "has_"
)

// Triple is a (subject, predicate, value) fact in the memory graph. Several
// triples may share a subject and predicate.
type Triple struct {
	Subject   MemID  `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Value     string `json:"value" yaml:"value"`
}

// IsAttribute reports whether pred names an attribute predicate.
func IsAttribute(pred string) bool { return strings.HasPrefix(pred, AttributePrefix) }

// Values returns the values of triples in storage order.
func Values(triples []Triple) []string {
	out := make([]string, 0, len(triples))
	for _, t := range triples {
		out = append(out, t.Value)
	}

	return out
}
