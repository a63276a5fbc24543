// Package query defines the typed GET_MEMORY query expression consumed by the
// resolver, together with decoding from the parser's logical-form dictionary.
//
// An Expression pairs exactly one SubjectFilter (what the user is asking
// about) with exactly one AnswerType (the shape of the answer):
//
//	expr := query.Expression{
//	  Subject: query.ReferenceObjectFilter{Descriptor: core.Descriptor{"filters": map[string]any{"has_name": "hut"}}},
//	  Answer:  query.TagAnswer{TagName: "has_colour"},
//	}
//
// Both SubjectFilter and AnswerType are closed sums; consumers switch on the
// concrete type.
package query
