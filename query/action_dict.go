package query

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/internal/util"
)

// DialogueTypeGetMemory is the only dialogue type this package decodes.
const DialogueTypeGetMemory = "GET_MEMORY"

// ActionDict is the parser's logical form for a GET_MEMORY request:
//
//	{
//	  "dialogue_type": "GET_MEMORY",
//	  "filters": {"type": "REFERENCE_OBJECT", "reference_object": {...}},
//	  "answer_type": "TAG",
//	  "tag_name": "has_name"
//	}
type ActionDict struct {
	DialogueType string         `json:"dialogue_type,omitempty" description:"Dialogue type, GET_MEMORY when present" enum:"GET_MEMORY"`
	Filters      map[string]any `json:"filters" description:"Subject filter: type ACTION, AGENT or REFERENCE_OBJECT"`
	AnswerType   string         `json:"answer_type" description:"Answer shape" enum:"TAG,EXISTS"`
	TagName      string         `json:"tag_name,omitempty" description:"Attribute to report when answer_type is TAG"`
}

// Schema returns the JSON schema of a logical form, including the nested
// filters object.
func Schema() map[string]any {
	schema := util.CreateSchema(ActionDict{})

	props, _ := schema["properties"].(map[string]any)
	props["filters"] = filtersSchema()

	return schema
}

func filtersSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Subject filter: type ACTION, AGENT or REFERENCE_OBJECT",
		"properties": map[string]any{
			"type": map[string]any{
				"type": "string",
				"enum": []string{SubjectAction, SubjectAgent, SubjectReferenceObject},
			},
			"target_action_type": map[string]any{
				"type":        "string",
				"description": "Restrict ACTION queries to tasks of this type",
			},
			"reference_object": map[string]any{
				"type":        "object",
				"description": "Reference-object descriptor for REFERENCE_OBJECT queries",
			},
		},
		"required": []string{"type"},
	}
}

// FromActionDict decodes a logical form into a validated Expression. Every
// failure wraps ErrInvalidQuery; schema violations additionally carry a
// *util.ValidationError.
func FromActionDict(d map[string]any) (Expression, error) {
	if d == nil {
		return Expression{}, fmt.Errorf("%w: nil logical form", ErrInvalidQuery)
	}

	if err := util.ValidateParameters(d, Schema()); err != nil {
		return Expression{}, errors.Join(ErrInvalidQuery, err)
	}

	filters, _ := d["filters"].(map[string]any)

	subject, err := decodeSubject(filters)
	if err != nil {
		return Expression{}, err
	}

	answer, err := decodeAnswer(d)
	if err != nil {
		return Expression{}, err
	}

	expr := Expression{Subject: subject, Answer: answer}
	if err := expr.Validate(); err != nil {
		return Expression{}, err
	}

	return expr, nil
}

// ParseJSON decodes a JSON logical form.
func ParseJSON(data []byte) (Expression, error) {
	var d map[string]any
	if err := json.Unmarshal(data, &d); err != nil {
		return Expression{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	return FromActionDict(d)
}

func decodeSubject(filters map[string]any) (SubjectFilter, error) {
	switch t, _ := filters["type"].(string); t {
	case SubjectAction:
		target, _ := filters["target_action_type"].(string)
		return ActionFilter{TargetActionType: target}, nil
	case SubjectAgent:
		return AgentFilter{}, nil
	case SubjectReferenceObject:
		ref, ok := filters["reference_object"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: filters.reference_object is required for %s", ErrInvalidQuery, SubjectReferenceObject)
		}

		return ReferenceObjectFilter{Descriptor: core.Descriptor(ref)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown filter type %q", ErrInvalidQuery, t)
	}
}

func decodeAnswer(d map[string]any) (AnswerType, error) {
	switch t, _ := d["answer_type"].(string); t {
	case AnswerTag:
		name, _ := d["tag_name"].(string)
		return TagAnswer{TagName: name}, nil
	case AnswerExists:
		return ExistsAnswer{}, nil
	default:
		return nil, fmt.Errorf("%w: bad answer_type %q", ErrInvalidQuery, t)
	}
}
