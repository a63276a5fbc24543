package tool

import (
	"context"
	"errors"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/query"
)

// GetMemoryToolName is the name of the tool built by NewGetMemoryTool.
const GetMemoryToolName = "get_memory"

// Resolver answers query expressions (see resolver.Resolver).
type Resolver interface {
	Resolve(ctx context.Context, expr query.Expression) (core.Response, error)
}

// GetMemoryResult is returned by the get_memory tool.
type GetMemoryResult struct {
	Text    string `json:"text"`
	Payload any    `json:"payload,omitempty"`
}

// NewGetMemoryTool exposes r as a tool accepting a GET_MEMORY logical form.
// Logical forms that pass the schema but cannot be decoded fail with
// INVALID_QUERY; resolver errors fail with EXECUTION_ERROR.
func NewGetMemoryTool(r Resolver, optFns ...func(o *FunctionToolOptions)) *FunctionTool {
	return NewFunctionTool(
		GetMemoryToolName,
		"Answer a question about the agent's memory: what it is doing, where it is, or what it knows about an object",
		query.Schema(),
		func(ctx context.Context, args map[string]any) (any, error) {
			expr, err := query.FromActionDict(args)
			if err != nil {
				return nil, &ToolError{Tool: GetMemoryToolName, Message: err.Error(), Code: CodeInvalidQuery, cause: err}
			}

			resp, err := r.Resolve(ctx, expr)
			if err != nil {
				if errors.Is(err, query.ErrInvalidQuery) {
					return nil, &ToolError{Tool: GetMemoryToolName, Message: err.Error(), Code: CodeInvalidQuery, cause: err}
				}

				return nil, err
			}

			return GetMemoryResult{Text: resp.Text, Payload: resp.Payload}, nil
		},
		optFns...,
	)
}
