// Package toolutil provides shared helpers for go_podcast MCP tools.
package toolutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Failure is an error whose text is shown to the caller as-is, without the
// "Error: " prefix.
type Failure struct {
	Text string
}

func (f *Failure) Error() string { return f.Text }

// Failf builds a *Failure.
func Failf(format string, args ...any) error {
	return &Failure{Text: fmt.Sprintf(format, args...)}
}

// TextResult wraps markdown text as a successful tool result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ErrorResult converts err into an in-band tool failure.
func ErrorResult(err error) *mcp.CallToolResult {
	text := "Error: " + err.Error()
	var f *Failure
	if errors.As(err, &f) {
		text = f.Text
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// TextHandler adapts a text-producing function to an MCP tool handler. Errors never
// escape as protocol faults; they become IsError results.
func TextHandler[In any](name string, fn func(context.Context, In) (string, error)) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		text, err := fn(ctx, input)
		if err != nil {
			slog.Warn(name+": failed", slog.Any("error", err))
			return ErrorResult(err), nil, nil
		}
		return TextResult(text), nil, nil
	}
}
