// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
)

type (
	// ActionableError is an error with context for user-facing messages:
	// what operation failed and what the user can try next.
	//
	// Use the Context builder for incremental construction:
	//
	//	err := issue.NewContext().
	//		WithOperation("start container").
	//		WithSuggestion("Run 'kbox up' to start the engine first").
	//		Wrap(cause).
	//		Build()
	ActionableError struct {
		// Operation describes what was being attempted (e.g., "list containers").
		Operation string

		// Suggestions are hints on how to fix the issue (optional).
		Suggestions []string

		// Cause is the underlying error (optional).
		Cause error
	}

	// Context is a fluent builder for ActionableError values.
	Context struct {
		operation   string
		suggestions []string
		cause       error
	}
)

// NewContext creates an empty builder.
func NewContext() *Context {
	return &Context{}
}

// WithOperation sets the operation description.
func (c *Context) WithOperation(op string) *Context {
	c.operation = op
	return c
}

// WithSuggestion appends a suggestion.
func (c *Context) WithSuggestion(s string) *Context {
	c.suggestions = append(c.suggestions, s)
	return c
}

// Wrap records the underlying cause.
func (c *Context) Wrap(err error) *Context {
	c.cause = err
	return c
}

// Build produces the ActionableError. It returns nil when no cause was
// wrapped, so callers can write `return issue.NewContext()...Wrap(err).Build()`
// on both the success and failure paths.
func (c *Context) Build() error {
	if c.cause == nil {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

// Error implements the error interface with a concise single-line message.
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the cause for errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for terminal display, suggestions included.
func (e *ActionableError) Format() string {
	var msg strings.Builder
	msg.WriteString(e.Error())
	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, s := range e.Suggestions {
			msg.WriteString("\n  - ")
			msg.WriteString(s)
		}
	}
	return msg.String()
}
