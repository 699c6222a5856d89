// Package apierror provides the error values handed to callers of the service
// layer when a request itself is malformed. Messages are safe to show to club
// staff; driver and SQL details never end up here.
package apierror

import (
	"sort"
	"strings"
)

// ValidationError wraps multiple field errors (field name → failed tag).
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Error lists the fields in a stable order.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Detail
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(e.Detail)
	b.WriteString(": ")
	for i, f := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f)
		b.WriteString("=")
		b.WriteString(e.Fields[f])
	}
	return b.String()
}
