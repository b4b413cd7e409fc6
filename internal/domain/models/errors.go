package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExplosionTooDeep is returned when a BOM explosion exceeds the
// configured depth bound.
var ErrExplosionTooDeep = errors.New("bom explosion exceeds maximum depth")

// CycleError reports a cycle found while exploding a BOM. Path holds the
// item codes from the root down to the repeated component.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("bom cycle detected: %s", strings.Join(e.Path, " -> "))
}

// ValidationError aggregates structural problems found before a computation
// starts. Always recoverable by the caller correcting its input.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid configuration"
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Field + ": " + issue.Message
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// DivergenceError signals a broken internal invariant of a simulation run,
// such as unit conservation failing. It is a bug signal, never swallowed.
type DivergenceError struct {
	Invariant string
	Detail    string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("simulation diverged: %s (%s)", e.Invariant, e.Detail)
}
