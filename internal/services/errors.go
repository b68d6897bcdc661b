// Package services defines the error taxonomy shared by collaborator-facing
// components. Sentinel markers distinguish a schedule lookup that could not
// complete from a clean negative answer, and configuration mistakes from
// transient transport failures, so callers can classify outcomes with
// errors.Is instead of string matching.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable marks a collaborator call that could not complete
	// (timeout, transport failure). It is never equivalent to a clean
	// negative result.
	ErrUnavailable = errors.New("collaborator unavailable")
	// ErrValidation marks input that failed a semantic check.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks settings rejected at construction time.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a missing remote or local record.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks a retryable failure with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsInconclusive reports whether err means a channel's matching run could not
// reach a verdict because a schedule lookup was unavailable. Callers must
// surface such channels as inconclusive rather than "no match".
func IsInconclusive(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
