package schedule

import "context"

// Validator reports whether a guide identity has at least one program record
// overlapping the window. An error means the check could not complete and
// must not be treated as either answer.
type Validator interface {
	HasPrograms(ctx context.Context, epgID int64, window Window) (bool, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, epgID int64, window Window) (bool, error)

// HasPrograms calls f.
func (f ValidatorFunc) HasPrograms(ctx context.Context, epgID int64, window Window) (bool, error) {
	return f(ctx, epgID, window)
}
