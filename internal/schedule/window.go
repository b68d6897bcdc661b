package schedule

import "time"

// Window is the half-open period a guide identity must have program data in.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow returns a window starting at now and extending the given number
// of look-ahead hours.
func NewWindow(now time.Time, hours int) Window {
	return Window{Start: now, End: now.Add(time.Duration(hours) * time.Hour)}
}

// Overlaps reports whether a program running from start to end intersects the
// window: the program must end at or after the window opens and start before
// it closes.
func (w Window) Overlaps(start, end time.Time) bool {
	return !end.Before(w.Start) && start.Before(w.End)
}

// Hours returns the window length in whole hours.
func (w Window) Hours() int {
	return int(w.End.Sub(w.Start) / time.Hour)
}
