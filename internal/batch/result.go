package batch

import (
	"time"

	"github.com/google/uuid"

	"epgdoctor/internal/match"
	"epgdoctor/internal/schedule"
)

// Channel is one lineup entry fed into a batch run. EPGDataID is zero when
// the channel has no guide identity assigned.
type Channel struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Group     string `json:"group"`
	EPGDataID int64  `json:"epg_data_id"`
	EPGName   string `json:"epg_name,omitempty"`
	EPGSource string `json:"epg_source,omitempty"`
}

// Status classifies the outcome of one channel in a run.
type Status string

const (
	// StatusOK means the assigned identity has upcoming program data.
	StatusOK Status = "ok"
	// StatusMissing means the channel has no upcoming program data.
	StatusMissing Status = "missing"
	// StatusInconclusive means a schedule lookup could not complete; the
	// channel's health is unknown, not bad.
	StatusInconclusive Status = "inconclusive"
	// StatusHealed means a working replacement identity was found.
	StatusHealed Status = "healed"
	// StatusMatched means a working identity was suggested for the channel.
	StatusMatched Status = "matched"
	// StatusNoMatch means no candidate both scored and validated.
	StatusNoMatch Status = "no_match"
)

// Outcome is the per-channel record in a Result.
type Outcome struct {
	Channel Channel            `json:"channel"`
	Status  Status             `json:"status"`
	Detail  string             `json:"detail,omitempty"`
	Match   *match.MatchResult `json:"match,omitempty"`
	Applied bool               `json:"applied,omitempty"`
}

// Result is the full record of one batch run.
type Result struct {
	RunID      uuid.UUID       `json:"run_id"`
	Kind       string          `json:"kind"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Window     schedule.Window `json:"window"`
	Groups     []string        `json:"groups,omitempty"`
	Outcomes   []Outcome       `json:"outcomes"`
}

// Summary holds outcome counts for a run.
type Summary struct {
	Total        int `json:"total"`
	OK           int `json:"ok"`
	Missing      int `json:"missing"`
	Inconclusive int `json:"inconclusive"`
	Healed       int `json:"healed"`
	Matched      int `json:"matched"`
	NoMatch      int `json:"no_match"`
	Applied      int `json:"applied"`
}

// Counts tallies the run's outcomes.
func (r Result) Counts() Summary {
	summary := Summary{Total: len(r.Outcomes)}
	for _, outcome := range r.Outcomes {
		switch outcome.Status {
		case StatusOK:
			summary.OK++
		case StatusMissing:
			summary.Missing++
		case StatusInconclusive:
			summary.Inconclusive++
		case StatusHealed:
			summary.Healed++
		case StatusMatched:
			summary.Matched++
		case StatusNoMatch:
			summary.NoMatch++
		}
		if outcome.Applied {
			summary.Applied++
		}
	}
	return summary
}

// Broken returns the outcomes whose channels need healing.
func (r Result) Broken() []Outcome {
	broken := make([]Outcome, 0)
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusMissing {
			broken = append(broken, outcome)
		}
	}
	return broken
}
