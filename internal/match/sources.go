package match

import (
	"strings"

	"epgdoctor/internal/identity"
)

// Prioritizer filters and orders a candidate pool by configured source
// priority and collapses same-source duplicates.
type Prioritizer struct {
	order map[string]int
}

// NewPrioritizer builds a prioritizer from an ordered, case-insensitive list
// of desired source names. An empty list admits every source at equal
// priority, preserving pool order.
func NewPrioritizer(sourceOrder []string) *Prioritizer {
	if len(sourceOrder) == 0 {
		return &Prioritizer{}
	}
	order := make(map[string]int, len(sourceOrder))
	for i, source := range sourceOrder {
		key := strings.ToLower(strings.TrimSpace(source))
		if _, seen := order[key]; !seen {
			order[key] = i
		}
	}
	return &Prioritizer{order: order}
}

// Prioritize drops candidates from unlisted sources (when a source order is
// configured), attaches each survivor's priority index and extracted
// identity, and keeps only one call-sign representative per source: when
// several candidates from the same source share a call sign, the one with the
// shortest raw name wins.
func (p *Prioritizer) Prioritize(pool []Candidate, flags identity.Flags) []RankedCandidate {
	out := make([]RankedCandidate, 0, len(pool))
	representatives := make(map[string]int)

	for _, cand := range pool {
		priority, admitted := p.priorityFor(cand.Source)
		if !admitted {
			continue
		}
		ranked := RankedCandidate{
			Candidate: cand,
			Priority:  priority,
			Identity:  identity.Parse(cand.Name, flags),
		}
		if callsign := ranked.Identity.Callsign; callsign != "" {
			key := strings.ToLower(cand.Source) + "\x00" + callsign
			if at, seen := representatives[key]; seen {
				if len(cand.Name) < len(out[at].Name) {
					out[at] = ranked
				}
				continue
			}
			representatives[key] = len(out)
		}
		out = append(out, ranked)
	}
	return out
}

func (p *Prioritizer) priorityFor(source string) (int, bool) {
	if len(p.order) == 0 {
		return 0, true
	}
	priority, ok := p.order[strings.ToLower(strings.TrimSpace(source))]
	return priority, ok
}
