package report

import (
	"sort"

	"epgdoctor/internal/batch"
)

// GroupCount is one aggregation bucket.
type GroupCount struct {
	Name  string
	Count int
}

// RunSummary aggregates a run for display: overall counts plus where the
// missing channels concentrate.
type RunSummary struct {
	Counts   batch.Summary
	BySource []GroupCount
	ByGroup  []GroupCount
}

// Summarize tallies the run and breaks the problem channels down by EPG
// source and channel group. topGroups caps the group list; zero or negative
// means no cap.
func Summarize(result batch.Result, topGroups int) RunSummary {
	summary := RunSummary{Counts: result.Counts()}

	bySource := make(map[string]int)
	byGroup := make(map[string]int)
	for _, outcome := range result.Outcomes {
		if outcome.Status != batch.StatusMissing && outcome.Status != batch.StatusNoMatch {
			continue
		}
		source := outcome.Channel.EPGSource
		if source == "" {
			source = "No Source"
		}
		group := outcome.Channel.Group
		if group == "" {
			group = "No Group"
		}
		bySource[source]++
		byGroup[group]++
	}

	summary.BySource = sortCounts(bySource, 0)
	summary.ByGroup = sortCounts(byGroup, topGroups)
	return summary
}

func sortCounts(buckets map[string]int, limit int) []GroupCount {
	counts := make([]GroupCount, 0, len(buckets))
	for name, count := range buckets {
		counts = append(counts, GroupCount{Name: name, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
