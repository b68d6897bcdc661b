package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"epgdoctor/internal/batch"
)

// ExportCSV writes the run's per-channel outcomes as CSV. When path is empty
// a timestamped file is created under dir and its path returned.
func ExportCSV(result batch.Result, dir, path string) (string, error) {
	if path == "" {
		name := fmt.Sprintf("epgdoctor_%s_%s.csv", result.Kind, result.StartedAt.UTC().Format("20060102_150405"))
		path = filepath.Join(dir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"channel_id", "channel_name", "group", "status", "epg_id", "epg_name",
		"epg_source", "suggested_id", "suggested_name", "suggested_source",
		"score", "method", "applied", "detail",
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("write export header: %w", err)
	}
	for _, outcome := range result.Outcomes {
		row := []string{
			strconv.FormatInt(outcome.Channel.ID, 10),
			outcome.Channel.Name,
			outcome.Channel.Group,
			string(outcome.Status),
			formatID(outcome.Channel.EPGDataID),
			outcome.Channel.EPGName,
			outcome.Channel.EPGSource,
			"", "", "", "", "",
			strconv.FormatBool(outcome.Applied),
			outcome.Detail,
		}
		if outcome.Match != nil && outcome.Match.Candidate != nil {
			row[7] = strconv.FormatInt(outcome.Match.Candidate.ID, 10)
			row[8] = outcome.Match.Candidate.Name
			row[9] = outcome.Match.Candidate.Source
			row[10] = strconv.Itoa(outcome.Match.Score)
			row[11] = outcome.Match.Method()
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("write export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush export: %w", err)
	}
	return path, nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
