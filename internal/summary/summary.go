// Package summary writes the per-log human-readable run summaries. These
// files are operator candy: downstream tooling consumes only the dataset
// table.
package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"futoshiki-results/internal/record"
)

// FileName returns the summary file name for a given log file name.
func FileName(logName string) string {
	base := strings.TrimSuffix(logName, filepath.Ext(logName))
	return "parsed_" + base + ".txt"
}

// Write renders one summary file for the records extracted from logName
// into dir, creating dir if needed. now stamps the report; pass time.Now
// outside tests. Nothing is written when records is empty.
func Write(dir, logName string, records []record.Record, now time.Time) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create summary directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Source File: %s\n", logName)
	fmt.Fprintf(&b, "Generated on: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Runs Found: %d\n", len(records))

	for i, rec := range records {
		fmt.Fprintf(&b, "\n%s RUN %d %s\n", strings.Repeat("=", 20), i+1, strings.Repeat("=", 20))
		b.WriteString("--- Run Configuration ---\n")
		fmt.Fprintf(&b, "  Puzzle Name:         %s\n", rec.PuzzleName)
		fmt.Fprintf(&b, "  Implementation:      %s\n", strings.ToUpper(string(rec.Implementation)))
		fmt.Fprintf(&b, "  Test Type:           %s\n", rec.TestType)
		fmt.Fprintf(&b, "  Job ID:              %s\n", rec.JobID)
		fmt.Fprintf(&b, "  Processes:           %s\n", rec.NumProcesses)
		fmt.Fprintf(&b, "  Threads:             %s\n", rec.NumThreads)
		b.WriteString("\n--- Performance Metrics ---\n")
		fmt.Fprintf(&b, "  Solving Time:        %s seconds\n", rec.SolvingTime)
		fmt.Fprintf(&b, "  Total Time:          %s seconds\n", rec.TotalTime)
		fmt.Fprintf(&b, "  Speedup:             %s\n", rec.Speedup)
		fmt.Fprintf(&b, "  Efficiency:          %s\n", rec.Efficiency)
	}
	b.WriteString(strings.Repeat("=", 50) + "\n")

	path := filepath.Join(dir, FileName(logName))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write summary %s: %w", path, err)
	}
	return path, nil
}
