// Package dataset persists run records as a row-oriented CSV table and
// reconciles new records into it.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"futoshiki-results/internal/record"
)

// columns fixes the table schema: header order, serialization, and parsing.
// Any column in a prior table that is not listed here is dropped on rewrite.
var columns = []struct {
	name string
	get  func(record.Record) string
	set  func(*record.Record, string)
}{
	{"puzzle_name",
		func(r record.Record) string { return r.PuzzleName.String() },
		func(r *record.Record, s string) { r.PuzzleName = record.Some(s) }},
	{"implementation",
		func(r record.Record) string { return string(r.Implementation) },
		func(r *record.Record, s string) { r.Implementation = record.ParseImplementation(s) }},
	{"test_type",
		func(r record.Record) string { return string(r.TestType) },
		func(r *record.Record, s string) { r.TestType = record.ParseTestType(s) }},
	{"job_id",
		func(r record.Record) string { return r.JobID.String() },
		func(r *record.Record, s string) { r.JobID = record.Some(s) }},
	{"num_processors",
		func(r record.Record) string { return r.NumProcesses.String() },
		func(r *record.Record, s string) { r.NumProcesses = record.Some(s) }},
	{"num_threads",
		func(r record.Record) string { return r.NumThreads.String() },
		func(r *record.Record, s string) { r.NumThreads = record.Some(s) }},
	{"task_factor",
		func(r record.Record) string { return r.TaskFactor.String() },
		func(r *record.Record, s string) { r.TaskFactor = record.Some(s) }},
	{"depth",
		func(r record.Record) string { return r.Depth.String() },
		func(r *record.Record, s string) { r.Depth = record.Some(s) }},
	{"work_units",
		func(r record.Record) string { return r.WorkUnits.String() },
		func(r *record.Record, s string) { r.WorkUnits = record.Some(s) }},
	{"colors_removed",
		func(r record.Record) string { return r.ColorsRemoved.String() },
		func(r *record.Record, s string) { r.ColorsRemoved = record.Some(s) }},
	{"colors_remaining",
		func(r record.Record) string { return r.ColorsRemaining.String() },
		func(r *record.Record, s string) { r.ColorsRemaining = record.Some(s) }},
	{"space_reduction",
		func(r record.Record) string { return r.SpaceReduction.String() },
		func(r *record.Record, s string) { r.SpaceReduction = record.Some(s) }},
	{"solving_time",
		func(r record.Record) string { return r.SolvingTime.String() },
		func(r *record.Record, s string) { r.SolvingTime = record.Some(s) }},
	{"total_time",
		func(r record.Record) string { return r.TotalTime.String() },
		func(r *record.Record, s string) { r.TotalTime = record.Some(s) }},
	{"speedup",
		func(r record.Record) string { return r.Speedup.String() },
		func(r *record.Record, s string) { r.Speedup = record.Some(s) }},
	{"efficiency",
		func(r record.Record) string { return r.Efficiency.String() },
		func(r *record.Record, s string) { r.Efficiency = record.Some(s) }},
}

// Header returns the table's column names in serialization order.
func Header() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// Load reads the persisted table into a key-indexed map. A missing file is
// an empty prior dataset. An unreadable or corrupt file is also treated as
// empty; warnFn (may be nil) is told so the operator can investigate, but
// reconciliation proceeds.
func Load(path string, warnFn func(string)) map[record.Key]record.Record {
	if warnFn == nil {
		warnFn = func(string) {}
	}
	records := make(map[record.Key]record.Record)

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			warnFn(fmt.Sprintf("could not read existing dataset %s, starting fresh: %v", path, err))
		}
		return records
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		warnFn(fmt.Sprintf("could not parse existing dataset %s, starting fresh: %v", path, err))
		return records
	}
	if len(rows) == 0 {
		return records
	}

	// Index the prior header by name so that column reordering and columns
	// from older schema versions do not corrupt the load.
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}

	for _, row := range rows[1:] {
		var rec record.Record
		for _, c := range columns {
			i, ok := index[c.name]
			if !ok || i >= len(row) {
				c.set(&rec, record.Sentinel)
				continue
			}
			c.set(&rec, row[i])
		}
		records[rec.Key()] = rec
	}
	return records
}

// Write rewrites the full table in canonical order. The table is staged in
// a temporary file and renamed into place, so a failed write never leaves a
// partial table behind. Any error is fatal for the invocation.
func Write(path string, records map[record.Key]record.Record) error {
	rows := Sorted(records)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create dataset temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(Header()); err != nil {
		tmp.Close()
		return fmt.Errorf("write dataset header: %w", err)
	}
	line := make([]string, len(columns))
	for _, rec := range rows {
		for i, c := range columns {
			line[i] = c.get(rec)
		}
		if err := w.Write(line); err != nil {
			tmp.Close()
			return fmt.Errorf("write dataset row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close dataset temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace dataset %s: %w", path, err)
	}
	return nil
}

// Sorted returns the records in canonical table order: (puzzle, test type,
// implementation, processes, threads) ascending. The count columns compare
// numerically with the N/A sentinel sorting last, so thread counts like
// 2, 10 keep natural order.
func Sorted(records map[record.Key]record.Record) []record.Record {
	rows := make([]record.Record, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec)
	}
	sortRecords(rows)
	return rows
}

func sortRecords(rows []record.Record) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.PuzzleName.String() != b.PuzzleName.String() {
			return a.PuzzleName.String() < b.PuzzleName.String()
		}
		if a.TestType != b.TestType {
			return a.TestType < b.TestType
		}
		if a.Implementation != b.Implementation {
			return a.Implementation < b.Implementation
		}
		if c := compareCount(a.NumProcesses, b.NumProcesses); c != 0 {
			return c < 0
		}
		return compareCount(a.NumThreads, b.NumThreads) < 0
	})
}

func compareCount(a, b record.Value) int {
	av, aok := a.Int()
	bv, bok := b.Int()
	switch {
	case aok && bok:
		return av - bv
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}
