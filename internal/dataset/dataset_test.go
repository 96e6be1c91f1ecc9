package dataset

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"futoshiki-results/internal/record"
)

func makeRecord(puzzle string, impl record.Implementation, jobID, procs, threads, total string) record.Record {
	return record.Record{
		PuzzleName:     record.Some(puzzle),
		Implementation: impl,
		TestType:       record.Scaling,
		JobID:          record.Some(jobID),
		NumProcesses:   record.Some(procs),
		NumThreads:     record.Some(threads),
		TaskFactor:     record.Some("1.0"),
		TotalTime:      record.Some(total),
	}
}

func asMap(records ...record.Record) map[record.Key]record.Record {
	m := make(map[record.Key]record.Record)
	for _, r := range records {
		m[r.Key()] = r
	}
	return m
}

func TestMergeLastWriteWins(t *testing.T) {
	old := makeRecord("p1", record.Sequential, "100", "1", "1", "10.0")
	prior := asMap(old)

	updated := old
	updated.TotalTime = record.Some("12.0")
	merged := Merge(prior, []record.Record{updated})

	if len(merged) != 1 {
		t.Fatalf("got %d records, want 1", len(merged))
	}
	if got := merged[old.Key()].TotalTime.String(); got != "12.0" {
		t.Errorf("total_time = %q, want %q", got, "12.0")
	}

	// The prior map must not be mutated.
	if got := prior[old.Key()].TotalTime.String(); got != "10.0" {
		t.Errorf("prior mutated: total_time = %q", got)
	}
}

func TestRecomputeSpeedupAndEfficiency(t *testing.T) {
	seq := makeRecord("p1", record.Sequential, "100", "1", "1", "10.0")
	par := makeRecord("p1", record.ProcessParallel, "100", "4", "1", "2.5")
	records := asMap(seq, par)

	Recompute(records)

	got := records[par.Key()]
	if s := got.Speedup.String(); s != "4.0000" {
		t.Errorf("speedup = %q, want %q", s, "4.0000")
	}
	if e := got.Efficiency.String(); e != "1.0000" {
		t.Errorf("efficiency = %q, want %q", e, "1.0000")
	}

	// Sequential records never carry derived metrics.
	if s := records[seq.Key()].Speedup.String(); s != "N/A" {
		t.Errorf("sequential speedup = %q, want N/A", s)
	}
}

func TestRecomputeEfficiencyFormula(t *testing.T) {
	tests := []struct {
		name    string
		impl    record.Implementation
		procs   string
		threads string
		units   float64
	}{
		{"process-parallel", record.ProcessParallel, "8", "1", 8},
		{"thread-parallel", record.ThreadParallel, "1", "16", 16},
		{"hybrid", record.Hybrid, "2", "4", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := makeRecord("p1", record.Sequential, "100", "1", "1", "10.0")
			par := makeRecord("p1", tt.impl, "100", tt.procs, tt.threads, "3.0")
			records := asMap(seq, par)
			Recompute(records)

			got := records[par.Key()]
			speedup, ok := got.Speedup.Float()
			if !ok {
				t.Fatalf("speedup = %q, want numeric", got.Speedup)
			}
			eff, ok := got.Efficiency.Float()
			if !ok {
				t.Fatalf("efficiency = %q, want numeric", got.Efficiency)
			}
			if math.Abs(eff-speedup/tt.units) > 1e-6 {
				t.Errorf("efficiency = %v, want %v/%v", eff, speedup, tt.units)
			}
		})
	}
}

func TestRecomputeUndefinedCases(t *testing.T) {
	tests := []struct {
		name        string
		records     []record.Record
		wantSpeedup string
		wantEff     string
	}{
		{
			name: "no sequential baseline",
			records: []record.Record{
				makeRecord("p1", record.ProcessParallel, "100", "4", "1", "2.5"),
			},
			wantSpeedup: "N/A",
			wantEff:     "N/A",
		},
		{
			name: "baseline for a different puzzle",
			records: []record.Record{
				makeRecord("other", record.Sequential, "100", "1", "1", "10.0"),
				makeRecord("p1", record.ProcessParallel, "100", "4", "1", "2.5"),
			},
			wantSpeedup: "N/A",
			wantEff:     "N/A",
		},
		{
			name: "zero total time",
			records: []record.Record{
				makeRecord("p1", record.Sequential, "100", "1", "1", "10.0"),
				makeRecord("p1", record.ProcessParallel, "100", "4", "1", "0.0"),
			},
			wantSpeedup: "N/A",
			wantEff:     "N/A",
		},
		{
			name: "non-numeric total time",
			records: []record.Record{
				makeRecord("p1", record.Sequential, "100", "1", "1", "10.0"),
				makeRecord("p1", record.ProcessParallel, "100", "4", "1", "N/A"),
			},
			wantSpeedup: "N/A",
			wantEff:     "N/A",
		},
		{
			// A hybrid run with an unknown axis has a speedup but no
			// derivable unit count.
			name: "hybrid with unknown thread axis",
			records: []record.Record{
				makeRecord("p1", record.Sequential, "100", "1", "1", "10.0"),
				makeRecord("p1", record.Hybrid, "100", "2", "N/A", "2.0"),
			},
			wantSpeedup: "5.0000",
			wantEff:     "N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := asMap(tt.records...)
			Recompute(records)

			target := tt.records[len(tt.records)-1]
			got := records[target.Key()]
			if s := got.Speedup.String(); s != tt.wantSpeedup {
				t.Errorf("speedup = %q, want %q", s, tt.wantSpeedup)
			}
			if e := got.Efficiency.String(); e != tt.wantEff {
				t.Errorf("efficiency = %q, want %q", e, tt.wantEff)
			}
		})
	}
}

func TestRecomputeResetsStaleDerivedFields(t *testing.T) {
	par := makeRecord("p1", record.ProcessParallel, "100", "4", "1", "2.5")
	par.Speedup = record.Some("99.0000")
	par.Efficiency = record.Some("9.0000")
	records := asMap(par)

	Recompute(records)

	got := records[par.Key()]
	if s := got.Speedup.String(); s != "N/A" {
		t.Errorf("stale speedup survived: %q", s)
	}
	if e := got.Efficiency.String(); e != "N/A" {
		t.Errorf("stale efficiency survived: %q", e)
	}
}

func TestRecomputeBaselineUpdateSameKey(t *testing.T) {
	seq := makeRecord("p1", record.Sequential, "100", "1", "1", "10.0")
	par := makeRecord("p1", record.ProcessParallel, "100", "4", "1", "2.5")
	merged := Merge(asMap(seq, par), nil)
	Recompute(merged)
	if s := merged[par.Key()].Speedup.String(); s != "4.0000" {
		t.Fatalf("initial speedup = %q, want 4.0000", s)
	}

	// A new record sharing the sequential record's key updates the baseline
	// used by every non-sequential record on the same pass.
	newSeq := seq
	newSeq.TotalTime = record.Some("20.0")
	merged = Merge(merged, []record.Record{newSeq})
	Recompute(merged)

	if s := merged[par.Key()].Speedup.String(); s != "8.0000" {
		t.Errorf("updated speedup = %q, want 8.0000", s)
	}
}

func TestBaselineHighestJobIDWins(t *testing.T) {
	oldSeq := makeRecord("p1", record.Sequential, "100", "1", "1", "10.0")
	newSeq := makeRecord("p1", record.Sequential, "200", "1", "1", "20.0")
	noJob := makeRecord("p1", record.Sequential, "N/A", "1", "1", "30.0")
	par := makeRecord("p1", record.ProcessParallel, "200", "4", "1", "2.0")

	records := asMap(oldSeq, newSeq, noJob, par)
	Recompute(records)

	// job 200's 20.0 seconds is the baseline: 20.0 / 2.0 = 10.
	if s := records[par.Key()].Speedup.String(); s != "10.0000" {
		t.Errorf("speedup = %q, want 10.0000", s)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	var warned []string
	records := Load(filepath.Join(t.TempDir(), "absent.csv"), func(msg string) { warned = append(warned, msg) })
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
	if len(warned) != 0 {
		t.Errorf("missing file warned: %v", warned)
	}
}

func TestLoadCorruptFileWarnsAndIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.csv")
	if err := os.WriteFile(path, []byte("puzzle_name,implementation\n\"unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var warned []string
	records := Load(path, func(msg string) { warned = append(warned, msg) })
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
	if len(warned) == 0 {
		t.Error("corrupt file did not warn")
	}
}

func TestLoadDropsUnrecognizedColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.csv")

	// A prior table from an older schema with an extra column and a
	// different column order.
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"legacy_notes", "implementation", "puzzle_name", "test_type", "total_time"})
	w.Write([]string{"keep me", "sequential", "p1", "scaling", "10.0"})
	w.Flush()
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	records := Load(path, nil)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if err := Write(path, records); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if strings.Contains(header, "legacy_notes") {
		t.Errorf("unrecognized column survived rewrite: %s", header)
	}
	if header != strings.Join(Header(), ",") {
		t.Errorf("header = %q, want canonical %q", header, strings.Join(Header(), ","))
	}
	if strings.Contains(string(data), "keep me") {
		t.Error("unrecognized column's value survived rewrite")
	}
}

func TestWriteCanonicalSortOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")

	var input []record.Record
	// Insert out of order, with counts whose lexicographic and numeric
	// orders differ.
	for _, n := range []string{"10", "2", "4"} {
		input = append(input, makeRecord("p1", record.ProcessParallel, "100", n, "1", "1.0"))
	}
	input = append(input,
		makeRecord("p1", record.Sequential, "100", "1", "1", "10.0"),
		makeRecord("a-first", record.ThreadParallel, "100", "1", "8", "5.0"),
	)

	records := Merge(nil, input)
	if err := Write(path, records); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	type rowKey struct{ puzzle, impl, procs string }
	var got []rowKey
	for _, row := range rows[1:] {
		got = append(got, rowKey{row[0], row[1], row[4]})
	}
	want := []rowKey{
		{"a-first", "thread-parallel", "1"},
		{"p1", "process-parallel", "2"},
		{"p1", "process-parallel", "4"},
		{"p1", "process-parallel", "10"},
		{"p1", "sequential", "1"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReconciliationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")

	input := []record.Record{
		makeRecord("p1", record.Sequential, "100", "1", "1", "10.0"),
		makeRecord("p1", record.ProcessParallel, "100", "4", "1", "2.5"),
		makeRecord("p2", record.Hybrid, "101", "2", "4", "3.0"),
	}

	merged := Merge(Load(path, nil), input)
	Recompute(merged)
	if err := Write(path, merged); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// A second pass over the same inputs must be byte-identical: no
	// accumulated duplicate keys, no drifting derived fields.
	merged = Merge(Load(path, nil), input)
	Recompute(merged)
	if err := Write(path, merged); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("second pass changed the table:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestPersistedKeyUniqueness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")

	rec := makeRecord("p1", record.Sequential, "100", "1", "1", "10.0")
	merged := Merge(nil, []record.Record{rec, rec, rec})
	if err := Write(path, merged); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 { // header + one row
		t.Errorf("got %d rows, want 2", len(rows))
	}
}

func TestWriteUnwritableDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "dataset.csv")
	err := Write(path, asMap(makeRecord("p1", record.Sequential, "100", "1", "1", "10.0")))
	if err == nil {
		t.Fatal("Write into a missing directory succeeded")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("a partial table was left behind")
	}
}

func TestWriteSentinelNeverEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")

	rec := record.Record{
		PuzzleName:     record.Some("p1"),
		Implementation: record.Hybrid,
		TestType:       record.Single,
	}
	if err := Write(path, asMap(rec)); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	for i, cell := range rows[1] {
		if cell == "" {
			t.Errorf("column %d (%s) serialized empty, want %q", i, rows[0][i], record.Sentinel)
		}
	}
	if n := len(rows[1]); n != len(Header()) {
		t.Errorf("row has %d cells, want %d", n, len(Header()))
	}
}
