package parser

import (
	"regexp"

	"futoshiki-results/internal/record"
)

// Banner phrases emitted by the solver binaries. Exactly one classifies a
// block; a block whose banner names none of them is kept as "unknown" for
// its diagnostic value.
var bannerVariants = []struct {
	phrase string
	impl   record.Implementation
}{
	{"Futoshiki MPI Parallel Solver", record.ProcessParallel},
	{"Futoshiki OpenMP Parallel Solver", record.ThreadParallel},
	{"Futoshiki Sequential Solver", record.Sequential},
	{"Futoshiki Hybrid Solver", record.Hybrid},
}

// runHeaderPattern marks the start of a run block: a banner line between
// separator lines, each optionally prefixed by the solver's own log tags.
var runHeaderPattern = regexp.MustCompile(
	`(?m)^(?:\[INFO\](?:\[RANK \d+\])?[ \t]*)?={10,}\n` +
		`(?:\[INFO\](?:\[RANK \d+\])?[ \t]*)?Futoshiki.*Solver\n` +
		`(?:\[INFO\](?:\[RANK \d+\])?[ \t]*)?={10,}`)

const (
	// completionMarker proves the run reached its final report. Blocks
	// without it are truncated or crashed runs and are dropped.
	completionMarker = "Time Distribution"

	// fallbackMarker is printed by a process-parallel run launched with a
	// degenerate process count. Such a run executes the sequential
	// algorithm and must not impersonate a parallel run.
	fallbackMarker = "using sequential algorithm"
)

// jobIDPattern matches the single file-scoped batch submission id.
var jobIDPattern = regexp.MustCompile(`Job ID: (\d+)`)

// commonFields are extracted identically for every variant. A field with no
// match is left at the N/A sentinel; extraction never fails a block.
var commonFields = []struct {
	name    string
	pattern *regexp.Regexp
	assign  func(*record.Record, record.Value)
}{
	{"puzzle_name", regexp.MustCompile(`Puzzle(?: file)?: (.+)`),
		func(r *record.Record, v record.Value) { r.PuzzleName = v }},
	{"task_factor", regexp.MustCompile(`\* ([\d.]+) factor`),
		func(r *record.Record, v record.Value) { r.TaskFactor = v }},
	{"depth", regexp.MustCompile(`Chosen depth: (\d+)`),
		func(r *record.Record, v record.Value) { r.Depth = v }},
	{"work_units", regexp.MustCompile(`Generated (\d+) work units`),
		func(r *record.Record, v record.Value) { r.WorkUnits = v }},
	{"colors_removed", regexp.MustCompile(`Colors removed by pre-coloring: (\d+)`),
		func(r *record.Record, v record.Value) { r.ColorsRemoved = v }},
	{"colors_remaining", regexp.MustCompile(`Colors remaining: (\d+)`),
		func(r *record.Record, v record.Value) { r.ColorsRemaining = v }},
	{"space_reduction", regexp.MustCompile(`Search space reduction: ([\d.]+)%`),
		func(r *record.Record, v record.Value) { r.SpaceReduction = v }},
	{"solving_time", regexp.MustCompile(`Solving phase:\s+([\d.]+) seconds`),
		func(r *record.Record, v record.Value) { r.SolvingTime = v }},
	{"total_time", regexp.MustCompile(`Total time:\s+([\d.]+) seconds`),
		func(r *record.Record, v record.Value) { r.TotalTime = v }},
}

// resourceRules is an ordered list of candidate patterns for one resource
// axis; the first pattern that matches wins. Multiple entries exist because
// different solver versions phrased the same announcement differently.
type resourceRules struct {
	patterns []*regexp.Regexp
	// fallback is used when no pattern matches. Empty means the axis stays
	// at the N/A sentinel: a hybrid run with an unknown axis is not the
	// same thing as one process or one thread on that axis.
	fallback string
}

func (rr resourceRules) extract(block string) record.Value {
	for _, p := range rr.patterns {
		if m := p.FindStringSubmatch(block); m != nil {
			return record.Some(m[1])
		}
	}
	if rr.fallback != "" {
		return record.Some(rr.fallback)
	}
	return record.NA()
}

var processPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Running with (\d+) process`),
	regexp.MustCompile(`Processes: (\d+)`),
}

var threadPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Running with (\d+) OpenMP thread`),
	regexp.MustCompile(`OMP Threads(?: per process)?: (\d+)`),
	regexp.MustCompile(`Threads: (\d+)`),
}

var hybridThreadPatterns = []*regexp.Regexp{
	regexp.MustCompile(`and (\d+) OpenMP thread`),
	regexp.MustCompile(`OMP Threads per process: (\d+)`),
}

// variantResources maps each variant to the extraction rules for both
// resource axes. Variants not present here (unknown) leave both axes N/A.
var variantResources = map[record.Implementation]struct {
	processes resourceRules
	threads   resourceRules
}{
	record.Sequential: {
		processes: resourceRules{fallback: "1"},
		threads:   resourceRules{fallback: "1"},
	},
	record.ProcessParallel: {
		processes: resourceRules{patterns: processPatterns, fallback: "1"},
		threads:   resourceRules{fallback: "1"},
	},
	record.ThreadParallel: {
		processes: resourceRules{fallback: "1"},
		threads:   resourceRules{patterns: threadPatterns, fallback: "1"},
	},
	record.Hybrid: {
		processes: resourceRules{patterns: processPatterns},
		threads:   resourceRules{patterns: hybridThreadPatterns},
	},
}
