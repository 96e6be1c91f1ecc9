package record

import "strings"

// Implementation identifies the solver variant a run was produced by.
type Implementation string

const (
	Sequential      Implementation = "sequential"
	ProcessParallel Implementation = "process-parallel"
	ThreadParallel  Implementation = "thread-parallel"
	Hybrid          Implementation = "hybrid"
	Unknown         Implementation = "unknown"
)

// ParseImplementation maps a serialized variant name back to its enum.
// Unrecognized names collapse to Unknown.
func ParseImplementation(s string) Implementation {
	switch Implementation(s) {
	case Sequential, ProcessParallel, ThreadParallel, Hybrid:
		return Implementation(s)
	default:
		return Unknown
	}
}

// TestType classifies the experiment a run belongs to. It is derived from
// the log file's name, not from the log content.
type TestType string

const (
	Scaling TestType = "scaling"
	Factor  TestType = "factor"
	Single  TestType = "single"
)

// TestTypeFromFileName derives the test type from a log file's base name.
func TestTypeFromFileName(name string) TestType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "scaling"):
		return Scaling
	case strings.Contains(lower, "factor"):
		return Factor
	default:
		return Single
	}
}

// ParseTestType maps a serialized test type back to its enum, defaulting
// to Single for anything unrecognized.
func ParseTestType(s string) TestType {
	switch TestType(s) {
	case Scaling, Factor:
		return TestType(s)
	default:
		return Single
	}
}

// Record is one observed execution of the solver.
type Record struct {
	PuzzleName     Value          `json:"puzzle_name"`
	Implementation Implementation `json:"implementation"`
	TestType       TestType       `json:"test_type"`
	JobID          Value          `json:"job_id"`
	NumProcesses   Value          `json:"num_processors"`
	NumThreads     Value          `json:"num_threads"`
	TaskFactor     Value          `json:"task_factor"`

	Depth           Value `json:"depth"`
	WorkUnits       Value `json:"work_units"`
	ColorsRemoved   Value `json:"colors_removed"`
	ColorsRemaining Value `json:"colors_remaining"`
	SpaceReduction  Value `json:"space_reduction"`

	SolvingTime Value `json:"solving_time"`
	TotalTime   Value `json:"total_time"`

	// Derived on every reconciliation pass, never trusted from extraction.
	Speedup    Value `json:"speedup"`
	Efficiency Value `json:"efficiency"`
}

// Key uniquely identifies a run configuration. At most one record may exist
// in the persisted table per key.
type Key struct {
	PuzzleName     string
	Implementation Implementation
	TestType       TestType
	JobID          string
	NumProcesses   string
	NumThreads     string
	TaskFactor     string
}

// Key returns the record's configuration key.
func (r Record) Key() Key {
	return Key{
		PuzzleName:     r.PuzzleName.String(),
		Implementation: r.Implementation,
		TestType:       r.TestType,
		JobID:          r.JobID.String(),
		NumProcesses:   r.NumProcesses.String(),
		NumThreads:     r.NumThreads.String(),
		TaskFactor:     r.TaskFactor.String(),
	}
}

// ComputationalUnits returns the resource count efficiency is normalized
// against: processes for process-parallel, threads for thread-parallel,
// their product for hybrid. Sequential and unknown variants have no unit
// count, as does a hybrid run with an unknown axis.
func (r Record) ComputationalUnits() (int, bool) {
	procs, okP := r.NumProcesses.Int()
	threads, okT := r.NumThreads.Int()

	switch r.Implementation {
	case ProcessParallel:
		if !okP || procs <= 0 {
			return 0, false
		}
		return procs, true
	case ThreadParallel:
		if !okT || threads <= 0 {
			return 0, false
		}
		return threads, true
	case Hybrid:
		if !okP || !okT || procs <= 0 || threads <= 0 {
			return 0, false
		}
		return procs * threads, true
	default:
		return 0, false
	}
}
