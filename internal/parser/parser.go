// Package parser segments solver log text into run blocks and extracts one
// run record per completed block.
package parser

import (
	"fmt"
	"strings"

	"futoshiki-results/internal/record"
)

// ParseLog extracts the ordered sequence of run records from one log file's
// text. fileName is the log's base name; it determines the test type and is
// used in diagnostics. warnFn and infoFn receive operator-facing notes and
// may be nil.
//
// A file with zero completed run blocks yields an empty slice, not an error:
// truncated logs are an expected operational occurrence.
func ParseLog(fileName string, content []byte, warnFn, infoFn func(string)) []record.Record {
	if warnFn == nil {
		warnFn = func(string) {}
	}
	if infoFn == nil {
		infoFn = func(string) {}
	}

	text := string(content)
	testType := record.TestTypeFromFileName(fileName)

	// One batch submission id covers every block in the file.
	jobID := record.NA()
	if m := jobIDPattern.FindStringSubmatch(text); m != nil {
		jobID = record.Some(m[1])
	}

	headers := runHeaderPattern.FindAllStringIndex(text, -1)
	if len(headers) == 0 {
		return nil
	}

	var records []record.Record
	for i, hdr := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		block := text[hdr[0]:end]

		if !strings.Contains(block, completionMarker) {
			infoFn(fmt.Sprintf("%s: dropping run %d: no completion marker (truncated or crashed)", fileName, i+1))
			continue
		}
		if isSequentialFallback(block) {
			infoFn(fmt.Sprintf("%s: dropping run %d: parallel run fell back to the sequential algorithm", fileName, i+1))
			continue
		}

		rec := parseBlock(block, testType, jobID)
		if rec.Implementation == record.Unknown {
			warnFn(fmt.Sprintf("%s: run %d has no recognized solver banner", fileName, i+1))
		}
		records = append(records, rec)
	}
	return records
}

// isSequentialFallback reports whether a process-parallel block announced
// that it ran the sequential algorithm. Letting it through would corrupt
// speedup comparisons by impersonating a parallel run.
func isSequentialFallback(block string) bool {
	return strings.Contains(block, "Futoshiki MPI Parallel Solver") &&
		strings.Contains(block, fallbackMarker)
}

// parseBlock extracts one record from a completed run block. Every field is
// independent: a missing field stays at the N/A sentinel and never fails
// the block.
func parseBlock(block string, testType record.TestType, jobID record.Value) record.Record {
	rec := record.Record{
		Implementation: classify(block),
		TestType:       testType,
		JobID:          jobID,
	}

	for _, f := range commonFields {
		if m := f.pattern.FindStringSubmatch(block); m != nil {
			f.assign(&rec, record.Some(strings.TrimSpace(m[1])))
		} else {
			f.assign(&rec, record.NA())
		}
	}

	if rules, ok := variantResources[rec.Implementation]; ok {
		rec.NumProcesses = rules.processes.extract(block)
		rec.NumThreads = rules.threads.extract(block)
	}

	// Derived metrics are the reconciler's job; extraction never sets them.
	rec.Speedup = record.NA()
	rec.Efficiency = record.NA()
	return rec
}

// classify matches the block's banner against the known variant phrases.
func classify(block string) record.Implementation {
	for _, b := range bannerVariants {
		if strings.Contains(block, b.phrase) {
			return b.impl
		}
	}
	return record.Unknown
}
