package dataset

import (
	"futoshiki-results/internal/record"
)

// Merge overlays newly extracted records on the prior dataset. Last write
// wins per record key across the whole reconciliation pass, so re-parsing a
// log simply refreshes the rows it contributed.
func Merge(prior map[record.Key]record.Record, extracted []record.Record) map[record.Key]record.Record {
	merged := make(map[record.Key]record.Record, len(prior)+len(extracted))
	for k, r := range prior {
		merged[k] = r
	}
	for _, r := range extracted {
		merged[r.Key()] = r
	}
	return merged
}

// baseline is one puzzle's sequential reference time together with the
// fields that rank competing sequential records.
type baseline struct {
	totalTime float64
	jobID     int
	hasJobID  bool
	factor    string
}

// better reports whether candidate c should replace the current baseline.
// The record with the highest numeric job id wins; a record without a job
// id ranks below any record with one. Ties fall to the larger task factor
// so the choice never depends on map iteration order.
func (b baseline) better(c baseline) bool {
	switch {
	case c.hasJobID && !b.hasJobID:
		return true
	case !c.hasJobID && b.hasJobID:
		return false
	case c.hasJobID && c.jobID != b.jobID:
		return c.jobID > b.jobID
	default:
		return c.factor > b.factor
	}
}

// baselines maps each puzzle to its sequential total time. Only sequential
// records with a positive numeric total time qualify.
func baselines(records map[record.Key]record.Record) map[string]float64 {
	best := make(map[string]baseline)
	for _, rec := range records {
		if rec.Implementation != record.Sequential {
			continue
		}
		t, ok := rec.TotalTime.Float()
		if !ok || t <= 0 {
			continue
		}
		c := baseline{totalTime: t, factor: rec.TaskFactor.String()}
		if id, ok := rec.JobID.Int(); ok {
			c.jobID = id
			c.hasJobID = true
		}
		cur, exists := best[rec.PuzzleName.String()]
		if !exists || cur.better(c) {
			best[rec.PuzzleName.String()] = c
		}
	}

	times := make(map[string]float64, len(best))
	for puzzle, b := range best {
		times[puzzle] = b.totalTime
	}
	return times
}

// Recompute derives speedup and efficiency for every record in place.
// Derived fields are always reset first: a value carried in from the prior
// table is never trusted. A record whose metrics cannot be computed (no
// baseline, non-numeric or non-positive time, unknown resource axis) keeps
// the N/A sentinel without affecting any other record.
func Recompute(records map[record.Key]record.Record) {
	base := baselines(records)

	for key, rec := range records {
		rec.Speedup = record.NA()
		rec.Efficiency = record.NA()

		if rec.Implementation != record.Sequential {
			if seqTime, ok := base[rec.PuzzleName.String()]; ok {
				if t, ok := rec.TotalTime.Float(); ok && t > 0 {
					speedup := seqTime / t
					rec.Speedup = record.FormatFloat(speedup)
					if units, ok := rec.ComputationalUnits(); ok {
						rec.Efficiency = record.FormatFloat(speedup / float64(units))
					}
				}
			}
		}
		records[key] = rec
	}
}
