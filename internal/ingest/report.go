package ingest

import (
	"time"

	"reelscribe/internal/relocate"
)

// PostResult pairs a shortcode with its outcome.
type PostResult struct {
	Shortcode string
	Outcome   Outcome
}

// Report summarizes a run.
type Report struct {
	RunID        string
	Handle       string
	AgentID      string
	AgentCreated bool
	Target       int

	Checked         int
	SkippedExisting int
	// SkippedFiltered counts previously filtered posts plus posts filtered
	// during this run.
	SkippedFiltered int
	NewlyFiltered   int
	Duplicates      int
	Errors          int
	Succeeded       int

	Interrupted bool
	Results     []PostResult
	Relocation  relocate.Report
	StagingDir  string
	Duration    time.Duration
}

// TargetReached reports whether the run saved as many posts as requested.
func (r Report) TargetReached() bool { return r.Succeeded >= r.Target }

func (r *Report) record(shortcode string, o Outcome) {
	r.Results = append(r.Results, PostResult{Shortcode: shortcode, Outcome: o})
	switch v := o.(type) {
	case Skipped:
		switch v.Reason {
		case SkipExists:
			r.SkippedExisting++
		case SkipFiltered:
			r.SkippedFiltered++
		case SkipDuplicate:
			r.Duplicates++
		}
	case Filtered:
		r.SkippedFiltered++
		r.NewlyFiltered++
	case Saved:
		r.Succeeded++
	case Failed:
		r.Errors++
	default:
		panic("ingest: unhandled outcome in report")
	}
}
