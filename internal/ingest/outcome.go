package ingest

import "fmt"

// SkipReason says why a post was not processed.
type SkipReason string

const (
	SkipExists    SkipReason = "exists"
	SkipFiltered  SkipReason = "filtered"
	SkipDuplicate SkipReason = "duplicate"
)

// Outcome is the closed set of per-post results: Skipped, Filtered, Saved,
// or Failed.
type Outcome interface {
	fmt.Stringer
	outcome()
}

// Skipped means the post needed no work.
type Skipped struct {
	Reason SkipReason
}

// Filtered means the post was recorded in the filter ledger.
type Filtered struct {
	Reason string
	// Recorded is false when an earlier record already existed.
	Recorded bool
}

// Saved means a new post row was stored.
type Saved struct {
	PostID string
	Number int
}

// Failed means the post hit an error and stays eligible for the next run.
type Failed struct {
	Stage string
	Err   error
}

func (Skipped) outcome()  {}
func (Filtered) outcome() {}
func (Saved) outcome()    {}
func (Failed) outcome()   {}

func (o Skipped) String() string  { return "skipped (" + string(o.Reason) + ")" }
func (o Filtered) String() string { return "filtered (" + o.Reason + ")" }
func (o Saved) String() string    { return fmt.Sprintf("saved #%d (%s)", o.Number, o.PostID) }
func (o Failed) String() string   { return fmt.Sprintf("error at %s: %v", o.Stage, o.Err) }

// processed reports whether evaluating the outcome touched external services.
func processed(o Outcome) bool {
	switch v := o.(type) {
	case Skipped:
		return v.Reason == SkipDuplicate
	case Filtered, Saved, Failed:
		return true
	default:
		panic(fmt.Sprintf("ingest: unhandled outcome %T", o))
	}
}
