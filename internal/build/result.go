package build

import (
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// Status represents the outcome of a build.
type Status string

const (
	// StatusSuccess indicates every document was written.
	StatusSuccess Status = "success"
	// StatusPartial indicates some documents failed while others were written.
	StatusPartial Status = "partial"
	// StatusFailed indicates the build produced nothing usable.
	StatusFailed Status = "failed"
	// StatusCanceled indicates the context was canceled before the build finished.
	StatusCanceled Status = "canceled"
)

// IsSuccess returns true if the build completed without document failures.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

func (s Status) outcome() metrics.BuildOutcomeLabel {
	switch s {
	case StatusSuccess:
		return metrics.BuildOutcomeSuccess
	case StatusPartial:
		return metrics.BuildOutcomePartial
	case StatusCanceled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}

// DocumentResult is the outcome for one source file.
type DocumentResult struct {
	Source      string // Relative to the source root
	Output      string // Relative to the output root
	URL         string
	Collection  string
	Language    string
	Layout      string
	Fingerprint string
	Err         error // Nil when the page was written
	Canceled    bool  // True when the document was never processed
}

// Report contains the outcome of a build.
type Report struct {
	BuildID   string
	Status    Status
	OutputDir string
	Documents []DocumentResult
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Written counts documents whose page was written.
func (r *Report) Written() int {
	n := 0
	for _, d := range r.Documents {
		if d.Err == nil && !d.Canceled {
			n++
		}
	}
	return n
}

// Failures returns the documents that failed.
func (r *Report) Failures() []DocumentResult {
	var out []DocumentResult
	for _, d := range r.Documents {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}

// finalize derives the status and stamps the end time from now.
func (r *Report) finalize(canceled bool, now time.Time) {
	written := r.Written()
	failed := len(r.Failures())
	switch {
	case canceled:
		r.Status = StatusCanceled
	case failed == 0:
		r.Status = StatusSuccess
	case written > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
	r.EndTime = now
	r.Duration = r.EndTime.Sub(r.StartTime)
}
