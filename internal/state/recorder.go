package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recorder writes the history records of runs into a Store.
type Recorder struct {
	Store *Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// NewRunID returns a random UUID.
func NewRunID() string {
	return uuid.NewString()
}

// StartRun persists run with status running. A missing RunID or StartTime is
// filled in, and PreviousRunID links to the latest run already on disk.
func (r *Recorder) StartRun(run Run) (Run, error) {
	if r == nil || r.Store == nil {
		return Run{}, errors.New("Store is required")
	}
	if run.RunID == "" {
		run.RunID = NewRunID()
	}
	if run.StartTime.IsZero() {
		run.StartTime = r.now()
	}
	if run.Suites == nil {
		run.Suites = []string{}
	}
	run.Status = RunStatusRunning
	if run.PreviousRunID == nil {
		prev, ok, err := r.Store.LatestRun()
		if err != nil {
			return Run{}, fmt.Errorf("find previous run: %w", err)
		}
		if ok && prev.RunID != run.RunID {
			id := prev.RunID
			run.PreviousRunID = &id
		}
	}
	if err := r.Store.SaveRun(run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// FinishRun updates the run status and writes summary.json.
func (r *Recorder) FinishRun(run Run, summary Summary) error {
	if r == nil || r.Store == nil {
		return errors.New("Store is required")
	}
	summary.RunID = run.RunID
	if summary.EndTime.IsZero() {
		summary.EndTime = r.now()
	}
	if summary.Failed > 0 {
		run.Status = RunStatusFailed
	} else {
		run.Status = RunStatusPassed
	}
	if err := r.Store.SaveSummary(summary); err != nil {
		return err
	}
	return r.Store.SaveRun(run)
}

// RecordFailure classifies err, writes failure.json and marks the run aborted.
func (r *Recorder) RecordFailure(run Run, err error) error {
	if r == nil || r.Store == nil {
		return errors.New("Store is required")
	}
	f, ferr := failureFromError(err)
	if ferr != nil {
		return ferr
	}
	if err := r.Store.SaveFailure(run.RunID, f); err != nil {
		return err
	}
	run.Status = RunStatusAborted
	return r.Store.SaveRun(run)
}
