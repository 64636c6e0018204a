package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode is the backend variant a run used.
type Mode string

const (
	ModePooled Mode = "pooled"
	ModeSerial Mode = "serial"
)

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusAborted RunStatus = "aborted"
)

// Run is the persistent metadata of one invocation.
//
// previous_run_id is always present and null for the first run in a state
// directory.
type Run struct {
	RunID         string    `json:"run_id"`
	PlanHash      string    `json:"plan_hash"`
	StartTime     time.Time `json:"start_time"`
	Mode          Mode      `json:"mode"`
	Suites        []string  `json:"suites"`
	Status        RunStatus `json:"status"`
	PreviousRunID *string   `json:"previous_run_id"`
}

func (r Run) Validate() error {
	var errs []error
	if strings.TrimSpace(r.RunID) == "" {
		errs = append(errs, errors.New("run_id is required"))
	}
	if strings.TrimSpace(r.PlanHash) == "" {
		errs = append(errs, errors.New("plan_hash is required"))
	}
	if r.StartTime.IsZero() {
		errs = append(errs, errors.New("start_time is required"))
	}
	switch r.Mode {
	case ModePooled, ModeSerial:
	default:
		errs = append(errs, fmt.Errorf("invalid mode %q", r.Mode))
	}
	if r.Suites == nil {
		errs = append(errs, errors.New("suites must be an array (not null)"))
	}
	switch r.Status {
	case RunStatusRunning, RunStatusPassed, RunStatusFailed, RunStatusAborted:
	default:
		errs = append(errs, fmt.Errorf("invalid status %q", r.Status))
	}
	return errors.Join(errs...)
}

// SuiteCounts are the case counts of one suite.
type SuiteCounts struct {
	Name   string `json:"name"`
	Total  int    `json:"total"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
}

// Summary is the final outcome of a completed run.
type Summary struct {
	RunID     string        `json:"run_id"`
	EndTime   time.Time     `json:"end_time"`
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Suites    []SuiteCounts `json:"suites"`
	TraceHash string        `json:"trace_hash"`
}

func (s Summary) Validate() error {
	var errs []error
	if strings.TrimSpace(s.RunID) == "" {
		errs = append(errs, errors.New("run_id is required"))
	}
	if s.EndTime.IsZero() {
		errs = append(errs, errors.New("end_time is required"))
	}
	if s.Passed+s.Failed != s.Total {
		errs = append(errs, fmt.Errorf("passed (%d) + failed (%d) must equal total (%d)", s.Passed, s.Failed, s.Total))
	}
	if s.Suites == nil {
		errs = append(errs, errors.New("suites must be an array (not null)"))
	}
	return errors.Join(errs...)
}

type FailureClass string

const (
	FailureClassStartup   FailureClass = "startup"
	FailureClassConfig    FailureClass = "config"
	FailureClassExecution FailureClass = "execution"
	FailureClassSystem    FailureClass = "system"
)

// Failure is a recorded reason a run ended without verdicts.
type Failure struct {
	FailureClass FailureClass `json:"failure_class"`
	Suite        *string      `json:"suite,omitempty"`
	ErrorCode    string       `json:"error_code"`
	ErrorMessage string       `json:"error_message"`
	Retryable    bool         `json:"retryable"`
}

func (f Failure) Validate() error {
	var errs []error
	switch f.FailureClass {
	case FailureClassStartup, FailureClassConfig, FailureClassExecution, FailureClassSystem:
	default:
		errs = append(errs, fmt.Errorf("invalid failure_class %q", f.FailureClass))
	}
	if f.Suite != nil && strings.TrimSpace(*f.Suite) == "" {
		errs = append(errs, errors.New("suite must not be empty when provided"))
	}
	if strings.TrimSpace(f.ErrorCode) == "" {
		errs = append(errs, errors.New("error_code is required"))
	}
	if strings.TrimSpace(f.ErrorMessage) == "" {
		errs = append(errs, errors.New("error_message is required"))
	}
	return errors.Join(errs...)
}
