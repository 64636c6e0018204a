package state

import (
	"errors"
	"fmt"

	"morphtest/internal/lookup"
)

// ConfigFailureError marks invalid test files, flags or backend
// configuration. Not retryable.
type ConfigFailureError struct {
	Suite   string
	Code    string
	Message string
	Cause   error
}

func (e *ConfigFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("config failure (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("config failure: %s", e.Message)
}

func (e *ConfigFailureError) Unwrap() error { return e.Cause }

// SystemFailureError marks crashes and other internal failures.
type SystemFailureError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SystemFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("system failure (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("system failure: %s", e.Message)
}

func (e *SystemFailureError) Unwrap() error { return e.Cause }

// SuiteError attributes err to a suite.
type SuiteError struct {
	Suite string
	Err   error
}

func (e *SuiteError) Error() string { return e.Suite + ": " + e.Err.Error() }

func (e *SuiteError) Unwrap() error { return e.Err }

func failureFromError(err error) (Failure, error) {
	if err == nil {
		return Failure{}, errors.New("nil error")
	}

	var suite *string
	var se *SuiteError
	if errors.As(err, &se) && se != nil && se.Suite != "" {
		s := se.Suite
		suite = &s
	}

	var cf *ConfigFailureError
	if errors.As(err, &cf) && cf != nil {
		if suite == nil && cf.Suite != "" {
			s := cf.Suite
			suite = &s
		}
		return Failure{
			FailureClass: FailureClassConfig,
			Suite:        suite,
			ErrorCode:    nonEmptyOr(cf.Code, "ConfigFailure"),
			ErrorMessage: nonEmptyOr(cf.Message, cf.Error()),
		}, nil
	}

	var sf *SystemFailureError
	if errors.As(err, &sf) && sf != nil {
		return Failure{
			FailureClass: FailureClassSystem,
			Suite:        suite,
			ErrorCode:    nonEmptyOr(sf.Code, "SystemFailure"),
			ErrorMessage: nonEmptyOr(sf.Message, sf.Error()),
			Retryable:    true,
		}, nil
	}

	var le *lookup.Error
	if errors.As(err, &le) && le != nil {
		f := Failure{
			Suite:        suite,
			ErrorCode:    string(le.Class),
			ErrorMessage: le.Error(),
		}
		switch le.Class {
		case lookup.ClassStartup:
			f.FailureClass = FailureClassStartup
		case lookup.ClassConfig:
			f.FailureClass = FailureClassConfig
		default:
			f.FailureClass = FailureClassExecution
			f.Retryable = true
		}
		return f, nil
	}

	// Unknown errors are system failures.
	return Failure{
		FailureClass: FailureClassSystem,
		Suite:        suite,
		ErrorCode:    "UnknownError",
		ErrorMessage: err.Error(),
		Retryable:    true,
	}, nil
}

func nonEmptyOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
