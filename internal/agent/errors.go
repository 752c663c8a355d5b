package agent

import "fmt"

// ValidationError reports a goal that cannot be planned as written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("goal validation failed: %s", e.Reason)
}

// PlanningError reports a completion reply that did not yield a usable plan.
type PlanningError struct {
	Reason string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed: %s", e.Reason)
}

// StepExecutionError wraps the failure of a single plan step.
type StepExecutionError struct {
	Task string
	Err  error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("failed to execute %q: %v", e.Task, e.Err)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Err
}

// ConcurrencyError is returned when a goal is submitted while another runs.
type ConcurrencyError struct{}

func (e *ConcurrencyError) Error() string {
	return "another goal is already being processed, please wait"
}

var ErrBusy error = &ConcurrencyError{}
