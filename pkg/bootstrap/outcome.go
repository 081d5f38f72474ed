package bootstrap

import (
	"fmt"
	"time"
)

// Outcome is the result of a single step.
type Outcome int

const (
	// Success means the step did everything it set out to do.
	Success Outcome = iota

	// Warning means the step fell short but the run continues.
	Warning

	// Fatal stops the run; the process exits non-zero.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Fatal:
		return "fatal"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// StepResult records how a step went.
type StepResult struct {
	Name    string
	Outcome Outcome
	Elapsed time.Duration

	// Err is set for Fatal outcomes and for warnings caused by an error.
	Err error
}

// FatalError is returned by Run when a step stopped the run. The failure has
// already been reported to the user when this is returned.
type FatalError struct {
	Step string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
