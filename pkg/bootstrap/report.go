package bootstrap

import (
	"time"

	"github.com/fastfind/setupenv/pkg/python"
)

// Reporter receives everything a run has to say to the user.
type Reporter interface {
	// Section starts a new block of output, one per step.
	Section(title string)
	Success(msg string)
	Info(msg string)
	Warn(msg string)
	Fail(msg string)

	// Detail prints supporting lines, such as commands to run by hand.
	Detail(lines ...string)
}

// Report is what a run leaves behind. It is only used for the final summary
// and is never persisted.
type Report struct {
	Steps []StepResult

	Interpreter *python.Interpreter

	// Activated is false when the environment had to be left to the user.
	Activated bool

	FailedDependencies []string
	MissingFiles       []string

	Started time.Time
	Elapsed time.Duration
}

// Warnings counts the steps that ended with a Warning outcome.
func (r *Report) Warnings() int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome == Warning {
			n++
		}
	}
	return n
}

// Step returns the result of the named step, if it ran.
func (r *Report) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}
