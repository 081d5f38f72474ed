package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hako/durafmt"
)

// EnvironmentInfo describes the machine and interpreter a run ended up with.
type EnvironmentInfo struct {
	System        string
	CPUs          int
	Python        string
	Executable    string
	WorkingDir    string
	VirtualEnv    string
	VirtualActive bool
}

// Environment gathers the EnvironmentInfo for a finished report.
func (b *Bootstrapper) Environment(report *Report) EnvironmentInfo {
	info := EnvironmentInfo{
		System:        b.opts.GOOS + "/" + runtime.GOARCH,
		CPUs:          runtime.NumCPU(),
		Python:        report.Interpreter.VersionString(),
		Executable:    b.opts.Python,
		VirtualEnv:    b.layout.Dir,
		VirtualActive: report.Activated,
	}
	if report.Activated {
		info.Executable = b.layout.Python()
	}
	if wd, err := os.Getwd(); err == nil {
		info.WorkingDir = wd
	}
	if abs, err := filepath.Abs(b.layout.Dir); err == nil {
		info.VirtualEnv = abs
	}
	return info
}

// NextSteps are the commands that run the test suite from the user's shell.
// Activation during setup only affects this process, so activating the
// environment by hand always comes first.
func (b *Bootstrapper) NextSteps() []string {
	return []string{
		b.layout.ManualInstructions()[0],
		"python run_tests.py",
		"pytest tests/",
	}
}

// summarize closes a run that did not stop. Failures were reported by their
// own step and are not repeated here.
func (b *Bootstrapper) summarize(report *Report) {
	r := b.opts.Reporter

	r.Section("Summary")
	r.Info(fmt.Sprintf("Setup finished in %s", durafmt.Parse(report.Elapsed).LimitFirstN(2)))
	r.Success("Test environment is ready")

	info := b.Environment(report)
	venvState := "not active"
	if info.VirtualActive {
		venvState = "active"
	}
	r.Section("Environment")
	r.Detail(
		"System:              "+info.System,
		fmt.Sprintf("CPUs:                %d", info.CPUs),
		"Python:              "+info.Python,
		"Python executable:   "+info.Executable,
		"Working directory:   "+info.WorkingDir,
		fmt.Sprintf("Virtual environment: %s (%s)", info.VirtualEnv, venvState),
	)

	r.Section("Next steps")
	r.Detail(b.NextSteps()...)
}
