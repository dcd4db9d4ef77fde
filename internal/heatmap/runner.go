package heatmap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

const maxStderrSnippetLen = 200

// Result describes one finished run of the heatmap command.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// ExitError is returned when the command could not run or exited non-zero.
// ExitCode is -1 when the process never started or was killed.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Runner spawns the external image generation command.
type Runner struct {
	bin     string
	args    []string
	dir     string
	timeout time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithArgs sets the arguments passed on every run.
func WithArgs(args ...string) RunnerOption {
	return func(r *Runner) {
		r.args = args
	}
}

// WithWorkingDir runs the command from dir.
func WithWorkingDir(dir string) RunnerOption {
	return func(r *Runner) {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			r.dir = trimmed
		}
	}
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner constructs a Runner for bin.
func NewRunner(bin string, opts ...RunnerOption) *Runner {
	r := &Runner{bin: bin}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the command once. Stdout is discarded; stderr is kept only to
// explain failures.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	//nolint:gosec // G204: the command comes from operator configuration
	cmd := exec.CommandContext(ctx, r.bin, r.args...)
	cmd.Dir = r.dir
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := Result{Duration: time.Since(start)}
	if err == nil {
		return result, nil
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	return result, &ExitError{
		Command:  r.bin,
		ExitCode: result.ExitCode,
		Stderr:   stderrSnippet(stderr.String()),
		Err:      err,
	}
}

func stderrSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderrSnippetLen {
		s = s[:maxStderrSnippetLen] + "..."
	}
	return s
}
