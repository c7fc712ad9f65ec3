// Package spawn locates and runs external helper programs.
package spawn

import (
	"bytes"
	"context"
	"os/exec"
	"sync"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/logging"
	"github.com/rs/zerolog"
)

// Result is the outcome of a helper invocation.
type Result struct {
	ExitCode int
	// Output holds stdout and stderr interleaved.
	Output string
}

// Runner runs helpers and resolves their paths.
type Runner interface {
	// Run executes name synchronously. A non-zero exit returns the result
	// together with an ErrTriggerFailed error.
	Run(ctx context.Context, name string, args ...string) (Result, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs helpers with os/exec.
type ExecRunner struct {
	logger zerolog.Logger
	// Env, when set, replaces the child environment.
	Env []string
}

// NewExecRunner creates a runner backed by os/exec
func NewExecRunner() *ExecRunner {
	return &ExecRunner{logger: logging.GetLogger("spawn")}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	logging.LogHelper(r.logger, name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	res := Result{Output: out.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.logger.Debug().Str("command", name).Int("exit", res.ExitCode).Str("output", res.Output).Msg("Helper failed")
			return res, errors.Wrapf(err, errors.ErrTriggerFailed, "%s exited with status %d", name, res.ExitCode).
				WithDetail("command", name).
				WithDetail("exit_code", res.ExitCode)
		}
		return res, errors.Wrapf(err, errors.ErrTriggerFailed, "running %s", name).WithDetail("command", name)
	}
	return res, nil
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotFound, "%s not found on PATH", name).WithDetail("command", name)
	}
	return p, nil
}

// Binary resolves a helper once and caches the answer, including absence.
type Binary struct {
	name   string
	runner Runner

	once sync.Once
	path string
	err  error
}

func NewBinary(runner Runner, name string) *Binary {
	return &Binary{name: name, runner: runner}
}

func (b *Binary) Name() string { return b.name }

// Path returns the resolved path, looking it up on first use.
func (b *Binary) Path() (string, error) {
	b.once.Do(func() {
		b.path, b.err = b.runner.LookPath(b.name)
	})
	return b.path, b.err
}

// Available reports whether the helper was found.
func (b *Binary) Available() bool {
	_, err := b.Path()
	return err == nil
}

// Run invokes the resolved helper.
func (b *Binary) Run(ctx context.Context, args ...string) (Result, error) {
	p, err := b.Path()
	if err != nil {
		return Result{}, err
	}
	return b.runner.Run(ctx, p, args...)
}
