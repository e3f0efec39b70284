// Package invoke runs a test executable once with literal arguments and a
// stdin payload, capturing its exit status and output.
package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single invocation unless configured otherwise.
const DefaultTimeout = 30 * time.Second

// waitDelay bounds how long Wait blocks on inherited pipes after a kill.
const waitDelay = 2 * time.Second

// ErrTimedOut is wrapped by errors returned when an invocation exceeds its
// timeout.
var ErrTimedOut = errors.New("invocation timed out")

// Request is one invocation of the executable.
type Request struct {
	Args  []string // passed literally, no shell
	Stdin string   // written once, then stdin is closed
}

// Result captures what the child produced.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Invoker runs a single request synchronously.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Result, error)
}

// Process invokes an executable on the host.
type Process struct {
	Path    string
	Timeout time.Duration // zero disables the bound
	Logger  *slog.Logger
}

// Invoke starts the executable, feeds req.Stdin and waits for it to exit.
//
// A non-zero exit status is not an error: it is reported in Result.ExitCode.
// A child terminated by a signal reports ExitCode -1. Errors are returned only
// when the child could not be started or did not finish within the timeout;
// the latter wrap ErrTimedOut and carry whatever output was captured.
func (p *Process) Invoke(ctx context.Context, req Request) (Result, error) {
	if p.Path == "" {
		return Result{}, fmt.Errorf("invoke: empty executable path")
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	// #nosec G204 -- path and args come from discovery and the case corpus.
	cmd := exec.CommandContext(ctx, p.Path, req.Args...)
	cmd.Stdin = strings.NewReader(req.Stdin)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		switch ctxErr := ctx.Err(); {
		case errors.Is(ctxErr, context.DeadlineExceeded):
			res.ExitCode = -1
			if p.Timeout > 0 {
				return res, fmt.Errorf("%w after %s: %s", ErrTimedOut, p.Timeout, p.Path)
			}
			return res, fmt.Errorf("%w: %s: deadline exceeded", ErrTimedOut, p.Path)
		case ctxErr != nil:
			return res, fmt.Errorf("run %s: %w", p.Path, ctxErr)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("run %s: %w", p.Path, err)
		}
	}

	p.logger().Debug("invocation finished",
		"argv", append([]string{p.Path}, req.Args...),
		"exit_code", res.ExitCode,
		"duration", res.Duration,
	)

	return res, nil
}

func (p *Process) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
