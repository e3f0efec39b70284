package testutil

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/roach88/scnconform/internal/invoke"
)

// ResponderFunc produces the outcome of one invocation.
type ResponderFunc func(req invoke.Request) (invoke.Result, error)

// ScriptedInvoker is an in-memory invoke.Invoker that records every request.
type ScriptedInvoker struct {
	mu      sync.Mutex
	respond ResponderFunc
	calls   []invoke.Request
}

// NewScriptedInvoker returns an invoker answering with respond.
func NewScriptedInvoker(respond ResponderFunc) *ScriptedInvoker {
	return &ScriptedInvoker{respond: respond}
}

// NewFakeEngineInvoker returns an invoker that runs the fake engine in
// process with the given mode. ModeHang is not supported here.
func NewFakeEngineInvoker(mode string) *ScriptedInvoker {
	return NewScriptedInvoker(func(req invoke.Request) (invoke.Result, error) {
		var stdout, stderr bytes.Buffer
		code := RunFakeEngine(mode, req.Args, strings.NewReader(req.Stdin), &stdout, &stderr)
		return invoke.Result{ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()}, nil
	})
}

// Invoke implements invoke.Invoker.
func (s *ScriptedInvoker) Invoke(ctx context.Context, req invoke.Request) (invoke.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, invoke.Request{
		Args:  append([]string(nil), req.Args...),
		Stdin: req.Stdin,
	})
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return invoke.Result{}, err
	}
	return s.respond(req)
}

// Calls returns a copy of the recorded requests in order.
func (s *ScriptedInvoker) Calls() []invoke.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]invoke.Request(nil), s.calls...)
}
