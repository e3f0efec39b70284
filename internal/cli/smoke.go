package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/scnconform/internal/invoke"
	"github.com/roach88/scnconform/internal/locate"
)

// SmokeOptions holds flags for the smoke command.
type SmokeOptions struct {
	*RootOptions
	Root    string
	Binary  string
	Pattern string
	Input   string

	timeout *timeoutFlag
}

// SmokeResult is the JSON payload of a smoke run.
type SmokeResult struct {
	Binary     string `json:"binary"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMS int64  `json:"duration_ms"`
}

// NewSmokeCommand creates the smoke command.
func NewSmokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SmokeOptions{
		RootOptions: rootOpts,
		timeout:     newTimeoutFlag(invoke.DefaultTimeout),
	}

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Pipe a file through the plain stdin test binary",
		Long: `Run the engine's plain stdin test binary once.

Locates the binary under --root, writes the --input file to its standard
input without arguments and prints what it wrote to standard output.

Exit codes:
  0 - The binary exited 0
  1 - The binary exited non-zero or timed out
  2 - Command error (executable not found, unreadable input, etc.)

Examples:
  scnconform smoke --root ./build --input testdata/words.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmoke(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", envOrDefault(EnvRoot, "."), "directory searched for the test binary (env "+EnvRoot+")")
	cmd.Flags().StringVar(&opts.Binary, "binary", "", "path to the test binary; skips discovery")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", locate.StdinTestPattern, "glob matched against file names during discovery")
	cmd.Flags().StringVar(&opts.Input, "input", "", "file written to the binary's stdin (required)")
	cmd.Flags().DurationVar(&opts.timeout.value, "timeout", opts.timeout.value, "invocation timeout, 0 disables (env "+EnvTimeout+")")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runSmoke(opts *SmokeOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	timeout, err := opts.timeout.resolve(cmd.Flags().Changed("timeout"))
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid timeout", err)
	}

	input, err := os.ReadFile(opts.Input)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "failed to read input file", err)
	}

	binary, err := resolveBinary(opts.Binary, opts.Root, opts.Pattern)
	if err != nil {
		return failDiscovery(out, err)
	}
	out.VerboseLog("Running: %s < %s", formatArgv(binary, nil), opts.Input)

	p := &invoke.Process{Path: binary, Timeout: timeout, Logger: logger}
	res, err := p.Invoke(cmd.Context(), invoke.Request{Stdin: string(input)})
	if err != nil {
		if errors.Is(err, invoke.ErrTimedOut) {
			return out.Fail(ExitFailure, CodeSmokeFailed, "smoke run timed out", err)
		}
		return out.Fail(ExitCommandError, CodeInvocation, "failed to run test binary", err)
	}

	var exitErr error
	if res.ExitCode != 0 {
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("%s exited with code %d", binary, res.ExitCode))
	}

	if out.JSON() {
		resp := CLIResponse{Status: "ok", Data: SmokeResult{
			Binary:     binary,
			ExitCode:   res.ExitCode,
			Stdout:     res.Stdout,
			Stderr:     res.Stderr,
			DurationMS: res.Duration.Milliseconds(),
		}}
		if exitErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: CodeSmokeFailed, Message: exitErr.Error()}
		}
		if err := out.encode(resp); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
	fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
	return exitErr
}
