package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scnconform/internal/conformance"
	"github.com/roach88/scnconform/internal/invoke"
	"github.com/roach88/scnconform/internal/locate"
	"github.com/roach88/scnconform/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Root      string
	Binary    string
	Pattern   string
	Cases     string
	OnlyCases bool
	Database  string
	Golden    string
	Update    bool

	timeout *timeoutFlag
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{
		RootOptions: rootOpts,
		timeout:     newTimeoutFlag(invoke.DefaultTimeout),
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the conformance suite against every scanning method",
		Long: `Run the conformance suite.

Locates the parameterized stdin test binary under --root, then invokes it
once per (case, method) pair and checks the exit status, the parsed value
and the leftover input of every invocation. All methods run even when an
earlier one fails.

Exit codes:
  0 - Every (case, method) combination passed
  1 - One or more combinations failed, or the golden snapshot differs
  2 - Command error (executable not found, bad case file, etc.)

Examples:
  scnconform run --root ./build
  scnconform run --binary ./build/tests/scn_stdin_parameterized_test
  scnconform run --root ./build --cases extra.yaml --db runs.db
  scnconform run --root ./build --golden testdata/engine.golden --update
  scnconform run --root ./build --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", envOrDefault(EnvRoot, "."), "directory searched for the test binary (env "+EnvRoot+")")
	cmd.Flags().StringVar(&opts.Binary, "binary", "", "path to the test binary; skips discovery")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", locate.ParameterizedTestPattern, "glob matched against file names during discovery")
	cmd.Flags().DurationVar(&opts.timeout.value, "timeout", opts.timeout.value, "per-invocation timeout, 0 disables (env "+EnvTimeout+")")
	cmd.Flags().StringVar(&opts.Cases, "cases", "", "YAML case file appended to the built-in corpus")
	cmd.Flags().BoolVar(&opts.OnlyCases, "only-cases", false, "run only the cases from --cases")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite run log")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "compare the run snapshot against this file")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite the --golden file instead of comparing")

	return cmd
}

func runSuite(opts *RunOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	timeout, err := opts.timeout.resolve(cmd.Flags().Changed("timeout"))
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid timeout", err)
	}
	if opts.Update && opts.Golden == "" {
		return out.Fail(ExitCommandError, CodeInvalidInput, "--update requires --golden", nil)
	}

	cases, err := loadCorpus(opts)
	if err != nil {
		return out.Fail(ExitCommandError, CodeCaseFile, "failed to load cases", err)
	}

	binary, err := resolveBinary(opts.Binary, opts.Root, opts.Pattern)
	if err != nil {
		return failDiscovery(out, err)
	}
	logger.Info("executable located", "path", binary)

	runner := conformance.NewRunner(&invoke.Process{Path: binary, Timeout: timeout, Logger: logger})
	runner.Logger = logger

	if opts.Database != "" {
		s, err := store.Open(opts.Database)
		if err != nil {
			return out.Fail(ExitCommandError, CodeDatabase, "failed to open run log", err)
		}
		defer func() {
			if cerr := s.Close(); cerr != nil {
				logger.Error("error closing run log", "error", cerr)
			}
		}()
		runner.Recorder = s
	}

	w := cmd.OutOrStdout()
	if !out.JSON() {
		runner.OnCase = func(cr conformance.CaseResult) {
			conformance.WriteCaseText(w, cr)
		}
	}
	runner.OnInvoke = func(idx int, m conformance.MethodIndex, args []string) {
		out.VerboseLog("Running: %s", formatArgv(binary, args))
	}

	res, err := runner.RunSuite(cmd.Context(), binary, cases)
	if err != nil {
		if runner.Recorder != nil && !errors.Is(err, conformance.ErrInvalidCase) {
			return out.Fail(ExitCommandError, CodeDatabase, "failed to record run", err)
		}
		return out.Fail(ExitCommandError, CodeCaseFile, "invalid corpus", err)
	}

	golden := ""
	if opts.Golden != "" {
		golden, err = checkGolden(opts.Golden, res, opts.Update)
		if err != nil {
			return out.Fail(ExitCommandError, CodeGolden, "golden snapshot", err)
		}
	}

	if out.JSON() {
		return outputSuiteJSON(out, res, golden)
	}
	return outputSuiteText(w, res, opts.Golden, golden)
}

// loadCorpus returns the built-in corpus, extended or replaced by --cases.
func loadCorpus(opts *RunOptions) ([]conformance.TestCase, error) {
	if opts.OnlyCases && opts.Cases == "" {
		return nil, errors.New("--only-cases requires --cases")
	}
	corpus := conformance.DefaultCorpus()
	if opts.Cases == "" {
		return corpus, nil
	}
	extra, err := conformance.LoadCases(opts.Cases)
	if err != nil {
		return nil, err
	}
	if opts.OnlyCases {
		return extra, nil
	}
	return append(corpus, extra...), nil
}

// resolveBinary returns the explicit binary if given, otherwise the first
// file under root matching pattern.
func resolveBinary(explicit, root, pattern string) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", err
		}
		if !info.Mode().IsRegular() {
			return "", fmt.Errorf("%s is not a regular file", explicit)
		}
		return explicit, nil
	}
	return locate.Find(root, locate.ExecutablePattern(pattern))
}

func failDiscovery(out *OutputFormatter, err error) error {
	if errors.Is(err, locate.ErrNotFound) {
		return out.Fail(ExitCommandError, CodeDiscovery, "test executable not found", err)
	}
	return out.Fail(ExitCommandError, CodeInvalidInput, "cannot locate test executable", err)
}

// formatArgv renders an argument vector for display, quoting arguments that
// would otherwise be ambiguous.
func formatArgv(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{binary}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\n\"'\\{}$") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Golden comparison outcomes.
const (
	goldenMatch    = "match"
	goldenMismatch = "mismatch"
	goldenUpdated  = "updated"
)

// checkGolden compares the run snapshot with path, or rewrites path when
// update is set.
func checkGolden(path string, res *conformance.SuiteResult, update bool) (string, error) {
	snap, err := res.Snapshot()
	if err != nil {
		return "", err
	}

	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, snap, 0644); err != nil {
			return "", fmt.Errorf("failed to write golden file: %w", err)
		}
		return goldenUpdated, nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("golden file %s does not exist (run with --update to create it)", path)
		}
		return "", fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, snap) {
		return goldenMismatch, nil
	}
	return goldenMatch, nil
}

func suiteExitError(res *conformance.SuiteResult, golden string) error {
	if !res.Pass() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d (case, method) combination(s) failed", res.FailedMethods()))
	}
	if golden == goldenMismatch {
		return NewExitError(ExitFailure, "snapshot does not match golden file")
	}
	return nil
}

func outputSuiteJSON(out *OutputFormatter, res *conformance.SuiteResult, golden string) error {
	report := newSuiteReport(res)
	report.Golden = golden

	exitErr := suiteExitError(res, golden)
	resp := CLIResponse{Status: "ok", Data: report, RunID: res.RunID}
	if exitErr != nil {
		resp.Status = "error"
		resp.Error = &CLIError{Code: CodeSuiteFailed, Message: exitErr.Error()}
	}
	if err := out.encode(resp); err != nil {
		return err
	}
	return exitErr
}

func outputSuiteText(w io.Writer, res *conformance.SuiteResult, goldenPath, golden string) error {
	conformance.WriteSummaryText(w, res)
	switch golden {
	case goldenMatch:
		fmt.Fprintf(w, "✓ Snapshot matches %s\n", goldenPath)
	case goldenMismatch:
		fmt.Fprintf(w, "✗ Snapshot differs from %s (run with --update to regenerate)\n", goldenPath)
	case goldenUpdated:
		fmt.Fprintf(w, "✓ Snapshot written to %s\n", goldenPath)
	}
	return suiteExitError(res, golden)
}
