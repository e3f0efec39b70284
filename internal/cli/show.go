package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/scnconform/internal/conformance"
	"github.com/roach88/scnconform/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// RunSummary is the JSON form of a run log header.
type RunSummary struct {
	RunID        string `json:"run_id"`
	Executable   string `json:"executable"`
	StartedAt    string `json:"started_at"`
	Finished     bool   `json:"finished"`
	Pass         bool   `json:"pass"`
	Total        int    `json:"total"`
	Failed       int    `json:"failed"`
	SnapshotHash string `json:"snapshot_hash,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Inspect runs recorded with run --db",
		Long: `Inspect the run log.

Without arguments, lists recent runs, newest first. With a run ID, prints
that run's report exactly as run printed it.

Examples:
  scnconform show --db runs.db
  scnconform show --db runs.db 0192f1c4-3b7a-7c1e-9d2a-5f6e7a8b9c0d
  scnconform show --db runs.db --format json --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listRuns(opts, cmd)
			}
			return showRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run log (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list, 0 for all")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func openRunLog(out *OutputFormatter, path string) (*store.Store, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, out.Fail(ExitCommandError, CodeDatabase, "failed to open run log", err)
	}
	return s, nil
}

func listRuns(opts *ShowOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	s, err := openRunLog(out, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return out.Fail(ExitCommandError, CodeDatabase, "failed to list runs", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, newRunSummary(r))
	}
	if out.JSON() {
		return out.Success(summaries)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tRESULT\tPASSED\tEXECUTABLE")
	for _, r := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n",
			r.RunID, r.StartedAt, runStatus(r), r.Total-r.Failed, r.Total, r.Executable)
	}
	return tw.Flush()
}

func runStatus(r RunSummary) string {
	switch {
	case !r.Finished:
		return "incomplete"
	case r.Pass:
		return "pass"
	default:
		return "fail"
	}
}

func newRunSummary(r store.Run) RunSummary {
	return RunSummary{
		RunID:        r.ID,
		Executable:   r.Executable,
		StartedAt:    r.StartedAt.Format(time.RFC3339),
		Finished:     r.Finished,
		Pass:         r.Pass,
		Total:        r.Total,
		Failed:       r.Failed,
		SnapshotHash: r.SnapshotHash,
	}
}

func showRun(opts *ShowOptions, runID string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	s, err := openRunLog(out, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.ReadRun(cmd.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return out.Fail(ExitCommandError, CodeRunNotFound, fmt.Sprintf("no run %q in %s", runID, opts.Database), nil)
		}
		return out.Fail(ExitCommandError, CodeDatabase, "failed to read run", err)
	}
	res, err := s.LoadSuite(cmd.Context(), runID)
	if err != nil {
		return out.Fail(ExitCommandError, CodeDatabase, "failed to load run", err)
	}

	if out.JSON() {
		return out.encode(CLIResponse{Status: "ok", Data: newSuiteReport(res), RunID: runID})
	}

	w := cmd.OutOrStdout()
	writeRunHeader(w, run)
	for _, cr := range res.Cases {
		conformance.WriteCaseText(w, cr)
	}
	if !run.Finished {
		fmt.Fprintln(w, "\n(run did not finish)")
		return nil
	}
	conformance.WriteSummaryText(w, res)
	return nil
}

func writeRunHeader(w io.Writer, run store.Run) {
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  executable: %s\n", run.Executable)
	fmt.Fprintf(w, "  started:    %s\n", run.StartedAt.Format(time.RFC3339))
	if run.SnapshotHash != "" {
		fmt.Fprintf(w, "  snapshot:   %s\n", run.SnapshotHash)
	}
	fmt.Fprintln(w)
}
