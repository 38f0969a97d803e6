package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"roster-sync/feature/membership"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunSync bool
	yesConfirm bool
)

// syncCmd plans a reconciliation and applies it after confirmation.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the mailing list with the roster",
	Long: `Loads the roster and the mailing list, prints the planned operations and,
once confirmed, applies them to the mailing list.

Examples:
  # Show the plan only
  sync --dry-run

  # Apply with interactive confirmation
  sync

  # Apply without prompting
  sync --yes`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Only print the planned operations")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the live run (non-interactive)")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	svc, err := newService(cfg, l)
	if err != nil {
		return err
	}

	// Step 1: Plan (always runs)
	l.Info("Planning sync...")
	plan, err := svc.Plan(ctx)
	if err != nil {
		return fmt.Errorf("failed to plan sync: %w", err)
	}
	printReport(cmd.OutOrStdout(), plan)

	if dryRunSync {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if plan.Result.IsClean() {
		l.Info("Mailing list already in sync.")
		return nil
	}
	if !plan.Result.HasChanges() {
		l.Info("No operations required; review the warnings above.")
		return nil
	}

	// Step 2: Confirm
	if !confirmDestructiveAction(cmd.InOrStdin(), cmd.OutOrStdout(), yesConfirm) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	// Step 3: Apply on fresh snapshots
	l.Info("Applying operations...")
	report, err := svc.Run(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to apply sync: %w", err)
	}
	printReport(cmd.OutOrStdout(), report)

	l.Info("Sync completed",
		zap.String("run_id", report.RunID),
		zap.Int("operations", len(report.Result.Operations)),
		zap.Int("skipped", report.Result.Summary.Skipped))
	return nil
}

// printReport writes the warnings, operations and summary of a run.
func printReport(w io.Writer, r *membership.Report) {
	mode := "live"
	if r.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(w, "\n=== Sync Report (%s) ===\n", mode)
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	fmt.Fprintf(w, "Roster records: %d\n", r.SourceCount)
	fmt.Fprintf(w, "Subscribers: %d\n", r.MirrorCount)

	if len(r.Result.Warnings) > 0 {
		fmt.Fprintln(w, "\n### Warnings")
		for _, warning := range r.Result.Warnings {
			fmt.Fprintln(w, warning)
		}
	}

	if len(r.Result.Operations) > 0 {
		fmt.Fprintln(w, "\n### Operations")
		for _, op := range r.Result.Operations {
			fmt.Fprintln(w, op)
		}
	}

	s := r.Result.Summary
	fmt.Fprintf(w, "\nAdds: %d, Edits: %d, Deletes: %d, Skipped: %d\n", s.Adds, s.Edits, s.Deletes, s.Skipped)
	if r.Archive != "" {
		fmt.Fprintf(w, "Report archived as %s\n", r.Archive)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(in io.Reader, out io.Writer, yes bool) bool {
	if yes {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to apply these operations to the mailing list: ")
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
