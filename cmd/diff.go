package cmd

import (
	"fmt"
	"io"

	"roster-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// diffCmd prints the differences between the roster and the mailing list.
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show differences between the roster and the mailing list",
	Long:  `Compares the roster with the mailing list without changing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()

		svc, err := newService(cfg, l)
		if err != nil {
			return err
		}

		drift, err := svc.Drift(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to compute drift: %w", err)
		}
		printDrift(cmd.OutOrStdout(), drift)

		l.Info("Drift computed",
			zap.Int("extra", len(drift.Extra)),
			zap.Int("missing", len(drift.Missing)),
			zap.Int("issues", len(drift.Issues)),
			zap.Bool("in_sync", drift.InSync()))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(diffCmd)
}

// printDrift writes the drift report.
func printDrift(w io.Writer, d *reconcile.Drift) {
	fmt.Fprintln(w, "### Extra ids (present in the mailing list, but not in the roster)")
	for _, id := range d.Extra {
		fmt.Fprintln(w, id)
	}

	fmt.Fprintln(w, "### Missing ids (missing in the mailing list, but present in the roster)")
	for _, id := range d.Missing {
		fmt.Fprintln(w, id)
	}

	for _, id := range d.IssueIDs() {
		fmt.Fprintf(w, "Found issues with id=%s:\n", id)
		for _, issue := range d.Issues[id] {
			fmt.Fprintf(w, "    %s\n", issue)
		}
	}

	if len(d.Unlinked) > 0 {
		fmt.Fprintln(w, "### Subscribers without an id")
		for _, email := range d.Unlinked {
			fmt.Fprintln(w, email)
		}
	}
}
