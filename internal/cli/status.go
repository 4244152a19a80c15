package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/warden/internal/core/status"
	"github.com/example/warden/internal/wire"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll all active workflows once",
	Long:  "Run a single status poll against the batch system and print every reported workflow with its held tasks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()

		snapshots, err := wire.StatusSource().PollAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to poll workflows: %w", err)
		}

		if len(snapshots) == 0 {
			fmt.Println("No active workflows.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WORKFLOW\tSTATE\tDONE\tHELD\tDIRECTORY")
		fmt.Fprintln(w, "--------\t-----\t----\t----\t---------")
		for _, snapshot := range snapshots {
			fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%d\t%s\n",
				snapshot.ID,
				colorState(snapshot.State),
				snapshot.PercentDone,
				len(snapshot.Anomalies),
				snapshot.Directory,
			)
		}
		w.Flush()

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			for _, snapshot := range snapshots {
				for _, anomaly := range snapshot.Anomalies {
					fmt.Printf("\n%s %s/%s\n", color.YellowString("held:"), snapshot.ID, anomaly.TaskID)
					fmt.Printf("  Reason: %s\n", anomaly.HeldReason)
					if anomaly.Site != "" {
						fmt.Printf("  Site: %s\n", anomaly.Site)
					}
					if anomaly.Command != "" {
						fmt.Printf("  Command: %s\n", anomaly.Command)
					}
				}
			}
		}

		return nil
	},
}

func colorState(s status.AggregateState) string {
	switch s {
	case status.StateSuccess:
		return color.GreenString(string(s))
	case status.StateFailure:
		return color.RedString(string(s))
	case status.StateRunning:
		return color.CyanString(string(s))
	default:
		return string(s)
	}
}

func init() {
	statusCmd.Flags().BoolP("verbose", "v", false, "Print held task details")
}

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return statusCmd
}
