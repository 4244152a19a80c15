package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/wire"
)

var anomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Inspect recorded anomaly events",
	Long:  "List and view persisted anomaly events (held-task captures) for audit",
}

var anomalyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List anomaly events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		workflowID, _ := cmd.Flags().GetString("workflow")
		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")
		limit, _ := cmd.Flags().GetInt("limit")

		events, err := wire.AnomalyService().ListAnomalies(ctx, primary.AnomalyFilters{
			WorkflowID: workflowID,
			Since:      since,
			Until:      until,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list anomaly events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No anomaly events found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWORKFLOW\tPOLLS\tTASKS\tCAPTURED")
		fmt.Fprintln(w, "--\t--------\t-----\t-----\t--------")
		for _, item := range events {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				item.ID,
				item.WorkflowID,
				item.ConsecutivePolls,
				len(item.Anomalies),
				item.CapturedAt,
			)
		}
		w.Flush()
		return nil
	},
}

var anomalyShowCmd = &cobra.Command{
	Use:   "show [anomaly-id]",
	Short: "Show anomaly event details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		anomalyID := args[0]

		event, err := wire.AnomalyService().GetAnomaly(ctx, anomalyID)
		if err != nil {
			return fmt.Errorf("anomaly event not found: %w", err)
		}

		fmt.Printf("Anomaly Event: %s\n", event.ID)
		fmt.Printf("Workflow: %s\n", event.WorkflowID)
		fmt.Printf("Directory: %s\n", event.Directory)
		fmt.Printf("Consecutive Polls: %d\n", event.ConsecutivePolls)
		fmt.Printf("Captured: %s\n", event.CapturedAt)

		for _, anomaly := range event.Anomalies {
			fmt.Printf("\nTask: %s\n", anomaly.TaskID)
			fmt.Printf("  Reason: %s\n", anomaly.HeldReason)
			if anomaly.Site != "" {
				fmt.Printf("  Site: %s\n", anomaly.Site)
			}
			if anomaly.Command != "" {
				fmt.Printf("  Command: %s\n", anomaly.Command)
			}
			if anomaly.Priority != nil {
				fmt.Printf("  Priority: %d\n", *anomaly.Priority)
			}
			if anomaly.PlatformInfo != "" {
				fmt.Printf("  Platform: %s\n", anomaly.PlatformInfo)
			}
		}

		return nil
	},
}

func init() {
	anomalyListCmd.Flags().StringP("workflow", "w", "", "Filter by workflow ID")
	anomalyListCmd.Flags().String("since", "", "Only events captured at or after this RFC3339 timestamp")
	anomalyListCmd.Flags().String("until", "", "Only events captured at or before this RFC3339 timestamp")
	anomalyListCmd.Flags().IntP("limit", "n", 0, "Maximum number of events to return")

	anomalyCmd.AddCommand(anomalyListCmd)
	anomalyCmd.AddCommand(anomalyShowCmd)
}

// AnomalyCmd returns the anomaly command
func AnomalyCmd() *cobra.Command {
	return anomalyCmd
}
