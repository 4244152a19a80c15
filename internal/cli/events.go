package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/wire"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List watcher state transitions",
	Long:  "List the persisted watcher state-transition audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		workflowID, _ := cmd.Flags().GetString("workflow")
		limit, _ := cmd.Flags().GetInt("limit")

		events, err := wire.EventService().ListEvents(ctx, primary.EventFilters{
			WorkflowID: workflowID,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No events found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWORKFLOW\tFROM\tTO\tDETAIL\tCREATED")
		fmt.Fprintln(w, "--\t--------\t----\t--\t------\t-------")
		for _, item := range events {
			detail := item.Detail
			if detail == "" {
				detail = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				item.ID,
				item.WorkflowID,
				item.FromState,
				item.ToState,
				detail,
				item.CreatedAt,
			)
		}
		w.Flush()
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringP("workflow", "w", "", "Filter by workflow ID")
	eventsCmd.Flags().IntP("limit", "n", 0, "Maximum number of events to return")
}

// EventsCmd returns the events command
func EventsCmd() *cobra.Command {
	return eventsCmd
}
