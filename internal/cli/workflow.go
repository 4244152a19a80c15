package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/core/status"
	"github.com/example/warden/internal/wire"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Inspect supervised workflows",
	Long:  "List and view the last observed state of supervised workflows",
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()

		workflows, err := wire.WorkflowService().ListWorkflows(ctx)
		if err != nil {
			return fmt.Errorf("failed to list workflows: %w", err)
		}

		if len(workflows) == 0 {
			fmt.Println("No workflows found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WORKFLOW\tSTATE\tDONE\tHELD\tLAST CHECKED")
		fmt.Fprintln(w, "--------\t-----\t----\t----\t------------")
		for _, item := range workflows {
			fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%d\t%s\n",
				item.ID,
				colorState(status.AggregateState(item.State)),
				item.PercentDone,
				item.HeldTasks,
				item.LastChecked,
			)
		}
		w.Flush()
		return nil
	},
}

var workflowShowCmd = &cobra.Command{
	Use:   "show [workflow-id]",
	Short: "Show workflow details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		workflowID := args[0]

		workflow, err := wire.WorkflowService().GetWorkflow(ctx, workflowID)
		if err != nil {
			return fmt.Errorf("workflow not found: %w", err)
		}

		fmt.Printf("Workflow: %s\n", workflow.ID)
		fmt.Printf("Directory: %s\n", workflow.Directory)
		fmt.Printf("State: %s\n", colorState(status.AggregateState(workflow.State)))
		fmt.Printf("Done: %.1f%%\n", workflow.PercentDone)
		fmt.Printf("Held Tasks: %d\n", workflow.HeldTasks)
		fmt.Printf("Last Checked: %s\n", workflow.LastChecked)

		return nil
	},
}

func init() {
	workflowCmd.AddCommand(workflowListCmd)
	workflowCmd.AddCommand(workflowShowCmd)
}

// WorkflowCmd returns the workflow command
func WorkflowCmd() *cobra.Command {
	return workflowCmd
}
