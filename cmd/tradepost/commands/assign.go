package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/printer"
	"github.com/openpost/tradepost/pkg/market"
)

var (
	assignCreator  string
	assignID       uint64
	assignAssignee string
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign an open task to another user",
	Long: `Assign one of your open tasks to another user.

Only the task's creator may assign it, the task must still be open, and you
cannot assign a task to yourself. The assignee is set exactly once and never
changes.

Example:
  tradepost assign --id 1 --assignee <identity-hex>`,
	RunE: runAssign,
}

func init() {
	assignCmd.Flags().StringVar(&assignCreator, "creator", "", "Task creator identity or prefix (defaults to your own)")
	assignCmd.Flags().Uint64Var(&assignID, "id", 0, "Task id (required)")
	assignCmd.Flags().StringVar(&assignAssignee, "assignee", "", "Assignee identity or prefix (required)")
	assignCmd.MarkFlagRequired("id")
	assignCmd.MarkFlagRequired("assignee")
	rootCmd.AddCommand(assignCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	caller, err := s.authenticate("assign_task",
		assignCreator, strconv.FormatUint(assignID, 10), assignAssignee)
	if err != nil {
		return err
	}

	creator := caller
	if assignCreator != "" {
		creator, err = s.resolveIdentity(ctx, assignCreator)
		if err != nil {
			return err
		}
	}

	assignee, err := s.resolveIdentity(ctx, assignAssignee)
	if err != nil {
		return err
	}

	receipt, err := s.machine.AssignTask(ctx, caller, creator, assignID, assignee)
	if err != nil {
		switch {
		case market.IsInvalidState(err):
			return printer.Error(
				"task is not open",
				err.Error(),
				[]string{"Check its current state:\n  tradepost get task --creator " + creator.String() + " --id " + strconv.FormatUint(assignID, 10)},
			)
		case market.IsConflict(err):
			return printer.Error(
				"assignment raced with another commit",
				"Another mutation committed first. Re-read the task and decide again.",
				nil,
			)
		}
		return err
	}

	printer.Success("Task %d assigned to %s\n", assignID, assignee)
	printReceipt(receipt)
	return nil
}
