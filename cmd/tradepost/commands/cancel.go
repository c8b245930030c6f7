package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/printer"
	"github.com/openpost/tradepost/pkg/market"
)

var (
	cancelID uint64
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel one of your open tasks",
	Long: `Cancel one of your open tasks.

Only the creator may cancel, and only while the task is still open.
Cancellation is terminal: a cancelled task can never be assigned or
completed.

Example:
  tradepost cancel --id 1`,
	RunE: runCancel,
}

func init() {
	cancelCmd.Flags().Uint64Var(&cancelID, "id", 0, "Task id (required)")
	cancelCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	caller, err := s.authenticate("cancel_task", strconv.FormatUint(cancelID, 10))
	if err != nil {
		return err
	}

	receipt, err := s.machine.CancelTask(ctx, caller, caller, cancelID)
	if err != nil {
		if market.IsInvalidState(err) {
			return printer.Error(
				"task is not open",
				err.Error(),
				nil,
			)
		}
		return err
	}

	printer.Success("Task %d cancelled\n", cancelID)
	printReceipt(receipt)
	return nil
}
