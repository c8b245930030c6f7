package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/printer"
	"github.com/openpost/tradepost/pkg/market"
)

var (
	completeCreator string
	completeID      uint64
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete a task assigned to you",
	Long: `Complete a task you are assigned to.

Only the current assignee may complete a task, and only while it is in the
assigned state. Completion increments your completed counter and adjusts your
reputation by the configured policy.

Example:
  tradepost complete --creator <identity-hex> --id 1`,
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().StringVar(&completeCreator, "creator", "", "Task creator identity or prefix (required)")
	completeCmd.Flags().Uint64Var(&completeID, "id", 0, "Task id (required)")
	completeCmd.MarkFlagRequired("creator")
	completeCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	caller, err := s.authenticate("complete_task",
		completeCreator, strconv.FormatUint(completeID, 10))
	if err != nil {
		return err
	}

	creator, err := s.resolveIdentity(ctx, completeCreator)
	if err != nil {
		return err
	}

	receipt, err := s.machine.CompleteTask(ctx, caller, creator, completeID)
	if err != nil {
		switch {
		case market.IsInvalidState(err):
			return printer.Error(
				"task is not assigned",
				err.Error(),
				[]string{"Check its current state:\n  tradepost get task --creator " + completeCreator + " --id " + strconv.FormatUint(completeID, 10)},
			)
		case market.IsUnauthorized(err):
			return printer.Error(
				"not the assignee",
				"Only the user the task is assigned to may complete it.",
				nil,
			)
		}
		return err
	}

	printer.Success("Task %d completed\n", completeID)
	printReceipt(receipt)
	return nil
}
