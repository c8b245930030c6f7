package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/printer"
	"github.com/openpost/tradepost/pkg/market"
)

var (
	createID          uint64
	createTitle       string
	createDescription string
	createReward      uint64
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	Long: `Create a new open task with a reward.

Task ids are scoped to your identity: two different creators may both use
id 1 without collision. Creating a task increments your profile's created
counter; your profile must be initialized first.

Examples:
  tradepost create --id 1 --title "Write docs" --reward 100
  tradepost create --id 2 --title "Fix login" --desc "session expiry bug" --reward 250`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().Uint64Var(&createID, "id", 0, "Creator-scoped task id (required)")
	createCmd.Flags().StringVar(&createTitle, "title", "", "Task title (required)")
	createCmd.Flags().StringVar(&createDescription, "desc", "", "Task description")
	createCmd.Flags().Uint64Var(&createReward, "reward", 0, "Reward amount (required)")
	createCmd.MarkFlagRequired("id")
	createCmd.MarkFlagRequired("title")
	createCmd.MarkFlagRequired("reward")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	creator, err := s.authenticate("create_task",
		strconv.FormatUint(createID, 10), createTitle, createDescription,
		strconv.FormatUint(createReward, 10))
	if err != nil {
		return err
	}

	task, receipt, err := s.machine.CreateTask(ctx, creator, createID, createTitle, createDescription, createReward)
	if err != nil {
		switch {
		case market.IsNotFound(err):
			return printer.Error(
				"profile not initialized",
				"You need a profile before creating tasks.",
				[]string{"Initialize one first:\n  tradepost init-user"},
			)
		case market.IsAlreadyExists(err):
			return printer.Error(
				"task id already in use",
				"You already created a task with id "+strconv.FormatUint(createID, 10)+".",
				[]string{"Pick another id, or inspect the existing task:\n  tradepost get task --creator " + creator.String() + " --id " + strconv.FormatUint(createID, 10)},
			)
		}
		return err
	}

	printer.Success("Task %d created\n", task.ID)
	printer.Info("  title:    %s\n", task.Title)
	printer.Info("  reward:   %d\n", task.RewardAmount)
	printer.Info("  status:   %s\n", task.Status)
	printReceipt(receipt)
	return nil
}
