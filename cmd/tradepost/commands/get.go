package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/inspect"
)

var (
	getTaskCreator     string
	getTaskID          uint64
	getProfileIdentity string
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch a single record",
	Long:  `Fetch a single task or profile record as pretty-printed JSON.`,
}

var getTaskCmd = &cobra.Command{
	Use:   "task",
	Short: "Fetch a task by (creator, id)",
	Long: `Fetch a task record by its creator identity and creator-scoped id.

Example:
  tradepost get task --creator <identity-hex> --id 1`,
	RunE: runGetTask,
}

var getProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Fetch a user profile by identity",
	Long: `Fetch a user profile record by identity.

Example:
  tradepost get profile --identity <identity-hex>`,
	RunE: runGetProfile,
}

func init() {
	getTaskCmd.Flags().StringVar(&getTaskCreator, "creator", "", "Task creator identity or prefix (required)")
	getTaskCmd.Flags().Uint64Var(&getTaskID, "id", 0, "Task id (required)")
	getTaskCmd.MarkFlagRequired("creator")
	getTaskCmd.MarkFlagRequired("id")

	getProfileCmd.Flags().StringVar(&getProfileIdentity, "identity", "", "Profile identity or prefix (required)")
	getProfileCmd.MarkFlagRequired("identity")

	getCmd.AddCommand(getTaskCmd)
	getCmd.AddCommand(getProfileCmd)
	rootCmd.AddCommand(getCmd)
}

func runGetTask(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	creator, err := s.resolveIdentity(ctx, getTaskCreator)
	if err != nil {
		return err
	}

	return inspect.WriteTask(ctx, s.ledger, creator, getTaskID, os.Stdout)
}

func runGetProfile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	identity, err := s.resolveIdentity(ctx, getProfileIdentity)
	if err != nil {
		return err
	}

	return inspect.WriteProfile(ctx, s.ledger, identity, os.Stdout)
}
