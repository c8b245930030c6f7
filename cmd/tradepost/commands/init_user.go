package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/printer"
	"github.com/openpost/tradepost/pkg/market"
)

var initUserCmd = &cobra.Command{
	Use:   "init-user",
	Short: "Initialize your marketplace profile",
	Long: `Initialize the user profile for your identity.

A profile is required before creating tasks. Initialization happens exactly
once per identity: the profile starts with zero task counters and a
reputation score of 100, and can never be deleted.`,
	RunE: runInitUser,
}

func init() {
	rootCmd.AddCommand(initUserCmd)
}

func runInitUser(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	identity, err := s.authenticate("initialize_user")
	if err != nil {
		return err
	}

	profile, receipt, err := s.registry.InitializeUser(ctx, identity)
	if err != nil {
		if market.IsAlreadyExists(err) {
			return printer.Error(
				"profile already initialized",
				"A profile already exists for identity "+identity.String()+".",
				[]string{"Inspect it:\n  tradepost get profile --identity " + identity.String()},
			)
		}
		return err
	}

	printer.Success("Profile initialized\n")
	printer.Info("  identity:   %s\n", profile.Owner)
	printer.Info("  reputation: %d\n", profile.ReputationScore)
	printReceipt(receipt)
	return nil
}
