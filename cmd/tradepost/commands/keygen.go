package commands

import (
	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/config"
	"github.com/openpost/tradepost/internal/keys"
	"github.com/openpost/tradepost/internal/printer"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a local signing key",
	Long: `Generate a new ed25519 signing key at the configured key file path.

The key authenticates all mutating commands; its public half is your
marketplace identity. Fails if a key file already exists.`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	priv, err := keys.Generate(cfg.Keys.File)
	if err != nil {
		return printer.Error(
			"key generation failed",
			err.Error(),
			nil,
		)
	}

	printer.Success("Key written to %s\n", cfg.Keys.File)
	printer.Info("  identity: %s\n", keys.Identity(priv))
	return nil
}
