package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/config"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradepost",
	Short: "Tradepost - decentralized task marketplace",
	Long: `Tradepost is a decentralized task marketplace: users create tasks with a
reward, other users accept and complete them, and completion updates a
reputation score.

Every record lives at a deterministically derived address inside a versioned
ledger, and every mutation is an authenticated compare-and-swap commit.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to tradepost.yml")
}
