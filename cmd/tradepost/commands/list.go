package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/inspect"
	"github.com/openpost/tradepost/internal/keys"
	"github.com/openpost/tradepost/internal/timespec"
	"github.com/openpost/tradepost/pkg/market"
)

var (
	listCreator string
	listStatus  string
	listSince   string
	listUntil   string
	listOutput  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a creator's tasks",
	Long: `List every task a creator has created.

Defaults to your own identity when --creator is omitted and a signing key is
configured.

Examples:
  tradepost list
  tradepost list --creator <identity-hex> --status open
  tradepost list --since 24h
  tradepost list --output jsonl`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listCreator, "creator", "", "Creator identity or prefix (defaults to your own)")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (open, assigned, completed, cancelled)")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only tasks created after this time (duration like '24h' or RFC3339)")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Only tasks created before this time (duration like '1h' or RFC3339)")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "default", "Output format: default or jsonl")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	var creator market.Identity
	if listCreator != "" {
		creator, err = s.resolveIdentity(ctx, listCreator)
		if err != nil {
			return err
		}
	} else {
		priv, err := keys.Load(s.cfg.Keys.File)
		if err != nil {
			return fmt.Errorf("--creator not given and no local key available: %w", err)
		}
		creator = keys.Identity(priv)
	}

	filters := &inspect.FilterCriteria{}
	if listStatus != "" {
		status := market.TaskStatus(listStatus)
		if err := status.Validate(); err != nil {
			return err
		}
		filters.Status = status
	}

	filters.CreatedSinceMs, filters.CreatedUntilMs, err = timespec.ParseRange(listSince, listUntil)
	if err != nil {
		return err
	}

	return inspect.ListTasks(ctx, s.ledger, creator, inspect.OutputFormat(listOutput), filters, os.Stdout)
}
