package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openpost/tradepost/internal/printer"
	"github.com/openpost/tradepost/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow marketplace activity in real time",
	Long: `Follow the record event stream for the configured instance.

Prints one line per committed mutation (profile initialization, task
creation, assignment, completion, cancellation) until interrupted.

Example:
  tradepost watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	printer.Info("Watching instance '%s' (ctrl-c to stop)\n\n", s.cfg.Instance)

	if err := watch.Follow(ctx, s.ledger, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
