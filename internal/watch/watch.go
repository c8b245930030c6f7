// Package watch follows the marketplace record event stream.
package watch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

// Follow subscribes to record events and writes one line per event until the
// context is cancelled. Subscription errors are reported inline; the stream
// continues after them.
func Follow(ctx context.Context, l *ledger.Client, w io.Writer) error {
	sub, err := l.SubscribeRecordEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to record events: %w", err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			ts := time.UnixMilli(ev.AtMs).Format(time.RFC3339)
			fmt.Fprintf(w, "%s  %-16s  actor=%s  record=%s  v%d\n",
				ts, ev.Kind, ev.Actor, ev.Address, ev.Version)

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "subscription error: %v\n", err)
		}
	}
}

// PollForRecord polls until a record exists at addr or the timeout elapses.
// Polls every 200ms. Returns the record hash and committed version.
func PollForRecord(ctx context.Context, l *ledger.Client, addr market.Address, timeout time.Duration) (map[string]string, int64, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()

		case <-timeoutCh:
			return nil, 0, fmt.Errorf("timeout waiting for record %s after %v", addr, timeout)

		case <-ticker.C:
			hash, version, err := l.ReadRecord(ctx, addr)
			if err != nil {
				if market.IsNotFound(err) {
					continue
				}
				return nil, 0, fmt.Errorf("failed to poll for record: %w", err)
			}
			return hash, version, nil
		}
	}
}
