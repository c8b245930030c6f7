package inspect

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/openpost/tradepost/pkg/ledger"
	"github.com/openpost/tradepost/pkg/market"
)

// FilterCriteria defines filtering options for task listing.
// All filters are ANDed together.
type FilterCriteria struct {
	Status         market.TaskStatus // Exact status match, empty = no filter
	CreatedSinceMs int64             // Created at or after this timestamp, 0 = no bound
	CreatedUntilMs int64             // Created before this timestamp, 0 = no bound
}

func (fc *FilterCriteria) matches(t *market.Task) bool {
	if fc.Status != "" && t.Status != fc.Status {
		return false
	}
	if fc.CreatedSinceMs > 0 && t.CreatedAtMs < fc.CreatedSinceMs {
		return false
	}
	if fc.CreatedUntilMs > 0 && t.CreatedAtMs >= fc.CreatedUntilMs {
		return false
	}
	return true
}

// ListTasks retrieves every task a creator has created, via the per-creator
// task index, and writes them in the requested format. Tasks are sorted by id
// for stable output. Malformed records are skipped with a warning to stderr.
func ListTasks(ctx context.Context, l *ledger.Client, creator market.Identity, format OutputFormat, filters *FilterCriteria, w io.Writer) error {
	addrs, err := l.CreatorTasks(ctx, creator)
	if err != nil {
		return err
	}

	var tasks []*market.Task
	for _, addr := range addrs {
		hash, _, err := l.ReadRecord(ctx, addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠ skipping unreadable task record %s: %v\n", addr, err)
			continue
		}

		task, err := market.HashToTask(hash)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠ skipping malformed task record %s: %v\n", addr, err)
			continue
		}

		if filters != nil && !filters.matches(task) {
			continue
		}

		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})

	switch format {
	case OutputFormatDefault:
		FormatTable(w, tasks, creator)
	case OutputFormatJSONL:
		if err := FormatJSONL(w, tasks); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
