package refresher

import (
	"context"
	"sync"
	"sync/atomic"
)

// BatchResult aggregates per-id outcomes of a batch refresh.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// RefreshMany refreshes each source concurrently. Failures are independent:
// one failing source never aborts the batch, and an all-failed batch still
// returns counts rather than an error.
func (r *Refresher) RefreshMany(ctx context.Context, sourceIDs []string) BatchResult {
	if r == nil || len(sourceIDs) == 0 {
		return BatchResult{}
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		failed    atomic.Int64
	)

	for _, id := range sourceIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := r.Refresh(ctx, id, false); err != nil {
				failed.Add(1)
				r.log.ErrorObj("source refresh failed", "refresh_error", map[string]any{
					"source_id": id,
					"error":     err.Error(),
				})
				return
			}
			succeeded.Add(1)
		}(id)
	}
	wg.Wait()

	return BatchResult{
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
}
