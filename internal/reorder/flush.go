package reorder

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// PositionWriter persists a single absolute position.
type PositionWriter interface {
	UpdatePosition(ctx context.Context, id string, position int) error
}

// BatchError reports a flush in which at least one update failed. Updates that
// succeeded are not rolled back; re-issuing the whole batch converges.
type BatchError struct {
	Failed int
	Total  int
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("reorder: %d of %d position updates failed: %v", e.Failed, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Flush issues one update per element with at most limit requests in flight
// (limit <= 0 means unbounded). Every issued update runs to completion; the
// first failure is returned wrapped in a *BatchError.
func Flush(ctx context.Context, w PositionWriter, updates []Update, limit int) error {
	var (
		g      errgroup.Group
		failed atomic.Int64
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, u := range updates {
		g.Go(func() error {
			if err := w.UpdatePosition(ctx, u.ID, u.Position); err != nil {
				failed.Add(1)
				return fmt.Errorf("set position %d on %s: %w", u.Position, u.ID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &BatchError{Failed: int(failed.Load()), Total: len(updates), Err: err}
	}
	return nil
}
