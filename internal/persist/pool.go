package persist

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// Writer dispatches queue/crash/coverage writes onto a bounded ants pool so
// a slow disk never stalls the single-threaded fuzzing loop, adapted from
// the teacher's requester.WorkerPool.
type Writer struct {
	pool *ants.Pool
	wg   sync.WaitGroup
	log  *slog.Logger

	submitted atomic.Int64
	completed atomic.Int64
	errors    atomic.Int64
}

// NewWriter builds a Writer with the given pool size. A nil logger falls
// back to slog.Default().
func NewWriter(size int, log *slog.Logger) (*Writer, error) {
	if log == nil {
		log = slog.Default()
	}
	pool, err := ants.NewPool(size, ants.WithPreAlloc(true))
	if err != nil {
		return nil, err
	}
	return &Writer{pool: pool, log: log}, nil
}

// Submit dispatches a fire-and-forget write task. Errors are logged, never
// returned to the caller: persistence is strictly off-path and must never
// feed back into corpus/queue/mutator state.
func (w *Writer) Submit(label string, task func() error) {
	w.submitted.Add(1)
	w.wg.Add(1)
	err := w.pool.Submit(func() {
		defer w.wg.Done()
		defer w.completed.Add(1)
		if err := task(); err != nil {
			w.errors.Add(1)
			w.log.Error("persist write failed", "task", label, "error", err)
		}
	})
	if err != nil {
		w.wg.Done()
		w.errors.Add(1)
		w.log.Error("persist submit failed", "task", label, "error", err)
	}
}

// Wait blocks until every dispatched write has completed.
func (w *Writer) Wait() { w.wg.Wait() }

// Close waits for pending writes and releases the pool.
func (w *Writer) Close() {
	w.Wait()
	w.pool.Release()
}

// Stats reports submitted/completed/error counts for diagnostics.
type Stats struct {
	Submitted int64
	Completed int64
	Errors    int64
}

func (w *Writer) Stats() Stats {
	return Stats{
		Submitted: w.submitted.Load(),
		Completed: w.completed.Load(),
		Errors:    w.errors.Load(),
	}
}
