// Package corpus implements the FIFO work-list of interesting Queues and
// the global coverage accumulation and interestingness test, ported from
// Corpus in the original rfuzz/DifuzzRTL core (corpus.h/corpus.cc).
package corpus

import (
	"log/slog"
	"time"

	"github.com/flaviensolt/rtlfuzz/internal/queue"
	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
)

// Corpus holds the FIFO work-list of Queues still to be mutated, and the
// sticky-OR global coverage accumulated across every queue ever added to it.
type Corpus struct {
	queues []*queue.Queue
	acc    *rtlbits.Output
	log    *slog.Logger
}

// New builds an empty Corpus. A nil logger falls back to slog.Default().
func New(log *slog.Logger) *Corpus {
	if log == nil {
		log = slog.Default()
	}
	return &Corpus{log: log}
}

// Add appends q to the work-list and folds its accumulated output into the
// corpus-wide coverage, mirroring Corpus::add_q.
//
// The original C++ accumulates with `acc |= acc ^ new`, an XOR whose result
// is then OR'd back into itself — algebraically a no-op against the
// prior `acc` value wherever `acc`'s bit was already 1, and equal to
// `new`'s bit otherwise, i.e. plain `acc |= new`. This port implements the
// simplified form directly rather than transcribing the no-op XOR.
func (c *Corpus) Add(q *queue.Queue) {
	c.queues = append(c.queues, q)
	out := q.AccumulatedOutput()
	if out == nil {
		return
	}
	if c.acc == nil {
		c.acc = out.Clone()
		return
	}
	c.acc.MergeOr(out)
}

// IsInteresting reports whether q's accumulated output sets any coverage
// bit the corpus has not already seen, mirroring Corpus::is_interesting.
// An empty corpus finds everything interesting.
func (c *Corpus) IsInteresting(q *queue.Queue) bool {
	out := q.AccumulatedOutput()
	if c.acc == nil {
		return true
	}
	newBits := out.NewCoverageSince(c.acc)
	if newBits.None() {
		return false
	}
	c.log.Info("new coverage point(s)",
		"count", newBits.Count(),
		"total_after", c.acc.PopcountCoverage()+int(newBits.Count()),
		"timestamp", time.Now().UnixMilli(),
	)
	return true
}

// Pop removes and returns the queue at the front of the work-list,
// mirroring Corpus::pop_q. Popping an empty corpus panics: the driver loop
// must always check Empty first.
func (c *Corpus) Pop() *queue.Queue {
	if len(c.queues) == 0 {
		panic("corpus: pop from empty corpus")
	}
	q := c.queues[0]
	c.queues = c.queues[1:]
	return q
}

// Empty reports whether the work-list has been fully drained.
func (c *Corpus) Empty() bool { return len(c.queues) == 0 }

// CoverageAmount returns the popcount of the global accumulated coverage,
// mirroring Corpus::get_coverage_amount.
func (c *Corpus) CoverageAmount() int {
	if c.acc == nil {
		return 0
	}
	return c.acc.PopcountCoverage()
}

// GlobalOutput returns the corpus-wide accumulated output, or nil if no
// queue has been added yet.
func (c *Corpus) GlobalOutput() *rtlbits.Output { return c.acc }

// Len reports the number of queues currently queued for mutation.
func (c *Corpus) Len() int { return len(c.queues) }
