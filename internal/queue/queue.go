// Package queue implements the per-sequence input/output FIFO and its
// coverage-accumulation algorithm, ported from Queue in the original
// rfuzz/DifuzzRTL core (queue.h/queue.cc).
package queue

import (
	"math/rand"

	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
)

// Queue is one sequence of Inputs applied to the DUT in succession, the
// Outputs read back for each, and the accumulated coverage delta the
// sequence produced relative to its own first cycle.
type Queue struct {
	inputWidth  rtlbits.Width
	covWidth    rtlbits.Width
	assertWidth rtlbits.Width

	pending []*rtlbits.Input
	applied []*rtlbits.Input
	outputs []*rtlbits.Output

	initial *rtlbits.Output
	acc     *rtlbits.Output
}

// New builds an empty Queue for the given bit-vector widths.
func New(inputWidth, covWidth, assertWidth rtlbits.Width) *Queue {
	return &Queue{inputWidth: inputWidth, covWidth: covWidth, assertWidth: assertWidth}
}

// InputWidth, CovWidth and AssertWidth report the widths the queue was built with.
func (q *Queue) InputWidth() rtlbits.Width  { return q.inputWidth }
func (q *Queue) CovWidth() rtlbits.Width    { return q.covWidth }
func (q *Queue) AssertWidth() rtlbits.Width { return q.assertWidth }

// GenerateInputs appends n freshly randomized inputs to the pending queue,
// mirroring Queue::generate_inputs.
func (q *Queue) GenerateInputs(n int, rng *rand.Rand) {
	for i := 0; i < n; i++ {
		in := rtlbits.NewInput(q.inputWidth)
		words := in.Words()
		for j := range words {
			words[j] = rng.Uint32()
		}
		in.Clean()
		q.pending = append(q.pending, in)
	}
}

// Seed appends n all-zero inputs to the pending queue, mirroring Queue::seed.
func (q *Queue) Seed(n int) {
	for i := 0; i < n; i++ {
		q.pending = append(q.pending, rtlbits.NewInput(q.inputWidth))
	}
}

// HasPendingInput reports whether the queue still has inputs to apply,
// mirroring Queue::has_another_input.
func (q *Queue) HasPendingInput() bool { return len(q.pending) != 0 }

// TakePendingInputs hands the caller the full pending-input list and clears
// it from the queue. This is the Go rendition of the original's
// pop_tb_inputs()-then-drain-on-push pattern: in the C++ core, Queue and
// Testbench exchange raw deque pointers and the receiving side drains the
// source deque as it consumes it; Go has no equivalent aliasing idiom, so
// ownership transfer is made explicit as a take-and-clear.
func (q *Queue) TakePendingInputs() []*rtlbits.Input {
	out := q.pending
	q.pending = nil
	q.applied = append(q.applied, out...)
	return out
}

// AppendInputs appends inputs (already owned by the caller, e.g. retired
// inputs handed back by a simulator adapter) to the pending queue.
func (q *Queue) AppendInputs(inputs []*rtlbits.Input) {
	q.pending = append(q.pending, inputs...)
}

// AppendOutputs records each output against the sequence's running coverage
// accumulation and appends it to the queue's applied output history,
// mirroring Queue::push_tb_outputs / Queue::accumulate_output.
func (q *Queue) AppendOutputs(outputs []*rtlbits.Output) {
	for _, out := range outputs {
		q.accumulate(out)
		q.outputs = append(q.outputs, out)
	}
}

// accumulate implements the queue-level accumulation rule: bits that have
// toggled relative to the sequence's first output are OR'd (stickily) into
// the running delta, and assertion bits of every later output are OR'd in
// directly (no delta — once recorded, an assertion bit is never cleared).
// The first output only becomes the baseline: the accumulator starts
// all-zero, so assertion bits set on that first output are not recorded.
func (q *Queue) accumulate(out *rtlbits.Output) {
	if q.initial == nil {
		q.initial = out.Clone()
		cov, assert := out.Widths()
		q.acc = rtlbits.NewOutput(cov, assert)
		return
	}
	delta := out.XorDelta(q.initial)
	q.acc.MergeOr(delta)
}

// AccumulatedOutput returns the sequence's running accumulated output, or
// nil if no output has been recorded yet.
func (q *Queue) AccumulatedOutput() *rtlbits.Output { return q.acc }

// Size returns the number of inputs currently pending application,
// mirroring Queue::size (used to size the mutator family to this sequence).
func (q *Queue) Size() int { return len(q.pending) }

// AppliedInputs reports every input this queue has ever released for
// application via TakePendingInputs, for diagnostics and flat-buffer
// reconstruction.
func (q *Queue) AppliedInputs() []*rtlbits.Input { return q.applied }

// Clone returns a deep copy of q's pending inputs and recorded outputs,
// including accumulation state, mirroring Queue::copy.
func (q *Queue) Clone() *Queue {
	cp := New(q.inputWidth, q.covWidth, q.assertWidth)
	for _, in := range q.pending {
		cp.pending = append(cp.pending, in.Clone())
	}
	for _, in := range q.applied {
		cp.applied = append(cp.applied, in.Clone())
	}
	for _, out := range q.outputs {
		cp.outputs = append(cp.outputs, out.Clone())
	}
	if q.initial != nil {
		cp.initial = q.initial.Clone()
	}
	if q.acc != nil {
		cp.acc = q.acc.Clone()
	}
	return cp
}

// Equal reports whether q and other hold identical pending inputs and
// recorded output bits, mirroring Queue::is_equal's equals/diff contract:
// two queues are equal only if every recorded output's coverage and
// assertion bits match, not merely if their counts agree.
func (q *Queue) Equal(other *Queue) bool {
	if len(q.pending) != len(other.pending) || len(q.outputs) != len(other.outputs) {
		return false
	}
	for i := range q.pending {
		if !q.pending[i].Equal(other.pending[i]) {
			return false
		}
	}
	for i := range q.outputs {
		if !q.outputs[i].Equal(other.outputs[i]) {
			return false
		}
	}
	return true
}
