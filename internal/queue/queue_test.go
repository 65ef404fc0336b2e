package queue

import (
	"math/rand"
	"testing"

	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
)

func widths() (rtlbits.Width, rtlbits.Width, rtlbits.Width) {
	return rtlbits.NewWidth(40), rtlbits.NewWidth(20), rtlbits.NewWidth(4)
}

func TestSeedAllZero(t *testing.T) {
	iw, cw, aw := widths()
	q := New(iw, cw, aw)
	q.Seed(3)
	if q.Size() != 3 {
		t.Fatalf("size = %d, want 3", q.Size())
	}
	ins := q.TakePendingInputs()
	for _, in := range ins {
		for _, w := range in.Words() {
			if w != 0 {
				t.Fatal("seeded input must be all zero")
			}
		}
	}
	if q.HasPendingInput() {
		t.Fatal("TakePendingInputs must drain the queue")
	}
}

func TestGenerateInputsMasksTail(t *testing.T) {
	iw, cw, aw := widths()
	q := New(iw, cw, aw)
	rng := rand.New(rand.NewSource(1))
	q.GenerateInputs(5, rng)
	for _, in := range q.TakePendingInputs() {
		in.Check()
	}
}

func TestAccumulateFirstOutputIsZeroDelta(t *testing.T) {
	iw, cw, aw := widths()
	q := New(iw, cw, aw)
	out := rtlbits.NewOutput(cw, aw)
	out.Coverage().Set(2).Set(5)
	q.AppendOutputs([]*rtlbits.Output{out})

	acc := q.AccumulatedOutput()
	if acc.PopcountCoverage() != 0 {
		t.Fatalf("first output must produce a zero delta, got popcount %d", acc.PopcountCoverage())
	}
}

func TestAccumulateTogglesStickOverTime(t *testing.T) {
	iw, cw, aw := widths()
	q := New(iw, cw, aw)
	o1 := rtlbits.NewOutput(cw, aw)
	o1.Coverage().Set(1)
	o2 := rtlbits.NewOutput(cw, aw)
	o2.Coverage().Set(1).Set(3) // bit 1 unchanged, bit 3 newly toggled
	o3 := rtlbits.NewOutput(cw, aw)
	o3.Coverage().Set(1) // bit 3 toggled back off

	q.AppendOutputs([]*rtlbits.Output{o1, o2, o3})
	acc := q.AccumulatedOutput()

	if !acc.Coverage().Test(3) {
		t.Error("bit that toggled at any point since sequence start must stay set (sticky OR)")
	}
	if acc.Coverage().Test(1) {
		t.Error("bit identical to initial output at every cycle must not be set")
	}
}

func TestAssertBitsAccumulateDirectlyNotAsDelta(t *testing.T) {
	iw, cw, aw := widths()
	q := New(iw, cw, aw)
	o1 := rtlbits.NewOutput(cw, aw)
	o2 := rtlbits.NewOutput(cw, aw)
	o2.Asserts().Set(0)

	q.AppendOutputs([]*rtlbits.Output{o1, o2})
	if !q.AccumulatedOutput().Failed() {
		t.Fatal("an assertion firing on a cycle after the first must mark the sequence failed")
	}
}

func TestEqualComparesOutputBitsNotJustCount(t *testing.T) {
	iw, cw, aw := widths()
	q1 := New(iw, cw, aw)
	q2 := New(iw, cw, aw)

	o1 := rtlbits.NewOutput(cw, aw)
	o1.Coverage().Set(2)
	o2 := rtlbits.NewOutput(cw, aw)
	o2.Coverage().Set(5)

	q1.AppendOutputs([]*rtlbits.Output{o1})
	q2.AppendOutputs([]*rtlbits.Output{o2})

	if q1.Equal(q2) {
		t.Fatal("queues with the same output count but different output bits must not be Equal")
	}

	q3 := New(iw, cw, aw)
	o3 := rtlbits.NewOutput(cw, aw)
	o3.Coverage().Set(2)
	q3.AppendOutputs([]*rtlbits.Output{o3})

	if !q1.Equal(q3) {
		t.Fatal("queues with identical output bits must be Equal")
	}
}

func TestFlatBytesRoundTrip(t *testing.T) {
	iw, cw, aw := widths()
	q := New(iw, cw, aw)
	rng := rand.New(rand.NewSource(7))
	q.GenerateInputs(4, rng)
	want := make([][]uint32, 0, 4)
	for _, in := range q.pending {
		w := append([]uint32(nil), in.Words()...)
		want = append(want, w)
	}

	pool := rtlbits.NewBufferPool()
	buf := q.FlatBytes(pool)
	rebuilt := q.NewQueueFromFlatBytes(buf)
	pool.Put(buf)

	if rebuilt.Size() != len(want) {
		t.Fatalf("rebuilt size = %d, want %d", rebuilt.Size(), len(want))
	}
	for i, in := range rebuilt.pending {
		for j, w := range in.Words() {
			if w != want[i][j] {
				t.Fatalf("word [%d][%d] = %#x, want %#x", i, j, w, want[i][j])
			}
		}
	}
}
