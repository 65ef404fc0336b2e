package rtlbits

import "testing"

func TestNewWidthMasking(t *testing.T) {
	cases := []struct {
		bits      int
		wantWords int
		wantMask  uint32
	}{
		{bits: 32, wantWords: 1, wantMask: 0xFFFFFFFF},
		{bits: 33, wantWords: 2, wantMask: 0x1},
		{bits: 20, wantWords: 1, wantMask: 0xFFFFF},
		{bits: 64, wantWords: 2, wantMask: 0xFFFFFFFF},
	}
	for _, c := range cases {
		w := NewWidth(c.bits)
		if w.Words != c.wantWords {
			t.Errorf("bits=%d: words = %d, want %d", c.bits, w.Words, c.wantWords)
		}
		if w.Mask != c.wantMask {
			t.Errorf("bits=%d: mask = %#x, want %#x", c.bits, w.Mask, c.wantMask)
		}
	}
}

func TestNewWidthRejectsNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive width")
		}
	}()
	NewWidth(0)
}

func TestInputCleanMasksTail(t *testing.T) {
	w := NewWidth(20)
	in := NewInput(w)
	in.Words()[0] = 0xFFFFFFFF
	in.Clean()
	if in.Words()[0] != w.Mask {
		t.Errorf("Clean() left %#x, want %#x", in.Words()[0], w.Mask)
	}
	in.Check() // must not panic
}

func TestInputCheckPanicsOnViolation(t *testing.T) {
	w := NewWidth(20)
	in := NewInput(w)
	in.Words()[0] = 0xFFFFFFFF
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for masked-tail violation")
		}
	}()
	in.Check()
}

func TestInputCloneEqual(t *testing.T) {
	w := NewWidth(40)
	in := NewInput(w)
	in.Words()[0] = 0xDEADBEEF
	in.Words()[1] = 0x7
	clone := in.Clone()
	if !in.Equal(clone) {
		t.Fatal("clone should equal original")
	}
	clone.Words()[0] = 0
	if in.Equal(clone) {
		t.Fatal("mutating clone must not affect original")
	}
}

func TestOutputMergeOrAndPopcount(t *testing.T) {
	cov := NewWidth(8)
	asrt := NewWidth(4)
	a := NewOutput(cov, asrt)
	b := NewOutput(cov, asrt)
	a.Coverage().Set(0).Set(2)
	b.Coverage().Set(2).Set(5)

	a.MergeOr(b)
	if got := a.PopcountCoverage(); got != 3 {
		t.Errorf("popcount after merge = %d, want 3", got)
	}
}

func TestOutputFailed(t *testing.T) {
	cov := NewWidth(8)
	asrt := NewWidth(4)
	o := NewOutput(cov, asrt)
	if o.Failed() {
		t.Fatal("fresh output must not be failed")
	}
	o.Asserts().Set(1)
	if !o.Failed() {
		t.Fatal("output with a set assertion bit must be failed")
	}
}

func TestOutputXorDelta(t *testing.T) {
	cov := NewWidth(8)
	asrt := NewWidth(4)
	initial := NewOutput(cov, asrt)
	initial.Coverage().Set(1)
	later := NewOutput(cov, asrt)
	later.Coverage().Set(1).Set(3)

	delta := later.XorDelta(initial)
	if delta.Coverage().Test(1) {
		t.Error("bit present in both initial and later must not appear in delta")
	}
	if !delta.Coverage().Test(3) {
		t.Error("bit toggled since initial must appear in delta")
	}
}

func TestBufferPoolRoundTrip(t *testing.T) {
	bp := NewBufferPool()
	buf := bp.Get(100)
	if len(buf) != 100 {
		t.Fatalf("len = %d, want 100", len(buf))
	}
	buf[0] = 0xFF
	bp.Put(buf)
	buf2 := bp.Get(100)
	if buf2[0] != 0 {
		t.Error("buffer from pool must be zeroed")
	}
}
