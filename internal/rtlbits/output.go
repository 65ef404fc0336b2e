package rtlbits

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Output is one cycle's worth of observations read back from the DUT: a
// coverage bit-vector (did this coverage point toggle this cycle) and an
// assertion bit-vector (did this assertion fire this cycle). Unlike Input,
// Output is never viewed as a raw byte buffer, so it is built on a general
// purpose bitset rather than a hand-rolled word slice: OR-merge, XOR-delta
// and popcount come for free instead of hand-written word loops.
type Output struct {
	covWidth    Width
	assertWidth Width
	coverage    *bitset.BitSet
	asserts     *bitset.BitSet
}

// NewOutput allocates a zeroed Output for the given coverage and assertion
// widths.
func NewOutput(covWidth, assertWidth Width) *Output {
	return &Output{
		covWidth:    covWidth,
		assertWidth: assertWidth,
		coverage:    bitset.New(uint(covWidth.Bits)),
		asserts:     bitset.New(uint(assertWidth.Bits)),
	}
}

// Widths returns the coverage and assertion widths o was built with.
func (o *Output) Widths() (cov, assert Width) { return o.covWidth, o.assertWidth }

// Coverage returns the underlying coverage bitset. Callers may read and set
// bits directly (the simulator adapter does, per cycle); Output itself only
// ever combines whole Outputs.
func (o *Output) Coverage() *bitset.BitSet { return o.coverage }

// Asserts returns the underlying assertion bitset.
func (o *Output) Asserts() *bitset.BitSet { return o.asserts }

// Failed reports whether any assertion bit is set, mirroring
// doutput_t::failed() in the original core.
func (o *Output) Failed() bool {
	return o.assertWidth.Bits > 0 && o.asserts.Any()
}

// Clone returns a deep copy of o.
func (o *Output) Clone() *Output {
	return &Output{
		covWidth:    o.covWidth,
		assertWidth: o.assertWidth,
		coverage:    o.coverage.Clone(),
		asserts:     o.asserts.Clone(),
	}
}

// MergeOr ORs other's bits into o in place, mirroring doutput_t::add_or().
func (o *Output) MergeOr(other *Output) {
	o.coverage.InPlaceUnion(other.coverage)
	o.asserts.InPlaceUnion(other.asserts)
}

// XorDelta returns a new Output whose coverage bits are the bits that
// toggled between initial and o (o.coverage XOR initial.coverage), with
// assertion bits copied from o unchanged. This is the per-cycle delta the
// Queue accumulates against the sequence's first output, mirroring
// Queue::accumulate_output's "toggled since start" branch.
func (o *Output) XorDelta(initial *Output) *Output {
	return &Output{
		covWidth:    o.covWidth,
		assertWidth: o.assertWidth,
		coverage:    o.coverage.SymmetricDifference(initial.coverage),
		asserts:     o.asserts.Clone(),
	}
}

// Equal reports whether o and other hold identical coverage and assertion
// bits.
func (o *Output) Equal(other *Output) bool {
	if other == nil {
		return false
	}
	return o.coverage.Equal(other.coverage) && o.asserts.Equal(other.asserts)
}

// PopcountCoverage returns the number of set coverage bits.
func (o *Output) PopcountCoverage() int {
	return int(o.coverage.Count())
}

// NewCoverageSince returns the coverage bits set in o but not in baseline —
// the "new toggles" computation in Corpus.IsInteresting.
func (o *Output) NewCoverageSince(baseline *Output) *bitset.BitSet {
	return o.coverage.Difference(baseline.coverage)
}

// Bits renders the coverage vector as a '0'/'1' string, matching
// doutput_t::print()'s coverage line.
func (o *Output) Bits() string {
	var b strings.Builder
	for i := 0; i < o.covWidth.Bits; i++ {
		if o.coverage.Test(uint(i)) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Diff renders o against other with newly-toggled coverage bits highlighted
// in ANSI yellow, mirroring doutput_t::print_diff().
func (o *Output) Diff(other *Output) string {
	var b strings.Builder
	for i := 0; i < o.covWidth.Bits; i++ {
		mine := o.coverage.Test(uint(i))
		theirs := other.coverage.Test(uint(i))
		ch := byte('0')
		if mine {
			ch = '1'
		}
		if mine != theirs {
			fmt.Fprintf(&b, "\x1b[1;33m%c\x1b[0m", ch)
		} else {
			b.WriteByte(ch)
		}
	}
	return b.String()
}
