package rtlbits

import "fmt"

// Input is one cycle's worth of fuzzed bits applied to the DUT, stored as
// little-endian 32-bit words so the mutator family (internal/mutator) can
// view a run of Inputs as one contiguous little-endian byte buffer without
// any repacking. This raw word layout is load-bearing: it must match the
// byte order the mutator kernels were ported against (see mutator package
// doc comment).
type Input struct {
	width Width
	words []uint32
}

// NewInput allocates a zeroed Input of the given width.
func NewInput(w Width) *Input {
	return &Input{width: w, words: make([]uint32, w.Words)}
}

// Width reports the Input's bit-vector width.
func (in *Input) Width() Width { return in.width }

// Words exposes the backing word slice directly. Callers that write through
// this slice must call Clean afterwards to re-mask the trailing word.
func (in *Input) Words() []uint32 { return in.words }

// Clean re-applies the tail mask to the final word. The mutator family may
// flip bits in the padding above Bits; Clean restores the invariant that
// those bits are always zero, mirroring dinput_t::clean() in the original.
func (in *Input) Clean() {
	in.words[len(in.words)-1] &= in.width.Mask
}

// Check panics if the tail-mask invariant does not hold. Violating this
// invariant is a programming error in the core (a mutator kernel or the
// simulator adapter forgot to mask), never an expected runtime condition.
func (in *Input) Check() {
	if in.words[len(in.words)-1]&^in.width.Mask != 0 {
		panic("rtlbits: input tail-mask invariant violated")
	}
}

// Clone returns a deep copy of in.
func (in *Input) Clone() *Input {
	out := &Input{width: in.width, words: make([]uint32, len(in.words))}
	copy(out.words, in.words)
	return out
}

// Equal reports whether in and other hold identical bits.
func (in *Input) Equal(other *Input) bool {
	if in.width.Words != other.width.Words {
		return false
	}
	for i := range in.words {
		if in.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// Bits renders the input as a string of '0'/'1' characters, least
// significant bit first within each word, truncated to the true bit width
// in the final word. This mirrors dinput_t::print() in the original core.
func (in *Input) Bits() string {
	buf := make([]byte, 0, in.width.Bits)
	for i, word := range in.words {
		trail := 32
		if i == len(in.words)-1 {
			trail = in.width.TrailBits()
		}
		for j := 0; j < trail; j++ {
			if (word>>uint(j))&1 == 1 {
				buf = append(buf, '1')
			} else {
				buf = append(buf, '0')
			}
		}
	}
	return string(buf)
}

// String satisfies fmt.Stringer for debug printing.
func (in *Input) String() string {
	return fmt.Sprintf("Input(%d bits): %s", in.width.Bits, in.Bits())
}
