package simulator

import "github.com/flaviensolt/rtlfuzz/internal/rtlbits"

// ReferenceAdapter is a pure-Go stand-in DUT: a small deterministic state
// register folded with each applied input's words, with coverage and
// assertion bits derived from that register. It exists so the driver loop,
// corpus, and mutator family can be exercised end-to-end without a real
// Verilator build, and is grounded on the teacher's AFL-style edge hashing
// idea in coverage.CoverageMap.RecordEdge ((from>>1)^to), adapted here to
// fold fuzz-input words instead of control-flow edge pairs.
type ReferenceAdapter struct {
	inputWidth  rtlbits.Width
	covWidth    rtlbits.Width
	assertWidth rtlbits.Width

	nResetTicks     int
	nMetaResetTicks int

	scheduled []*rtlbits.Input
	retired   []*rtlbits.Input
	outputs   []*rtlbits.Output

	state     uint32
	tickCount int
}

// NewReferenceAdapter builds a ReferenceAdapter for the given widths and
// reset tick counts.
func NewReferenceAdapter(inputWidth, covWidth, assertWidth rtlbits.Width, nResetTicks, nMetaResetTicks int) *ReferenceAdapter {
	return &ReferenceAdapter{
		inputWidth:      inputWidth,
		covWidth:        covWidth,
		assertWidth:     assertWidth,
		nResetTicks:     nResetTicks,
		nMetaResetTicks: nMetaResetTicks,
	}
}

func (a *ReferenceAdapter) Init() {
	a.outputs = nil
}

// fold mixes an input's words into the running state register with a cheap
// avalanche multiplier, standing in for combinational DUT logic.
func (a *ReferenceAdapter) fold(in *rtlbits.Input) {
	for _, w := range in.Words() {
		a.state ^= w
		a.state = a.state*2654435761 + 1
	}
}

func (a *ReferenceAdapter) Reset() {
	zero := rtlbits.NewInput(a.inputWidth)
	a.fold(zero)
	a.tickCount++
	for i := 0; i < a.nResetTicks; i++ {
		a.state = 0
		a.tickCount++
	}
}

func (a *ReferenceAdapter) MetaReset() {
	zero := rtlbits.NewInput(a.inputWidth)
	a.fold(zero)
	a.tickCount++
	for i := 0; i < a.nMetaResetTicks; i++ {
		a.tickCount++
	}
}

func (a *ReferenceAdapter) PushInputs(inputs []*rtlbits.Input) {
	a.scheduled = append(a.scheduled, inputs...)
}

func (a *ReferenceAdapter) HasInput() bool { return len(a.scheduled) != 0 }

func (a *ReferenceAdapter) ApplyNextInput() {
	if len(a.scheduled) == 0 {
		return
	}
	in := a.scheduled[0]
	a.scheduled = a.scheduled[1:]
	a.fold(in)
	a.retired = append(a.retired, in)
}

func (a *ReferenceAdapter) Tick() {
	a.tickCount++
}

func (a *ReferenceAdapter) ReadOutput() {
	out := rtlbits.NewOutput(a.covWidth, a.assertWidth)
	if a.covWidth.Bits > 0 {
		out.Coverage().Set(uint(a.state % uint32(a.covWidth.Bits)))
		if a.covWidth.Bits > 1 {
			out.Coverage().Set(uint((a.state >> 11) % uint32(a.covWidth.Bits)))
		}
	}
	if a.assertWidth.Bits > 0 && a.state%104729 == 0 && a.state != 0 {
		out.Asserts().Set(uint((a.state >> 3) % uint32(a.assertWidth.Bits)))
	}
	a.outputs = append(a.outputs, out)
}

func (a *ReferenceAdapter) TakeOutputs() []*rtlbits.Output {
	out := a.outputs
	a.outputs = nil
	return out
}

func (a *ReferenceAdapter) TakeRetiredInputs() []*rtlbits.Input {
	out := a.retired
	a.retired = nil
	return out
}

func (a *ReferenceAdapter) TickCount() int { return a.tickCount }

func (a *ReferenceAdapter) Finish() {
	a.scheduled = nil
}

var _ Adapter = (*ReferenceAdapter)(nil)
