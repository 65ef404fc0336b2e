// Package simulator defines the narrow contract the fuzzing core uses to
// drive a cycle-accurate DUT simulation, ported from the Testbench class in
// the original core (testbench.h/testbench.cc). The real Verilator/DPI
// bridge lives outside this module; this package only specifies the
// interface and ships a pure-Go reference implementation for tests, demos,
// and documentation.
package simulator

import "github.com/flaviensolt/rtlfuzz/internal/rtlbits"

// Adapter is the external collaborator the driver loop (internal/driver)
// talks to. Every method mirrors one Testbench method from the original
// core; see each method's doc comment for its C++ counterpart.
type Adapter interface {
	// Init clears any output history left over from a previous run,
	// mirroring Testbench::init.
	Init()

	// Reset drives the DUT's functional reset for the configured number
	// of reset ticks, mirroring Testbench::reset.
	Reset()

	// MetaReset drives the DUT's internal coverage-counter reset while
	// holding functional reset de-asserted, mirroring Testbench::meta_reset.
	MetaReset()

	// PushInputs schedules inputs for application, taking ownership of the
	// slice, mirroring Testbench::push_inputs.
	PushInputs(inputs []*rtlbits.Input)

	// HasInput reports whether any scheduled input remains unapplied,
	// mirroring Testbench::has_another_input.
	HasInput() bool

	// ApplyNextInput drives the next scheduled input onto the DUT's input
	// port and moves it to the retired list, mirroring
	// Testbench::apply_next_input.
	ApplyNextInput()

	// Tick advances the DUT by one clock cycle, mirroring Testbench::tick
	// (three evaluations per cycle in the original: falling edge, rising
	// edge, settle).
	Tick()

	// ReadOutput captures the DUT's current coverage and assertion bits
	// into a new Output and records it, mirroring Testbench::read_new_output.
	ReadOutput()

	// TakeOutputs returns every Output recorded since the last call and
	// clears the adapter's internal list, mirroring the
	// pop_outputs()-then-drain-on-push handoff in the original (see
	// internal/queue's TakePendingInputs doc comment for why Go makes this
	// explicit instead of aliasing a shared deque).
	TakeOutputs() []*rtlbits.Output

	// TakeRetiredInputs returns every input applied since the last call
	// and clears the adapter's internal list, mirroring
	// Testbench::pop_retired_inputs.
	TakeRetiredInputs() []*rtlbits.Input

	// TickCount reports the total number of cycles driven so far.
	TickCount() int

	// Finish discards any still-scheduled, unapplied inputs, mirroring
	// Testbench::finish.
	Finish()
}
