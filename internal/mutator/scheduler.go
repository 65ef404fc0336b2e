package mutator

import "math/rand"

// Scheduler advances a Mutator's idx for one trial and marks it done when
// its space of trials is exhausted, ported from the DetMutator/RandMutator
// pair in mutator.h/mutator.cc.
type Scheduler func(m *Mutator, rng *rand.Rand)

// detScheduler exhausts idx = 0..max inclusive, one trial per call, mirroring
// DetMutator::next(). Note the loop runs one extra trial at idx == max: the
// original sets `done` on the very call whose idx reaches max, and that
// call's permute() still executes (the caller's is_done() check happens
// before the next call, not after this one).
func detScheduler(m *Mutator, rng *rand.Rand) {
	m.idx++
	if m.idx == m.max {
		m.done = true
	}
}

// randScheduler draws exactly one idx in [0, max) and finishes immediately,
// mirroring RandMutator::next().
func randScheduler(m *Mutator, rng *rand.Rand) {
	m.idx = rng.Intn(m.max)
	m.done = true
}
