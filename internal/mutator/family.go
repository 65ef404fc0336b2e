package mutator

import "math/rand"

// Mutator pairs a Scheduler (how idx advances across trials) with a Kernel
// (what one trial does to the buffer), replacing the diamond-inheritance
// hierarchy of Mutator/DetMutator/RandMutator/<concern>Mutator in the
// original C++ core with composition.
type Mutator struct {
	Name   string
	max    int
	idx    int
	done   bool
	rng    *rand.Rand
	sched  Scheduler
	kernel Kernel
}

func newMutator(name string, max int, sched Scheduler, kernel Kernel, rng *rand.Rand) *Mutator {
	return &Mutator{Name: name, max: max, idx: -1, done: false, sched: sched, kernel: kernel, rng: rng}
}

// Max reports the mutator's trial-space bound (its original `max` field).
func (m *Mutator) Max() int { return m.max }

// Idx reports the index used by the most recent trial.
func (m *Mutator) Idx() int { return m.idx }

// IsDone reports whether the mutator has exhausted its trial space,
// mirroring Mutator::is_done.
func (m *Mutator) IsDone() bool { return m.done }

// ApplyNext advances the schedule and runs one mutation trial against buf
// in place, mirroring Mutator::apply_next (next() then permute()).
func (m *Mutator) ApplyNext(buf []byte) {
	m.sched(m, m.rng)
	m.kernel(buf, m.max, m.idx, m.rng)
}

// bitSpec and byteSpec compute the max formulas from mutator.h, parameterized
// by the flat buffer's total bit/byte count.
func bitSpec(totalBits, offset int) int  { return totalBits - offset }
func byteSpec(totalBytes, offset int) int { return totalBytes - offset }

// DetFamily returns the 9 deterministic mutators, sized to a flat buffer of
// totalBytes bytes (totalBytes*8 bits), mirroring get_det_mutators.
func DetFamily(totalBytes int, rng *rand.Rand) []*Mutator {
	totalBits := totalBytes * 8
	return []*Mutator{
		newMutator("det bitflip 1/1", bitSpec(totalBits, 1), detScheduler, kernelSingleBitFlip, rng),
		newMutator("det bitflip 2/1", bitSpec(totalBits, 2), detScheduler, kernelDoubleBitFlip, rng),
		newMutator("det bitflip 4/1", bitSpec(totalBits, 5), detScheduler, kernelNibbleFlip, rng),
		newMutator("det bitflip 8/8", byteSpec(totalBytes, 1), detScheduler, kernelSingleByteFlip, rng),
		newMutator("det bitflip 16/8", byteSpec(totalBytes, 2), detScheduler, kernelDoubleByteFlip, rng),
		newMutator("det bitflip 32/8", byteSpec(totalBytes, 5), detScheduler, kernelQuadByteFlip, rng),
		newMutator("det arith 8/8", byteSpec(totalBytes, 1), detScheduler, kernelAddSingleByte, rng),
		newMutator("det arith 16/8", byteSpec(totalBytes, 2), detScheduler, kernelAddDoubleByte, rng),
		newMutator("det arith 32/8", byteSpec(totalBytes, 5), detScheduler, kernelAddQuadByte, rng),
	}
}

// RandFamily returns the 11 random mutators, mirroring get_rand_mutators —
// note DoubleBitFlip/NibbleFlip/ByteFlip have no random counterpart, an
// intentional omission in the original (confirmed in mutator.cc).
func RandFamily(totalBytes int, rng *rand.Rand) []*Mutator {
	totalBits := totalBytes * 8
	return []*Mutator{
		newMutator("rand bitflip 1/1", bitSpec(totalBits, 1), randScheduler, kernelSingleBitFlip, rng),
		newMutator("rand arith 8/8", byteSpec(totalBytes, 1), randScheduler, kernelAddSingleByte, rng),
		newMutator("rand arith 16/8", byteSpec(totalBytes, 2), randScheduler, kernelAddDoubleByte, rng),
		newMutator("rand arith 32/8", byteSpec(totalBytes, 5), randScheduler, kernelAddQuadByte, rng),
		newMutator("rand interest 8", byteSpec(totalBytes, 5), randScheduler, kernelOverwriteInterestingSingleByte, rng),
		newMutator("rand interest 16", byteSpec(totalBytes, 5), randScheduler, kernelOverwriteInterestingDoubleByte, rng),
		newMutator("rand interest 32", byteSpec(totalBytes, 5), randScheduler, kernelOverwriteInterestingQuadByte, rng),
		newMutator("rand random 8", byteSpec(totalBytes, 5), randScheduler, kernelOverwriteRandomByte, rng),
		newMutator("delete", byteSpec(totalBytes, 1), randScheduler, kernelDeleteRandomBytes, rng),
		newMutator("clone", byteSpec(totalBytes, 1), randScheduler, kernelCloneRandomBytes, rng),
		newMutator("overwrite", byteSpec(totalBytes, 5), randScheduler, kernelOverwriteRandomBytes, rng),
	}
}

// AllFamily returns all 20 mutators, deterministic ones first, mirroring
// get_all_mutators. Sized for a queue with the given number of inputs, each
// wordsPerInput 32-bit words wide.
func AllFamily(queueSize, wordsPerInput int, rng *rand.Rand) []*Mutator {
	totalBytes := queueSize * wordsPerInput * 4
	all := make([]*Mutator, 0, 20)
	all = append(all, DetFamily(totalBytes, rng)...)
	all = append(all, RandFamily(totalBytes, rng)...)
	return all
}
