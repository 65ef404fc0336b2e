package mutator

import (
	"math/rand"
	"testing"
)

func TestFlipBitMSBFirst(t *testing.T) {
	buf := []byte{0x00}
	flipBit(buf, 0)
	if buf[0] != 0x80 {
		t.Fatalf("bit 0 must be the MSB; got %08b", buf[0])
	}
	flipBit(buf, 0)
	flipBit(buf, 7)
	if buf[0] != 0x01 {
		t.Fatalf("bit 7 must be the LSB; got %08b", buf[0])
	}
}

func TestDetSingleBitFlipExhaustsEveryBit(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	totalBytes := 4
	m := newMutator("det bitflip 1/1", bitSpecForTest(totalBytes, 1), detScheduler, kernelSingleBitFlip, rng)

	seen := make(map[int]bool)
	trials := 0
	for !m.IsDone() {
		buf := make([]byte, totalBytes)
		m.ApplyNext(buf)
		seen[m.Idx()] = true
		trials++
		if trials > totalBytes*8+1 {
			t.Fatal("det scheduler failed to terminate")
		}
	}
	if len(seen) != totalBytes*8 {
		t.Fatalf("det bitflip visited %d distinct bit positions, want %d", len(seen), totalBytes*8)
	}
}

func bitSpecForTest(totalBytes, offset int) int { return totalBytes*8 - offset }

func TestRandSchedulerSingleTrial(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := newMutator("rand bitflip 1/1", bitSpecForTest(8, 1), randScheduler, kernelSingleBitFlip, rng)
	buf := make([]byte, 8)
	if m.IsDone() {
		t.Fatal("fresh mutator must not be done")
	}
	m.ApplyNext(buf)
	if !m.IsDone() {
		t.Fatal("random scheduler must finish after exactly one trial")
	}
}

func TestOverwriteInterestingExcludesLastValue(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	buf := make([]byte, 16)
	seen := make(map[int8]bool)
	for i := 0; i < 2000; i++ {
		kernelOverwriteInterestingSingleByte(buf, 0, 0, rng)
		seen[int8(buf[0])] = true
	}
	last := interesting8[len(interesting8)-1]
	if seen[last] {
		t.Errorf("last interesting-8 value %d must never be drawn (confirmed off-by-one in the original)", last)
	}
	if len(seen) != len(interesting8)-1 {
		t.Errorf("observed %d distinct values, want %d", len(seen), len(interesting8)-1)
	}
}

func TestOverwriteRandomByteRangeExcludes255(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	buf := make([]byte, 4)
	for i := 0; i < 2000; i++ {
		kernelOverwriteRandomByte(buf, 0, 0, rng)
		if buf[0] == 255 {
			t.Fatal("overwrite-random-byte must never produce 255 (rand()%255 range)")
		}
	}
}

func TestAllFamilyHas20Mutators(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	all := AllFamily(10, 2, rng)
	if len(all) != 20 {
		t.Fatalf("len(AllFamily) = %d, want 20", len(all))
	}
	det := DetFamily(80, rng)
	if len(det) != 9 {
		t.Fatalf("len(DetFamily) = %d, want 9", len(det))
	}
	rnd := RandFamily(80, rng)
	if len(rnd) != 11 {
		t.Fatalf("len(RandFamily) = %d, want 11", len(rnd))
	}
}

func TestRandFamilyOmitsDoubleAndNibbleAndByteFlip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	names := map[string]bool{}
	for _, m := range RandFamily(80, rng) {
		names[m.Name] = true
	}
	for _, forbidden := range []string{"rand bitflip 2/1", "rand bitflip 4/1", "rand bitflip 8/8", "rand bitflip 16/8", "rand bitflip 32/8"} {
		if names[forbidden] {
			t.Errorf("random family must not include %q", forbidden)
		}
	}
}

func TestDeleteRandomBytesWraparound(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	max := len(buf) - 1
	kernelDeleteRandomBytes(buf, max, max-1, rng)
	// must not panic; wraparound keeps every index within bounds
}
