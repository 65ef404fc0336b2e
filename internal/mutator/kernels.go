// Package mutator implements the 20-strategy mutation family the driver
// runs against a popped Queue, ported from the original rfuzz/DifuzzRTL
// core's mutator.h/mutator.cc/afl.h. Every Kernel below operates on the
// flat little-endian byte view of a queue's pending inputs produced by
// internal/queue's FlatBytes/NewQueueFromFlatBytes.
package mutator

import (
	"encoding/binary"
	"math/rand"
)

// AFL-inspired interesting values, verbatim from afl.h's INTERESTING_8/16/32
// tables (the rfuzz/DifuzzRTL core reuses AFL's constants unchanged).
var (
	interesting8 = []int8{-128, -1, 0, 1, 16, 32, 64, 100, 127}

	interesting16 = []int16{-32768, -129, 128, 255, 256, 512, 1000, 1024, 4096, 32767}

	interesting32 = []int32{-2147483648, -100663046, -32769, 32768, 65535, 65536, 100663045, 2147483647}
)

// Kernel is one mutation's permutation function, ported from the
// Mutator::permute overrides in the original core's mutator.cc. It receives
// the flat byte view of an entire queue's inputs (see internal/queue's
// FlatBytes), the mutator's max index, the index chosen for this trial by
// the Scheduler, and the run's PRNG stream.
//
// buf is addressed exactly as the original uint8_t* was: idx is a byte
// offset for every kernel except the bit-flip family, where it is a bit
// offset (matching FLIP_BIT's own (idx>>3, idx&7) split).
type Kernel func(buf []byte, max, idx int, rng *rand.Rand)

func flipBit(buf []byte, bitIdx int) {
	buf[bitIdx>>3] ^= 128 >> uint(bitIdx&7)
}

func kernelSingleBitFlip(buf []byte, max, idx int, rng *rand.Rand) {
	flipBit(buf, idx)
}

func kernelDoubleBitFlip(buf []byte, max, idx int, rng *rand.Rand) {
	flipBit(buf, idx)
	flipBit(buf, idx+1)
}

func kernelNibbleFlip(buf []byte, max, idx int, rng *rand.Rand) {
	flipBit(buf, idx)
	flipBit(buf, idx+1)
	flipBit(buf, idx+2)
	flipBit(buf, idx+3)
}

func kernelSingleByteFlip(buf []byte, max, idx int, rng *rand.Rand) {
	buf[idx] ^= 0xFF
}

func kernelDoubleByteFlip(buf []byte, max, idx int, rng *rand.Rand) {
	buf[idx] ^= 0xFF
	buf[idx+1] ^= 0xFF
}

func kernelQuadByteFlip(buf []byte, max, idx int, rng *rand.Rand) {
	buf[idx] ^= 0xFF
	buf[idx+1] ^= 0xFF
	buf[idx+2] ^= 0xFF
	buf[idx+3] ^= 0xFF
}

// arithMax mirrors ARITH_MAX from afl.h (rand()%35 yields [0,34], the
// one-off-from-35 range the rfuzz paper actually uses).
const arithMax = 35

func kernelAddSingleByte(buf []byte, max, idx int, rng *rand.Rand) {
	v := byte(rng.Intn(arithMax))
	if rng.Intn(2) != 0 {
		buf[idx] += v
	} else {
		buf[idx] -= v
	}
}

func swap16(x uint16) uint16 {
	return (x << 8) | (x >> 8)
}

func swap32(x uint32) uint32 {
	return (x << 24) | (x >> 24) | ((x << 8) & 0x00FF0000) | ((x >> 8) & 0x0000FF00)
}

// kernelAddDoubleByte ports AddDoubleByteMutator::permute. Cases 2 and 3
// read the mutation target through a uint16 array indexed by the *byte*
// offset idx instead of an element offset — an aliasing quirk present in
// the original C (see mutator.cc). The byte-addressed read there can run
// past the buffer the element-addressed write stays inside; this port
// preserves the aliasing by wrapping the read index into the buffer's
// uint16-element range instead of reproducing the out-of-bounds read,
// which Go cannot express memory-safely.
func kernelAddDoubleByte(buf []byte, max, idx int, rng *rand.Rand) {
	v := uint16(rng.Intn(arithMax))
	switch rng.Intn(4) {
	case 0:
		buf[idx] += byte(v & 0xFF)
		buf[idx+1] += byte((v & 0xFF00) >> 8)
	case 1:
		buf[idx] -= byte(v & 0xFF)
		buf[idx+1] -= byte((v & 0xFF00) >> 8)
	case 2:
		elemIdx := (idx % (len(buf) / 2)) * 2
		cur := binary.LittleEndian.Uint16(buf[elemIdx:])
		res := swap16(swap16(cur) + v)
		buf[idx] = byte(res & 0xFF)
		buf[idx+1] = byte((res & 0xFF00) >> 8)
	case 3:
		elemIdx := (idx % (len(buf) / 2)) * 2
		cur := binary.LittleEndian.Uint16(buf[elemIdx:])
		res := swap16(swap16(cur) - v)
		buf[idx] = byte(res & 0xFF)
		buf[idx+1] = byte((res & 0xFF00) >> 8)
	}
}

// kernelAddQuadByte ports AddQuadByteMutator::permute, including its
// confirmed quirk of reusing SWAP16 (not SWAP32) for cases 2 and 3: the
// arithmetic result is a 16-bit quantity zero-extended to 32 bits before
// being split into 4 bytes, so the top two result bytes are always zero.
func kernelAddQuadByte(buf []byte, max, idx int, rng *rand.Rand) {
	v := uint16(rng.Intn(arithMax))
	switch rng.Intn(4) {
	case 0:
		buf[idx] += byte(v & 0xFF)
		buf[idx+1] += byte((v & 0xFF00) >> 8)
		buf[idx+2] += 0
		buf[idx+3] += 0
	case 1:
		buf[idx] -= byte(v & 0xFF)
		buf[idx+1] -= byte((v & 0xFF00) >> 8)
		buf[idx+2] -= 0
		buf[idx+3] -= 0
	case 2:
		elemIdx := (idx % (len(buf) / 2)) * 2
		cur := binary.LittleEndian.Uint16(buf[elemIdx:])
		res := uint32(swap16(swap16(cur) + v))
		buf[idx] = byte(res & 0xFF)
		buf[idx+1] = byte((res & 0xFF00) >> 8)
		buf[idx+2] = byte((res & 0xFF0000) >> 16)
		buf[idx+3] = byte((res & 0xFF000000) >> 24)
	case 3:
		elemIdx := (idx % (len(buf) / 2)) * 2
		cur := binary.LittleEndian.Uint16(buf[elemIdx:])
		res := uint32(swap16(swap16(cur) - v))
		buf[idx] = byte(res & 0xFF)
		buf[idx+1] = byte((res & 0xFF00) >> 8)
		buf[idx+2] = byte((res & 0xFF0000) >> 16)
		buf[idx+3] = byte((res & 0xFF000000) >> 24)
	}
}

// kernelOverwriteInterestingSingleByte ports
// OverwriteInterestingSingleByteMutator::permute, including its confirmed
// off-by-one: the last entry of the interesting-value table is never drawn
// because the original divides by (LEN-1) instead of LEN.
func kernelOverwriteInterestingSingleByte(buf []byte, max, idx int, rng *rand.Rand) {
	buf[idx] = byte(interesting8[rng.Intn(len(interesting8)-1)])
}

func kernelOverwriteInterestingDoubleByte(buf []byte, max, idx int, rng *rand.Rand) {
	v := uint16(interesting16[rng.Intn(len(interesting16)-1)])
	buf[idx] = byte(v & 0xFF)
	buf[idx+1] = byte((v & 0xFF00) >> 8)
}

func kernelOverwriteInterestingQuadByte(buf []byte, max, idx int, rng *rand.Rand) {
	v := uint32(interesting32[rng.Intn(len(interesting32)-1)])
	buf[idx] = byte(v & 0xFF)
	buf[idx+1] = byte((v & 0xFF00) >> 8)
	buf[idx+2] = byte((v & 0xFF0000) >> 16)
	buf[idx+3] = byte((v & 0xFF000000) >> 24)
}

// kernelOverwriteRandomByte ports OverwriteRandomByteMutator::permute,
// including its range of [0,254] rather than the full byte range (the
// original divides by 255, not 256).
func kernelOverwriteRandomByte(buf []byte, max, idx int, rng *rand.Rand) {
	buf[idx] = byte(rng.Intn(255))
}

// kernelDeleteRandomBytes ports DeleteRandomBytesMutator::permute,
// including the (idx+i) mod (max-1) wraparound: max is already one less than
// the buffer's byte count, so the last two bytes are never written.
func kernelDeleteRandomBytes(buf []byte, max, idx int, rng *rand.Rand) {
	n := rng.Intn(max)
	for i := 0; i < n; i++ {
		buf[(idx+i)%(max-1)] = 0x00
	}
}

func kernelCloneRandomBytes(buf []byte, max, idx int, rng *rand.Rand) {
	n := rng.Intn(max / 2)
	src := rng.Intn(max - n)
	dst := rng.Intn(max - n)
	copy(buf[dst:dst+n], buf[src:src+n])
}

func kernelOverwriteRandomBytes(buf []byte, max, idx int, rng *rand.Rand) {
	n := rng.Intn(max)
	for i := 0; i < n; i++ {
		buf[(idx+i)%(max-1)] = byte(rng.Intn(255))
	}
}
