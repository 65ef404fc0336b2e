package queue

import (
	"encoding/binary"

	"github.com/flaviensolt/rtlfuzz/internal/rtlbits"
)

// FlatBytes concatenates every pending input's words into one contiguous
// little-endian byte buffer, mirroring Mutator::apply's memcpy of a
// sequence's inputs into one flat uint8_t* before calling permute(). The
// buffer is obtained from pool so repeated mutation trials don't allocate.
func (q *Queue) FlatBytes(pool *rtlbits.BufferPool) []byte {
	wordsPerInput := q.inputWidth.Words
	buf := pool.Get(len(q.pending) * wordsPerInput * 4)
	for i, in := range q.pending {
		base := i * wordsPerInput * 4
		for j, w := range in.Words() {
			binary.LittleEndian.PutUint32(buf[base+j*4:], w)
		}
	}
	return buf
}

// NewQueueFromFlatBytes builds a fresh Queue with the same widths as q,
// whose pending inputs are read back out of buf, re-masked to the tail
// invariant, mirroring Mutator::apply's reconstruction of out_q after
// permute() has scribbled over the flat buffer.
func (q *Queue) NewQueueFromFlatBytes(buf []byte) *Queue {
	wordsPerInput := q.inputWidth.Words
	n := len(q.pending)
	out := New(q.inputWidth, q.covWidth, q.assertWidth)
	out.pending = make([]*rtlbits.Input, 0, n)
	for i := 0; i < n; i++ {
		in := rtlbits.NewInput(q.inputWidth)
		base := i * wordsPerInput * 4
		words := in.Words()
		for j := range words {
			words[j] = binary.LittleEndian.Uint32(buf[base+j*4:])
		}
		in.Clean()
		out.pending = append(out.pending, in)
	}
	return out
}
