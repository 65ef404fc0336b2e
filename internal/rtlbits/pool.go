package rtlbits

import "sync"

// BufferPool recycles the flat byte buffers the mutator family views a
// queue's inputs through, adapted from the teacher's memory.ByteSlicePool:
// one sync.Pool per power-of-two size class, so the hot mutate loop avoids
// an allocation on every trial.
type BufferPool struct {
	pools []*sync.Pool
	sizes []int
}

var defaultBufferSizes = []int{64, 256, 1024, 4096, 16384, 65536}

// NewBufferPool constructs a BufferPool with the default size classes.
func NewBufferPool() *BufferPool {
	bp := &BufferPool{sizes: defaultBufferSizes}
	bp.pools = make([]*sync.Pool, len(defaultBufferSizes))
	for i, size := range defaultBufferSizes {
		size := size
		bp.pools[i] = &sync.Pool{New: func() interface{} {
			return make([]byte, size)
		}}
	}
	return bp
}

// Get returns a zeroed byte slice of at least size bytes.
func (bp *BufferPool) Get(size int) []byte {
	for i, poolSize := range bp.sizes {
		if size <= poolSize {
			buf := bp.pools[i].Get().([]byte)[:size]
			for j := range buf {
				buf[j] = 0
			}
			return buf
		}
	}
	return make([]byte, size)
}

// Put returns a slice obtained from Get back to the pool.
func (bp *BufferPool) Put(buf []byte) {
	c := cap(buf)
	for i, poolSize := range bp.sizes {
		if c == poolSize {
			bp.pools[i].Put(buf[:c])
			return
		}
	}
}
