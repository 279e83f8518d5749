package graph

import "sync"

// scratchPool rents []float32 buffers keyed by their power-of-two
// capacity bucket, so the audio thread never allocates in steady state
// once the working set of buffer sizes has been exercised once.
type scratchPool struct {
	pools sync.Map // bucket capacity (int) -> *sync.Pool
}

var globalScratch = &scratchPool{}

func bucketFor(n int) int {
	b := 1
	for b < n {
		b <<= 1
	}
	return b
}

// Rent returns a buffer with length n; its backing capacity is rounded
// up to the next power of two bucket and reused across calls.
func (p *scratchPool) Rent(n int) []float32 {
	b := bucketFor(n)
	v, _ := p.pools.LoadOrStore(b, &sync.Pool{New: func() any {
		buf := make([]float32, b)
		return &buf
	}})
	pool := v.(*sync.Pool)
	buf := pool.Get().(*[]float32)
	out := (*buf)[:n]
	for i := range out {
		out[i] = 0
	}
	return out
}

// Return releases a buffer rented from Rent back to its bucket pool.
func (p *scratchPool) Return(buf []float32) {
	b := bucketFor(cap(buf))
	v, ok := p.pools.Load(b)
	if !ok {
		return
	}
	full := buf[:cap(buf)]
	v.(*sync.Pool).Put(&full)
}

// RentScratch and ReturnScratch expose the process-wide scratch pool.
func RentScratch(n int) []float32    { return globalScratch.Rent(n) }
func ReturnScratch(buf []float32)    { globalScratch.Return(buf) }
