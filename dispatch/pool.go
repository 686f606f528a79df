// Package dispatch provides the parallel-for primitive shared by the engines:
// run one procedure across n element indices, then barrier. A pass is the
// unit of scheduling; no ordering exists between indices within a pass, and
// Run does not return until every index has been processed.
package dispatch

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum element count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// Range is one contiguous block of element indices assigned to a worker.
// Chunk is stable for a given n and worker count, so callers can key
// per-chunk scratch state (partial sums, neighbor buffers) off it.
type Range struct {
	Chunk int
	Start int
	End   int
}

// RangeFunc processes the half-open interval [r.Start, r.End).
type RangeFunc func(r Range)

// job carries one chunk plus the procedure to apply to it.
type job struct {
	r  Range
	fn RangeFunc
}

// Pool runs passes over persistent worker goroutines.
type Pool struct {
	numWorkers int

	workChan chan job       // sends chunks to workers
	doneChan chan struct{}  // workers signal chunk completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running

	mu sync.Mutex // serializes Run; a pass is a full barrier
}

// NewPool creates a pool with the given worker count (0 = GOMAXPROCS).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{numWorkers: workers}
}

// Workers returns the worker count, which is also the maximum number of
// chunks a single pass is split into.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// Run executes fn across [0, n) and returns after every index has been
// processed. Small passes run inline on the calling goroutine as a single
// chunk; larger passes are split across the workers.
func (p *Pool) Run(n int, fn RangeFunc) {
	if n <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if n < parallelThreshold || p.numWorkers == 1 {
		fn(Range{Chunk: 0, Start: 0, End: n})
		return
	}

	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- job{r: Range{Chunk: w, Start: start, End: end}, fn: fn}
		dispatched++
	}

	// Barrier: wait for all chunks to complete.
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// startWorkers launches persistent worker goroutines.
func (p *Pool) startWorkers() {
	p.workChan = make(chan job, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case j, ok := <-p.workChan:
			if !ok {
				return
			}
			j.fn(j.r)
			p.doneChan <- struct{}{}
		}
	}
}

// Close signals all workers to exit and waits for them. Safe to call more
// than once, and on a pool that never ran a parallel pass.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}
