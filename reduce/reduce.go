// Package reduce implements aggregate operators over scalar field buffers:
// sum, average, min, max, and an elementwise normalize transform.
//
// Aggregates run as a chunked tree reduction: workers compute partials over
// disjoint index ranges, each writing its own partial slot, and a single
// combine step folds the partials after the pass barrier. No two workers
// ever write the same destination.
package reduce

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/swarm/buffer"
	"github.com/pthm-cable/swarm/dispatch"
)

// normalizeScale is the fixed divisor of the Normalize transform.
const normalizeScale = 100

var (
	// ErrInvalidLength is returned by New for lengths <= 0.
	ErrInvalidLength = errors.New("invalid length")

	// ErrLengthMismatch is returned when an input buffer does not match the
	// length the engine was constructed for.
	ErrLengthMismatch = errors.New("length mismatch")
)

// partial holds one worker's aggregate over its chunk.
type partial struct {
	sum      float64
	min, max float64
	set      bool
}

// Engine computes aggregates over buffers of a fixed length.
type Engine struct {
	pool     *dispatch.Pool
	n        int
	partials []partial
}

// New creates an engine for buffers of length n. A zero or negative length
// is rejected here so the aggregate operators never divide by zero.
func New(n int, pool *dispatch.Pool) (*Engine, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: length must be > 0, got %d", ErrInvalidLength, n)
	}
	return &Engine{
		pool:     pool,
		n:        n,
		partials: make([]partial, pool.Workers()),
	}, nil
}

// Len returns the buffer length the engine operates on.
func (e *Engine) Len() int {
	return e.n
}

func (e *Engine) checkLen(b *buffer.Buffer[float64]) error {
	if b.Len() != e.n {
		return fmt.Errorf("%w: buffer length %d, engine length %d", ErrLengthMismatch, b.Len(), e.n)
	}
	return nil
}

// run executes one chunked aggregation pass and returns the live partials.
func (e *Engine) run(data []float64) []partial {
	for i := range e.partials {
		e.partials[i] = partial{}
	}

	e.pool.Run(e.n, func(r dispatch.Range) {
		chunk := data[r.Start:r.End]
		e.partials[r.Chunk] = partial{
			sum: floats.Sum(chunk),
			min: floats.Min(chunk),
			max: floats.Max(chunk),
			set: true,
		}
	})

	live := e.partials[:0:0]
	for _, p := range e.partials {
		if p.set {
			live = append(live, p)
		}
	}
	return live
}

// Sum returns the arithmetic total of all elements.
func (e *Engine) Sum(in *buffer.Buffer[float64]) (float64, error) {
	if err := e.checkLen(in); err != nil {
		return 0, err
	}
	var sum float64
	for _, p := range e.run(in.Data()) {
		sum += p.sum
	}
	return sum, nil
}

// Average returns Sum / n.
func (e *Engine) Average(in *buffer.Buffer[float64]) (float64, error) {
	sum, err := e.Sum(in)
	if err != nil {
		return 0, err
	}
	return sum / float64(e.n), nil
}

// Min returns the true minimum over all elements.
func (e *Engine) Min(in *buffer.Buffer[float64]) (float64, error) {
	if err := e.checkLen(in); err != nil {
		return 0, err
	}
	partials := e.run(in.Data())
	min := partials[0].min
	for _, p := range partials[1:] {
		if p.min < min {
			min = p.min
		}
	}
	return min, nil
}

// Max returns the true maximum over all elements.
func (e *Engine) Max(in *buffer.Buffer[float64]) (float64, error) {
	if err := e.checkLen(in); err != nil {
		return 0, err
	}
	partials := e.run(in.Data())
	max := partials[0].max
	for _, p := range partials[1:] {
		if p.max > max {
			max = p.max
		}
	}
	return max, nil
}

// Normalize writes clamp(in[i]/100, 0, 1) to dst for every index. Fully
// elementwise; no cross-element dependency, so the pass needs no partials.
func (e *Engine) Normalize(dst, in *buffer.Buffer[float64]) error {
	if err := e.checkLen(in); err != nil {
		return err
	}
	if err := e.checkLen(dst); err != nil {
		return err
	}

	src := in.Data()
	out := dst.Data()
	e.pool.Run(e.n, func(r dispatch.Range) {
		for i := r.Start; i < r.End; i++ {
			v := src[i] / normalizeScale
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			out[i] = v
		}
	})
	return nil
}
