package sim

import (
	"fmt"

	"github.com/pthm-cable/swarm/buffer"
	"github.com/pthm-cable/swarm/dispatch"
	"github.com/pthm-cable/swarm/vec"
)

// distEpsilon guards the separation term against coincident boids.
const distEpsilon = 1e-4

// gridThreshold is the population above which neighbor queries go through
// the spatial grid instead of the full O(n²) scan.
const gridThreshold = 256

// FlockConfig holds the flocking engine parameters.
type FlockConfig struct {
	Count            int
	PerceptionRadius float32
	Separation       float32
	Alignment        float32
	Cohesion         float32
	MaxSpeed         float32
	MaxForce         float32
	WorldBound       float32 // world half-extent; positions wrap at ±WorldBound
}

// DefaultFlockConfig returns the standard boid parameters. Count is left
// zero and must be set by the caller.
func DefaultFlockConfig() FlockConfig {
	return FlockConfig{
		PerceptionRadius: 2.5,
		Separation:       1.5,
		Alignment:        1.0,
		Cohesion:         1.0,
		MaxSpeed:         3.0,
		MaxForce:         0.5,
		WorldBound:       20,
	}
}

// Validate checks the field constraints.
func (c FlockConfig) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("%w: count must be > 0, got %d", ErrInvalidConfig, c.Count)
	}
	if c.PerceptionRadius <= 0 {
		return fmt.Errorf("%w: perception radius must be > 0, got %v", ErrInvalidConfig, c.PerceptionRadius)
	}
	if c.MaxSpeed <= 0 {
		return fmt.Errorf("%w: max speed must be > 0, got %v", ErrInvalidConfig, c.MaxSpeed)
	}
	if c.MaxForce < 0 {
		return fmt.Errorf("%w: max force must be >= 0, got %v", ErrInvalidConfig, c.MaxForce)
	}
	if c.WorldBound <= 0 {
		return fmt.Errorf("%w: world bound must be > 0, got %v", ErrInvalidConfig, c.WorldBound)
	}
	return nil
}

// FlockEngine steers a fixed population of boids toward separation from,
// alignment with, and cohesion toward neighbors inside the perception
// radius. Each pass reads neighbor state from snapshot buffers taken at the
// start of the pass, so workers never observe another worker's writes.
type FlockEngine struct {
	cfg  FlockConfig
	pool *dispatch.Pool

	positions  *buffer.Buffer[vec.V3]
	velocities *buffer.Buffer[vec.V3]
	prevPos    *buffer.Buffer[vec.V3]
	prevVel    *buffer.Buffer[vec.V3]

	grid      *uniformGrid
	forceGrid bool // test hook: use the grid below gridThreshold
	scratches [][]neighbor
}

// NewFlockEngine allocates buffers for cfg.Count boids. The buffers are
// uninitialized until Init runs.
func NewFlockEngine(cfg FlockConfig, pool *dispatch.Pool) (*FlockEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	positions, err := buffer.New[vec.V3](cfg.Count)
	if err != nil {
		return nil, err
	}
	velocities, err := buffer.New[vec.V3](cfg.Count)
	if err != nil {
		return nil, err
	}

	e := &FlockEngine{
		cfg:        cfg,
		pool:       pool,
		positions:  positions,
		velocities: velocities,
		prevPos:    positions.Clone(),
		prevVel:    velocities.Clone(),
		scratches:  make([][]neighbor, pool.Workers()),
	}
	for i := range e.scratches {
		e.scratches[i] = make([]neighbor, 0, 64)
	}

	if cfg.Count >= gridThreshold {
		e.grid = newUniformGrid(cfg.WorldBound, cfg.PerceptionRadius)
	}
	return e, nil
}

// Count returns the fixed population size.
func (e *FlockEngine) Count() int {
	return e.cfg.Count
}

// Init scatters the boids uniformly across the world and gives each a
// random sub-maximal velocity. Deterministic for a given configuration.
func (e *FlockEngine) Init() {
	cfg := &e.cfg
	pos := e.positions.Data()
	vel := e.velocities.Data()

	lo := vec.V3{X: -cfg.WorldBound, Y: -cfg.WorldBound, Z: -cfg.WorldBound}
	hi := lo.Scale(-1)
	vmax := cfg.MaxSpeed * 0.5
	vlo := vec.V3{X: -vmax, Y: -vmax, Z: -vmax}
	vhi := vlo.Scale(-1)

	e.pool.Run(cfg.Count, func(r dispatch.Range) {
		for i := r.Start; i < r.End; i++ {
			idx := uint32(i)
			pos[i] = vec.Lerp3(lo, hi,
				sampleUnit(idx, streamSpawnX, 0),
				sampleUnit(idx, streamSpawnY, 0),
				sampleUnit(idx, streamSpawnZ, 0))
			vel[i] = sampleVelocity(idx, 0, vlo, vhi)
		}
	})
}

// SetPosition overwrites one boid's position (scenario setup, host-driven
// placement). Index-checked; not for use during a pass.
func (e *FlockEngine) SetPosition(i int, p vec.V3) error {
	return e.positions.Set(i, p)
}

// SetVelocity overwrites one boid's velocity.
func (e *FlockEngine) SetVelocity(i int, v vec.V3) error {
	return e.velocities.Set(i, v)
}

// Step advances every boid by dt: accumulate separation/alignment/cohesion
// over neighbors within the perception radius, steer by at most
// maxForce·dt, rescale-clamp speed to maxSpeed, integrate, and wrap each
// coordinate at ±worldBound.
func (e *FlockEngine) Step(dt float32) {
	cfg := &e.cfg
	n := cfg.Count

	// Snapshot pass inputs. Workers read only prevPos/prevVel for other
	// elements and write only their own index in the live buffers.
	e.prevPos.CopyFrom(e.positions)
	e.prevVel.CopyFrom(e.velocities)

	prevPos := e.prevPos.Data()
	prevVel := e.prevVel.Data()
	pos := e.positions.Data()
	vel := e.velocities.Data()

	useGrid := e.grid != nil || e.forceGrid
	if useGrid {
		if e.grid == nil {
			e.grid = newUniformGrid(cfg.WorldBound, cfg.PerceptionRadius)
		}
		e.grid.clear()
		for i := 0; i < n; i++ {
			e.grid.insert(int32(i), prevPos[i])
		}
	}

	e.pool.Run(n, func(r dispatch.Range) {
		scratch := &e.scratches[r.Chunk]
		for i := r.Start; i < r.End; i++ {
			pi := prevPos[i]
			v := prevVel[i]

			var sep, align, center vec.V3
			neighbors := 0

			if useGrid {
				*scratch = e.grid.queryInto((*scratch)[:0], pi, cfg.PerceptionRadius, int32(i), prevPos)
				for _, nb := range *scratch {
					sep = sep.Add(nb.Diff.Normalized().Scale(1 / max(nb.Dist, distEpsilon)))
					align = align.Add(prevVel[nb.Idx])
					center = center.Add(prevPos[nb.Idx])
					neighbors++
				}
			} else {
				for j := 0; j < n; j++ {
					if j == i {
						continue
					}
					diff := pi.Sub(prevPos[j])
					dist := diff.Length()
					if dist >= cfg.PerceptionRadius {
						continue
					}
					sep = sep.Add(diff.Normalized().Scale(1 / max(dist, distEpsilon)))
					align = align.Add(prevVel[j])
					center = center.Add(prevPos[j])
					neighbors++
				}
			}

			if neighbors > 0 {
				inv := 1 / float32(neighbors)
				sep = sep.Scale(inv)
				align = align.Scale(inv)
				cohesion := center.Scale(inv).Sub(pi).Normalized()

				steer := sep.Scale(cfg.Separation).
					Add(align.Scale(cfg.Alignment)).
					Add(cohesion.Scale(cfg.Cohesion))
				v = v.Add(steer.Scale(cfg.MaxForce * dt))
			}

			v = v.ClampLength(cfg.MaxSpeed)
			p := pi.Add(v.Scale(dt))
			p.X = wrapCoord(p.X, cfg.WorldBound)
			p.Y = wrapCoord(p.Y, cfg.WorldBound)
			p.Z = wrapCoord(p.Z, cfg.WorldBound)

			vel[i] = v
			pos[i] = p
		}
	})
}

// wrapCoord applies the toroidal boundary: past +bound re-enter at -bound
// and vice versa.
func wrapCoord(v, bound float32) float32 {
	if v > bound {
		return -bound
	}
	if v < -bound {
		return bound
	}
	return v
}

// Positions returns the position buffer for read-only consumption between
// passes.
func (e *FlockEngine) Positions() []vec.V3 {
	return e.positions.Data()
}

// Velocities returns the velocity buffer for read-only consumption between
// passes.
func (e *FlockEngine) Velocities() []vec.V3 {
	return e.velocities.Data()
}
