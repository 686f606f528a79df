package sim

import (
	"fmt"

	"github.com/pthm-cable/swarm/buffer"
	"github.com/pthm-cable/swarm/dispatch"
	"github.com/pthm-cable/swarm/vec"
)

// ParticleConfig holds the lifecycle engine parameters. Immutable once the
// engine is constructed; all visual variety comes from here, not from code
// branches in the update.
type ParticleConfig struct {
	Count       int
	BoundsMin   vec.V3
	BoundsMax   vec.V3
	Lifetime    float32
	Gravity     vec.V3
	VelocityMin vec.V3
	VelocityMax vec.V3
}

// DefaultParticleConfig returns the standard particle fountain parameters.
// Count is left zero and must be set by the caller.
func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		BoundsMin:   vec.V3{X: -5, Y: 0, Z: -5},
		BoundsMax:   vec.V3{X: 5, Y: 10, Z: 5},
		Lifetime:    5.0,
		Gravity:     vec.V3{X: 0, Y: -9.8, Z: 0},
		VelocityMin: vec.V3{X: -1, Y: 2, Z: -1},
		VelocityMax: vec.V3{X: 1, Y: 5, Z: 1},
	}
}

// Validate checks the field constraints.
func (c ParticleConfig) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("%w: count must be > 0, got %d", ErrInvalidConfig, c.Count)
	}
	// A non-positive lifetime would respawn every element every tick.
	if c.Lifetime <= 0 {
		return fmt.Errorf("%w: lifetime must be > 0, got %v", ErrInvalidConfig, c.Lifetime)
	}
	if err := validBox("bounds", c.BoundsMin, c.BoundsMax); err != nil {
		return err
	}
	return validBox("velocity range", c.VelocityMin, c.VelocityMax)
}

// validBox rejects boxes where min exceeds max on any axis.
func validBox(name string, lo, hi vec.V3) error {
	if lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z {
		return fmt.Errorf("%w: %s min %+v exceeds max %+v", ErrInvalidConfig, name, lo, hi)
	}
	return nil
}

// ParticleEngine maintains a population of particles cycling through spawn,
// ballistic motion, expiry and respawn, forever. Expiry is resolved inside
// the same pass that detects it; no dead state is ever observable.
type ParticleEngine struct {
	cfg  ParticleConfig
	pool *dispatch.Pool

	positions  *buffer.Buffer[vec.V3]
	velocities *buffer.Buffer[vec.V3]
	life       *buffer.Buffer[float32]

	pass          uint32 // seeds respawn sampling, bumped every Step
	chunkRespawns []int
}

// NewParticleEngine allocates buffers for cfg.Count particles. The buffers
// are uninitialized until Init runs.
func NewParticleEngine(cfg ParticleConfig, pool *dispatch.Pool) (*ParticleEngine, error) {
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
	life, err := buffer.New[float32](cfg.Count)
	if err != nil {
		return nil, err
	}

	return &ParticleEngine{
		cfg:           cfg,
		pool:          pool,
		positions:     positions,
		velocities:    velocities,
		life:          life,
		chunkRespawns: make([]int, pool.Workers()),
	}, nil
}

// Count returns the fixed population size.
func (e *ParticleEngine) Count() int {
	return e.cfg.Count
}

// Init populates every element: position uniform inside the bounds, velocity
// uniform inside the velocity range, and remaining life staggered across
// [0, lifetime] so the population does not expire all at once. Deterministic
// for a given configuration.
func (e *ParticleEngine) Init() {
	cfg := &e.cfg
	pos := e.positions.Data()
	vel := e.velocities.Data()
	life := e.life.Data()

	e.pool.Run(cfg.Count, func(r dispatch.Range) {
		for i := r.Start; i < r.End; i++ {
			idx := uint32(i)
			pos[i] = vec.Lerp3(cfg.BoundsMin, cfg.BoundsMax,
				sampleUnit(idx, streamSpawnX, 0),
				sampleUnit(idx, streamSpawnY, 0),
				sampleUnit(idx, streamSpawnZ, 0))
			vel[i] = sampleVelocity(idx, 0, cfg.VelocityMin, cfg.VelocityMax)
			life[i] = sampleRange(idx, streamLife, 0, 0, cfg.Lifetime)
		}
	})
	e.pass = 0
}

// Step advances every particle by dt: gravity, integrate, decrement life,
// and respawn expired elements at a random point on the top face of the
// bounds. Returns the number of elements respawned this tick.
func (e *ParticleEngine) Step(dt float32) int {
	cfg := &e.cfg
	pos := e.positions.Data()
	vel := e.velocities.Data()
	life := e.life.Data()

	e.pass++
	pass := e.pass
	for i := range e.chunkRespawns {
		e.chunkRespawns[i] = 0
	}

	e.pool.Run(cfg.Count, func(r dispatch.Range) {
		respawned := 0
		for i := r.Start; i < r.End; i++ {
			v := vel[i].Add(cfg.Gravity.Scale(dt))
			p := pos[i].Add(v.Scale(dt))
			l := life[i] - dt

			if l < 0 {
				idx := uint32(i)
				p = vec.V3{
					X: sampleRange(idx, streamSpawnX, pass, cfg.BoundsMin.X, cfg.BoundsMax.X),
					Y: cfg.BoundsMax.Y,
					Z: sampleRange(idx, streamSpawnZ, pass, cfg.BoundsMin.Z, cfg.BoundsMax.Z),
				}
				v = sampleVelocity(idx, pass, cfg.VelocityMin, cfg.VelocityMax)
				l = cfg.Lifetime
				respawned++
			}

			vel[i] = v
			pos[i] = p
			life[i] = l
		}
		e.chunkRespawns[r.Chunk] += respawned
	})

	total := 0
	for _, n := range e.chunkRespawns {
		total += n
	}
	return total
}

// sampleVelocity draws a uniform velocity from the configured range.
func sampleVelocity(idx, pass uint32, lo, hi vec.V3) vec.V3 {
	return vec.Lerp3(lo, hi,
		sampleUnit(idx, streamVelX, pass),
		sampleUnit(idx, streamVelY, pass),
		sampleUnit(idx, streamVelZ, pass))
}

// Positions returns the position buffer for read-only consumption between
// passes (the rendering collaborator's placement input).
func (e *ParticleEngine) Positions() []vec.V3 {
	return e.positions.Data()
}

// Velocities returns the velocity buffer for read-only consumption between
// passes.
func (e *ParticleEngine) Velocities() []vec.V3 {
	return e.velocities.Data()
}

// RemainingLife returns the life buffer for read-only consumption between
// passes.
func (e *ParticleEngine) RemainingLife() []float32 {
	return e.life.Data()
}

// LifeRatios fills dst with remainingLife/lifetime per element, the derived
// value the rendering collaborator uses for color and size. dst is grown as
// needed; the filled slice is returned.
func (e *ParticleEngine) LifeRatios(dst []float32) []float32 {
	life := e.life.Data()
	if cap(dst) < len(life) {
		dst = make([]float32, len(life))
	}
	dst = dst[:len(life)]

	inv := 1 / e.cfg.Lifetime
	for i, l := range life {
		dst[i] = l * inv
	}
	return dst
}
