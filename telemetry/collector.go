package telemetry

import (
	"github.com/pthm-cable/swarm/buffer"
	"github.com/pthm-cable/swarm/dispatch"
	"github.com/pthm-cable/swarm/reduce"
	"github.com/pthm-cable/swarm/sim"
)

// Collector accumulates per-tick events and samples the engine buffers at
// stats window boundaries. Buffer aggregates go through the reduction
// engine; only spread statistics fall back to a direct gonum pass.
type Collector struct {
	windowSec  float64
	nextWindow float64
	respawns   int

	lifeScratch []float32

	lifeBuf   *buffer.Buffer[float64]
	heightBuf *buffer.Buffer[float64]
	speedBuf  *buffer.Buffer[float64]

	lifeReduce  *reduce.Engine
	speedReduce *reduce.Engine
}

// NewCollector creates a collector for engines of the given populations.
func NewCollector(windowSec float64, particleCount, boidCount int, pool *dispatch.Pool) (*Collector, error) {
	lifeBuf, err := buffer.New[float64](particleCount)
	if err != nil {
		return nil, err
	}
	heightBuf, err := buffer.New[float64](particleCount)
	if err != nil {
		return nil, err
	}
	speedBuf, err := buffer.New[float64](boidCount)
	if err != nil {
		return nil, err
	}

	lifeReduce, err := reduce.New(particleCount, pool)
	if err != nil {
		return nil, err
	}
	speedReduce, err := reduce.New(boidCount, pool)
	if err != nil {
		return nil, err
	}

	return &Collector{
		windowSec:   windowSec,
		nextWindow:  windowSec,
		lifeBuf:     lifeBuf,
		heightBuf:   heightBuf,
		speedBuf:    speedBuf,
		lifeReduce:  lifeReduce,
		speedReduce: speedReduce,
	}, nil
}

// RecordRespawns accumulates respawn events for the current window.
func (c *Collector) RecordRespawns(n int) {
	c.respawns += n
}

// Observe checks for a window boundary and, when one is crossed, samples
// both engines and returns the window's stats. The bool reports whether a
// window closed this tick.
func (c *Collector) Observe(tick int32, simTime float64, particles *sim.ParticleEngine, flock *sim.FlockEngine) (WindowStats, bool) {
	if simTime < c.nextWindow {
		return WindowStats{}, false
	}
	c.nextWindow += c.windowSec

	stats := WindowStats{
		WindowEndTick: tick,
		SimTimeSec:    simTime,
		ParticleCount: particles.Count(),
		Respawns:      c.respawns,
		BoidCount:     flock.Count(),
	}
	c.respawns = 0

	// Particle life ratios and heights.
	c.lifeScratch = particles.LifeRatios(c.lifeScratch)
	life := c.lifeBuf.Data()
	for i, r := range c.lifeScratch {
		life[i] = float64(r)
	}
	height := c.heightBuf.Data()
	for i, p := range particles.Positions() {
		height[i] = float64(p.Y)
	}

	stats.LifeRatioMean, _ = c.lifeReduce.Average(c.lifeBuf)
	stats.LifeRatioMin, _ = c.lifeReduce.Min(c.lifeBuf)
	stats.LifeRatioMax, _ = c.lifeReduce.Max(c.lifeBuf)
	stats.HeightMean, _ = c.lifeReduce.Average(c.heightBuf)

	// Boid speeds.
	speed := c.speedBuf.Data()
	for i, v := range flock.Velocities() {
		speed[i] = float64(v.Length())
	}
	stats.BoidSpeedMax, _ = c.speedReduce.Max(c.speedBuf)
	stats.BoidSpeedMean, stats.BoidSpeedStd = SpeedSpread(speed)

	return stats, true
}
