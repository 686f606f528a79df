// Package telemetry aggregates simulation state into windowed statistics and
// writes them to structured logs and CSV experiment output. It consumes only
// the engines' read-only output surface: position buffers, velocity buffers,
// and derived life ratios.
package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowEndTick int32   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Particle lifecycle
	ParticleCount int     `csv:"particles"`
	Respawns      int     `csv:"respawns"` // during the window
	LifeRatioMean float64 `csv:"life_mean"`
	LifeRatioMin  float64 `csv:"life_min"`
	LifeRatioMax  float64 `csv:"life_max"`
	HeightMean    float64 `csv:"height_mean"`

	// Flocking
	BoidCount     int     `csv:"boids"`
	BoidSpeedMean float64 `csv:"speed_mean"`
	BoidSpeedMax  float64 `csv:"speed_max"`
	BoidSpeedStd  float64 `csv:"speed_std"`
}

// SpeedSpread computes mean and standard deviation of a speed sample.
func SpeedSpread(speeds []float64) (mean, std float64) {
	if len(speeds) == 0 {
		return 0, 0
	}
	mean = stat.Mean(speeds, nil)
	if len(speeds) > 1 {
		std = stat.StdDev(speeds, nil)
	}
	return mean, std
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.ParticleCount),
		slog.Int("respawns", s.Respawns),
		slog.Float64("life_mean", s.LifeRatioMean),
		slog.Float64("life_min", s.LifeRatioMin),
		slog.Float64("life_max", s.LifeRatioMax),
		slog.Float64("height_mean", s.HeightMean),
		slog.Int("boids", s.BoidCount),
		slog.Float64("speed_mean", s.BoidSpeedMean),
		slog.Float64("speed_max", s.BoidSpeedMax),
		slog.Float64("speed_std", s.BoidSpeedStd),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
