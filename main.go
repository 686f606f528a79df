// Command swarm runs the simulation kernels headless: one compute pass per
// engine per tick, telemetry windows in between. Rendering is an external
// concern; consumers read the position buffers and derived life ratios.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/dispatch"
	"github.com/pthm-cable/swarm/sim"
	"github.com/pthm-cable/swarm/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	workers := flag.Int("workers", 0, "Worker goroutines per pass (0 = GOMAXPROCS)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	pool := dispatch.NewPool(*workers)
	defer pool.Close()

	particles, err := sim.NewParticleEngine(cfg.Derived.ParticleCfg, pool)
	if err != nil {
		slog.Error("failed to construct particle engine", "error", err)
		os.Exit(1)
	}
	flock, err := sim.NewFlockEngine(cfg.Derived.FlockCfg, pool)
	if err != nil {
		slog.Error("failed to construct flock engine", "error", err)
		os.Exit(1)
	}

	collector, err := telemetry.NewCollector(statsWindowSec, particles.Count(), flock.Count(), pool)
	if err != nil {
		slog.Error("failed to construct collector", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to initialize output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	dt := cfg.Derived.DT32

	slog.Info("starting simulation",
		"particles", particles.Count(),
		"boids", flock.Count(),
		"dt", dt,
		"stats_window", statsWindowSec,
		"max_ticks", *maxTicks,
		"workers", pool.Workers(),
	)

	particles.Init()
	flock.Init()

	var tick int32
	var simTime float64
	for {
		perf.StartTick()

		perf.StartPhase(telemetry.PhaseParticles)
		respawns := particles.Step(dt)

		perf.StartPhase(telemetry.PhaseFlock)
		flock.Step(dt)

		perf.StartPhase(telemetry.PhaseTelemetry)
		tick++
		simTime += float64(dt)
		collector.RecordRespawns(respawns)

		if stats, ok := collector.Observe(tick, simTime, particles, flock); ok {
			if *logStats {
				stats.LogStats()
			}
			if err := output.WriteStats(stats); err != nil {
				slog.Error("failed to write stats", "error", err)
			}
			if err := output.WritePerf(perf.Stats(), tick); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}

		perf.EndTick()

		if *maxTicks > 0 && int(tick) >= *maxTicks {
			slog.Info("max ticks reached", "tick", tick, "sim_time", simTime)
			return
		}
	}
}
