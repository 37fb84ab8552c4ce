package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/whalefx/fountain/internal/config"
	coresys "github.com/whalefx/fountain/internal/core/system"
	"github.com/whalefx/fountain/internal/data"
	"github.com/whalefx/fountain/internal/geom"
	"github.com/whalefx/fountain/internal/metrics"
	"github.com/whalefx/fountain/internal/physics"
	"github.com/whalefx/fountain/internal/system"
	"github.com/whalefx/fountain/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Fountain  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        粒子噴泉 · Go 模擬引擎             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	// Use display width for CJK characters (each CJK char = 2 columns)
	displayWidth := 0
	for _, r := range title {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	lineLen := 46 - displayWidth - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main engine logic ──────────────────────────────────────────────

func run() error {
	// 1. Load config (+ optional emitter scenario)
	cfgPath := "config/fountain.toml"
	if p := os.Getenv("FOUNTAIN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Simulation.Scenario != "" {
		sc, err := data.LoadScenario(cfg.Simulation.Scenario)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		if err := sc.Apply(cfg); err != nil {
			return fmt.Errorf("apply scenario: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate merged config: %w", err)
		}
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Metrics
	mets, err := metrics.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if addr := cfg.Metrics.ListenAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", mets.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Warn("metrics 伺服器停止", zap.Error(err))
			}
		}()
		printOK(fmt.Sprintf("metrics 於 %s/metrics", addr))
	}

	// 4. Assemble the simulation
	printSection("模擬組裝")

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := geom.NewRand(seed)

	state := world.NewState(cfg.Physics.ParticleRadius)

	var backend physics.Backend
	switch cfg.Simulation.Backend {
	case "internal":
		backend = physics.NewIntegrator(cfg.Physics, state)
	case "delegated":
		// The headless binary ships no rigid-body engine; delegation is for
		// hosts embedding the engine as a library.
		return fmt.Errorf("backend %q requires an external rigid-body engine; run the internal backend or embed the library", cfg.Simulation.Backend)
	}

	sched := &system.SchedulerState{}
	runner := coresys.NewRunner()
	runner.Register(system.NewSpawnSystem(cfg.Spawn, cfg.Physics.ParticleRadius, state, sched, rng, backend, mets, log))
	runner.Register(system.NewPhysicsSystem(backend))
	runner.Register(system.NewReapSystem(state, backend))
	runner.Register(system.NewCleanupSystem(state, mets, log))

	printOK(fmt.Sprintf("後端: %s", cfg.Simulation.Backend))
	printOK(fmt.Sprintf("批次 %d 顆 / %s，壽命 %s", cfg.Spawn.BatchSize, cfg.Spawn.Interval, cfg.Spawn.Lifetime))

	// 5. Run the tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("引擎就緒")
	printReady(fmt.Sprintf("模擬迴圈啟動 (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	// Population report once per second regardless of tick rate.
	reportInterval := int(time.Second / cfg.Simulation.TickRate)
	if reportInterval < 1 {
		reportInterval = 1
	}
	tickCount := 0

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			runner.Tick(start, cfg.Simulation.TickRate)
			mets.ObserveTick(time.Since(start))

			tickCount++
			if tickCount%reportInterval == 0 {
				log.Info("粒子數", zap.Int("live", state.Live()))
			}
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			log.Info("引擎已停止", zap.Int("live", state.Live()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
