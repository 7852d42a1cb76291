package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stigmergy/config"
	"github.com/pthm-cable/stigmergy/game"
	"github.com/pthm-cable/stigmergy/stream"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	streamAddr := flag.String("stream", "", "Serve frames over websocket on this address (overrides stream.addr)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *streamAddr != "" {
		cfg.Stream.Addr = *streamAddr
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		g, err := game.NewGameWithOptions(cfg, opts)
		if err != nil {
			slog.Error("failed to create game", "error", err)
			os.Exit(1)
		}
		defer g.Unload()
		startStream(ctx, cfg, g)

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"stats_window", cfg.Telemetry.StatsWindow,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
			"stream", cfg.Stream.Addr,
		)

		// Streaming clients get real-time pacing; otherwise run flat out
		var pace <-chan time.Time
		if cfg.Stream.Addr != "" && cfg.Screen.TargetFPS > 0 {
			ticker := time.NewTicker(time.Second / time.Duration(cfg.Screen.TargetFPS))
			defer ticker.Stop()
			pace = ticker.C
		}

		for {
			if pace != nil {
				select {
				case <-ctx.Done():
					return
				case <-pace:
				}
			} else if ctx.Err() != nil {
				return
			}

			g.UpdateHeadless()

			if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick())
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Stigmergy")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Unload()
	startStream(ctx, cfg, g)

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}

// startStream launches the websocket server when cfg.Stream.Addr is set and
// attaches it to g.
func startStream(ctx context.Context, cfg *config.Config, g *game.Game) {
	if cfg.Stream.Addr == "" {
		return
	}
	s := g.Sim()
	srv := stream.NewServer(s, stream.NewConfigMessage(s), cfg.Field.DepositAmount)
	g.AttachStream(srv)

	go func() {
		if err := srv.Run(ctx, cfg.Stream.Addr); err != nil {
			slog.Error("stream server stopped", "error", err)
		}
	}()
}
