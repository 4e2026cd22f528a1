// Command worldsim generates a world, runs its history for a number of
// ticks, and archives the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/worldhistory/internal/api"
	"github.com/talgya/worldhistory/internal/config"
	"github.com/talgya/worldhistory/internal/engine"
	"github.com/talgya/worldhistory/internal/entropy"
	"github.com/talgya/worldhistory/internal/persistence"
	"github.com/talgya/worldhistory/internal/scenario"
	"github.com/talgya/worldhistory/internal/terrain"
	"github.com/talgya/worldhistory/internal/world"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worldsim failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── World config ──────────────────────────────────────────────────
	seed := cfg.Seed
	if seed == 0 {
		rng := entropy.NewClient(cfg.RandomOrgKey)
		seed = rng.Seed()
		slog.Info("seed chosen", "seed", seed, "random_org", rng.Enabled())
	}
	simCfg, err := cfg.SimulationConfig(seed)
	if err != nil {
		return fmt.Errorf("simulation config: %w", err)
	}
	store := world.NewStore(simCfg)

	if cfg.Scenario != "" {
		sc, err := scenario.Load(cfg.Scenario)
		if err != nil {
			return err
		}
		if err := sc.Apply(store); err != nil {
			return fmt.Errorf("apply scenario %s: %w", cfg.Scenario, err)
		}
		slog.Info("scenario loaded",
			"path", cfg.Scenario,
			"name", store.Config().Name(),
			"people", store.PeopleCount(),
			"places", store.PlaceCount(),
		)
	}
	seed = store.Config().Seed()

	// ── World map (deterministic from seed) ───────────────────────────
	size := terrain.Size{Width: cfg.MapWidth, Height: cfg.MapHeight}
	slog.Info("generating world map...", "width", size.Width, "height", size.Height, "workers", cfg.Workers)
	start := time.Now()
	tiles, err := terrain.SingleContinent(ctx, seed, size, cfg.Workers)
	if err != nil {
		return fmt.Errorf("generate terrain: %w", err)
	}
	tiles.Apply(store)

	worldMap := store.TileMap()
	for t, c := range worldMap.TerrainCounts() {
		slog.Info("terrain", "type", world.TerrainName(t), "count", humanize.Comma(int64(c)))
	}
	slog.Info("world map generated", "tiles", humanize.Comma(int64(worldMap.TileCount())), "took", time.Since(start).Round(time.Millisecond))

	if cfg.Settlements {
		placed := world.PlaceSettlements(worldMap, seed, world.DefaultPlacementConfig())
		n := placed.Len()
		placed.Apply(store)
		slog.Info("settlements placed", "count", n)
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── HTTP API ──────────────────────────────────────────────────────
	var apiServer *api.Server
	if cfg.APIPort > 0 {
		apiServer = &api.Server{DB: db, Port: cfg.APIPort, CORSOrigins: cfg.CORSOrigins}
		apiServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			apiServer.Shutdown(shutdownCtx)
		}()
	}

	// ── Simulation ────────────────────────────────────────────────────
	// The store belongs to the worker from Execute until the run is frozen.
	fmt.Printf("Running %s steps of history %s over %s entities... (Ctrl+C to stop)\n",
		humanize.Comma(int64(store.Config().IncrementsForCompletion)),
		store.Config().Direction(),
		humanize.Comma(int64(store.EntityCount())),
	)
	ctrl := engine.NewController(store)
	boundary, err := ctrl.Execute()
	if err != nil {
		return err
	}
	if apiServer != nil {
		apiServer.Publish(boundary)
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	}

	if err := supervise(ctx, ctrl, boundary, cfg.ProgressInterval); err != nil {
		return err
	}

	// ── Archive ───────────────────────────────────────────────────────
	frozen, err := ctrl.Store()
	if err != nil {
		return err
	}
	snap, err := boundary.Snapshot()
	if err != nil {
		return err
	}
	if err := db.SaveWorldState(frozen, snap); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}

	alive := 0
	for _, p := range frozen.People() {
		if p.State == world.Alive {
			alive++
		}
	}
	fmt.Printf("History complete: %s of %s steps, %s people (%s alive), %s places. Run %s archived.\n",
		humanize.Comma(int64(snap.StepsComplete)),
		humanize.Comma(int64(snap.StepsTotal)),
		humanize.Comma(int64(frozen.PeopleCount())),
		humanize.Comma(int64(alive)),
		humanize.Comma(int64(frozen.PlaceCount())),
		snap.RunID,
	)
	return nil
}

// supervise waits for the run to finish, logging progress every interval.
// A cancelled ctx freezes the run early.
func supervise(ctx context.Context, ctrl *engine.Controller, b *engine.Boundary, interval time.Duration) error {
	for {
		waitCtx, cancel := context.WithTimeout(ctx, interval)
		err := ctrl.Wait(waitCtx)
		cancel()

		switch {
		case err == nil:
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			logProgress(b)
		case ctx.Err() != nil:
			slog.Info("received signal, freezing simulation")
			return ctrl.Freeze()
		default:
			return err
		}
	}
}

func logProgress(b *engine.Boundary) {
	snap, err := b.Snapshot()
	if err != nil {
		slog.Error("progress unavailable", "error", err)
		return
	}
	attrs := []any{
		"run", snap.RunID,
		"progress", fmt.Sprintf("%.1f%%", snap.Progress()*100),
		"steps", snap.StepsComplete,
	}
	if n := len(snap.TickSeconds); n > 0 {
		attrs = append(attrs,
			"last_tick", humanize.SIWithDigits(snap.TickSeconds[n-1], 2, "s"),
			"entities", humanize.Comma(int64(snap.Entities[n-1])),
		)
	}
	slog.Info("simulation progress", attrs...)
}
