package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/solrift/statfx/internal/config"
	"github.com/solrift/statfx/internal/db"
	"github.com/solrift/statfx/internal/effect"
	"github.com/solrift/statfx/internal/engine"
	"github.com/solrift/statfx/internal/event"
	"github.com/solrift/statfx/internal/feed"
	"github.com/solrift/statfx/internal/stats"
)

// Attribute is the demo stat set this server simulates.
type Attribute uint8

const (
	Health Attribute = iota
	HealthRegen
	HealthMax
	Strength

	attributeCount
)

const (
	defaultConfigPath = "config/statfxd.yaml"
	demoEntities      = 16
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := defaultConfigPath
	if p := os.Getenv("STATFX_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("statfxd starting", "log_level", cfg.LogLevel, "tick_millis", cfg.TickMillis)

	policies := effect.NewPolicyTable()
	for _, rule := range cfg.Stacking {
		p, err := effect.ParsePolicy(rule.Policy, rule.Max)
		if err != nil {
			return fmt.Errorf("stacking rule for %q: %w", rule.Identity, err)
		}
		policies.Stack(rule.Identity, p)
	}
	slog.Info("stacking policies loaded", "rules", policies.Len())

	bus := event.NewBus()
	world := engine.NewWorld[Attribute]()
	eng := engine.New(world, policies, bus)

	var repo *db.SnapshotRepository
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		repo = db.NewSnapshotRepository(database.Pool())
		if err := restoreWorld(ctx, repo, eng); err != nil {
			return fmt.Errorf("restoring world: %w", err)
		}
	}

	if world.Len() == 0 {
		if err := seedWorld(eng); err != nil {
			return fmt.Errorf("seeding world: %w", err)
		}
	}
	slog.Info("world ready", "entities", world.Len())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		interval := time.Duration(cfg.TickMillis) * time.Millisecond
		dt := float32(cfg.TickMillis) / 1000
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				eng.Tick(dt)
			}
		}
	})

	addr := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))
	mux := http.NewServeMux()
	mux.Handle("/feed", feed.NewHandler(bus))
	srv := &http.Server{Addr: addr, Handler: mux}

	g.Go(func() error {
		slog.Info("event feed listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving feed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if repo != nil {
		if err := saveWorld(context.Background(), repo, eng); err != nil {
			return fmt.Errorf("saving world: %w", err)
		}
		slog.Info("world snapshots saved", "entities", world.Len())
	}
	return nil
}

// seedWorld spawns the demo population: every entity gets a death floor, a
// health ceiling tracking its own HealthMax, and a periodic regen driven by
// its HealthRegen stat. Each entity after the first also bleeds health at a
// rate driven by the previous entity's Strength, exercising non-local
// magnitudes.
func seedWorld(eng *engine.Engine[Attribute]) error {
	var prev uint32
	for i := 0; i < demoEntities; i++ {
		ent, err := eng.World().Spawn(int(attributeCount), func(a Attribute) float32 {
			switch a {
			case Health, HealthMax:
				return 100
			case HealthRegen:
				return 2
			case Strength:
				return 5
			}
			return 0
		})
		if err != nil {
			return err
		}

		eng.AddEffect(ent.ID, effect.Effect[Attribute]{
			Identity:    "death_floor",
			Target:      Health,
			Calculation: effect.CalcLowerBound,
			Magnitude:   effect.Fixed[Attribute](0),
			Duration:    effect.Persistent(),
		})
		eng.AddEffect(ent.ID, effect.Effect[Attribute]{
			Identity:    "health_ceiling",
			Target:      Health,
			Calculation: effect.CalcUpperBound,
			Magnitude:   effect.FromStat(HealthMax, stats.DefaultScaling()),
			Duration:    effect.Persistent(),
		})
		eng.AddEffect(ent.ID, effect.Effect[Attribute]{
			Identity:    "regen",
			Target:      Health,
			Calculation: effect.CalcAdditive,
			Magnitude:   effect.FromStat(HealthRegen, stats.DefaultScaling()),
			Duration:    effect.Repeating(1),
		})
		if prev != 0 {
			drain := stats.DefaultScaling()
			drain.Multiplier = -0.2
			eng.AddEffect(ent.ID, effect.Effect[Attribute]{
				Identity:    "siphon",
				Target:      Health,
				Calculation: effect.CalcAdditive,
				Magnitude:   effect.FromRemoteStat(Strength, drain, prev),
				Duration:    effect.Continuous(),
			})
		}
		prev = ent.ID
	}
	return nil
}

func restoreWorld(ctx context.Context, repo *db.SnapshotRepository, eng *engine.Engine[Attribute]) error {
	ids, err := repo.ListEntityIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		snap, ok, err := repo.LoadEntity(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := eng.RestoreEntity(snap); err != nil {
			return err
		}
	}
	if len(ids) > 0 {
		slog.Info("world restored from snapshots", "entities", len(ids))
	}
	return nil
}

func saveWorld(ctx context.Context, repo *db.SnapshotRepository, eng *engine.Engine[Attribute]) error {
	for _, id := range eng.World().IDs() {
		snap, ok := eng.ExportEntity(id)
		if !ok {
			continue
		}
		if err := repo.SaveEntity(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
