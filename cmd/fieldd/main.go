package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/fieldstate/internal/api"
	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/engine"
	"github.com/danielpatrickdp/fieldstate/internal/store"
)

// #region config

type daemonConfig struct {
	Addr         string        `env:"FIELDSTATE_ADDR" envDefault:":8080"`
	DBPath       string        `env:"FIELDSTATE_DB" envDefault:"fieldstate.db"`
	ConfigPath   string        `env:"FIELDSTATE_CONFIG"`
	GraphPath    string        `env:"FIELDSTATE_GRAPH"`
	TickInterval time.Duration `env:"FIELDSTATE_TICK_INTERVAL" envDefault:"0"`
	Debug        bool          `env:"FIELDSTATE_DEBUG" envDefault:"false"`
}

// #endregion config

// #region main

func main() {
	var cfg daemonConfig
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("daemon failed", zap.Error(err))
	}
}

func run(cfg daemonConfig, logger *zap.Logger) error {
	engCfg := engine.DefaultConfig()
	if cfg.ConfigPath != "" {
		var err error
		engCfg, err = engine.LoadConfig(cfg.ConfigPath)
		if err != nil {
			return err
		}
	}

	topo := engCfg.Topology
	graphCfg := diffusion.BuildFractal(topo, 0.5, 0.25)
	if cfg.GraphPath != "" {
		var err error
		graphCfg, err = diffusion.LoadConfig(cfg.GraphPath)
		if err != nil {
			return err
		}
	}

	eng, err := engine.New(engCfg, graphCfg, logger)
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := restore(eng, st, logger); err != nil {
			return err
		}
	}

	srv := api.NewServer(eng, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TickInterval > 0 {
		go srv.RunTicker(ctx, cfg.TickInterval)
	}

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Handler()}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("db", cfg.DBPath),
			zap.Duration("tick_interval", cfg.TickInterval),
		)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Persist a final snapshot so the next start can skip the full replay.
	if st != nil {
		snap := eng.Snapshot()
		if _, err := st.SaveSnapshot(snap); err != nil {
			logger.Error("final snapshot", zap.Error(err))
		}
	}
	logger.Info("shutdown complete", zap.Uint64("tick", eng.CurrentTick()))
	return nil
}

// #endregion main

// #region restore

// restore rebuilds state from the database: a persisted journal is replayed
// and hash-verified; with no journal, the newest snapshot is loaded directly.
func restore(eng *engine.Engine, st *store.Store, logger *zap.Logger) error {
	events, err := st.LoadJournal()
	if err != nil {
		return err
	}
	if len(events) > 0 {
		snap, err := eng.Replay(events)
		if err != nil {
			return err
		}
		logger.Info("journal replayed",
			zap.Int("events", len(events)),
			zap.Uint64("tick", snap.Tick),
			zap.String("hash", snap.Hash()),
		)
		return nil
	}

	snap, versionID, err := st.LatestSnapshot()
	if errors.Is(err, store.ErrNoSnapshot) {
		logger.Info("no persisted state, starting from baseline")
		return nil
	}
	if err != nil {
		return err
	}
	if err := eng.Load(snap); err != nil {
		return err
	}
	logger.Info("snapshot loaded", zap.String("version_id", versionID), zap.Uint64("tick", snap.Tick))
	return nil
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// #endregion restore
