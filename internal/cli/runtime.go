package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/haskel/studycost/internal/config"
	"github.com/haskel/studycost/internal/dataset"
	"github.com/haskel/studycost/internal/estimate"
	"github.com/haskel/studycost/internal/metrics"
	"github.com/haskel/studycost/internal/model"
	"github.com/haskel/studycost/internal/session"
)

// newEstimator loads the model artifact and checks it against the configured schema.
func newEstimator(cfg *config.Config, m *metrics.Metrics, log *slog.Logger) (*estimate.Estimator, error) {
	schema, err := cfg.Schema.BuildSchema()
	if err != nil {
		return nil, err
	}

	p, err := model.Load(cfg.Model.Path)
	if err != nil {
		return nil, err
	}

	var opts []estimate.Option
	if m != nil {
		opts = append(opts, estimate.WithRecorder(m))
		m.SetModel(p.Name(), schema.Version)
	}

	est, err := estimate.New(schema, p, estimate.RangePolicy(cfg.Schema.RangePolicy), log, opts...)
	if err != nil {
		return nil, fmt.Errorf("model %s does not fit schema %s: %w", cfg.Model.Path, schema.Version, err)
	}

	log.Info("model loaded",
		"model", p.Name(),
		"path", cfg.Model.Path,
		"schema", schema.Version,
		"features", len(p.Features()),
	)
	return est, nil
}

// loadDataset reads the EDA dataset. A nil dataset means none is configured.
func loadDataset(ctx context.Context, cfg config.DatasetConfig) (*dataset.Dataset, error) {
	var (
		rows   []dataset.Row
		source string
		err    error
	)

	switch cfg.Source {
	case "csv":
		source = "csv:" + cfg.Path
		rows, err = dataset.LoadCSV(cfg.Path)
	case "postgres":
		source = "postgres:" + cfg.Postgres.Table
		db, openErr := dataset.OpenPostgres(ctx, cfg.Postgres.DSN)
		if openErr != nil {
			return nil, openErr
		}
		defer db.Close()
		rows, err = dataset.LoadPostgres(ctx, db, cfg.Postgres.Table)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return dataset.New(source, rows, cfg.TopCountries)
}

// openSessionStore builds the configured session backend and starts any background work.
func openSessionStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (session.Store, error) {
	switch cfg.Session.Backend {
	case "file":
		store := session.NewFileStore(cfg.Session.DataDir, cfg.FlushInterval(), cfg.SessionTTL(), log)
		if err := store.Open(); err != nil {
			log.Warn("failed to load persisted sessions", "error", err)
		}
		store.Start(ctx)
		return store, nil

	case "redis":
		store := session.NewRedisStore(session.RedisOptions{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
			Prefix:   cfg.Session.Redis.Prefix,
			TTL:      cfg.SessionTTL(),
		})
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		return store, nil

	default:
		return session.NewMemoryStore(cfg.SessionTTL()), nil
	}
}

// reloader re-reads the config file and swaps in the model it names.
type reloader struct {
	mu      sync.Mutex
	cfgFile string
	est     *estimate.Estimator
	metrics *metrics.Metrics
	apply   func(*config.Config)
	log     *slog.Logger
}

func (r *reloader) Reload(ctx context.Context) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.metrics != nil {
		defer func() { r.metrics.ObserveReload(err) }()
	}

	cfg := config.Default()
	if r.cfgFile != "" {
		cfg, err = config.Load(r.cfgFile)
		if err != nil {
			return err
		}
	}

	p, err := model.Load(cfg.Model.Path)
	if err != nil {
		return err
	}
	if err := r.est.SetPredictor(p); err != nil {
		return fmt.Errorf("reloaded model rejected: %w", err)
	}
	if r.metrics != nil {
		r.metrics.SetModel(p.Name(), r.est.Schema().Version)
	}
	if r.apply != nil {
		r.apply(cfg)
	}

	r.log.Info("model reloaded", "model", p.Name(), "path", cfg.Model.Path)
	return nil
}
