package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	"pixelguard/internal/consent"
	"pixelguard/internal/crypto"
	"pixelguard/internal/drift"
	"pixelguard/internal/guard"
	"pixelguard/internal/integrity"
	"pixelguard/internal/keys"
	"pixelguard/internal/memory"
	"pixelguard/internal/persist"
	"pixelguard/internal/persist/prefs"
	"pixelguard/internal/platform/config"
	"pixelguard/internal/platform/redis"
	"pixelguard/internal/spatial"
	"pixelguard/internal/warning"
	"pixelguard/internal/warning/report"
	kafkasink "pixelguard/internal/warning/sink/kafka"
	"pixelguard/internal/warning/sink/logsink"
	pgsink "pixelguard/internal/warning/sink/postgres"
	"pixelguard/pkg/platform/circuit"
	"pixelguard/pkg/platform/sentinel"
)

const historySize = 256

// app holds everything build wires together.
type app struct {
	log       *slog.Logger
	bus       *warning.Bus
	guard     *guard.Guard
	history   *warning.RingBuffer
	memory    *memory.Module
	spatial   *spatial.Detector
	positions *positions
	accepters []*consent.Accepter
	session   *session
	telemetry *kafkasink.Sink
	archive   *pgsink.Archive

	redis  *redis.Client
	db     *sql.DB
	kafka  *kgo.Client
	closer []io.Closer
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{log: log, positions: newPositions()}
	built := false
	defer func() {
		if !built {
			_ = a.Close()
		}
	}()

	warnMetrics := warning.NewMetrics(reg)
	a.bus = warning.NewBus(warning.WithLogger(log), warning.WithMetrics(warnMetrics))
	a.bus.Subscribe("log", logsink.New(log).Handle)
	a.history = warning.NewRingBuffer(historySize, nil)
	a.bus.Subscribe("history", a.history.Record)

	if err := a.connect(ctx, cfg); err != nil {
		return nil, err
	}
	if err := a.wireSinks(ctx, cfg, reg); err != nil {
		return nil, err
	}

	g, err := guard.New(a.bus, guard.WithLogger(log), guard.WithMetrics(guard.NewMetrics(reg)))
	if err != nil {
		return nil, err
	}
	a.guard = g

	if err := a.installMemory(cfg, reg); err != nil {
		return nil, err
	}
	if err := a.installDetectors(ctx, cfg, reg); err != nil {
		return nil, err
	}
	if err := a.installConsent(ctx, cfg); err != nil {
		return nil, err
	}
	built = true
	return a, nil
}

// connect opens the shared backends named in cfg.
func (a *app) connect(ctx context.Context, cfg config.Config) error {
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	a.redis = rc

	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.db = db
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
	}
	return nil
}

func (a *app) wireSinks(ctx context.Context, cfg config.Config, reg prometheus.Registerer) error {
	if cfg.Postgres.Archive {
		if a.db == nil {
			return fmt.Errorf("warning archive needs postgres dsn: %w", sentinel.ErrConfigurationMissing)
		}
		archive, err := pgsink.New(a.db)
		if err != nil {
			return err
		}
		if err := archive.Migrate(ctx); err != nil {
			return err
		}
		a.archive = archive
		a.bus.Subscribe("archive", archive.Record)
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return nil
	}
	cl, err := kafkasink.NewClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
	if err != nil {
		return err
	}
	a.kafka = cl
	if err := kafkasink.EnsureTopic(ctx, cl, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
		return err
	}

	opts := []kafkasink.Option{
		kafkasink.WithFlushInterval(cfg.Kafka.FlushEvery),
		kafkasink.WithBreaker(circuit.New("kafka")),
		kafkasink.WithLogger(a.log),
		kafkasink.WithMetrics(kafkasink.NewMetrics(reg)),
	}
	if cfg.Report.SigningKey != "" {
		signer, err := report.NewSigner([]byte(cfg.Report.SigningKey), cfg.Report.Issuer,
			report.WithSubject(cfg.Report.Subject),
			report.WithTTL(cfg.Report.TTL),
		)
		if err != nil {
			return err
		}
		opts = append(opts, kafkasink.WithSigner(signer))
	}
	sink, err := kafkasink.New(cl, cfg.Kafka.Topic, opts...)
	if err != nil {
		return err
	}
	a.telemetry = sink
	a.bus.Subscribe("kafka", sink.Record)
	return nil
}

func (a *app) installMemory(cfg config.Config, reg prometheus.Registerer) error {
	var keyOpts []keys.Option
	for cat, k := range cfg.Keys.Numeric {
		keyOpts = append(keyOpts, keys.WithNumeric(keys.Category(cat), k))
	}
	for cat, k := range cfg.Keys.Text {
		keyOpts = append(keyOpts, keys.WithText(keys.Category(cat), k))
	}
	registry, err := keys.New(keyOpts...)
	if err != nil {
		return fmt.Errorf("keys: %w", err)
	}

	opts := []memory.Option{
		memory.WithKeys(registry),
		memory.WithShadowing(cfg.Memory.Shadowing),
		memory.WithLogger(a.log),
		memory.WithMetrics(memory.NewMetrics(reg)),
	}
	for cat, eps := range cfg.Memory.Epsilons {
		opts = append(opts, memory.WithEpsilon(keys.Category(cat), eps))
	}
	m, err := memory.New(a.bus, opts...)
	if err != nil {
		return err
	}
	a.memory = m
	a.guard.Register(m)
	return nil
}

func (a *app) installDetectors(ctx context.Context, cfg config.Config, reg prometheus.Registerer) error {
	driftMetrics := drift.NewMetrics(reg)

	if cfg.Drift.Enabled {
		d, err := drift.New(a.bus,
			drift.WithInterval(cfg.Drift.Interval),
			drift.WithThreshold(cfg.Drift.Threshold),
			drift.WithMaxFalsePositives(cfg.Drift.MaxFalsePositives),
			drift.WithCooldown(cfg.Drift.Cooldown),
			drift.WithLogger(a.log),
			drift.WithMetrics(driftMetrics),
		)
		if err != nil {
			return err
		}
		a.guard.Register(d)
	}

	if cfg.Time.Enabled {
		opts := []drift.TimeOption{
			drift.WithCheckInterval(cfg.Time.Interval),
			drift.WithTolerance(cfg.Time.Tolerance),
			drift.WithTimeLogger(a.log),
			drift.WithTimeMetrics(driftMetrics),
		}
		if cfg.Time.Network {
			nc, err := drift.NewHTTPClock(cfg.Time.URL,
				drift.WithHTTPClient(&http.Client{Timeout: cfg.Time.Timeout}),
				drift.WithMethod(cfg.Time.Method),
				drift.WithBreaker(circuit.New("network-time")),
				drift.WithClockLogger(a.log),
				drift.WithClockMetrics(driftMetrics),
			)
			if err != nil {
				return err
			}
			opts = append(opts, drift.WithNetworkClock(nc))
		}
		td, err := drift.NewTimeDetector(a.bus, opts...)
		if err != nil {
			return err
		}
		a.guard.Register(td)
	}

	if cfg.Spatial.Enabled {
		sd, err := spatial.New(a.bus,
			spatial.WithCadence(cfg.Spatial.Cadence),
			spatial.WithDefaultMaxDistance(cfg.Spatial.MaxDistance),
			spatial.WithLogger(a.log),
			spatial.WithMetrics(spatial.NewMetrics(reg)),
		)
		if err != nil {
			return err
		}
		a.spatial = sd
		a.guard.Register(sd)
	}

	if cfg.Integrity.Enabled {
		loader, err := whitelistLoader(ctx, cfg.Integrity)
		if err != nil {
			return err
		}
		det, err := integrity.New(ctx, a.bus, loader, integrity.DefaultSource(),
			integrity.WithLogger(a.log),
			integrity.WithMetrics(integrity.NewMetrics(reg)),
		)
		if err != nil {
			return err
		}
		a.guard.Register(det)
	}
	return nil
}

func whitelistLoader(ctx context.Context, cfg config.Integrity) (integrity.Loader, error) {
	switch {
	case cfg.S3Bucket != "":
		return integrity.NewS3Loader(ctx, integrity.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Key:       cfg.S3Key,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	case cfg.WhitelistPath != "":
		return integrity.FileLoader{Path: cfg.WhitelistPath}, nil
	default:
		return nil, fmt.Errorf("integrity whitelist source: %w", sentinel.ErrConfigurationMissing)
	}
}

// prefsStore opens the preference backend named in cfg.
func (a *app) prefsStore(ctx context.Context, cfg config.Config) (prefs.Store, error) {
	switch cfg.Prefs.Backend {
	case "", "memory":
		return prefs.NewMemory(), nil
	case "sqlite":
		s, err := prefs.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.closer = append(a.closer, s)
		return s, nil
	case "redis":
		if a.redis == nil {
			return nil, fmt.Errorf("redis prefs need a redis url: %w", sentinel.ErrConfigurationMissing)
		}
		return prefs.NewRedis(a.redis.Client, prefs.WithKeyPrefix("pixelguard:prefs:"))
	case "postgres":
		if a.db == nil {
			return nil, fmt.Errorf("postgres prefs need a dsn: %w", sentinel.ErrConfigurationMissing)
		}
		s, err := prefs.NewPostgres(a.db)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("prefs backend %q: %w", cfg.Prefs.Backend, sentinel.ErrUnsupportedOperation)
	}
}

func (a *app) installConsent(ctx context.Context, cfg config.Config) error {
	store, err := a.prefsStore(ctx, cfg)
	if err != nil {
		return err
	}

	presenter := logPresenter{logger: a.log}
	privacy, err := consent.NewPrivacy(store, consent.WithPresenter(presenter), consent.WithLogger(a.log))
	if err != nil {
		return err
	}
	terms, err := consent.NewTerms(store, consent.WithPresenter(presenter), consent.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.accepters = []*consent.Accepter{privacy, terms}
	for _, acc := range a.accepters {
		a.guard.Register(acc)
		if _, err := acc.Prompt(ctx); err != nil {
			return err
		}
	}

	enc, err := crypto.ByName(crypto.Name(cfg.Prefs.Encryptor), cfg.Prefs.Password)
	if err != nil {
		return err
	}
	ser, err := persist.NewPrefs(store, sessionKey, persist.WithEncryptor(enc))
	if err != nil {
		return err
	}
	a.session, err = restoreSession(ctx, ser, a.memory, a.log)
	return err
}

// Close releases every backend. It is safe on a partially built app.
func (a *app) Close() error {
	var errs []error
	if a.guard != nil {
		errs = append(errs, a.guard.Close())
	}
	for _, c := range a.closer {
		errs = append(errs, c.Close())
	}
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}

// server collects what the diagnostics routes need.
func (a *app) server(adminToken string, reg *prometheus.Registry) *server {
	s := &server{
		logger:     a.log,
		guard:      a.guard,
		history:    a.history,
		archive:    a.archive,
		spatial:    a.spatial,
		positions:  a.positions,
		session:    a.session,
		adminToken: adminToken,
		registry:   reg,
	}
	for _, acc := range a.accepters {
		s.accepters = append(s.accepters, acc)
	}
	if a.redis != nil {
		s.checks = append(s.checks, healthCheck{name: "redis", fn: a.redis.Health})
	}
	if a.db != nil {
		s.checks = append(s.checks, healthCheck{name: "postgres", fn: a.db.PingContext})
	}
	return s
}

// logPresenter stands in for a UI: it logs the prompt so an operator can
// accept it over the admin API.
type logPresenter struct {
	logger *slog.Logger
}

func (p logPresenter) Present(ctx context.Context, prompt consent.Prompt) error {
	p.logger.InfoContext(ctx, "consent prompt pending",
		"document", string(prompt.Document),
		"url", prompt.URL,
	)
	return nil
}
