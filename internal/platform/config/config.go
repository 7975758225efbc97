// Package config loads guardd settings. An optional YAML file named by
// PIXELGUARD_CONFIG is applied over the defaults first; PIXELGUARD_*
// environment variables override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "PIXELGUARD_"

// Server captures diagnostics HTTP configuration.
type Server struct {
	Addr string `yaml:"addr"`
	// AdminToken guards mutating routes. Empty disables them.
	AdminToken string `yaml:"admin_token"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Tick configures the host loop driving the detectors.
type Tick struct {
	Rate      time.Duration `yaml:"rate"`
	FixedRate time.Duration `yaml:"fixed_rate"`
	MaxDelta  time.Duration `yaml:"max_delta"`
}

// Keys overrides factory obfuscation keys by category name.
type Keys struct {
	Numeric map[string]int64  `yaml:"numeric"`
	Text    map[string]string `yaml:"text"`
}

type Memory struct {
	Shadowing bool               `yaml:"shadowing"`
	Epsilons  map[string]float64 `yaml:"epsilons"`
}

type Drift struct {
	Enabled           bool          `yaml:"enabled"`
	Interval          time.Duration `yaml:"interval"`
	Threshold         time.Duration `yaml:"threshold"`
	MaxFalsePositives int           `yaml:"max_false_positives"`
	Cooldown          int           `yaml:"cooldown"`
}

type Time struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval"`
	Tolerance time.Duration `yaml:"tolerance"`
	Network   bool          `yaml:"network"`
	URL       string        `yaml:"url"`
	Method    string        `yaml:"method"`
	Timeout   time.Duration `yaml:"timeout"`
}

type Spatial struct {
	Enabled     bool          `yaml:"enabled"`
	Cadence     time.Duration `yaml:"cadence"`
	MaxDistance float64       `yaml:"max_distance"`
}

// Integrity picks the whitelist resource. S3 is used when Bucket is set,
// otherwise WhitelistPath.
type Integrity struct {
	Enabled       bool   `yaml:"enabled"`
	WhitelistPath string `yaml:"whitelist_path"`
	S3Region      string `yaml:"s3_region"`
	S3Bucket      string `yaml:"s3_bucket"`
	S3Key         string `yaml:"s3_key"`
	S3Endpoint    string `yaml:"s3_endpoint"`
	S3PathStyle   bool   `yaml:"s3_path_style"`
}

// Prefs selects the preference backend: memory, sqlite, redis or postgres.
type Prefs struct {
	Backend string `yaml:"backend"`
	// Encryptor protects serialized option blobs, see crypto.Name.
	Encryptor string `yaml:"encryptor"`
	Password  string `yaml:"password"`
}

type Redis struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
	// Archive stores every warning in PostgreSQL.
	Archive bool `yaml:"archive"`
}

type SQLite struct {
	Path string `yaml:"path"`
}

type Kafka struct {
	Brokers     []string      `yaml:"brokers"`
	Topic       string        `yaml:"topic"`
	ClientID    string        `yaml:"client_id"`
	Partitions  int32         `yaml:"partitions"`
	Replication int16         `yaml:"replication"`
	FlushEvery  time.Duration `yaml:"flush_every"`
}

type Report struct {
	SigningKey string        `yaml:"signing_key"`
	Issuer     string        `yaml:"issuer"`
	Subject    string        `yaml:"subject"`
	TTL        time.Duration `yaml:"ttl"`
}

type Config struct {
	Server    Server    `yaml:"server"`
	Log       Log       `yaml:"log"`
	Tick      Tick      `yaml:"tick"`
	Keys      Keys      `yaml:"keys"`
	Memory    Memory    `yaml:"memory"`
	Drift     Drift     `yaml:"drift"`
	Time      Time      `yaml:"time"`
	Spatial   Spatial   `yaml:"spatial"`
	Integrity Integrity `yaml:"integrity"`
	Prefs     Prefs     `yaml:"prefs"`
	Redis     Redis     `yaml:"redis"`
	Postgres  Postgres  `yaml:"postgres"`
	SQLite    SQLite    `yaml:"sqlite"`
	Kafka     Kafka     `yaml:"kafka"`
	Report    Report    `yaml:"report"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info", Format: "json"},
		Tick: Tick{
			Rate:      time.Second / 60,
			FixedRate: time.Second / 50,
			MaxDelta:  time.Second,
		},
		Memory: Memory{Shadowing: true},
		Drift: Drift{
			Enabled:           true,
			Interval:          time.Second,
			Threshold:         500 * time.Millisecond,
			MaxFalsePositives: 3,
			Cooldown:          30,
		},
		Time: Time{
			Enabled:   true,
			Interval:  10 * time.Second,
			Tolerance: 60 * time.Second,
			URL:       "https://worldtimeapi.org/api/timezone/Etc/UTC",
			Method:    "GET",
			Timeout:   10 * time.Second,
		},
		Spatial: Spatial{
			Enabled:     true,
			Cadence:     time.Second,
			MaxDistance: 3,
		},
		Prefs: Prefs{Backend: "memory", Encryptor: "aes"},
		Redis: Redis{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		SQLite: SQLite{Path: "pixelguard.db"},
		Kafka: Kafka{
			Topic:       "pixelguard.warnings",
			ClientID:    "guardd",
			Partitions:  3,
			Replication: 1,
			FlushEvery:  time.Second,
		},
		Report: Report{Issuer: "pixelguard", TTL: 24 * time.Hour},
	}
}

// FromEnv loads the optional YAML file and applies environment overrides.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv collects every malformed variable instead of stopping at the
// first.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.str("ADDR", &c.Server.Addr)
	e.str("ADMIN_TOKEN", &c.Server.AdminToken)
	e.str("LOG_LEVEL", &c.Log.Level)
	e.str("LOG_FORMAT", &c.Log.Format)

	e.duration("TICK_RATE", &c.Tick.Rate)
	e.duration("TICK_FIXED_RATE", &c.Tick.FixedRate)
	e.duration("TICK_MAX_DELTA", &c.Tick.MaxDelta)

	e.boolean("MEMORY_SHADOWING", &c.Memory.Shadowing)

	e.boolean("DRIFT_ENABLED", &c.Drift.Enabled)
	e.duration("DRIFT_INTERVAL", &c.Drift.Interval)
	e.duration("DRIFT_THRESHOLD", &c.Drift.Threshold)
	e.integer("DRIFT_MAX_FALSE_POSITIVES", &c.Drift.MaxFalsePositives)
	e.integer("DRIFT_COOLDOWN", &c.Drift.Cooldown)

	e.boolean("TIME_ENABLED", &c.Time.Enabled)
	e.duration("TIME_INTERVAL", &c.Time.Interval)
	e.duration("TIME_TOLERANCE", &c.Time.Tolerance)
	e.boolean("TIME_NETWORK", &c.Time.Network)
	e.str("TIME_URL", &c.Time.URL)
	e.str("TIME_METHOD", &c.Time.Method)
	e.duration("TIME_TIMEOUT", &c.Time.Timeout)

	e.boolean("SPATIAL_ENABLED", &c.Spatial.Enabled)
	e.duration("SPATIAL_CADENCE", &c.Spatial.Cadence)
	e.float("SPATIAL_MAX_DISTANCE", &c.Spatial.MaxDistance)

	e.boolean("INTEGRITY_ENABLED", &c.Integrity.Enabled)
	e.str("WHITELIST_PATH", &c.Integrity.WhitelistPath)
	e.str("WHITELIST_S3_REGION", &c.Integrity.S3Region)
	e.str("WHITELIST_S3_BUCKET", &c.Integrity.S3Bucket)
	e.str("WHITELIST_S3_KEY", &c.Integrity.S3Key)
	e.str("WHITELIST_S3_ENDPOINT", &c.Integrity.S3Endpoint)
	e.boolean("WHITELIST_S3_PATH_STYLE", &c.Integrity.S3PathStyle)

	e.str("PREFS_BACKEND", &c.Prefs.Backend)
	e.str("PREFS_ENCRYPTOR", &c.Prefs.Encryptor)
	e.str("PREFS_PASSWORD", &c.Prefs.Password)

	e.str("REDIS_URL", &c.Redis.URL)
	e.integer("REDIS_POOL_SIZE", &c.Redis.PoolSize)
	e.str("POSTGRES_DSN", &c.Postgres.DSN)
	e.boolean("POSTGRES_ARCHIVE", &c.Postgres.Archive)
	e.str("SQLITE_PATH", &c.SQLite.Path)

	e.list("KAFKA_BROKERS", &c.Kafka.Brokers)
	e.str("KAFKA_TOPIC", &c.Kafka.Topic)
	e.str("KAFKA_CLIENT_ID", &c.Kafka.ClientID)

	e.str("REPORT_SIGNING_KEY", &c.Report.SigningKey)
	e.str("REPORT_ISSUER", &c.Report.Issuer)
	e.str("REPORT_SUBJECT", &c.Report.Subject)
	e.duration("REPORT_TTL", &c.Report.TTL)

	return errors.Join(e.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(name string) (string, bool) {
	v, ok := e.lookup(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(name string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) list(name string, dst *[]string) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envReader) duration(name string, dst *time.Duration) {
	if v, ok := e.get(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = d
	}
}

func (e *envReader) boolean(name string, dst *bool) {
	if v, ok := e.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) integer(name string, dst *int) {
	if v, ok := e.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(name string, dst *float64) {
	if v, ok := e.get(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = f
	}
}
