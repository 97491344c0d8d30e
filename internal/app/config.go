package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/streamhub-backend/internal/data/db"
	"github.com/yungbote/streamhub-backend/internal/platform/envutil"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

const configFileEnv = "APP_CONFIG_FILE"

const (
	EdgeStoreSQL    = "sql"
	EdgeStoreBadger = "badger"
)

type Config struct {
	Environment string `yaml:"environment"`
	LogMode     string `yaml:"log_mode"`

	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Edges         EdgeStoreConfig     `yaml:"edges"`
	Events        EventsConfig        `yaml:"events"`
	Neo4j         Neo4jConfig         `yaml:"neo4j"`
	Storage       StorageConfig       `yaml:"storage"`
	Media         MediaConfig         `yaml:"media"`
	Auth          AuthConfig          `yaml:"auth"`
	Feed          FeedConfig          `yaml:"feed"`
	Sweep         SweepConfig         `yaml:"sweep"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver           string        `yaml:"driver"`
	PostgresHost     string        `yaml:"postgres_host"`
	PostgresPort     string        `yaml:"postgres_port"`
	PostgresUser     string        `yaml:"postgres_user"`
	PostgresPassword string        `yaml:"postgres_password"`
	PostgresName     string        `yaml:"postgres_name"`
	PostgresSSLMode  string        `yaml:"postgres_sslmode"`
	SQLitePath       string        `yaml:"sqlite_path"`
	MaxOpenConns     int           `yaml:"max_open_conns"`
	SlowQuery        time.Duration `yaml:"slow_query"`
	AutoMigrate      bool          `yaml:"auto_migrate"`
}

type EdgeStoreConfig struct {
	Backend    string `yaml:"backend"`
	BadgerDir  string `yaml:"badger_dir"`
	SyncWrites bool   `yaml:"sync_writes"`
}

type EventsConfig struct {
	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type StorageConfig struct {
	Mode               string `yaml:"mode"`
	EmulatorHost       string `yaml:"emulator_host"`
	PublicBaseURL      string `yaml:"public_base_url"`
	Credentials        string `yaml:"credentials"`
	VideoBucket        string `yaml:"video_bucket"`
	VideoCDNDomain     string `yaml:"video_cdn_domain"`
	ThumbnailBucket    string `yaml:"thumbnail_bucket"`
	ThumbnailCDNDomain string `yaml:"thumbnail_cdn_domain"`
}

type MediaConfig struct {
	FFProbePath  string        `yaml:"ffprobe_path"`
	WorkRoot     string        `yaml:"work_root"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	ProbeEnabled bool          `yaml:"probe_enabled"`
	MaxUploadMB  int           `yaml:"max_upload_mb"`
}

type AuthConfig struct {
	JWTSecretKey string `yaml:"jwt_secret_key"`
	JWTIssuer    string `yaml:"jwt_issuer"`
}

type FeedConfig struct {
	SearchCandidateLimit int `yaml:"search_candidate_limit"`
}

type SweepConfig struct {
	Enabled bool `yaml:"enabled"`
	Batch   int  `yaml:"batch"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool    `yaml:"metrics_enabled"`
	OtelEnabled    bool    `yaml:"otel_enabled"`
	OtelEndpoint   string  `yaml:"otel_endpoint"`
	OtelHeaders    string  `yaml:"otel_headers"`
	OtelInsecure   bool    `yaml:"otel_insecure"`
	OtelSampler    float64 `yaml:"otel_sampler_ratio"`
	ServiceName    string  `yaml:"service_name"`
	Version        string  `yaml:"version"`
}

func defaultConfig() Config {
	return Config{
		Environment: "development",
		LogMode:     "development",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          db.DriverPostgres,
			PostgresHost:    "localhost",
			PostgresPort:    "5432",
			PostgresUser:    "postgres",
			PostgresName:    "streamhub",
			PostgresSSLMode: "disable",
			SQLitePath:      "streamhub.db",
			MaxOpenConns:    20,
			SlowQuery:       time.Second,
			AutoMigrate:     true,
		},
		Edges:  EdgeStoreConfig{Backend: EdgeStoreSQL, BadgerDir: "data/edges"},
		Events: EventsConfig{RedisChannel: "streamhub.events"},
		Storage: StorageConfig{
			Mode: "memory",
		},
		Media: MediaConfig{
			FFProbePath:  "ffprobe",
			ProbeTimeout: 2 * time.Minute,
			ProbeEnabled: true,
			MaxUploadMB:  512,
		},
		Feed:  FeedConfig{SearchCandidateLimit: services.DefaultSearchCandidateLimit},
		Sweep: SweepConfig{Enabled: true, Batch: services.DefaultSweepBatch},
		Observability: ObservabilityConfig{
			MetricsEnabled: true,
			OtelSampler:    1,
			ServiceName:    "streamhub",
		},
	}
}

// LoadConfig layers defaults, the optional YAML file named by APP_CONFIG_FILE,
// and the environment, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}
	overlayEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if log != nil {
		log.Info("Config loaded",
			"environment", cfg.Environment,
			"http_addr", cfg.HTTP.Addr,
			"db_driver", cfg.Database.Driver,
			"edge_store", cfg.Edges.Backend,
			"storage_mode", cfg.Storage.Mode,
			"redis_events", cfg.Events.RedisAddr != "",
			"neo4j", cfg.Neo4j.URI != "",
		)
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", configFileEnv, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func overlayEnv(cfg *Config) {
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ShutdownTimeout = envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	cfg.HTTP.CORSOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.HTTP.CORSOrigins)

	d := &cfg.Database
	d.Driver = strings.ToLower(envutil.String("DB_DRIVER", d.Driver))
	d.PostgresHost = envutil.String("POSTGRES_HOST", d.PostgresHost)
	d.PostgresPort = envutil.String("POSTGRES_PORT", d.PostgresPort)
	d.PostgresUser = envutil.String("POSTGRES_USER", d.PostgresUser)
	d.PostgresPassword = envutil.String("POSTGRES_PASSWORD", d.PostgresPassword)
	d.PostgresName = envutil.String("POSTGRES_NAME", d.PostgresName)
	d.PostgresSSLMode = envutil.String("POSTGRES_SSLMODE", d.PostgresSSLMode)
	d.SQLitePath = envutil.String("SQLITE_PATH", d.SQLitePath)
	d.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", d.MaxOpenConns)
	d.SlowQuery = envutil.Duration("DB_SLOW_QUERY", d.SlowQuery)
	d.AutoMigrate = envutil.Bool("DB_AUTO_MIGRATE", d.AutoMigrate)

	cfg.Edges.Backend = strings.ToLower(envutil.String("EDGE_STORE", cfg.Edges.Backend))
	cfg.Edges.BadgerDir = envutil.String("BADGER_DIR", cfg.Edges.BadgerDir)
	cfg.Edges.SyncWrites = envutil.Bool("BADGER_SYNC_WRITES", cfg.Edges.SyncWrites)

	cfg.Events.RedisAddr = envutil.String("REDIS_ADDR", cfg.Events.RedisAddr)
	cfg.Events.RedisChannel = envutil.String("REDIS_EVENTS_CHANNEL", cfg.Events.RedisChannel)

	cfg.Neo4j.URI = envutil.String("NEO4J_URI", cfg.Neo4j.URI)
	cfg.Neo4j.User = envutil.String("NEO4J_USER", cfg.Neo4j.User)
	cfg.Neo4j.Password = envutil.String("NEO4J_PASSWORD", cfg.Neo4j.Password)
	cfg.Neo4j.Database = envutil.String("NEO4J_DATABASE", cfg.Neo4j.Database)

	s := &cfg.Storage
	s.Mode = envutil.String("OBJECT_STORAGE_MODE", s.Mode)
	s.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", s.EmulatorHost)
	s.PublicBaseURL = envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", s.PublicBaseURL)
	s.Credentials = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", s.Credentials)
	s.VideoBucket = envutil.String("VIDEO_GCS_BUCKET_NAME", s.VideoBucket)
	s.VideoCDNDomain = envutil.String("VIDEO_CDN_DOMAIN", s.VideoCDNDomain)
	s.ThumbnailBucket = envutil.String("THUMBNAIL_GCS_BUCKET_NAME", s.ThumbnailBucket)
	s.ThumbnailCDNDomain = envutil.String("THUMBNAIL_CDN_DOMAIN", s.ThumbnailCDNDomain)

	m := &cfg.Media
	m.FFProbePath = envutil.String("FFPROBE_PATH", m.FFProbePath)
	m.WorkRoot = envutil.String("MEDIA_WORK_ROOT", m.WorkRoot)
	m.ProbeTimeout = envutil.Duration("MEDIA_PROBE_TIMEOUT", m.ProbeTimeout)
	m.ProbeEnabled = envutil.Bool("MEDIA_PROBE_ENABLED", m.ProbeEnabled)
	m.MaxUploadMB = envutil.Int("MAX_UPLOAD_MB", m.MaxUploadMB)

	cfg.Auth.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecretKey)
	cfg.Auth.JWTIssuer = envutil.String("JWT_ISSUER", cfg.Auth.JWTIssuer)

	cfg.Feed.SearchCandidateLimit = envutil.Int("FEED_SEARCH_CANDIDATE_LIMIT", cfg.Feed.SearchCandidateLimit)
	cfg.Sweep.Enabled = envutil.Bool("SWEEP_ENABLED", cfg.Sweep.Enabled)
	cfg.Sweep.Batch = envutil.Int("SWEEP_BATCH", cfg.Sweep.Batch)

	o := &cfg.Observability
	o.MetricsEnabled = envutil.Bool("METRICS_ENABLED", o.MetricsEnabled)
	o.OtelEnabled = envutil.Bool("OTEL_ENABLED", o.OtelEnabled)
	o.OtelEndpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", o.OtelEndpoint)
	o.OtelHeaders = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", o.OtelHeaders)
	o.OtelInsecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", o.OtelInsecure)
	o.OtelSampler = envutil.Float("OTEL_SAMPLER_RATIO", o.OtelSampler)
	o.ServiceName = envutil.String("OTEL_SERVICE_NAME", o.ServiceName)
	o.Version = envutil.String("APP_VERSION", o.Version)
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Edges.Backend {
	case EdgeStoreSQL, EdgeStoreBadger:
	default:
		return fmt.Errorf("unsupported EDGE_STORE %q", c.Edges.Backend)
	}
	if strings.TrimSpace(c.Auth.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Media.MaxUploadMB < 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be >= 0")
	}
	return nil
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver:           c.Database.Driver,
		PostgresHost:     c.Database.PostgresHost,
		PostgresPort:     c.Database.PostgresPort,
		PostgresUser:     c.Database.PostgresUser,
		PostgresPassword: c.Database.PostgresPassword,
		PostgresName:     c.Database.PostgresName,
		PostgresSSLMode:  c.Database.PostgresSSLMode,
		SQLitePath:       c.Database.SQLitePath,
		MaxOpenConns:     c.Database.MaxOpenConns,
		SlowQuery:        c.Database.SlowQuery,
	}
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.Media.MaxUploadMB) << 20
}
