package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Directory backends.
const (
	DirectoryHTTP  = "http"
	DirectoryMongo = "mongo"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// DirectoryBackend selects where clients and assets live: http or mongo.
	DirectoryBackend string `env:"DIRECTORY_BACKEND, default=http"`

	Auth    AuthConfig
	Backend BackendConfig
	Cache   CacheConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Audit   AuditConfig
}

// AuthConfig holds the operators allowed to sign in. An empty JWTSecret
// disables authentication.
type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET"`
	TokenTTL           time.Duration `env:"JWT_TTL,              default=12h"`
	AdminUsername      string        `env:"ADMIN_USERNAME,       default=admin"`
	AdminPasswordHash  string        `env:"ADMIN_PASSWORD_HASH"`
	ViewerUsername     string        `env:"VIEWER_USERNAME"`
	ViewerPasswordHash string        `env:"VIEWER_PASSWORD_HASH"`
}

type BackendConfig struct {
	URL         string        `env:"BACKEND_URL,          default=http://localhost:3001"`
	Timeout     time.Duration `env:"BACKEND_TIMEOUT,      default=10s"`
	RPS         float64       `env:"BACKEND_RPS,          default=20"`
	Burst       int           `env:"BACKEND_BURST,        default=10"`
	AssetsField string        `env:"BACKEND_ASSETS_FIELD, default=ativos"`
}

// CacheConfig configures directory caching and the submission guard, which
// shares the cache backend.
type CacheConfig struct {
	Backend       string        `env:"CACHE_BACKEND,        default=memory"`
	TTL           time.Duration `env:"CACHE_TTL,            default=5m"`
	SubmissionTTL time.Duration `env:"SUBMISSION_TOKEN_TTL, default=1h"`
}

// MongoConfig is used by the mongo directory and the audit trail. An empty
// URI disables both.
type MongoConfig struct {
	URI      string        `env:"MONGO_URI"`
	Database string        `env:"MONGO_DB,       default=investor_admin"`
	AppName  string        `env:"MONGO_APP_NAME, default=investor-admin"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT,  default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	TLS      bool          `env:"REDIS_TLS,      default=false"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// AuthEnabled reports whether routes require a signed-in operator.
func (c *Config) AuthEnabled() bool { return c.Auth.JWTSecret != "" }

// Development reports whether the service runs in the development environment.
func (c *Config) Development() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DirectoryBackend {
	case DirectoryHTTP:
	case DirectoryMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("config: DIRECTORY_BACKEND=mongo requires MONGO_URI")
		}
	default:
		return fmt.Errorf("config: unknown DIRECTORY_BACKEND %q", c.DirectoryBackend)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("config: unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	return nil
}
