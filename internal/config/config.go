package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvironmentProduction = "production"

	DefaultJWTSecret = "default_secret"

	QueueBackendLocal = "local"
	QueueBackendRedis = "redis"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	JWTSecret           string
	JWTIssuer           string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	BcryptCost          int
	AsyncRefreshPersist bool
}

type QueueConfig struct {
	Backend       string
	Workers       int
	Buffer        int
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// CORSConfig drives the preflight answer. An empty AllowOrigins list echoes
// any origin.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type JobsConfig struct {
	PurgeSchedule string
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Security    SecurityConfig
	Queue       QueueConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Jobs        JobsConfig
	Logging     LoggingConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("ZEROAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that cannot run safely. Production
// deployments must override the signing secret.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.Security.AccessTTL <= 0 {
		errs = append(errs, errors.New("security.accessttl must be positive"))
	}
	if c.Security.RefreshTTL <= 0 {
		errs = append(errs, errors.New("security.refreshttl must be positive"))
	}
	if c.Security.BcryptCost != 0 && (c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost) {
		errs = append(errs, fmt.Errorf("security.bcryptcost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwtsecret is required"))
	}
	if c.IsProduction() {
		if c.Security.JWTSecret == DefaultJWTSecret {
			errs = append(errs, errors.New("security.jwtsecret must be overridden in production"))
		} else if len(c.Security.JWTSecret) < 32 {
			errs = append(errs, errors.New("security.jwtsecret must be at least 32 bytes in production"))
		}
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	switch c.Queue.Backend {
	case QueueBackendLocal:
	case QueueBackendRedis:
		if !c.Redis.Enabled {
			errs = append(errs, errors.New("queue.backend redis requires redis.enabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("queue.backend %q is not supported", c.Queue.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "zeroai.db")
	v.SetDefault("database.maxopen", 30)
	v.SetDefault("database.maxidle", 10)
	v.SetDefault("database.connmaxlifetime", "30m")
	v.SetDefault("database.automigrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("security.jwtsecret", DefaultJWTSecret)
	v.SetDefault("security.jwtissuer", "zeroai")
	v.SetDefault("security.accessttl", "5h")
	v.SetDefault("security.refreshttl", "168h") // 7 days
	v.SetDefault("security.bcryptcost", 10)
	v.SetDefault("security.asyncrefreshpersist", true)

	v.SetDefault("queue.backend", QueueBackendLocal)
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.buffer", 256)
	v.SetDefault("queue.stream", "auth:tasks")
	v.SetDefault("queue.group", "auth-workers")
	v.SetDefault("queue.consumer", "worker-1")
	v.SetDefault("queue.claiminterval", "10s")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", "1m")

	v.SetDefault("jobs.purgeschedule", "0 0 * * * *")

	v.SetDefault("logging.level", "")

	v.SetDefault("cors.alloworigins", []string{})
	v.SetDefault("cors.allowmethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowheaders", []string{"Authorization", "Content-Type", "X-Request-Id"})
	v.SetDefault("cors.exposeheaders", []string{"X-Request-Id", "RateLimit", "RateLimit-Policy", "Retry-After"})
	v.SetDefault("cors.allowcredentials", true)
	v.SetDefault("cors.maxage", "10m")
}
