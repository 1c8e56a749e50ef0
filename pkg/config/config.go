package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Import       ImportConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GRIDSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"GRIDSTOCK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GRIDSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GRIDSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GRIDSTOCK_DB_DSN"`
	Driver string `envconfig:"GRIDSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GRIDSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"GRIDSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GRIDSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"GRIDSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"GRIDSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"GRIDSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GRIDSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GRIDSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GRIDSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GRIDSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// RedisConfig is optional; leaving both URL and address empty disables the
// redis-backed idempotency and rate limiting middleware.
type RedisConfig struct {
	URL          string        `envconfig:"GRIDSTOCK_REDIS_URL"`
	Address      string        `envconfig:"GRIDSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"GRIDSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"GRIDSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GRIDSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GRIDSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GRIDSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GRIDSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GRIDSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GRIDSTOCK_AUTO_MIGRATE" default:"false"`
}

type ImportConfig struct {
	MaxRecords      int           `envconfig:"GRIDSTOCK_IMPORT_MAX_RECORDS" default:"2000"`
	RateLimitWindow time.Duration `envconfig:"GRIDSTOCK_IMPORT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimit       int           `envconfig:"GRIDSTOCK_IMPORT_RATE_LIMIT" default:"10"`
	IdempotencyTTL  time.Duration `envconfig:"GRIDSTOCK_IMPORT_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GRIDSTOCK_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverSQLite)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
