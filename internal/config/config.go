package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Authz    AuthzConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogMode     string
}

type DatabaseConfig struct {
	Driver string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	SQLitePath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

type AuthzConfig struct {
	ElevatedRoles []string
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	dur := func(key string) time.Duration {
		raw := opt(key)
		if raw == "" {
			return 0
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return 0
		}
		return d
	}
	i32 := func(key string) int32 {
		raw := opt(key)
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return 0
		}
		return int32(v)
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogMode:     opt("LOG_MODE"),
	}
	if cfg.App.LogMode == "" {
		cfg.App.LogMode = cfg.App.Environment
	}

	driver := strings.ToLower(opt("DB_DRIVER"))
	if driver == "" {
		driver = DriverPostgres
	}
	cfg.Database = DatabaseConfig{
		Driver:                driver,
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          i32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          i32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD"),
		SQLitePath:            opt("SQLITE_PATH"),
	}
	switch driver {
	case DriverPostgres:
		if cfg.Database.DBSSLMode == "" {
			cfg.Database.DBSSLMode = "disable"
		}
	case DriverSQLite:
		if cfg.Database.SQLitePath == "" {
			cfg.Database.SQLitePath = "skilltrack.db"
		}
	default:
		invalid = append(invalid, "DB_DRIVER")
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      dur("REDIS_TTL"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: dur("JWT_ACCESS_EXPIRES_IN"),
	}
	if cfg.JWT.AccessExpiresIn == 0 {
		cfg.JWT.AccessExpiresIn = 15 * time.Minute
	}

	cfg.Authz = AuthzConfig{
		ElevatedRoles: splitList(opt("ELEVATED_ROLES")),
	}
	if len(cfg.Authz.ElevatedRoles) == 0 {
		cfg.Authz.ElevatedRoles = []string{"admin"}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
