package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shophub/pkg/utils"

	"github.com/spf13/viper"
)

// Config holds all configuration required by the API process.
// All values come from env (or a .env file loaded by main before Load).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Activity ActivityConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string

	// Pool settings for the activity store. Zero values take the pool defaults.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Activity store backends.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// ActivityConfig controls the request activity log pipeline.
type ActivityConfig struct {
	Store        string
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration

	// Retention of 0 keeps records forever.
	Retention     time.Duration
	PruneInterval time.Duration

	// TrustForwarded makes X-Forwarded-For / X-Real-IP win over the peer address.
	// Only enable behind a proxy that overwrites these headers.
	TrustForwarded bool

	RedisMaxPerActor int
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	return LoadFrom(v)
}

// LoadFrom reads configuration from v. Keys are the upper-case env names.
func LoadFrom(v *viper.Viper) (Config, error) {
	setDefaults(v)

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(v.GetString("APP_ENV"))
	c.App.Port, parseErrs = intKey(v, "APP_PORT", parseErrs)

	c.DB.Host = strings.TrimSpace(v.GetString("DB_HOST"))
	c.DB.Port, parseErrs = intKey(v, "DB_PORT", parseErrs)
	c.DB.User = strings.TrimSpace(v.GetString("DB_USER"))
	c.DB.Password = v.GetString("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(v.GetString("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(v.GetString("DB_SSLMODE"))
	c.DB.MaxOpenConns, parseErrs = intKey(v, "DB_MAX_OPEN_CONNS", parseErrs)
	c.DB.MaxIdleConns, parseErrs = intKey(v, "DB_MAX_IDLE_CONNS", parseErrs)
	c.DB.ConnMaxLifetime, parseErrs = durationKey(v, "DB_CONN_MAX_LIFETIME", parseErrs)
	c.DB.PingTimeout, parseErrs = durationKey(v, "DB_PING_TIMEOUT", parseErrs)

	c.Redis.Host = strings.TrimSpace(v.GetString("REDIS_HOST"))
	c.Redis.Port, parseErrs = intKey(v, "REDIS_PORT", parseErrs)
	c.Redis.Password = v.GetString("REDIS_PASSWORD")
	c.Redis.DB, parseErrs = intKey(v, "REDIS_DB", parseErrs)

	c.Auth.JWTSecret = v.GetString("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(v.GetString("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(v.GetString("JWT_AUDIENCE"))
	// Duration keys are optional; defaults applied in Validate() based on env.
	c.Auth.AccessTokenTTL, parseErrs = durationKey(v, "JWT_ACCESS_TTL", parseErrs)
	c.Auth.RefreshTokenTTL, parseErrs = durationKey(v, "JWT_REFRESH_TTL", parseErrs)

	c.Activity.Store = strings.ToLower(strings.TrimSpace(v.GetString("ACTIVITY_STORE")))
	c.Activity.QueueSize, parseErrs = intKey(v, "ACTIVITY_QUEUE_SIZE", parseErrs)
	c.Activity.Workers, parseErrs = intKey(v, "ACTIVITY_WORKERS", parseErrs)
	c.Activity.WriteTimeout, parseErrs = durationKey(v, "ACTIVITY_WRITE_TIMEOUT", parseErrs)
	c.Activity.Retention, parseErrs = durationKey(v, "ACTIVITY_RETENTION", parseErrs)
	c.Activity.PruneInterval, parseErrs = durationKey(v, "ACTIVITY_PRUNE_INTERVAL", parseErrs)
	c.Activity.TrustForwarded = v.GetBool("ACTIVITY_TRUST_FORWARDED")
	c.Activity.RedisMaxPerActor, parseErrs = intKey(v, "ACTIVITY_REDIS_MAX_PER_ACTOR", parseErrs)

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "5000")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_OPEN_CONNS", "10")
	v.SetDefault("DB_MAX_IDLE_CONNS", "10")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_PING_TIMEOUT", "5s")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", "0")
	v.SetDefault("ACTIVITY_STORE", StorePostgres)
	v.SetDefault("ACTIVITY_QUEUE_SIZE", "1024")
	v.SetDefault("ACTIVITY_WORKERS", "4")
	v.SetDefault("ACTIVITY_WRITE_TIMEOUT", "5s")
	v.SetDefault("ACTIVITY_RETENTION", "2160h")
	v.SetDefault("ACTIVITY_PRUNE_INTERVAL", "1h")
	v.SetDefault("ACTIVITY_REDIS_MAX_PER_ACTOR", "1000")
}

// Validate checks required values and fills env-dependent defaults.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Activity.Store == "" {
		c.Activity.Store = StorePostgres
	}
	switch c.Activity.Store {
	case StorePostgres:
		errs = append(errs, c.validateDB()...)
	case StoreRedis:
		errs = append(errs, c.validateRedis()...)
	case StoreMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("ACTIVITY_STORE=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("ACTIVITY_STORE must be one of postgres, redis, memory, got %q", c.Activity.Store))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}

	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	if c.Activity.QueueSize <= 0 {
		c.Activity.QueueSize = 1024
	}
	if c.Activity.Workers <= 0 {
		c.Activity.Workers = 4
	}
	if c.Activity.WriteTimeout <= 0 {
		c.Activity.WriteTimeout = 5 * time.Second
	}
	if c.Activity.Retention < 0 {
		errs = append(errs, errors.New("ACTIVITY_RETENTION must not be negative"))
	}
	if c.Activity.Retention > 0 && c.Activity.PruneInterval <= 0 {
		c.Activity.PruneInterval = time.Hour
	}
	if c.Activity.RedisMaxPerActor <= 0 {
		c.Activity.RedisMaxPerActor = 1000
	}

	return joinErrors(errs)
}

func (c *Config) validateDB() []error {
	var errs []error
	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.MaxOpenConns < 0 || c.DB.MaxIdleConns < 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS and DB_MAX_IDLE_CONNS must not be negative"))
	}
	if c.DB.MaxOpenConns > 0 && c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		errs = append(errs, fmt.Errorf("DB_MAX_IDLE_CONNS (%d) must not exceed DB_MAX_OPEN_CONNS (%d)", c.DB.MaxIdleConns, c.DB.MaxOpenConns))
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}
	return errs
}

func (c *Config) validateRedis() []error {
	var errs []error
	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("REDIS_DB must not be negative, got %d", c.Redis.DB))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment reports whether dev-only routes and error details may be exposed.
func (c Config) IsDevelopment() bool {
	return c.App.Env == "local" || c.App.Env == "dev"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

// PostgresPool maps DB_* pool settings onto the database/sql pool config.
func (c Config) PostgresPool() utils.PostgresPoolConfig {
	return utils.PostgresPoolConfig{
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
		PingTimeout:     c.DB.PingTimeout,
	}
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func intKey(v *viper.Viper, key string, errs []error) (int, []error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, errs
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be an integer, got %q", key, raw))
	}
	return n, errs
}

func durationKey(v *viper.Viper, key string, errs []error) (time.Duration, []error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, errs
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be a duration, got %q", key, raw))
	}
	return d, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
