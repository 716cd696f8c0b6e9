package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Authorization AuthorizationConfig `mapstructure:"authorization"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer              string        `mapstructure:"issuer"`
	Audience            string        `mapstructure:"audience"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m,max=24h"`
	Leeway              time.Duration `mapstructure:"leeway"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" validate:"required,min=10,max=15"`
}

// AuthorizationConfig drives the request gate. ResourceWorkstreams maps a
// resource category (properties, tenants, ...) to a workstream code.
type AuthorizationConfig struct {
	APIPrefix           string            `mapstructure:"api_prefix"`
	RequestTimeout      time.Duration     `mapstructure:"request_timeout"`
	ProfileCacheTTL     time.Duration     `mapstructure:"profile_cache_ttl"`
	ResourceWorkstreams map[string]string `mapstructure:"resource_workstreams"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Env    string `mapstructure:"env"`
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

const (
	DefaultAPIPrefix       = "/api/v1"
	DefaultRequestTimeout  = 3 * time.Second
	DefaultProfileCacheTTL = 30 * time.Second
	DefaultWorkstreamCode  = "property-hub"
)

// DefaultResourceWorkstreams puts every scoped resource under the single
// Property Hub workstream.
func DefaultResourceWorkstreams() map[string]string {
	return map[string]string{
		"properties":   DefaultWorkstreamCode,
		"tenants":      DefaultWorkstreamCode,
		"journals":     DefaultWorkstreamCode,
		"contact-logs": DefaultWorkstreamCode,
		"tags":         DefaultWorkstreamCode,
	}
}

// ApplyDefaults fills optional settings left empty by the config source.
// ProfileCacheTTL is not touched here: zero is a valid setting that turns the
// profile cache off, so each loader defaults it only when the key is absent.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Security.Issuer == "" {
		c.Security.Issuer = "property-hub"
	}
	if c.Security.Audience == "" {
		c.Security.Audience = "property-hub-backoffice"
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 12
	}
	if c.Authorization.APIPrefix == "" {
		c.Authorization.APIPrefix = DefaultAPIPrefix
	}
	if c.Authorization.RequestTimeout == 0 {
		c.Authorization.RequestTimeout = DefaultRequestTimeout
	}
	if len(c.Authorization.ResourceWorkstreams) == 0 {
		c.Authorization.ResourceWorkstreams = DefaultResourceWorkstreams()
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

// LoadConfig reads config.yml from path. Any key can be overridden with an
// ENV_ prefixed variable, e.g. ENV_SECURITY_JWT_SECRET.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("authorization.profile_cache_ttl", DefaultProfileCacheTTL)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// LoadConfigFromEnv builds the config from plain environment variables, as
// used by container deployments.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", ""),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Security: SecurityConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			Issuer:              getEnv("JWT_ISSUER", ""),
			Audience:            getEnv("JWT_AUDIENCE", ""),
			AccessTokenDuration: getEnvAsDuration("ACCESS_TOKEN_DURATION", 15*time.Minute),
			Leeway:              getEnvAsDuration("JWT_LEEWAY", 30*time.Second),
			BCryptCost:          getEnvAsInt("BCRYPT_COST", 12),
		},
		Authorization: AuthorizationConfig{
			APIPrefix:           getEnv("API_PREFIX", DefaultAPIPrefix),
			RequestTimeout:      getEnvAsDuration("AUTHZ_REQUEST_TIMEOUT", DefaultRequestTimeout),
			ProfileCacheTTL:     lookupEnvAsDuration("PROFILE_CACHE_TTL", DefaultProfileCacheTTL),
			ResourceWorkstreams: parseWorkstreamMap(getEnv("RESOURCE_WORKSTREAMS", "")),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Env:    getEnv("APP_ENV", "production"),
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// lookupEnvAsDuration returns defaultVal only when key is unset, so an
// explicit "0" is kept.
func lookupEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// parseWorkstreamMap reads "properties=property-hub,tenants=property-hub".
func parseWorkstreamMap(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		category, code, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		category, code = strings.TrimSpace(category), strings.TrimSpace(code)
		if category != "" {
			out[category] = code
		}
	}
	return out
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Authorization.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("authorization config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.AccessTokenDuration <= 0 {
		return errors.New("access_token_duration must be positive")
	}
	if c.Leeway < 0 {
		return errors.New("leeway cannot be negative")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

func (c *AuthorizationConfig) Validate() error {
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api_prefix %q must start with /", c.APIPrefix)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.ProfileCacheTTL < 0 {
		return errors.New("profile_cache_ttl cannot be negative")
	}
	for category, code := range c.ResourceWorkstreams {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("resource_workstreams: %s has no workstream code", category)
		}
	}
	return nil
}
