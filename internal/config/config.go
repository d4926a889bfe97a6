package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultConfigFile = "configs/config.yaml"

type Config struct {
	Env string `mapstructure:"env"`

	Server struct {
		Port               int           `mapstructure:"port"`
		CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string      `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string      `mapstructure:"cors_allowed_headers"`
		ReadTimeout        time.Duration `mapstructure:"read_timeout"`
		WriteTimeout       time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	Redis struct {
		URL      string        `mapstructure:"url"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Auth struct {
		Required      bool   `mapstructure:"required"`
		AdminName     string `mapstructure:"admin_name"`
		AdminEmail    string `mapstructure:"admin_email"`
		AdminPassword string `mapstructure:"admin_password"`
		TOTPIssuer    string `mapstructure:"totp_issuer"`
	} `mapstructure:"auth"`

	// Storage holds the S3-compatible bucket used for FISPQ documents.
	// An empty bucket disables document uploads.
	Storage struct {
		Bucket       string `mapstructure:"bucket"`
		Region       string `mapstructure:"region"`
		Endpoint     string `mapstructure:"endpoint"`
		AccessKey    string `mapstructure:"access_key"`
		SecretKey    string `mapstructure:"secret_key"`
		UsePathStyle bool   `mapstructure:"use_path_style"`
		MaxUploadMB  int64  `mapstructure:"max_upload_mb"`
	} `mapstructure:"storage"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Lab struct {
		Timezone string `mapstructure:"timezone"`
	} `mapstructure:"lab"`

	Alerts struct {
		Enabled  bool          `mapstructure:"enabled"`
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"alerts"`

	Email struct {
		From         string   `mapstructure:"from"`
		HistoryLimit int64    `mapstructure:"history_limit"`
		BlockedHosts []string `mapstructure:"blocked_hosts"`
	} `mapstructure:"email"`
}

// DSN builds the pgx connection string.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:   c.Database.Name,
	}
	if c.Database.SSLMode != "" {
		u.RawQuery = "sslmode=" + c.Database.SSLMode
	}
	return u.String()
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "test"
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.JWT.Secret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("jwt.secret is required outside development"))
	}
	if c.JWT.ExpirationHours <= 0 {
		errs = append(errs, errors.New("jwt.expiration_hours must be positive"))
	}
	if c.Alerts.Enabled && c.Alerts.Interval <= 0 {
		errs = append(errs, errors.New("alerts.interval must be positive"))
	}
	if _, err := time.LoadLocation(c.Lab.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("lab.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// Load reads .env, the optional YAML file at path and environment overrides.
// LAB_* variables map onto nested keys (LAB_SERVER_PORT -> server.port).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path == "" {
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("LAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.JWT.Secret == "" && cfg.IsDevelopment() {
		cfg.JWT.Secret = "dev-secret-change-me"
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "lab_inventory")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.cache_ttl", 60*time.Second)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", 12)
	v.SetDefault("jwt.issuer", "lab-backend")

	v.SetDefault("auth.required", true)
	v.SetDefault("auth.admin_name", "Administrador")
	v.SetDefault("auth.admin_email", "admin@laboratorio.local")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.totp_issuer", "Laboratorio")

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_path_style", true)
	v.SetDefault("storage.max_upload_mb", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("lab.timezone", "America/Sao_Paulo")

	v.SetDefault("alerts.enabled", true)
	v.SetDefault("alerts.interval", 5*time.Minute)

	v.SetDefault("email.from", "laboratorio@laboratorio.local")
	v.SetDefault("email.history_limit", 500)
	v.SetDefault("email.blocked_hosts", []string{})
}

// applyEnvOverrides honours the conventional unprefixed variables used by
// container deployments.
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Storage.Bucket = bucket
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.Storage.Endpoint = endpoint
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		cfg.Storage.AccessKey = key
	}
	if secret := os.Getenv("S3_SECRET_KEY"); secret != "" {
		cfg.Storage.SecretKey = secret
	}
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
}
