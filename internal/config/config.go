package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates runtime configuration for the blog API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
	Images   ImageConfig
	CORS     CORSConfig
	LogLevel string
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries the object store used to mirror image variants.
type MinIOConfig struct {
	MirrorEnabled   bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	PresignTTL      time.Duration
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	BcryptCost         int
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// ImageConfig describes where image variants live and how they are derived.
type ImageConfig struct {
	Root           string
	ResizedHeight  int
	ThumbnailSize  int
	MaxUploadBytes int64
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Server: ServerConfig{
			Host:         v.GetString("BLOGD_API_HOST"),
			Port:         v.GetInt("BLOGD_API_PORT"),
			ReadTimeout:  v.GetDuration("BLOGD_API_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("BLOGD_API_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("BLOGD_API_IDLE_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			Database: v.GetString("POSTGRES_DB"),
			SSLMode:  strings.ToLower(v.GetString("POSTGRES_SSL_MODE")),
		},
		MinIO: MinIOConfig{
			MirrorEnabled:   v.GetBool("MINIO_MIRROR_ENABLED"),
			Endpoint:        v.GetString("MINIO_ENDPOINT"),
			AccessKeyID:     v.GetString("MINIO_ROOT_USER"),
			SecretAccessKey: v.GetString("MINIO_ROOT_PASSWORD"),
			Bucket:          v.GetString("MINIO_BUCKET"),
			UseSSL:          v.GetBool("MINIO_USE_SSL"),
			Region:          v.GetString("MINIO_REGION"),
			PresignTTL:      v.GetDuration("MINIO_PRESIGN_TTL"),
		},
		Auth: loadAuthConfig(v),
		Metrics: MetricsConfig{
			PrometheusPath: v.GetString("BLOGD_METRICS_PATH"),
		},
		Images:   loadImageConfig(v),
		CORS:     CORSConfig{AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS"))},
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
	}

	if strings.TrimSpace(cfg.Images.Root) == "" {
		return Config{}, fmt.Errorf("IMAGE_ROOT must not be empty")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BLOGD_API_HOST", "0.0.0.0")
	v.SetDefault("BLOGD_API_PORT", 8080)
	v.SetDefault("BLOGD_API_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("BLOGD_API_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("BLOGD_API_IDLE_TIMEOUT", 60*time.Second)

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "blogd_app")
	v.SetDefault("POSTGRES_PASSWORD", "change-me")
	v.SetDefault("POSTGRES_DB", "blogd")
	v.SetDefault("POSTGRES_SSL_MODE", "disable")

	v.SetDefault("MINIO_MIRROR_ENABLED", false)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ROOT_USER", "blogd")
	v.SetDefault("MINIO_ROOT_PASSWORD", "change-me-strong-password")
	v.SetDefault("MINIO_BUCKET", "blogd-images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_REGION", "")
	v.SetDefault("MINIO_PRESIGN_TTL", 15*time.Minute)

	v.SetDefault("BLOGD_JWT_SECRET", "change-me-to-a-32-byte-secret")
	v.SetDefault("BLOGD_JWT_REFRESH_SECRET", "change-me-to-a-64-byte-secret")
	v.SetDefault("BLOGD_AUTH_ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("BLOGD_AUTH_REFRESH_TOKEN_TTL", 720*time.Hour)
	v.SetDefault("BLOGD_AUTH_BCRYPT_COST", 12)

	v.SetDefault("BLOGD_METRICS_PATH", "/metrics")

	v.SetDefault("IMAGE_ROOT", "./data/images")
	v.SetDefault("IMAGE_RESIZED_HEIGHT", 432)
	v.SetDefault("IMAGE_THUMBNAIL_SIZE", 200)
	v.SetDefault("IMAGE_MAX_UPLOAD_BYTES", 10*1024*1024)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
}

func loadAuthConfig(v *viper.Viper) AuthConfig {
	cost := v.GetInt("BLOGD_AUTH_BCRYPT_COST")
	if cost < 4 || cost > 31 {
		cost = 12
	}

	return AuthConfig{
		AccessTokenSecret:  v.GetString("BLOGD_JWT_SECRET"),
		RefreshTokenSecret: v.GetString("BLOGD_JWT_REFRESH_SECRET"),
		AccessTokenTTL:     v.GetDuration("BLOGD_AUTH_ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:    v.GetDuration("BLOGD_AUTH_REFRESH_TOKEN_TTL"),
		BcryptCost:         cost,
	}
}

func loadImageConfig(v *viper.Viper) ImageConfig {
	height := v.GetInt("IMAGE_RESIZED_HEIGHT")
	if height <= 0 {
		height = 432
	}
	thumb := v.GetInt("IMAGE_THUMBNAIL_SIZE")
	if thumb <= 0 {
		thumb = 200
	}
	maxBytes := v.GetInt64("IMAGE_MAX_UPLOAD_BYTES")
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}

	return ImageConfig{
		Root:           strings.TrimSpace(v.GetString("IMAGE_ROOT")),
		ResizedHeight:  height,
		ThumbnailSize:  thumb,
		MaxUploadBytes: maxBytes,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
