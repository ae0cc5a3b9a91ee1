package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LLMConfig describes the remote completion provider. The API key itself is
// not captured here: it is read on every request through APIKey.
type LLMConfig struct {
	Provider      string
	BaseURL       string
	DefaultModel  string
	AllowedModels []string
	HTTPTimeout   time.Duration
}

type AuthConfig struct {
	OIDCIssuer     string
	OIDCClientID   string
	AdminJWTSecret string
	AdminTokenTTL  time.Duration
	// AdminEmails restricts OIDC logins; empty admits any subject of the client.
	AdminEmails []string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "portfolio")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("LLM_PROVIDER", "openai")
	viper.SetDefault("LLM_HTTP_TIMEOUT", 60)
	viper.SetDefault("ADMIN_TOKEN_TTL", 60)
	viper.SetDefault("RATE_LIMIT_RPS", 0.5)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(viper.GetString("LLM_PROVIDER")),
			BaseURL:       viper.GetString("LLM_BASE_URL"),
			DefaultModel:  viper.GetString("LLM_DEFAULT_MODEL"),
			AllowedModels: splitList(viper.GetString("LLM_ALLOWED_MODELS")),
			HTTPTimeout:   time.Duration(viper.GetInt("LLM_HTTP_TIMEOUT")) * time.Second,
		},
		Auth: AuthConfig{
			OIDCIssuer:     viper.GetString("OIDC_ISSUER"),
			OIDCClientID:   viper.GetString("OIDC_CLIENT_ID"),
			AdminJWTSecret: viper.GetString("ADMIN_JWT_SECRET"),
			AdminTokenTTL:  time.Duration(viper.GetInt("ADMIN_TOKEN_TTL")) * time.Minute,
			AdminEmails:    splitList(viper.GetString("ADMIN_EMAILS")),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}

// APIKey returns the completion provider secret. It is looked up on every call
// so a missing or rotated key is observed at request time.
func APIKey() string {
	return strings.TrimSpace(viper.GetString("LLM_API_KEY"))
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
