package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment (and a
// .env file when present). Keys match the environment variable names.
type Config struct {
	Port     string `mapstructure:"PORT" validate:"required"`
	LogMode  string `mapstructure:"LOG_MODE" validate:"oneof=development production prod test"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	GinMode  string `mapstructure:"GIN_MODE" validate:"oneof=debug release test"`

	PostgresDSN            string        `mapstructure:"POSTGRES_DSN" validate:"required"`
	PostgresMaxConns       int           `mapstructure:"POSTGRES_MAX_CONNS" validate:"gt=0"`
	PostgresIdleTimeout    time.Duration `mapstructure:"POSTGRES_IDLE_TIMEOUT"`
	PostgresConnectTimeout time.Duration `mapstructure:"POSTGRES_CONNECT_TIMEOUT"`

	MongoURI                    string        `mapstructure:"MONGODB_URI" validate:"required"`
	MongoDatabase               string        `mapstructure:"MONGODB_DATABASE" validate:"required"`
	MongoMaxPool                uint64        `mapstructure:"MONGODB_MAX_POOL" validate:"gt=0"`
	MongoServerSelectionTimeout time.Duration `mapstructure:"MONGODB_SERVER_SELECTION_TIMEOUT"`
	MongoSocketTimeout          time.Duration `mapstructure:"MONGODB_SOCKET_TIMEOUT"`

	RedisURL          string `mapstructure:"REDIS_URL" validate:"required"`
	RedisChannel      string `mapstructure:"REDIS_CHANNEL" validate:"required"`
	RedisMaxReconnect int    `mapstructure:"REDIS_MAX_RECONNECT" validate:"gte=1"`

	OpenAIAPIKey     string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey     string `mapstructure:"GEMINI_API_KEY"`
	StabilityAPIKey  string `mapstructure:"STABILITY_API_KEY"`
	SunoAPIKey       string `mapstructure:"SUNO_API_KEY"`
	ElevenLabsAPIKey string `mapstructure:"ELEVENLABS_API_KEY"`
	OpenAIBaseURL    string `mapstructure:"OPENAI_BASE_URL"`
	OpenAITextModel  string `mapstructure:"OPENAI_TEXT_MODEL"`
	GeminiTextModel  string `mapstructure:"GEMINI_TEXT_MODEL"`

	AICacheTTL       time.Duration `mapstructure:"AI_CACHE_TTL" validate:"gt=0"`
	AIRateLimit      int           `mapstructure:"AI_RATE_LIMIT" validate:"gt=0"`
	AIRateWindow     time.Duration `mapstructure:"AI_RATE_WINDOW" validate:"gt=0"`
	AITimeout        time.Duration `mapstructure:"AI_TIMEOUT" validate:"gt=0"`
	AIMaxRetries     int           `mapstructure:"AI_MAX_RETRIES" validate:"gte=0"`
	RateLimitBackend string        `mapstructure:"RATE_LIMIT_BACKEND" validate:"oneof=memory redis"`

	EncryptionKey string `mapstructure:"ENCRYPTION_KEY" validate:"required,min=32"`
	JWTSecretKey  string `mapstructure:"JWT_SECRET_KEY" validate:"required"`

	PopularCacheTTL time.Duration `mapstructure:"POPULAR_CACHE_TTL" validate:"gt=0"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	OtelEnabled     bool    `mapstructure:"OTEL_ENABLED"`
	OtelServiceName string  `mapstructure:"OTEL_SERVICE_NAME"`
	OtelEndpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `mapstructure:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OtelSampleRatio float64 `mapstructure:"OTEL_SAMPLER_RATIO" validate:"gte=0,lte=1"`
}

var configDefaults = map[string]interface{}{
	"PORT":      "8080",
	"LOG_MODE":  "development",
	"LOG_LEVEL": "debug",
	"GIN_MODE":  "debug",

	"POSTGRES_MAX_CONNS":       20,
	"POSTGRES_IDLE_TIMEOUT":    "30s",
	"POSTGRES_CONNECT_TIMEOUT": "2s",

	"MONGODB_DATABASE":                 "harmony",
	"MONGODB_MAX_POOL":                 10,
	"MONGODB_SERVER_SELECTION_TIMEOUT": "5s",
	"MONGODB_SOCKET_TIMEOUT":           "45s",

	"REDIS_CHANNEL":       "harmony-events",
	"REDIS_MAX_RECONNECT": 10,

	"OPENAI_TEXT_MODEL": "gpt-4o-mini",
	"GEMINI_TEXT_MODEL": "gemini-1.5-flash",

	"AI_CACHE_TTL":       "1h",
	"AI_RATE_LIMIT":      60,
	"AI_RATE_WINDOW":     "1m",
	"AI_TIMEOUT":         "30s",
	"AI_MAX_RETRIES":     3,
	"RATE_LIMIT_BACKEND": "memory",

	"POPULAR_CACHE_TTL": "60s",
	"SHUTDOWN_TIMEOUT":  "10s",

	"OTEL_ENABLED":       false,
	"OTEL_SERVICE_NAME":  "harmony-backend",
	"OTEL_SAMPLER_RATIO": 0.1,
}

// Keys with no default still need binding so Unmarshal sees them.
var configBoundOnly = []string{
	"POSTGRES_DSN", "MONGODB_URI", "REDIS_URL",
	"OPENAI_API_KEY", "GEMINI_API_KEY", "STABILITY_API_KEY", "SUNO_API_KEY", "ELEVENLABS_API_KEY",
	"OPENAI_BASE_URL",
	"ENCRYPTION_KEY", "JWT_SECRET_KEY", "CORS_ORIGINS",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS", "OTEL_EXPORTER_OTLP_INSECURE",
}

var configValidate = validator.New()

// LoadConfig loads envFiles (".env" when none are given) into the process
// environment, then reads and validates Config. Missing files are not an
// error; any invalid or missing required value is.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for key, def := range configDefaults {
		v.SetDefault(key, def)
	}
	for _, key := range configBoundOnly {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := configValidate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.RateLimitBackend = strings.ToLower(strings.TrimSpace(c.RateLimitBackend))
	c.LogMode = strings.ToLower(strings.TrimSpace(c.LogMode))
	var origins []string
	for _, o := range c.CORSOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	c.CORSOrigins = origins
}

// AIKeys maps provider names to their configured keys.
func (c Config) AIKeys() map[string]string {
	return map[string]string{
		"openai":     c.OpenAIAPIKey,
		"gemini":     c.GeminiAPIKey,
		"stability":  c.StabilityAPIKey,
		"suno":       c.SunoAPIKey,
		"elevenlabs": c.ElevenLabsAPIKey,
	}
}
