package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	// Server settings
	Host        string
	Port        int
	GinMode     string
	Environment string

	// AI provider settings
	AIProvider       string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	OpenAIModel      string
	GeminiModel      string
	OpenAIBaseURL    string
	GeminiBaseURL    string
	AIRequestTimeout time.Duration

	AllowedOrigins []string

	// Order limits and validation
	MaxItemQuantity  int
	MaxMessageLength int
	MinMessageLength int

	LogLevel  string
	LogFormat string

	EnableRateLimiting bool
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	// Journal database
	DBDriver string
	DBDSN    string

	// Optional infrastructure, disabled when empty
	RedisAddr      string
	IntentCacheTTL time.Duration
	AMQPURL        string

	// Admin access
	SecretKey         string
	AccessTokenTTL    time.Duration
	AdminUsername     string
	AdminPasswordHash string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnvInt("PORT", 8000),
		GinMode:     getEnv("GIN_MODE", "debug"),
		Environment: getEnv("ENVIRONMENT", "development"),

		AIProvider:       strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		AIRequestTimeout: time.Duration(getEnvInt("AI_REQUEST_TIMEOUT", 30)) * time.Second,

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		MaxItemQuantity:  getEnvInt("MAX_ITEM_QUANTITY", 50),
		MaxMessageLength: getEnvInt("MAX_MESSAGE_LENGTH", 500),
		MinMessageLength: getEnvInt("MIN_MESSAGE_LENGTH", 1),

		LogLevel:  strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		EnableRateLimiting: getEnvBool("ENABLE_RATE_LIMITING", false),
		RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:    time.Duration(getEnvInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:    getEnv("DB_DSN", "drivethru.db"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		IntentCacheTTL: time.Duration(getEnvInt("INTENT_CACHE_TTL", 600)) * time.Second,
		AMQPURL:        os.Getenv("AMQP_URL"),

		SecretKey:         getEnv("SECRET_KEY", "ai-food-ordering-system"),
		AccessTokenTTL:    time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}

	if cfg.AdminPasswordHash == "" {
		if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash ADMIN_PASSWORD: %w", err)
			}
			cfg.AdminPasswordHash = string(hashed)
		}
	}

	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() []string {
	var errs []string

	switch c.AIProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required when using OpenAI provider")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, "GEMINI_API_KEY is required when using Gemini provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("Invalid AI_PROVIDER: %s. Must be 'openai' or 'gemini'", c.AIProvider))
	}

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("Invalid PORT: %d. Must be between 1 and 65535", c.Port))
	}
	if c.MaxItemQuantity <= 0 {
		errs = append(errs, fmt.Sprintf("Invalid MAX_ITEM_QUANTITY: %d. Must be positive", c.MaxItemQuantity))
	}
	if c.MaxMessageLength <= c.MinMessageLength {
		errs = append(errs, fmt.Sprintf("MAX_MESSAGE_LENGTH (%d) must be greater than MIN_MESSAGE_LENGTH (%d)", c.MaxMessageLength, c.MinMessageLength))
	}
	if c.AIRequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("Invalid AI_REQUEST_TIMEOUT: %s. Must be positive", c.AIRequestTimeout))
	}

	switch c.LogLevel {
	case "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL":
	default:
		errs = append(errs, fmt.Sprintf("Invalid LOG_LEVEL: %s. Must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL", c.LogLevel))
	}

	if c.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("Invalid RATE_LIMIT_REQUESTS: %d. Must be positive", c.RateLimitRequests))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("Invalid RATE_LIMIT_WINDOW: %s. Must be positive", c.RateLimitWindow))
	}

	switch c.DBDriver {
	case "sqlite", "mysql", "none":
	default:
		errs = append(errs, fmt.Sprintf("Invalid DB_DRIVER: %s. Must be sqlite, mysql or none", c.DBDriver))
	}

	return errs
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) AIModel() string {
	if c.AIProvider == ProviderGemini {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != ""
}

// Summary describes the running configuration without secrets.
func (c *Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"environment":        c.Environment,
		"host":               c.Host,
		"port":               c.Port,
		"ai_provider":        c.AIProvider,
		"ai_model":           c.AIModel(),
		"max_item_quantity":  c.MaxItemQuantity,
		"max_message_length": c.MaxMessageLength,
		"log_level":          c.LogLevel,
		"db_driver":          c.DBDriver,
		"features": map[string]bool{
			"rate_limiting": c.EnableRateLimiting,
			"intent_cache":  c.RedisAddr != "",
			"event_broker":  c.AMQPURL != "",
			"admin":         c.AdminEnabled(),
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
