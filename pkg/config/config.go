package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Telegram  TelegramConfig
	AI        AIConfig
	Quiz      QuizConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TelegramConfig holds the bot token and the shared admin secret.
type TelegramConfig struct {
	Token     string
	AdminCode string
}

// AIConfig configures the external quiz generator.
type AIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// QuizConfig tunes quiz generation behaviour.
type QuizConfig struct {
	Questions      int
	MinSourceWords int
	PromptBudget   int
}

// StorageConfig locates the material file store.
type StorageConfig struct {
	Root string
}

// RateLimitConfig caps professor actions per day.
type RateLimitConfig struct {
	UploadsPerDay int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Telegram = TelegramConfig{
		Token:     v.GetString("TELEGRAM_TOKEN"),
		AdminCode: v.GetString("ADMIN_CODE"),
	}

	cfg.AI = AIConfig{
		APIKey:     v.GetString("OPENAI_API_KEY"),
		BaseURL:    v.GetString("OPENAI_BASE_URL"),
		Model:      v.GetString("AI_MODEL"),
		Timeout:    parseDuration(v.GetString("AI_TIMEOUT"), 90*time.Second),
		MaxRetries: v.GetInt("AI_MAX_RETRIES"),
	}

	cfg.Quiz = QuizConfig{
		Questions:      v.GetInt("QUIZ_QUESTIONS_DEFAULT"),
		MinSourceWords: v.GetInt("QUIZ_MIN_SOURCE_WORDS"),
		PromptBudget:   v.GetInt("QUIZ_PROMPT_BUDGET"),
	}

	cfg.Storage = StorageConfig{Root: v.GetString("STORAGE_ROOT")}

	cfg.RateLimit = RateLimitConfig{UploadsPerDay: v.GetInt("PROF_RATE_LIMIT_PER_DAY")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "coursemate")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("ADMIN_CODE", "")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_TIMEOUT", "90s")
	v.SetDefault("AI_MAX_RETRIES", 2)

	v.SetDefault("QUIZ_QUESTIONS_DEFAULT", 5)
	v.SetDefault("QUIZ_MIN_SOURCE_WORDS", 100)
	v.SetDefault("QUIZ_PROMPT_BUDGET", 12000)

	v.SetDefault("STORAGE_ROOT", "./storage")

	v.SetDefault("PROF_RATE_LIMIT_PER_DAY", 50)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
