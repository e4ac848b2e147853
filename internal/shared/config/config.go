package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string
	AppVersion string
	Port       string
	Env        string
	Debug      bool
	LogLevel   string

	// LLM settings
	LLMProvider string
	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string

	// File upload settings
	MaxUploadSize    int64
	AllowedFileTypes []string

	// Data validation
	MinRowsForChart int
	MaxRowsForChart int

	// CORS settings
	AllowedOrigins string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		AppName:          "Chart Generator API",
		AppVersion:       "1.0.0",
		Port:             os.Getenv("PORT"),
		Env:              os.Getenv("ENV"),
		Debug:            os.Getenv("DEBUG") == "true" || os.Getenv("DEBUG") == "True",
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LLMProvider:      os.Getenv("LLM_PROVIDER"),
		LLMEndpoint:      os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		MaxUploadSize:    envInt64("MAX_UPLOAD_SIZE", 50*1024*1024),
		AllowedFileTypes: []string{"csv", "json", "xlsx"},
		MinRowsForChart:  envInt("MIN_ROWS_FOR_CHART", 2),
		MaxRowsForChart:  envInt("MAX_ROWS_FOR_CHART", 100000),
		AllowedOrigins:   os.Getenv("ALLOWED_ORIGINS"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
		if cfg.Debug {
			cfg.LogLevel = "debug"
		}
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "ollama"
	}
	if cfg.LLMEndpoint == "" {
		cfg.LLMEndpoint = "http://localhost:11434"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "phi-3.5-mini-instruct"
	}
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "http://localhost:3000,http://localhost:8080,http://localhost:8501"
	}

	return cfg
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
