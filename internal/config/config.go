package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnv              = "development"
	defaultDBPath           = "./discovery.db"
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultNarrativeTimeout = 90 * time.Second
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env              string
	Port             string
	DBPath           string
	TariffPath       string
	GeminiAPIKey     string
	GeminiModel      string
	NarrativeTimeout time.Duration
	LogLevel         string
	LogFormat        string
	SeedDemo         bool

	warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		Env:          strings.ToLower(os.Getenv("ENV")),
		Port:         os.Getenv("PORT"),
		DBPath:       os.Getenv("DB_PATH"),
		TariffPath:   os.Getenv("TARIFF_PATH"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogFormat:    os.Getenv("LOG_FORMAT"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("API_KEY")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDev() {
			cfg.LogFormat = "console"
		}
	}

	cfg.NarrativeTimeout = defaultNarrativeTimeout
	if raw := os.Getenv("NARRATIVE_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			cfg.warn("NARRATIVE_TIMEOUT is not a positive duration, using " + defaultNarrativeTimeout.String())
		} else {
			cfg.NarrativeTimeout = d
		}
	}

	cfg.SeedDemo = cfg.IsDev()
	if raw := os.Getenv("SEED_DEMO"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			cfg.warn("SEED_DEMO is not a boolean, ignoring")
		} else {
			cfg.SeedDemo = v
		}
	}

	if cfg.GeminiAPIKey == "" {
		cfg.warn("GEMINI_API_KEY is not set, proposals will use the fallback summary")
	}

	return cfg
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Warnings lists non-fatal problems found while loading.
func (c Config) Warnings() []string {
	return c.warnings
}

func (c *Config) warn(msg string) {
	c.warnings = append(c.warnings, msg)
}
