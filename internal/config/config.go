package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            string `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
	Generator struct {
		Provider      string `yaml:"provider"`
		URL           string `yaml:"url"`
		Model         string `yaml:"model"`
		APIKey        string `yaml:"api_key"`
		Timeout       string `yaml:"timeout"`
		RatePerMinute int    `yaml:"rate_per_minute"`
		Burst         int    `yaml:"burst"`
	} `yaml:"generator"`
	Progress struct {
		Backend string `yaml:"backend"`
		Key     string `yaml:"key"`
	} `yaml:"progress"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
}

// Load reads YAML config from path. A missing file yields the defaults.
// Variables from a .env file in the working directory are loaded first and
// never override the real environment.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Generator.APIKey = v
	}
	if v := os.Getenv("PROGRESS_BACKEND"); v != "" {
		cfg.Progress.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = "gemini"
	}
	if cfg.Progress.Backend == "" {
		cfg.Progress.Backend = "memory"
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "reading-hero.db"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 10
	}
}

// UseGemini reports whether quizzes come from the Gemini API. Without an API
// key the service falls back to the built-in story.
func (c Config) UseGemini() bool {
	return c.Generator.Provider == "gemini" && c.Generator.APIKey != ""
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
