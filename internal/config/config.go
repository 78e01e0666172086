package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/logwardstack/logward-detect/internal/engine"
)

// Config captures the settings required to boot the detection service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Risk    RiskConfig    `yaml:"risk"`
	Cache   CacheConfig   `yaml:"cache"`
	Results ResultsConfig `yaml:"results"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// RiskConfig carries the fusion weights for the risk scorer.
type RiskConfig struct {
	Weights engine.Weights `yaml:"weights"`
}

// CacheConfig controls the optional Valkey-backed shared report cache.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	ReportTTL    time.Duration `yaml:"reportTTL"`
}

// ResultsConfig bounds the in-memory result store.
type ResultsConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"maxEntries"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("LOGWARD_DETECT_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if !cfg.Risk.Weights.Valid() {
		return nil, fmt.Errorf("risk weights must be non-negative: %+v", cfg.Risk.Weights)
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			GracefulTimeout: 10 * time.Second,
			MaxUploadBytes:  32 << 20,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Risk:    RiskConfig{Weights: engine.DefaultWeights()},
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
			ReportTTL:    10 * time.Minute,
		},
		Results: ResultsConfig{
			TTL:        time.Hour,
			MaxEntries: 128,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOGWARD_DETECT_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("LOGWARD_DETECT_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("LOGWARD_DETECT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOGWARD_DETECT_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("LOGWARD_DETECT_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("LOGWARD_DETECT_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("LOGWARD_DETECT_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("LOGWARD_DETECT_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("LOGWARD_DETECT_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("LOGWARD_DETECT_CACHE_TLS"); strings.EqualFold(v, "true") || v == "1" {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("LOGWARD_DETECT_CACHE_REPORT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.ReportTTL = d
		}
	}
	if v := os.Getenv("LOGWARD_DETECT_RESULTS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Results.TTL = d
		}
	}
	if v := os.Getenv("LOGWARD_DETECT_RESULTS_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Results.MaxEntries = n
		}
	}
}
