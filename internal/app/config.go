package app

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AltKhyin/reviewcanvas/internal/document"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/services"
	"github.com/AltKhyin/reviewcanvas/internal/utils"
)

type Config struct {
	Environment          string
	Version              string
	HTTPAddr             string
	AutosaveIdle         time.Duration
	MigrationConcurrency int
	// MobileCanvasWidth is the rendering width for the narrow viewport;
	// deployments serving a different mobile breakpoint can override it.
	MobileCanvasWidth float64
	SavePolicy        services.SavePolicy
}

// fileConfig mirrors the optional CONFIG_FILE yaml. Zero values mean "not
// set"; environment variables win over the file.
type fileConfig struct {
	Environment          string  `yaml:"environment"`
	HTTPAddr             string  `yaml:"http_addr"`
	AutosaveIdleSeconds  int     `yaml:"autosave_idle_seconds"`
	MigrationConcurrency int     `yaml:"migration_concurrency"`
	MobileCanvasWidth    float64 `yaml:"mobile_canvas_width"`
	Save                 struct {
		MaxAttempts            int `yaml:"max_attempts"`
		BackoffBaseSeconds     int `yaml:"backoff_base_seconds"`
		BackoffCapSeconds      int `yaml:"backoff_cap_seconds"`
		IntegrityDiffThreshold int `yaml:"integrity_diff_threshold"`
	} `yaml:"save"`
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Environment:          "development",
		Version:              "dev",
		HTTPAddr:             ":8080",
		AutosaveIdle:         30 * time.Second,
		MigrationConcurrency: 4,
		MobileCanvasWidth:    document.DefaultMobileCanvasWidth,
		SavePolicy:           services.DefaultSavePolicy(),
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Config file unreadable, using env only", "path", path, "error", err)
		} else {
			var fc fileConfig
			if err := yaml.Unmarshal(raw, &fc); err != nil {
				log.Warn("Config file invalid, using env only", "path", path, "error", err)
			} else {
				applyFileConfig(&cfg, fc)
				log.Info("Config file applied", "path", path)
			}
		}
	}

	cfg.Environment = utils.GetEnv("APP_ENV", cfg.Environment, log)
	cfg.Version = utils.GetEnv("APP_VERSION", cfg.Version, log)
	cfg.HTTPAddr = ":" + utils.GetEnv("PORT", strings.TrimPrefix(cfg.HTTPAddr, ":"), log)
	cfg.AutosaveIdle = time.Duration(utils.GetEnvAsInt("AUTOSAVE_IDLE_SECONDS", int(cfg.AutosaveIdle/time.Second), log)) * time.Second
	cfg.MigrationConcurrency = utils.GetEnvAsInt("MIGRATION_CONCURRENCY", cfg.MigrationConcurrency, log)
	cfg.MobileCanvasWidth = utils.GetEnvAsFloat("MOBILE_CANVAS_WIDTH", cfg.MobileCanvasWidth, log)
	cfg.SavePolicy.MaxAttempts = utils.GetEnvAsInt("SAVE_MAX_ATTEMPTS", cfg.SavePolicy.MaxAttempts, log)
	return cfg
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if fc.HTTPAddr != "" {
		cfg.HTTPAddr = fc.HTTPAddr
	}
	if fc.AutosaveIdleSeconds > 0 {
		cfg.AutosaveIdle = time.Duration(fc.AutosaveIdleSeconds) * time.Second
	}
	if fc.MigrationConcurrency > 0 {
		cfg.MigrationConcurrency = fc.MigrationConcurrency
	}
	if fc.MobileCanvasWidth > 0 {
		cfg.MobileCanvasWidth = fc.MobileCanvasWidth
	}
	if fc.Save.MaxAttempts > 0 {
		cfg.SavePolicy.MaxAttempts = fc.Save.MaxAttempts
	}
	if fc.Save.BackoffBaseSeconds > 0 {
		cfg.SavePolicy.BackoffBase = time.Duration(fc.Save.BackoffBaseSeconds) * time.Second
	}
	if fc.Save.BackoffCapSeconds > 0 {
		cfg.SavePolicy.BackoffCap = time.Duration(fc.Save.BackoffCapSeconds) * time.Second
	}
	if fc.Save.IntegrityDiffThreshold > 0 {
		cfg.SavePolicy.IntegrityDiffThreshold = fc.Save.IntegrityDiffThreshold
	}
}
