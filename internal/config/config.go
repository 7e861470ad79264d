package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"securewipe/internal/wipe"
)

// Config конфигурация securewipe
type Config struct {
	Wipe      WipeConfig      `yaml:"wipe"`
	Logging   LoggingConfig   `yaml:"logging"`
	Reporting ReportingConfig `yaml:"reporting"`
}

// WipeConfig параметры сессии затирания
type WipeConfig struct {
	Algorithm    string  `yaml:"algorithm"`
	Passes       int     `yaml:"passes"`         // только для custom
	BufferSizeKB int     `yaml:"buffer_size_kb"` // 0 = автоматически
	Fast         bool    `yaml:"fast"`
	JSON         bool    `yaml:"json"`
	MaxSpeedMBps float64 `yaml:"max_speed_mbps"` // 0 = без ограничения
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ReportingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	LocalPath string `yaml:"local_path"`
}

const (
	maxBufferSizeKB = 1024 * 1024 // 1 GiB
	maxSpeedMBps    = 100000
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Wipe: WipeConfig{
			Algorithm:    "dod5220",
			Passes:       0,
			BufferSizeKB: 0,
			Fast:         false,
			JSON:         false,
			MaxSpeedMBps: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Reporting: ReportingConfig{
			Enabled:   false,
			LocalPath: "./reports",
		},
	}
}

// Load загружает конфигурацию из файла; отсутствующий файл даёт значения по умолчанию
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	// Поля, которых нет в файле, сохраняют значения по умолчанию
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate проверяет конфигурацию на валидность
func Validate(cfg *Config) error {
	if _, err := wipe.ParseAlgorithm(cfg.Wipe.Algorithm, cfg.Wipe.Passes); err != nil {
		return err
	}
	if cfg.Wipe.BufferSizeKB < 0 || cfg.Wipe.BufferSizeKB > maxBufferSizeKB {
		return errors.Newf("buffer size must be between 0 and %d KB, got %d", maxBufferSizeKB, cfg.Wipe.BufferSizeKB)
	}
	if cfg.Wipe.MaxSpeedMBps < 0 {
		return errors.Newf("max speed cannot be negative, got %f", cfg.Wipe.MaxSpeedMBps)
	}
	if cfg.Wipe.MaxSpeedMBps > maxSpeedMBps {
		return errors.Newf("max speed too high (max %d MB/s), got %f", maxSpeedMBps, cfg.Wipe.MaxSpeedMBps)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		return errors.Newf("invalid log level: %s", cfg.Logging.Level)
	}

	if cfg.Reporting.Enabled && cfg.Reporting.LocalPath == "" {
		return errors.New("reporting is enabled but local_path is empty")
	}
	return nil
}

// Save сохраняет конфигурацию в файл
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return errors.Wrap(err, "cannot save invalid config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// SessionConfig строит неизменяемую конфигурацию сессии
func (w WipeConfig) SessionConfig() (wipe.Config, error) {
	alg, err := wipe.ParseAlgorithm(w.Algorithm, w.Passes)
	if err != nil {
		return wipe.Config{}, err
	}
	return wipe.Config{
		Algorithm:    alg,
		BufferSize:   w.BufferSizeKB * 1024,
		FastMode:     w.Fast,
		JSONMode:     w.JSON,
		TargetType:   wipe.TargetAuto,
		MaxSpeedMBps: w.MaxSpeedMBps,
	}, nil
}
