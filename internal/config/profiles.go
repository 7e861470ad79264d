package config

import (
	"github.com/cockroachdb/errors"
)

// Profiles имена профилей производительности
var Profiles = []string{"safe", "balanced", "fast"}

// ApplyProfile применяет профиль производительности к конфигурации
func ApplyProfile(cfg *Config, profile string) error {
	switch profile {
	case "safe":
		cfg.Wipe.Fast = false
		cfg.Wipe.MaxSpeedMBps = 50
		cfg.Wipe.BufferSizeKB = 1024 // 1MB
	case "balanced":
		cfg.Wipe.Fast = false
		cfg.Wipe.MaxSpeedMBps = 0
		cfg.Wipe.BufferSizeKB = 0 // эвристика
	case "fast":
		cfg.Wipe.Fast = true
		cfg.Wipe.MaxSpeedMBps = 0
		cfg.Wipe.BufferSizeKB = 16 * 1024 // 16MB
	default:
		return errors.Newf("неизвестный профиль: %s", profile)
	}
	return nil
}
