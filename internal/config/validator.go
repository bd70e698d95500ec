package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration against spec.md §6's constraints,
// accumulating every violation rather than failing on the first
// (teacher's internal/config/validator.go idiom).
func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.T1 <= 0 {
		errs = append(errs, "t1 must be > 0")
	}
	if c.HeartbeatT1 <= 0 {
		errs = append(errs, "heartbeat_t1 must be > 0")
	}
	if c.N1 <= 0 {
		errs = append(errs, "n1 must be > 0")
	}
	if c.HeartbeatN1 <= 0 {
		errs = append(errs, "heartbeat_n1 must be > 0")
	}
	if c.NbrActivityWnds <= 0 {
		errs = append(errs, "nbr_activity_wnds must be > 0")
	}
	if c.LenActivityWnd <= 0 {
		errs = append(errs, "len_activity_wnd must be > 0")
	}
	if c.TeidRangeBits < 0 || c.TeidRangeBits > 7 {
		errs = append(errs, fmt.Sprintf("teid_range_bits must be between 0 and 7, got %d", c.TeidRangeBits))
	}
	if c.MinApplicationWorkers < 1 {
		errs = append(errs, "min_application_workers must be >= 1")
	}
	if c.MaxApplicationWorkers < c.MinApplicationWorkers {
		errs = append(errs, "max_application_workers must be >= min_application_workers")
	}
	if c.MinTranslatorWorkers < 1 {
		errs = append(errs, "min_translator_workers must be >= 1")
	}
	if c.MaxTranslatorWorkers < c.MinTranslatorWorkers {
		errs = append(errs, "max_translator_workers must be >= min_translator_workers")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
