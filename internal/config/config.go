// Package config loads the runtime's configuration surface (spec.md §6
// "Configuration surface"), grounded on the teacher's
// internal/config/{config,validator}.go viper-based loader.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every tunable named in spec.md §6.
type Config struct {
	Port             int `yaml:"port"               mapstructure:"port"`
	SocketBufferSize int `yaml:"socket_buffer_size"  mapstructure:"socket_buffer_size"`

	T1          int `yaml:"t1"           mapstructure:"t1"`           // ms
	HeartbeatT1 int `yaml:"heartbeat_t1" mapstructure:"heartbeat_t1"` // ms
	N1          int `yaml:"n1"           mapstructure:"n1"`
	HeartbeatN1 int `yaml:"heartbeat_n1" mapstructure:"heartbeat_n1"`

	NbrActivityWnds int `yaml:"nbr_activity_wnds" mapstructure:"nbr_activity_wnds"`
	LenActivityWnd  int `yaml:"len_activity_wnd"  mapstructure:"len_activity_wnd"` // ms

	TeidRangeBits   int  `yaml:"teid_range_bits"   mapstructure:"teid_range_bits"`
	AssignTeidRange bool `yaml:"assign_teid_range" mapstructure:"assign_teid_range"`

	MinApplicationWorkers int `yaml:"min_application_workers" mapstructure:"min_application_workers"`
	MaxApplicationWorkers int `yaml:"max_application_workers" mapstructure:"max_application_workers"`
	MinTranslatorWorkers  int `yaml:"min_translator_workers"  mapstructure:"min_translator_workers"`
	MaxTranslatorWorkers  int `yaml:"max_translator_workers"  mapstructure:"max_translator_workers"`

	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Stats   StatsConfig   `yaml:"stats"   mapstructure:"stats"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"   mapstructure:"level"`
	Console bool   `yaml:"console" mapstructure:"console"`
}

type StatsConfig struct {
	Enabled           bool   `yaml:"enabled"             mapstructure:"enabled"`
	ReportIntervalSec int    `yaml:"report_interval_sec" mapstructure:"report_interval_sec"`
	ExportFile        string `yaml:"export_file"         mapstructure:"export_file"`
}

// SetDefaults applies the §6 "Default" column.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8805)
	v.SetDefault("socket_buffer_size", 2*1024*1024)
	v.SetDefault("t1", 3000)
	v.SetDefault("heartbeat_t1", 5000)
	v.SetDefault("n1", 2)
	v.SetDefault("heartbeat_n1", 3)
	v.SetDefault("nbr_activity_wnds", 10)
	v.SetDefault("len_activity_wnd", 6000)
	v.SetDefault("teid_range_bits", 0)
	v.SetDefault("assign_teid_range", false)
	v.SetDefault("min_application_workers", 1)
	v.SetDefault("max_application_workers", 4)
	v.SetDefault("min_translator_workers", 1)
	v.SetDefault("max_translator_workers", 1)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("stats.enabled", true)
	v.SetDefault("stats.report_interval_sec", 10)
}

// Load reads configuration from a YAML file, falling back to defaults
// for anything the file doesn't set.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadWithViper reads configuration from an existing viper instance,
// for CLI flag binding (cmd/pfcpstackd).
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
