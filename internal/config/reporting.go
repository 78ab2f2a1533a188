package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReportingConfig tunes the analytics aggregation without a redeploy.
type ReportingConfig struct {
	// WindowMonths lists the trailing windows computed per report.
	// Zero means all-time.
	WindowMonths []int `mapstructure:"windowMonths"`
	// TrendMaxPoints caps the persistency trend series.
	TrendMaxPoints int `mapstructure:"trendMaxPoints"`
}

func DefaultReportingConfig() ReportingConfig {
	return ReportingConfig{
		WindowMonths:   []int{3, 6, 9, 0},
		TrendMaxPoints: 24,
	}
}

type ReportingConfigHolder struct {
	current atomic.Value // holds ReportingConfig
}

func NewReportingConfigHolder() (*ReportingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reporting")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/agentspace/config") // Volume-mounted config
	v.AddConfigPath("/etc/agentspace")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	// env only for path override (optional)
	v.SetEnvPrefix("AGENTSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultReportingConfig()
		v.SetDefault("reporting.windowMonths", defaults.WindowMonths)
		v.SetDefault("reporting.trendMaxPoints", defaults.TrendMaxPoints)
	}

	var cfg ReportingConfig
	if err := v.UnmarshalKey("reporting", &cfg); err != nil {
		return nil, err
	}
	if err := validateReportingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportingConfig
		if err := v.UnmarshalKey("reporting", &updated); err != nil {
			log.Printf("[reporting-config] reload failed: %v", err)
			return
		}
		if err := validateReportingConfig(updated); err != nil {
			log.Printf("[reporting-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reporting-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ReportingConfigHolder) Get() ReportingConfig {
	return h.current.Load().(ReportingConfig)
}

func validateReportingConfig(cfg ReportingConfig) error {
	if len(cfg.WindowMonths) == 0 {
		return errors.New("reporting.windowMonths cannot be empty")
	}
	for _, months := range cfg.WindowMonths {
		if months < 0 {
			return errors.New("reporting.windowMonths cannot be negative")
		}
	}
	if cfg.TrendMaxPoints <= 0 {
		return errors.New("reporting.trendMaxPoints must be positive")
	}
	return nil
}
