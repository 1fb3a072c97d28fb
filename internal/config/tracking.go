package config

import (
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TrackingConfig holds the tunables of the tracking pipeline. The distance
// algorithm is read once at startup; radius and cooldown may be hot-reloaded.
type TrackingConfig struct {
	Algorithm            string        `mapstructure:"algorithm"`
	EntranceRadiusMeters int           `mapstructure:"entrance_radius_meters"`
	EntranceCooldown     time.Duration `mapstructure:"entrance_cooldown"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
}

func DefaultTrackingConfig() TrackingConfig {
	return TrackingConfig{
		Algorithm:            "euclidean",
		EntranceRadiusMeters: 100,
		EntranceCooldown:     time.Minute,
		CacheTTL:             24 * time.Hour,
	}
}

// TrackingConfigHolder keeps the current TrackingConfig behind an atomic value
// so readers never block on a reload.
type TrackingConfigHolder struct {
	current atomic.Value // holds TrackingConfig
}

func NewTrackingConfigHolder() (*TrackingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("tracking")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/couriertrack")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COURIERTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &TrackingConfigHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultTrackingConfig())
		return holder, nil
	}

	cfg, err := decodeTrackingConfig(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.OnConfigChange(func(_ fsnotify.Event) {
		reloaded, err := decodeTrackingConfig(v)
		if err != nil {
			log.Printf("tracking config reload failed: %v", err)
			return
		}
		holder.current.Store(reloaded)
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticTrackingConfigHolder wraps a fixed configuration, without file
// watching. Used by tests and tools.
func NewStaticTrackingConfigHolder(cfg TrackingConfig) *TrackingConfigHolder {
	holder := &TrackingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// Current returns the active tracking configuration.
func (h *TrackingConfigHolder) Current() TrackingConfig {
	if value, ok := h.current.Load().(TrackingConfig); ok {
		return value
	}
	return DefaultTrackingConfig()
}

func decodeTrackingConfig(v *viper.Viper) (TrackingConfig, error) {
	cfg := DefaultTrackingConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return TrackingConfig{}, err
	}
	if cfg.EntranceRadiusMeters <= 0 {
		cfg.EntranceRadiusMeters = 100
	}
	if cfg.EntranceCooldown <= 0 {
		cfg.EntranceCooldown = time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return cfg, nil
}
