package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MembershipConfig carries the default monthly fee per membership type.
// Keys are matched case-insensitively.
type MembershipConfig struct {
	DefaultFees map[string]float64 `mapstructure:"defaultFees"`
	FallbackFee float64            `mapstructure:"fallbackFee"`
}

func DefaultMembershipConfig() MembershipConfig {
	return MembershipConfig{
		DefaultFees: map[string]float64{
			"premium": 49.99,
			"basic":   29.99,
			"family":  79.99,
			"monthly": 39.99,
			"annual":  399.99,
		},
		FallbackFee: 39.99,
	}
}

type MembershipConfigHolder struct {
	current atomic.Value // holds MembershipConfig
}

// NewStaticMembershipConfigHolder returns a holder that never reloads.
func NewStaticMembershipConfigHolder(cfg MembershipConfig) *MembershipConfigHolder {
	holder := &MembershipConfigHolder{}
	holder.current.Store(normalizeMembershipConfig(cfg))
	return holder
}

func NewMembershipConfigHolder(appCfg Config) (*MembershipConfigHolder, error) {
	v := viper.New()

	if appCfg.MembershipConfigPath != "" {
		v.SetConfigFile(appCfg.MembershipConfigPath)
	} else {
		v.SetConfigName("membership")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/churnlytics")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CHURNLYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultMembershipConfig()
	fees := make(map[string]any, len(defaults.DefaultFees))
	for k, fee := range defaults.DefaultFees {
		fees[k] = fee
	}
	v.SetDefault("membership.defaultFees", fees)
	v.SetDefault("membership.fallbackFee", defaults.FallbackFee)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read membership config: %w", err)
		}
		found = false
	}

	cfg, err := decodeMembershipConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &MembershipConfigHolder{}
	holder.current.Store(cfg)

	if found {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeMembershipConfig(v)
			if err != nil {
				log.Printf("[membership-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[membership-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *MembershipConfigHolder) Get() MembershipConfig {
	return h.current.Load().(MembershipConfig)
}

func decodeMembershipConfig(v *viper.Viper) (MembershipConfig, error) {
	var cfg MembershipConfig
	if err := v.UnmarshalKey("membership", &cfg); err != nil {
		return MembershipConfig{}, err
	}
	if err := validateMembershipConfig(cfg); err != nil {
		return MembershipConfig{}, err
	}
	return normalizeMembershipConfig(cfg), nil
}

func validateMembershipConfig(cfg MembershipConfig) error {
	if cfg.FallbackFee < 0 {
		return errors.New("membership.fallbackFee cannot be negative")
	}
	for name, fee := range cfg.DefaultFees {
		if fee < 0 {
			return fmt.Errorf("membership.defaultFees.%s cannot be negative", name)
		}
	}
	return nil
}

func normalizeMembershipConfig(cfg MembershipConfig) MembershipConfig {
	fees := make(map[string]float64, len(cfg.DefaultFees))
	for name, fee := range cfg.DefaultFees {
		fees[strings.ToLower(strings.TrimSpace(name))] = fee
	}
	return MembershipConfig{DefaultFees: fees, FallbackFee: cfg.FallbackFee}
}
