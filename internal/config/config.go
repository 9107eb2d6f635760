package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/coderjudith/va-portfolio-chat/internal/chat"
)

// Config holds everything the server needs at startup. Values come from an
// optional config.yaml plus CHAT_* environment overrides, with defaults
// matching the original deployment.
type Config struct {
	Addr           string
	AllowedOrigins []string
	WelcomeMessage string
	AdminToken     string
	Debug          bool

	Inactivity struct {
		Policy      chat.InactivityPolicy
		GracePeriod time.Duration
	}
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":5000")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("welcome_message", chat.DefaultWelcomeMessage)
	v.SetDefault("admin.token", "")
	v.SetDefault("debug", false)
	v.SetDefault("inactivity.policy", string(chat.PolicyDeferred))
	v.SetDefault("inactivity.grace_period", "5m")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Addr:           v.GetString("addr"),
		WelcomeMessage: v.GetString("welcome_message"),
		AdminToken:     v.GetString("admin.token"),
		Debug:          v.GetBool("debug"),
	}

	if raw := v.GetString("allowed_origins"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	policy, err := chat.ParseInactivityPolicy(v.GetString("inactivity.policy"))
	if err != nil {
		return nil, fmt.Errorf("invalid inactivity.policy: %w", err)
	}
	cfg.Inactivity.Policy = policy

	grace := v.GetDuration("inactivity.grace_period")
	if grace <= 0 {
		return nil, fmt.Errorf("inactivity.grace_period must be positive, got %q", v.GetString("inactivity.grace_period"))
	}
	cfg.Inactivity.GracePeriod = grace

	return cfg, nil
}
