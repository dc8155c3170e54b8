package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Quota.DailyLimit != 100 {
		t.Errorf("daily limit = %d, want 100", cfg.Quota.DailyLimit)
	}
	if cfg.Quota.Cooldown != 3*time.Second {
		t.Errorf("cooldown = %v, want 3s", cfg.Quota.Cooldown)
	}
	if cfg.Judge.PollInterval != time.Second || cfg.Judge.MaxPollAttempts != 10 {
		t.Errorf("polling = %v x %d", cfg.Judge.PollInterval, cfg.Judge.MaxPollAttempts)
	}
	if cfg.Judge.RunBudget() != 25*time.Second {
		t.Errorf("run budget = %v, want 25s", cfg.Judge.RunBudget())
	}
	if cfg.EvaluationBudget() != 55*time.Second {
		t.Errorf("evaluation budget = %v, want 55s", cfg.EvaluationBudget())
	}
	if cfg.Code.MaxSourceBytes != 65536 {
		t.Errorf("max source = %d", cfg.Code.MaxSourceBytes)
	}
}

func TestValidate_RejectsUnknownModes(t *testing.T) {
	tests := []struct {
		name string
		set  func(v *viper.Viper)
	}{
		{"executor", func(v *viper.Viper) { v.Set("EXECUTOR_MODE", "local") }},
		{"quota backend", func(v *viper.Viper) { v.Set("QUOTA_BACKEND", "etcd") }},
		{"daily limit", func(v *viper.Viper) { v.Set("QUOTA_DAILY_LIMIT", 0) }},
		{"poll attempts", func(v *viper.Viper) { v.Set("JUDGE_MAX_POLL_ATTEMPTS", 0) }},
		{"run budget past write timeout", func(v *viper.Viper) { v.Set("API_WRITE_TIMEOUT", "20s") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			tt.set(v)
			if err := fromViper(v).Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"", "info", "debug", "warn"} {
		logger, err := NewLogger(level)
		if err != nil {
			t.Errorf("level %q: %v", level, err)
			continue
		}
		_ = logger.Sync()
	}
	if _, err := NewLogger("chatty"); err == nil {
		t.Error("expected unknown level to fail")
	}
}
