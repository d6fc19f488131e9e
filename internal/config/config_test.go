package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "PORT")
	unsetEnvWithCleanup(t, "LOGIN_ATTEMPT_LIMIT")
	unsetEnvWithCleanup(t, "INTEREST_ACCRUAL_SCHEDULE")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected default ServerPort 8080, got %q", cfg.ServerPort)
	}
	if cfg.LoginAttemptLimit != 5 {
		t.Errorf("expected default LoginAttemptLimit 5, got %d", cfg.LoginAttemptLimit)
	}
	if cfg.InterestAccrualSchedule != "0 1 * * *" {
		t.Errorf("expected default accrual schedule, got %q", cfg.InterestAccrualSchedule)
	}
	if cfg.SessionTTLMinutes != 480 {
		t.Errorf("expected default SessionTTLMinutes 480, got %d", cfg.SessionTTLMinutes)
	}
}

func TestLoadConfig_PortAliasTakesPrecedence(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SERVER_PORT", "8080")
	setEnvWithCleanup(t, "PORT", "9999")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9999" {
		t.Fatalf("expected PORT to take precedence, got %q", cfg.ServerPort)
	}
}

func TestLoadConfig_NormalizesBadValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SESSION_TTL_MINUTES", "-10")
	setEnvWithCleanup(t, "LOGIN_ATTEMPT_LIMIT", "-1")
	setEnvWithCleanup(t, "REDIS_LOGIN_PREFIX", "   ")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SessionTTLMinutes != 480 {
		t.Errorf("expected negative ttl coerced to default, got %d", cfg.SessionTTLMinutes)
	}
	if cfg.LoginAttemptLimit != 0 {
		t.Errorf("expected negative limit coerced to 0, got %d", cfg.LoginAttemptLimit)
	}
	if cfg.RedisLoginPrefix != "backoffice:login_attempts" {
		t.Errorf("expected blank prefix replaced with default, got %q", cfg.RedisLoginPrefix)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
