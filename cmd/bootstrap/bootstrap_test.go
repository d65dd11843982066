package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lakowalski/luxmedhunter/config"
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"completed", nil, ExitOK},
		{"interrupted", context.Canceled, ExitOK},
		{"conflict", entity.ErrBookingConflict, ExitOK},
		{"no credentials", fmt.Errorf("ala: %w", entity.ErrConfigurationMissing), ExitConfigurationMissing},
		{"no criteria", entity.ErrNoSearchCriteria, ExitNoSearchCriteria},
		{"login", entity.ErrAuthenticationFailed, ExitAuthenticationFailed},
		{"portal", entity.ErrPortalUnavailable, ExitPortalUnavailable},
		{"disk", fmt.Errorf("%w: disk full", entity.ErrPersistenceFailure), ExitPersistenceFailure},
		{"joined pass", errors.Join(entity.ErrPortalUnavailable, entity.ErrPersistenceFailure), ExitPersistenceFailure},
		{"other", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d; want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	log := setupLogger(config.LogConfig{Level: "debug", Format: "text"})
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %s", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter, got %T", log.Formatter)
	}

	log = setupLogger(config.LogConfig{Level: "bogus", Format: "json"})
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("unknown level must fall back to info, got %s", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected JSON formatter, got %T", log.Formatter)
	}
}

func TestNew_WiresDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LUXMEDHUNTER_DATABASE_FILE", filepath.Join(dir, "database.json"))
	t.Setenv("LUXMEDHUNTER_CREDENTIALS_FILE", filepath.Join(dir, "credentials.json"))
	t.Setenv("LUXMEDHUNTER_CREDENTIALS_MASTER_KEY", "secret")
	t.Setenv("LUXMEDHUNTER_LOG_LEVEL", "error")

	app, err := New(context.Background(), Options{StatusAddr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer app.Close()

	if app.Server == nil || app.Server.Addr != "127.0.0.1:0" {
		t.Fatalf("status server not wired from options")
	}
	if app.DB != nil || app.RedisClient != nil {
		t.Fatalf("audit and redis must stay off by default")
	}

	// no registered users yet
	err = app.Hunt(context.Background(), 0)
	if ExitCode(err) != ExitConfigurationMissing {
		t.Fatalf("want configuration missing, got %v", err)
	}
}

func TestNew_ConfigErrorsExitAsConfigurationMissing(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := New(context.Background(), Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
		if !errors.Is(err, entity.ErrConfigurationMissing) {
			t.Fatalf("want configuration missing, got %v", err)
		}
		if code := ExitCode(err); code != ExitConfigurationMissing {
			t.Fatalf("exit code = %d; want %d", code, ExitConfigurationMissing)
		}
	})

	t.Run("mail without recipients", func(t *testing.T) {
		t.Setenv("LUXMEDHUNTER_NOTIFICATIONS_MAIL_ENABLE", "true")
		t.Setenv("LUXMEDHUNTER_NOTIFICATIONS_MAIL_PROVIDER", "SMTP")

		_, err := New(context.Background(), Options{})
		if !errors.Is(err, config.ErrMissingRecipients) {
			t.Fatalf("want ErrMissingRecipients kept in the chain, got %v", err)
		}
		if code := ExitCode(err); code != ExitConfigurationMissing {
			t.Fatalf("exit code = %d; want %d", code, ExitConfigurationMissing)
		}
	})
}
