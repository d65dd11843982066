package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DatabaseFile != "database.json" || cfg.CredentialsFile != "credentials.json" {
		t.Fatalf("unexpected files: %s %s", cfg.DatabaseFile, cfg.CredentialsFile)
	}
	if cfg.Portal.Timeout != 30*time.Second || cfg.Portal.Burst != 3 {
		t.Fatalf("unexpected portal defaults: %+v", cfg.Portal)
	}
	if cfg.Notifications.Mail.Enable || cfg.Audit.Enable {
		t.Fatalf("mail and audit must be off by default")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
database_file: /var/lib/hunter/database.json
log:
  level: WARNING
  format: text
portal:
  base_url: https://portal.example.com/PatientPortal/
  allow_rescheduling: true
notifications:
  mail:
    enable: true
    provider: smtp
    recipients: [" ala@example.com ", ""]
    smtp:
      smtp_server: smtp.example.com
      smtp_port: 587
      email: hunter@example.com
      password: secret
`)
	t.Setenv("LUXMEDHUNTER_DATABASE_FILE", "/tmp/override.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DatabaseFile != "/tmp/override.json" {
		t.Fatalf("environment must override the file, got %s", cfg.DatabaseFile)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Fatalf("log not normalized: %+v", cfg.Log)
	}
	if cfg.Portal.BaseURL != "https://portal.example.com/PatientPortal" || !cfg.Portal.AllowRescheduling {
		t.Fatalf("unexpected portal config: %+v", cfg.Portal)
	}
	mail := cfg.Notifications.Mail
	if mail.Provider != MailProviderSMTP {
		t.Fatalf("provider = %q", mail.Provider)
	}
	if len(mail.Recipients) != 1 || mail.Recipients[0] != "ala@example.com" {
		t.Fatalf("recipients = %q", mail.Recipients)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func validConfig() Config {
	return Config{
		DatabaseFile:    "database.json",
		CredentialsFile: "credentials.json",
		Log:             LogConfig{Level: "info", Format: "json"},
		Portal: PortalConfig{
			BaseURL:           "https://portal.example.com",
			Timeout:           time.Second,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Audit: AuditConfig{Driver: "sqlite"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
		wantMsg string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "mail disabled ignores provider", modify: func(c *Config) { c.Notifications.Mail.Provider = "PIGEON" }},
		{name: "bad level", modify: func(c *Config) { c.Log.Level = "loud" }, wantMsg: "Level"},
		{name: "bad url", modify: func(c *Config) { c.Portal.BaseURL = "not a url" }, wantMsg: "BaseURL"},
		{name: "audit without dsn", modify: func(c *Config) { c.Audit.Enable = true }, wantErr: ErrMissingAuditDSN},
		{
			name: "no recipients",
			modify: func(c *Config) {
				c.Notifications.Mail = MailConfig{Enable: true, Provider: MailProviderSES}
			},
			wantErr: ErrMissingRecipients,
		},
		{
			name: "unknown provider",
			modify: func(c *Config) {
				c.Notifications.Mail = MailConfig{Enable: true, Provider: "PIGEON", Recipients: []string{"a@example.com"}}
			},
			wantErr: ErrUnknownProvider,
		},
		{
			name: "incomplete mailgun",
			modify: func(c *Config) {
				c.Notifications.Mail = MailConfig{
					Enable: true, Provider: MailProviderMailgun, Recipients: []string{"a@example.com"},
					Mailgun: MailgunConfig{Domain: "mg.example.com"},
				}
			},
			wantMsg: "mailgun",
		},
		{
			name: "complete ses",
			modify: func(c *Config) {
				c.Notifications.Mail = MailConfig{
					Enable: true, Provider: MailProviderSES, Recipients: []string{"a@example.com"},
					SES: SESConfig{Sender: "h@example.com", AWSAccessKeyID: "id", AWSSecretAccessKey: "key", RegionName: "eu-west-1"},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
			case tt.wantMsg != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
					t.Fatalf("want error mentioning %q, got %v", tt.wantMsg, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}
