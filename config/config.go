package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lakowalski/luxmedhunter/pkg/validator"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LUXMEDHUNTER_DATABASE_FILE
const EnvPrefix = "LUXMEDHUNTER"

// MailProvider selects the single active mail provider
type MailProvider string

const (
	MailProviderSMTP    MailProvider = "SMTP"
	MailProviderMailgun MailProvider = "MAILGUN"
	MailProviderSES     MailProvider = "SES"
)

type Config struct {
	DatabaseFile    string              `mapstructure:"database_file" validate:"required"`
	CredentialsFile string              `mapstructure:"credentials_file" validate:"required"`
	Credentials     CredentialsConfig   `mapstructure:"credentials"`
	Log             LogConfig           `mapstructure:"log"`
	Portal          PortalConfig        `mapstructure:"portal"`
	SessionCache    SessionCacheConfig  `mapstructure:"session_cache"`
	Notifications   NotificationsConfig `mapstructure:"notifications"`
	Audit           AuditConfig         `mapstructure:"audit"`
	Status          StatusConfig        `mapstructure:"status"`
}

type CredentialsConfig struct {
	MasterKey string `mapstructure:"master_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

type PortalConfig struct {
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"min=1"`
	LanguageID        int           `mapstructure:"language_id"`
	AllowRescheduling bool          `mapstructure:"allow_rescheduling"`
}

type SessionCacheConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type NotificationsConfig struct {
	Mail MailConfig `mapstructure:"mail"`
}

type MailConfig struct {
	Enable     bool          `mapstructure:"enable"`
	Recipients []string      `mapstructure:"recipients"`
	Provider   MailProvider  `mapstructure:"provider"`
	SMTP       SMTPConfig    `mapstructure:"smtp"`
	Mailgun    MailgunConfig `mapstructure:"mailgun"`
	SES        SESConfig     `mapstructure:"ses"`
}

type SMTPConfig struct {
	Server   string `mapstructure:"smtp_server"`
	Port     int    `mapstructure:"smtp_port"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type MailgunConfig struct {
	Domain string `mapstructure:"domain"`
	APIKey string `mapstructure:"apikey"`
	Sender string `mapstructure:"sender"`
}

type SESConfig struct {
	Sender             string `mapstructure:"sender"`
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	RegionName         string `mapstructure:"region_name"`
}

type AuditConfig struct {
	Enable bool   `mapstructure:"enable"`
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn"`
}

type StatusConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	ErrMissingRecipients = errors.New("notifications.mail.recipients is required when mail is enabled")
	ErrUnknownProvider   = errors.New("notifications.mail.provider must be one of SMTP, MAILGUN, SES")
	ErrMissingAuditDSN   = errors.New("audit.dsn is required when audit is enabled")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_file", "database.json")
	v.SetDefault("credentials_file", "credentials.json")
	v.SetDefault("credentials.master_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("portal.base_url", "https://portalpacjenta.luxmed.pl/PatientPortal")
	v.SetDefault("portal.timeout", 30*time.Second)
	v.SetDefault("portal.requests_per_second", 1.0)
	v.SetDefault("portal.burst", 3)
	v.SetDefault("portal.language_id", 10)
	v.SetDefault("portal.allow_rescheduling", false)
	v.SetDefault("session_cache.redis_addr", "")
	v.SetDefault("session_cache.redis_password", "")
	v.SetDefault("session_cache.redis_db", 0)
	v.SetDefault("notifications.mail.enable", false)
	v.SetDefault("notifications.mail.recipients", []string{})
	v.SetDefault("notifications.mail.provider", "")
	v.SetDefault("notifications.mail.smtp.smtp_server", "")
	v.SetDefault("notifications.mail.smtp.smtp_port", 587)
	v.SetDefault("notifications.mail.smtp.email", "")
	v.SetDefault("notifications.mail.smtp.password", "")
	v.SetDefault("notifications.mail.mailgun.domain", "")
	v.SetDefault("notifications.mail.mailgun.apikey", "")
	v.SetDefault("notifications.mail.mailgun.sender", "")
	v.SetDefault("notifications.mail.ses.sender", "")
	v.SetDefault("notifications.mail.ses.aws_access_key_id", "")
	v.SetDefault("notifications.mail.ses.aws_secret_access_key", "")
	v.SetDefault("notifications.mail.ses.region_name", "")
	v.SetDefault("audit.enable", false)
	v.SetDefault("audit.driver", "sqlite")
	v.SetDefault("audit.dsn", "")
	v.SetDefault("status.addr", "")
}

// LoadConfig reads the YAML configuration file at path and applies
// LUXMEDHUNTER_* environment overrides. An empty path means defaults and
// environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Audit.Driver = strings.ToLower(strings.TrimSpace(c.Audit.Driver))
	c.Portal.BaseURL = strings.TrimRight(c.Portal.BaseURL, "/")

	mail := &c.Notifications.Mail
	mail.Provider = MailProvider(strings.ToUpper(strings.TrimSpace(string(mail.Provider))))
	recipients := make([]string, 0, len(mail.Recipients))
	for _, r := range mail.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	mail.Recipients = recipients
}

// Validate checks field formats and the block of the active mail provider
func (c *Config) Validate() error {
	v := validator.NewValidator()
	if err := v.Validate(c); err != nil {
		return fmt.Errorf("invalid config: %s", v.Describe(err))
	}

	if c.Audit.Enable && c.Audit.DSN == "" {
		return ErrMissingAuditDSN
	}

	mail := c.Notifications.Mail
	if !mail.Enable {
		return nil
	}
	if len(mail.Recipients) == 0 {
		return ErrMissingRecipients
	}

	switch mail.Provider {
	case MailProviderSMTP:
		if mail.SMTP.Server == "" || mail.SMTP.Port <= 0 || mail.SMTP.Email == "" || mail.SMTP.Password == "" {
			return errors.New("notifications.mail.smtp requires smtp_server, smtp_port, email and password")
		}
	case MailProviderMailgun:
		if mail.Mailgun.Domain == "" || mail.Mailgun.APIKey == "" {
			return errors.New("notifications.mail.mailgun requires domain and apikey")
		}
	case MailProviderSES:
		if mail.SES.Sender == "" || mail.SES.AWSAccessKeyID == "" || mail.SES.AWSSecretAccessKey == "" || mail.SES.RegionName == "" {
			return errors.New("notifications.mail.ses requires sender, aws_access_key_id, aws_secret_access_key and region_name")
		}
	default:
		return ErrUnknownProvider
	}

	return nil
}
