package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Database   DatabaseConfig
	Company    CompanyConfig
	Mail       MailConfig
	ActionLink ActionLinkConfig
	Pricing    PricingConfig
	Signature  SignatureConfig
	Admin      AdminConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
}

const (
	defaultSMTPTimeout = 15 * time.Second
	writeTimeoutMargin = 10 * time.Second
)

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// TrustedProxies lists the addresses or CIDR ranges whose
	// X-Forwarded-For and X-Real-IP headers are believed.
	TrustedProxies []string
}

const (
	StoreDriverFile  = "file"
	StoreDriverMySQL = "mysql"
)

type StoreConfig struct {
	Driver   string
	FilePath string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// CompanyConfig identifies the freelancer in outgoing mail and links.
type CompanyConfig struct {
	Name          string
	OperatorEmail string
	MailFrom      string
	SiteURL       string
	DashboardURL  string
}

type MailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

type ActionLinkConfig struct {
	Secret string
	TTL    time.Duration
}

type PricingConfig struct {
	CatalogPath string
}

const (
	SignatureStoreLocal = "local"
	SignatureStoreS3    = "s3"
)

type SignatureConfig struct {
	Store           string
	Dir             string
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	MaxBytes        int64
}

type AdminConfig struct {
	APIKey string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "")
	viper.SetDefault("TRUSTED_PROXIES", "")
	viper.SetDefault("STORE_DRIVER", StoreDriverFile)
	viper.SetDefault("STORE_FILE_PATH", "data/devis.json")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "devis")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "devis")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("COMPANY_NAME", "Studio Web")
	viper.SetDefault("OPERATOR_EMAIL", "contact@example.com")
	viper.SetDefault("MAIL_FROM", "no-reply@example.com")
	viper.SetDefault("SITE_URL", "http://localhost:8080")
	viper.SetDefault("DASHBOARD_URL", "")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_TIMEOUT", "15s")
	viper.SetDefault("MAIL_MAX_RETRIES", 2)
	viper.SetDefault("MAIL_RETRY_DELAY", "2s")
	viper.SetDefault("ACTION_TOKEN_TTL", "720h")
	viper.SetDefault("PRICING_CATALOG_PATH", "")
	viper.SetDefault("SIGNATURE_STORE", SignatureStoreLocal)
	viper.SetDefault("SIGNATURE_DIR", "data/signatures")
	viper.SetDefault("S3_REGION", "auto")
	viper.SetDefault("SIGNATURE_MAX_BYTES", 2<<20)
	viper.SetDefault("ADMIN_API_KEY", "")
	viper.SetDefault("RATE_LIMIT_RPS", 1.0)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("LOG_LEVEL", "info")

	durations := map[string]time.Duration{}
	for _, key := range []string{
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "DB_CONN_MAX_LIFETIME",
		"SMTP_TIMEOUT", "MAIL_RETRY_DELAY", "ACTION_TOKEN_TTL",
	} {
		raw := strings.TrimSpace(viper.GetString(key))
		if raw == "" && key == "SERVER_WRITE_TIMEOUT" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		durations[key] = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           viper.GetInt("SERVER_PORT"),
			ReadTimeout:    durations["SERVER_READ_TIMEOUT"],
			WriteTimeout:   durations["SERVER_WRITE_TIMEOUT"],
			TrustedProxies: splitList(viper.GetString("TRUSTED_PROXIES")),
		},
		Store: StoreConfig{
			Driver:   viper.GetString("STORE_DRIVER"),
			FilePath: viper.GetString("STORE_FILE_PATH"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durations["DB_CONN_MAX_LIFETIME"],
		},
		Company: CompanyConfig{
			Name:          viper.GetString("COMPANY_NAME"),
			OperatorEmail: viper.GetString("OPERATOR_EMAIL"),
			MailFrom:      viper.GetString("MAIL_FROM"),
			SiteURL:       viper.GetString("SITE_URL"),
			DashboardURL:  viper.GetString("DASHBOARD_URL"),
		},
		Mail: MailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUser:     viper.GetString("SMTP_USER"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			Timeout:      durations["SMTP_TIMEOUT"],
			MaxRetries:   viper.GetInt("MAIL_MAX_RETRIES"),
			RetryDelay:   durations["MAIL_RETRY_DELAY"],
		},
		ActionLink: ActionLinkConfig{
			Secret: viper.GetString("ACTION_TOKEN_SECRET"),
			TTL:    durations["ACTION_TOKEN_TTL"],
		},
		Pricing: PricingConfig{
			CatalogPath: viper.GetString("PRICING_CATALOG_PATH"),
		},
		Signature: SignatureConfig{
			Store:           viper.GetString("SIGNATURE_STORE"),
			Dir:             viper.GetString("SIGNATURE_DIR"),
			Bucket:          viper.GetString("S3_BUCKET"),
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			Region:          viper.GetString("S3_REGION"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			MaxBytes:        viper.GetInt64("SIGNATURE_MAX_BYTES"),
		},
		Admin: AdminConfig{
			APIKey: viper.GetString("ADMIN_API_KEY"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = cfg.Mail.MinWriteTimeout() + writeTimeoutMargin
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverFile, StoreDriverMySQL:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Signature.Store {
	case SignatureStoreLocal:
	case SignatureStoreS3:
		if c.Signature.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when SIGNATURE_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown SIGNATURE_STORE %q", c.Signature.Store)
	}
	if c.Mail.MaxRetries < 0 {
		return fmt.Errorf("MAIL_MAX_RETRIES must not be negative")
	}
	if c.Company.OperatorEmail == "" {
		return fmt.Errorf("OPERATOR_EMAIL is required")
	}
	if need := c.Mail.MinWriteTimeout(); c.Server.WriteTimeout < need {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT %s is shorter than the %s intake may spend on mail retries", c.Server.WriteTimeout, need)
	}
	return nil
}

// MinWriteTimeout is the longest intake can spend mailing the operator and
// the client when every attempt runs into the SMTP timeout.
func (m MailConfig) MinWriteTimeout() time.Duration {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	retries := max(m.MaxRetries, 0)
	leg := time.Duration(retries+1)*timeout + time.Duration(retries)*m.RetryDelay
	return 2 * leg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
