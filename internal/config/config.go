package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
)

type Mode string

const (
	ModeFixture Mode = "fixture"
	ModeLive    Mode = "live"
)

const devJWTSecret = "studentmarket-dev-secret"

type Config struct {
	Port           string
	AppURL         string
	LogLevel       string
	SupabaseURL    string
	SupabaseAnon   string
	SupabaseSvc    string
	DatabaseURL    string
	JWTSecret      string
	RedisAddr      string
	RequestTimeout time.Duration
	SMTP           SMTP
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	ReplyTo  string
}

func (s SMTP) Configured() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != "" && s.From != ""
}

// Load reads .env (if any) and the process environment, then validates the
// result. A partial backend configuration is rejected here, never per call.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:         get("PORT", "8080"),
		AppURL:       strings.TrimRight(get("APP_URL", "http://localhost:3000"), "/"),
		LogLevel:     get("LOG_LEVEL", "info"),
		SupabaseURL:  get("SUPABASE_URL", ""),
		SupabaseAnon: get("SUPABASE_ANON_KEY", ""),
		SupabaseSvc:  get("SUPABASE_SERVICE_ROLE_KEY", ""),
		DatabaseURL:  get("SUPABASE_DB_URL", ""),
		JWTSecret:    get("JWT_SECRET", ""),
		RedisAddr:    get("REDIS_ADDR", ""),
		SMTP: SMTP{
			Host:     get("SMTP_HOST", ""),
			Port:     get("SMTP_PORT", ""),
			Username: get("SMTP_USERNAME", ""),
			Password: get("SMTP_PASSWORD", ""),
			From:     get("SMTP_FROM", ""),
			ReplyTo:  get("MAIL_REPLY_TO", ""),
		},
	}

	timeout, err := time.ParseDuration(get("REQUEST_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, apperr.ErrConfig.With("REQUEST_TIMEOUT: %v", err)
	}
	if timeout < time.Second || timeout > time.Minute {
		return Config{}, apperr.ErrConfig.With("REQUEST_TIMEOUT must be between 1s and 60s, got %s", timeout)
	}
	cfg.RequestTimeout = timeout

	mode, err := cfg.Mode()
	if err != nil {
		return Config{}, err
	}
	if mode == ModeLive {
		if cfg.DatabaseURL == "" {
			return Config{}, apperr.ErrConfig.With("missing env: SUPABASE_DB_URL")
		}
		if cfg.JWTSecret == "" {
			return Config{}, apperr.ErrConfig.With("missing env: JWT_SECRET")
		}
	} else if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

// Mode reports which backend the facade talks to. Both Supabase values
// present selects live mode; both absent selects fixtures.
func (c Config) Mode() (Mode, error) {
	hasURL, hasKey := c.SupabaseURL != "", c.SupabaseAnon != ""
	switch {
	case hasURL && hasKey:
		return ModeLive, nil
	case !hasURL && !hasKey:
		return ModeFixture, nil
	case hasURL:
		return "", apperr.ErrConfig.With("missing env: SUPABASE_ANON_KEY")
	default:
		return "", apperr.ErrConfig.With("missing env: SUPABASE_URL")
	}
}

func get(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
