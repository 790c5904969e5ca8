package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"portfolio-email-service/pkg/email"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	MailDriverSMTP   = "smtp"
	MailDriverResend = "resend"
	MailDriverLog    = "log"
)

type Config struct {
	Port        string
	Environment string
	// Mail
	MailDriver       string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	SMTPFromName     string
	SMTPFromEmail    string
	ContactRecipient string
	ResendAPIKey     string
	// HTTP
	CORSOrigins       []string
	CORSPreviewSuffix string
	MaxBodyBytes      int64
}

// LoadConfig reads .env.local and .env (when present) and then the process environment.
// Values already set in the environment win over the files.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	return FromLookup(os.LookupEnv), nil
}

// FromLookup builds a Config from an arbitrary key lookup, os.LookupEnv in production.
func FromLookup(lookup func(string) (string, bool)) *Config {
	env := envReader{lookup: lookup}

	cfg := &Config{
		Port:        env.get("PORT", "5000"),
		Environment: resolveEnvironment(env),
		// Mail
		MailDriver:       strings.ToLower(env.get("MAIL_DRIVER", MailDriverSMTP)),
		SMTPHost:         env.get("SMTP_HOST", ""),
		SMTPPort:         env.getInt("SMTP_PORT", 0),
		SMTPUsername:     env.get("SMTP_USER", ""),
		SMTPPassword:     env.get("SMTP_PASS", ""),
		SMTPFromName:     env.get("SMTP_FROM_NAME", ""),
		SMTPFromEmail:    env.get("SMTP_FROM_EMAIL", ""),
		ContactRecipient: env.get("CONTACT_RECIPIENT_EMAIL", ""),
		ResendAPIKey:     env.get("RESEND_API_KEY", ""),
		// HTTP
		CORSOrigins:       corsOrigins(env),
		CORSPreviewSuffix: env.get("CORS_PREVIEW_SUFFIX", ".vercel.app"),
		MaxBodyBytes:      int64(env.getInt("MAX_BODY_BYTES", 10*1024)),
	}

	return cfg
}

// IsProduction reports whether diagnostic detail must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate returns a single error naming every missing mail setting.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	switch c.MailDriver {
	case MailDriverSMTP:
		require("SMTP_HOST", c.SMTPHost)
		// Unset, blank and non-numeric ports all read as 0.
		if c.SMTPPort <= 0 {
			missing = append(missing, "SMTP_PORT")
		}
		require("SMTP_USER", c.SMTPUsername)
		require("SMTP_PASS", c.SMTPPassword)
	case MailDriverResend:
		require("RESEND_API_KEY", c.ResendAPIKey)
	case MailDriverLog:
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver)
	}
	require("SMTP_FROM_EMAIL", c.SMTPFromEmail)
	require("SMTP_FROM_NAME", c.SMTPFromName)
	require("CONTACT_RECIPIENT_EMAIL", c.ContactRecipient)

	if len(missing) > 0 {
		return fmt.Errorf("missing mail env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SMTP returns the immutable settings handed to the SMTP sender.
func (c *Config) SMTP() email.SMTPConfig {
	return email.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
	}
}

// Identity returns the fixed sender and owner addresses used for every outbound message.
func (c *Config) Identity() email.Identity {
	return email.Identity{
		FromName:  c.SMTPFromName,
		FromEmail: c.SMTPFromEmail,
		OwnerTo:   c.ContactRecipient,
	}
}

func resolveEnvironment(env envReader) string {
	if v := env.get("APP_ENV", env.get("NODE_ENV", "")); v != "" {
		return strings.ToLower(v)
	}
	if env.get("GIN_MODE", "") == "release" {
		return EnvProduction
	}
	return EnvDevelopment
}

// DefaultCORSOrigins are the local dev servers of the portfolio frontend.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"https://localhost:3000",
	"https://localhost:5173",
}

// corsOrigins merges the defaults, CORS_ORIGINS (or CLIENT_URL) and the current Vercel deployment URL.
func corsOrigins(env envReader) []string {
	origins := append([]string{}, DefaultCORSOrigins...)
	extra := env.getList("CORS_ORIGINS")
	if len(extra) == 0 {
		extra = env.getList("CLIENT_URL")
	}
	origins = append(origins, extra...)
	if vercel := env.get("VERCEL_URL", ""); vercel != "" {
		origins = append(origins, "https://"+strings.TrimPrefix(vercel, "https://"))
	}
	return origins
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) get(key, fallback string) string {
	if value, exists := e.lookup(key); exists && value != "" {
		return value
	}
	return fallback
}

// getInt returns an integer variable or fallback if not set/invalid
func (e envReader) getInt(key string, fallback int) int {
	if value, exists := e.lookup(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return fallback
}

// getList splits a comma-separated variable, dropping blanks and trailing slashes.
func (e envReader) getList(key string) []string {
	raw, exists := e.lookup(key)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
