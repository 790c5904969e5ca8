// Package bootstrap wires configuration, mail transport, usecases and the router into one handler.
// Both the long-running server and the serverless entry point build the service through it.
package bootstrap

import (
	"fmt"
	"log/slog"

	"portfolio-email-service/config"
	v1 "portfolio-email-service/internal/delivery/http/v1"
	"portfolio-email-service/internal/usecase"
	"portfolio-email-service/pkg/audit"
	"portfolio-email-service/pkg/email"
	"portfolio-email-service/pkg/logger"
	"portfolio-email-service/pkg/metrics"
	"portfolio-email-service/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ServiceName = "portfolio-email-service"

// App is a fully wired service.
type App struct {
	Router *gin.Engine
	Audit  *audit.Logger
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	// Sender replaces the transport chosen by MAIL_DRIVER.
	Sender   email.Sender
	Audit    *audit.Logger
	Registry *prometheus.Registry
	Log      *slog.Logger
}

// New validates cfg and builds the service. Missing mail settings are returned as an error
// so callers can fail before accepting traffic.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Log == nil {
		opts.Log = logger.Log
	}
	if opts.Audit == nil {
		opts.Audit = audit.New(ServiceName, cfg.Environment)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
		opts.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	sender := opts.Sender
	if sender == nil {
		var err error
		sender, err = NewSender(cfg, opts.Log)
		if err != nil {
			return nil, err
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	contactUC := usecase.NewContactUsecase(usecase.ContactDeps{
		Sender:   sender,
		Composer: email.NewComposer(cfg.Identity(), nil),
		Validate: validation.New(),
		Audit:    opts.Audit,
		Metrics:  metrics.New(opts.Registry),
		Log:      opts.Log,
	})

	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		HealthUC:  usecase.NewHealthUsecase(),
		Config:    cfg,
		Audit:     opts.Audit,
		Metrics:   promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}),
		Log:       opts.Log,
	})

	return &App{Router: router, Audit: opts.Audit}, nil
}

// NewSender builds the transport selected by MAIL_DRIVER.
func NewSender(cfg *config.Config, log *slog.Logger) (email.Sender, error) {
	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		return email.NewSMTPSender(cfg.SMTP())
	case config.MailDriverResend:
		return email.NewResendSender(cfg.ResendAPIKey)
	case config.MailDriverLog:
		log.Warn("MAIL_DRIVER=log: emails are logged, not sent")
		return email.NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER %q", cfg.MailDriver)
	}
}

// LogMailConfig prints the mail settings without secrets.
func LogMailConfig(cfg *config.Config, log *slog.Logger) {
	log.Info("Mail configuration",
		"driver", cfg.MailDriver,
		"host", cfg.SMTPHost,
		"port", cfg.SMTPPort,
		"user_set", cfg.SMTPUsername != "",
		"pass_set", cfg.SMTPPassword != "",
		"resend_key_set", cfg.ResendAPIKey != "",
		"from", cfg.Identity().From().String(),
		"recipient_set", cfg.ContactRecipient != "",
	)
}
