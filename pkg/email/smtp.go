package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// ErrAuthUnsupported is returned when the relay does not advertise AUTH.
var ErrAuthUnsupported = errors.New("smtp: server doesn't support AUTH")

// SMTPConfig is read once at startup and never mutated afterwards.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSConfig overrides the default client TLS settings (ServerName = Host).
	TLSConfig *tls.Config
}

// Addr returns host:port.
func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ImplicitTLS reports whether the connection is TLS from the first byte (SMTPS, port 465).
// Every other port must upgrade with STARTTLS before credentials are sent.
func (c SMTPConfig) ImplicitTLS() bool {
	return c.Port == 465
}

// SMTPSender delivers messages through an authenticated SMTP relay.
// A new connection is opened per message; the sender itself is safe for concurrent use.
type SMTPSender struct {
	cfg SMTPConfig
	now func() time.Time
	// addr overrides cfg.Addr() as the dial target.
	addr string
}

// NewSMTPSender validates cfg and returns a sender. It never touches the network.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	var missing []string
	if strings.TrimSpace(cfg.Host) == "" {
		missing = append(missing, "host")
	}
	if cfg.Port <= 0 {
		missing = append(missing, "port")
	}
	if cfg.Username == "" {
		missing = append(missing, "username")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing smtp %s", ErrNotConfigured, strings.Join(missing, ", "))
	}

	return &SMTPSender{cfg: cfg, now: time.Now, addr: cfg.Addr()}, nil
}

// Send composes msg and submits it in a single SMTP transaction.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := Compose(msg, s.now())
	if err != nil {
		return err
	}

	c, err := s.dial()
	if err != nil {
		return fmt.Errorf("smtp: failed to connect to %s: %w", s.addr, err)
	}
	defer c.Close()

	// Credentials are configured, so a relay that won't take them is not one we submit to.
	if ok, _ := c.Extension("AUTH"); !ok {
		return fmt.Errorf("smtp: authentication failed: %w", ErrAuthUnsupported)
	}
	if err := c.Auth(sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)); err != nil {
		return fmt.Errorf("smtp: authentication failed: %w", err)
	}

	if err := c.SendMail(msg.From.Email, []string{msg.To}, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("smtp: failed to send email: %w", err)
	}

	return c.Quit()
}

func (s *SMTPSender) dial() (*smtp.Client, error) {
	if s.cfg.ImplicitTLS() {
		return smtp.DialTLS(s.addr, s.tlsConfig())
	}
	return smtp.DialStartTLS(s.addr, s.tlsConfig())
}

func (s *SMTPSender) tlsConfig() *tls.Config {
	if s.cfg.TLSConfig != nil {
		return s.cfg.TLSConfig.Clone()
	}
	return &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
}
