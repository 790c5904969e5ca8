package email

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"math/big"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedMail struct {
	from   string
	to     []string
	data   []byte
	secure bool
}

// fakeRelay is an in-process SMTP server that accepts PLAIN auth for one user.
type fakeRelay struct {
	username   string
	password   string
	rejectRcpt string
	// noAuth hides AUTH from EHLO and lets MAIL through unauthenticated.
	noAuth bool

	mu       sync.Mutex
	received []receivedMail
	authed   bool
}

func (b *fakeRelay) NewSession(c *smtp.Conn) (smtp.Session, error) {
	_, secure := c.TLSConnectionState()
	return &fakeSession{relay: b, secure: secure}, nil
}

func (b *fakeRelay) messages() []receivedMail {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]receivedMail(nil), b.received...)
}

type fakeSession struct {
	relay  *fakeRelay
	secure bool
	authed bool
	cur    receivedMail
}

func (s *fakeSession) AuthMechanisms() []string {
	if s.relay.noAuth {
		return nil
	}
	return []string{sasl.Plain}
}

func (s *fakeSession) Auth(mech string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != s.relay.username || password != s.relay.password {
			return errors.New("invalid credentials")
		}
		s.authed = true
		s.relay.mu.Lock()
		s.relay.authed = true
		s.relay.mu.Unlock()
		return nil
	}), nil
}

func (s *fakeSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.authed && !s.relay.noAuth {
		return smtp.ErrAuthRequired
	}
	s.cur = receivedMail{from: from, secure: s.secure}
	return nil
}

func (s *fakeSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	if to == s.relay.rejectRcpt {
		return &smtp.SMTPError{Code: 550, EnhancedCode: smtp.EnhancedCode{5, 1, 1}, Message: "mailbox unavailable"}
	}
	s.cur.to = append(s.cur.to, to)
	return nil
}

func (s *fakeSession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.cur.data = b
	s.relay.mu.Lock()
	s.relay.received = append(s.relay.received, s.cur)
	s.relay.mu.Unlock()
	return nil
}

func (s *fakeSession) Reset() { s.cur = receivedMail{} }

func (s *fakeSession) Logout() error { return nil }

type relayMode int

const (
	relaySTARTTLS relayMode = iota
	relayImplicitTLS
	relayPlaintext
)

// selfSignedTLS returns a server config for 127.0.0.1 and a client config that trusts it.
func selfSignedTLS(t *testing.T) (server, client *tls.Config) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "relay.test"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	roots := x509.NewCertPool()
	roots.AddCert(leaf)

	server = &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}},
		MinVersion:   tls.VersionTLS12,
	}
	client = &tls.Config{RootCAs: roots, ServerName: "127.0.0.1", MinVersion: tls.VersionTLS12}
	return server, client
}

type relayTarget struct {
	cfg  SMTPConfig
	addr string
}

// sender builds an SMTPSender for cfg that dials the test listener.
func (rt relayTarget) sender(t *testing.T) *SMTPSender {
	t.Helper()
	s, err := NewSMTPSender(rt.cfg)
	require.NoError(t, err)
	s.addr = rt.addr
	return s
}

func startRelay(t *testing.T, relay *fakeRelay, mode relayMode) relayTarget {
	t.Helper()

	serverTLS, clientTLS := selfSignedTLS(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()

	srv := smtp.NewServer(relay)
	srv.Domain = "localhost"
	switch mode {
	case relaySTARTTLS:
		srv.TLSConfig = serverTLS
	case relayImplicitTLS:
		l = tls.NewListener(l, serverTLS)
	case relayPlaintext:
		srv.AllowInsecureAuth = true
	}
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	if mode == relayImplicitTLS {
		// The sender picks implicit TLS from the port number alone.
		p = 465
	}

	return relayTarget{
		cfg:  SMTPConfig{Host: host, Port: p, Username: relay.username, Password: relay.password, TLSConfig: clientTLS},
		addr: addr,
	}
}

func TestNewSMTPSender_FailsFast(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "host, port, username, password")

	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "password")
}

func TestSMTPConfig(t *testing.T) {
	cfg := SMTPConfig{Host: "smtp.example.com", Port: 465}
	assert.Equal(t, "smtp.example.com:465", cfg.Addr())
	assert.True(t, cfg.ImplicitTLS())

	cfg.Port = 587
	assert.False(t, cfg.ImplicitTLS())
}

func TestSMTPSender_Send(t *testing.T) {
	relay := &fakeRelay{username: "mailer", password: "secret"}
	sender := startRelay(t, relay, relaySTARTTLS).sender(t)

	msg := Message{
		From:    Address{Name: "Jane Doe", Email: "noreply@example.com"},
		To:      "jane@example.com",
		ReplyTo: "ada@example.com",
		Subject: "New Contact Form Submission: Hi",
		Text:    "Loved your site!",
		HTML:    "<p>Loved your site!</p>",
	}
	require.NoError(t, sender.Send(context.Background(), msg))

	got := relay.messages()
	require.Len(t, got, 1)
	assert.True(t, relay.authed)
	assert.True(t, got[0].secure)
	assert.Equal(t, "noreply@example.com", got[0].from)
	assert.Equal(t, []string{"jane@example.com"}, got[0].to)

	mr, err := mail.CreateReader(bytes.NewReader(got[0].data))
	require.NoError(t, err)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, msg.Subject, subject)
	replyTo, err := mr.Header.AddressList("Reply-To")
	require.NoError(t, err)
	require.Len(t, replyTo, 1)
	assert.Equal(t, "ada@example.com", replyTo[0].Address)
}

func TestSMTPSender_ImplicitTLS(t *testing.T) {
	relay := &fakeRelay{username: "mailer", password: "secret"}
	target := startRelay(t, relay, relayImplicitTLS)
	require.True(t, target.cfg.ImplicitTLS())

	err := target.sender(t).Send(context.Background(), Message{
		From:    Address{Name: "Jane Doe", Email: "noreply@example.com"},
		To:      "jane@example.com",
		Subject: "SMTP Test Email",
		Text:    "ok",
	})
	require.NoError(t, err)

	got := relay.messages()
	require.Len(t, got, 1)
	assert.True(t, relay.authed)
	assert.True(t, got[0].secure)
	assert.Equal(t, []string{"jane@example.com"}, got[0].to)
}

func TestSMTPSender_Failures(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		relay := &fakeRelay{username: "mailer", password: "secret"}
		target := startRelay(t, relay, relaySTARTTLS)
		target.cfg.Password = "wrong"

		err := target.sender(t).Send(context.Background(), Message{From: Address{Email: "noreply@example.com"}, To: "jane@example.com", Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "authentication failed")
		assert.Empty(t, relay.messages())
	})

	t.Run("rejected recipient", func(t *testing.T) {
		relay := &fakeRelay{username: "mailer", password: "secret", rejectRcpt: "nobody@example.com"}

		err := startRelay(t, relay, relaySTARTTLS).sender(t).Send(context.Background(), Message{From: Address{Email: "noreply@example.com"}, To: "nobody@example.com", Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send email")
		assert.Empty(t, relay.messages())
	})

	t.Run("relay without STARTTLS is refused", func(t *testing.T) {
		relay := &fakeRelay{username: "mailer", password: "secret"}

		err := startRelay(t, relay, relayPlaintext).sender(t).Send(context.Background(), Message{From: Address{Email: "noreply@example.com"}, To: "jane@example.com", Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect")
		assert.Contains(t, err.Error(), "STARTTLS")
		assert.False(t, relay.authed)
		assert.Empty(t, relay.messages())
	})

	t.Run("relay without AUTH is refused", func(t *testing.T) {
		relay := &fakeRelay{username: "mailer", password: "secret", noAuth: true}

		err := startRelay(t, relay, relaySTARTTLS).sender(t).Send(context.Background(), Message{From: Address{Email: "noreply@example.com"}, To: "jane@example.com", Text: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAuthUnsupported)
		assert.Contains(t, err.Error(), "authentication failed")
		assert.Empty(t, relay.messages())
	})

	t.Run("untrusted certificate", func(t *testing.T) {
		relay := &fakeRelay{username: "mailer", password: "secret"}
		target := startRelay(t, relay, relaySTARTTLS)
		target.cfg.TLSConfig = nil

		err := target.sender(t).Send(context.Background(), Message{From: Address{Email: "noreply@example.com"}, To: "jane@example.com", Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect")
		assert.False(t, relay.authed)
		assert.Empty(t, relay.messages())
	})

	t.Run("unreachable relay", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := l.Addr().(*net.TCPAddr)
		require.NoError(t, l.Close())

		sender, err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: addr.Port, Username: "u", Password: "p"})
		require.NoError(t, err)

		err = sender.Send(context.Background(), Message{From: Address{Email: "noreply@example.com"}, To: "jane@example.com", Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect")
	})

	t.Run("cancelled context never dials", func(t *testing.T) {
		sender, err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, Username: "u", Password: "p"})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, sender.Send(ctx, Message{}), context.Canceled)
	})
}
