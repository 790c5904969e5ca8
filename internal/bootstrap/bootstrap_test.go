package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"portfolio-email-service/config"
	"portfolio-email-service/pkg/audit"
	"portfolio-email-service/pkg/email"
	"portfolio-email-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func testConfig(env map[string]string) *config.Config {
	base := map[string]string{
		"SMTP_HOST":               "smtp.example.com",
		"SMTP_PORT":               "587",
		"SMTP_USER":               "jane",
		"SMTP_PASS":               "secret",
		"SMTP_FROM_NAME":          "Jane Doe",
		"SMTP_FROM_EMAIL":         "noreply@example.com",
		"CONTACT_RECIPIENT_EMAIL": "jane@example.com",
	}
	for k, v := range env {
		base[k] = v
	}
	return config.FromLookup(func(key string) (string, bool) {
		v, ok := base[key]
		return v, ok
	})
}

func TestNew_EndToEnd(t *testing.T) {
	sender := &recordingSender{}
	reg := prometheus.NewRegistry()
	app, err := New(testConfig(nil), Options{
		Sender:   sender,
		Audit:    audit.Nop(),
		Registry: reg,
		Log:      logger.New(&bytes.Buffer{}, "test"),
	})
	require.NoError(t, err)

	body := `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Loved your site!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "jane@example.com", sender.sent[0].To)
	assert.Equal(t, "ada@example.com", sender.sent[0].ReplyTo)
	assert.Equal(t, "ada@example.com", sender.sent[1].To)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `portfolio_contact_submissions_total{outcome="delivered"} 1`)
}

func TestNew_FailsFastOnMissingConfig(t *testing.T) {
	_, err := New(testConfig(map[string]string{"SMTP_PASS": ""}), Options{Audit: audit.Nop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_PASS")
}

func TestNewSender(t *testing.T) {
	log := logger.New(&bytes.Buffer{}, "test")

	s, err := NewSender(testConfig(nil), log)
	require.NoError(t, err)
	assert.IsType(t, &email.SMTPSender{}, s)

	s, err = NewSender(testConfig(map[string]string{"MAIL_DRIVER": "resend", "RESEND_API_KEY": "re_test"}), log)
	require.NoError(t, err)
	assert.IsType(t, &email.ResendSender{}, s)

	s, err = NewSender(testConfig(map[string]string{"MAIL_DRIVER": "log"}), log)
	require.NoError(t, err)
	assert.IsType(t, &email.LogSender{}, s)

	_, err = NewSender(testConfig(map[string]string{"MAIL_DRIVER": "pigeon"}), log)
	assert.Error(t, err)
}

func TestLogMailConfig_OmitsSecrets(t *testing.T) {
	var buf bytes.Buffer
	LogMailConfig(testConfig(nil), logger.New(&buf, "test"))

	out := buf.String()
	assert.Contains(t, out, `"host":"smtp.example.com"`)
	assert.Contains(t, out, `"pass_set":true`)
	assert.NotContains(t, out, "secret")
}
