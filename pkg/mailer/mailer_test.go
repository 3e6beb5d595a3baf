package mailer

import (
	"context"
	"encoding/json"
	"lincognito/pkg/mailer/providers"
	"lincognito/pkg/mailer/registry"
	"lincognito/pkg/mailer/templates"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() providers.RetryConfig {
	return providers.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestResend_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, registry.PathResendEmails, r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg_123"})
	}))
	defer srv.Close()

	resend := providers.NewResendProvider(providers.ResendConfig{APIKey: "re_test", APIURL: srv.URL})
	svc, err := NewEmailService(EmailServiceConfig{
		Providers:   []providers.EmailProvider{providers.WithRetry(resend, fastRetry())},
		DefaultFrom: "Lincognito <hello@lincognito.com>",
	})
	require.NoError(t, err)

	result, err := svc.Send(context.Background(), &providers.EmailData{
		To:      []string{"writer@example.com"},
		Subject: "hi",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "msg_123", result.MessageID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResend_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	resend := providers.WithRetry(providers.NewResendProvider(providers.ResendConfig{APIKey: "re_test", APIURL: srv.URL}), fastRetry())
	result, err := resend.Send(context.Background(), &providers.EmailData{
		To: []string{"a@example.com"}, From: "b@example.com", Subject: "s", HTML: "h",
	})
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid from")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type stubProvider struct {
	name  string
	fail  bool
	calls int
}

func (s *stubProvider) Send(_ context.Context, _ *providers.EmailData) (*providers.EmailResult, error) {
	s.calls++
	if s.fail {
		return &providers.EmailResult{Success: false, Error: "down", Provider: s.name}, registry.ErrAPIStatus(http.StatusBadGateway)
	}
	return &providers.EmailResult{Success: true, MessageID: s.name + "-1", Provider: s.name}, nil
}

func (s *stubProvider) Verify(context.Context) (bool, error) { return !s.fail, nil }

func (s *stubProvider) GetName() string { return s.name }

func TestWithRetry_DefaultMakesThreeAttempts(t *testing.T) {
	cfg := providers.DefaultRetryConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	down := &stubProvider{name: "resend", fail: true}

	result, err := providers.WithRetry(down, cfg).Send(context.Background(), &providers.EmailData{
		To: []string{"a@example.com"}, From: "b@example.com", Subject: "s", HTML: "h",
	})
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, down.calls)
}

func TestEmailService_FailsOverToSecondProvider(t *testing.T) {
	primary := &stubProvider{name: "resend", fail: true}
	secondary := &stubProvider{name: "sendgrid"}

	svc, err := NewEmailService(EmailServiceConfig{
		Providers:   []providers.EmailProvider{primary, secondary},
		DefaultFrom: "hello@lincognito.com",
	})
	require.NoError(t, err)

	result, err := svc.Send(context.Background(), &providers.EmailData{
		To: []string{"writer@example.com"}, Subject: "s", HTML: "h",
	})
	require.NoError(t, err)
	assert.Equal(t, "sendgrid", result.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, map[string]bool{"resend": false, "sendgrid": true}, svc.VerifyProviders(context.Background()))
}

func TestEmailService_ValidatesBeforeSending(t *testing.T) {
	stub := &stubProvider{name: "resend"}
	svc, err := NewEmailService(EmailServiceConfig{Providers: []providers.EmailProvider{stub}, DefaultFrom: "hello@lincognito.com"})
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), &providers.EmailData{To: []string{"not-an-email"}, Subject: "s", HTML: "h"})
	require.Error(t, err)
	assert.Equal(t, 0, stub.calls)

	_, err = NewEmailService(EmailServiceConfig{})
	assert.ErrorIs(t, err, registry.ErrAtLeastOneProviderRequired)
}

func TestSendWithTypedTemplate_FillsSubjectAndTag(t *testing.T) {
	var captured *providers.EmailData
	capture := &captureProvider{fn: func(d *providers.EmailData) { captured = d }}
	svc, err := NewEmailService(EmailServiceConfig{Providers: []providers.EmailProvider{capture}, DefaultFrom: "hello@lincognito.com"})
	require.NoError(t, err)

	tmpl, err := templates.WelcomeTemplate()
	require.NoError(t, err)

	_, err = SendWithTypedTemplate(context.Background(), svc, tmpl, templates.WelcomeContext{
		UserName:     "Ada",
		DashboardURL: "https://app.lincognito.com/dashboard",
	}, &providers.EmailData{To: []string{"ada@example.com"}})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "Welcome to Lincognito", captured.Subject)
	assert.Equal(t, registry.TemplateNameWelcome, captured.Tag)
	assert.Contains(t, captured.HTML, "Hi Ada,")
	assert.Contains(t, captured.Text, "https://app.lincognito.com/dashboard")
}

type captureProvider struct {
	fn func(*providers.EmailData)
}

func (c *captureProvider) Send(_ context.Context, d *providers.EmailData) (*providers.EmailResult, error) {
	c.fn(d)
	return &providers.EmailResult{Success: true, Provider: "capture"}, nil
}

func (c *captureProvider) Verify(context.Context) (bool, error) { return true, nil }

func (c *captureProvider) GetName() string { return "capture" }
