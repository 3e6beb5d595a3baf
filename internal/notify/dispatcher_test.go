package notify

import (
	"context"
	"errors"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/user"
	"lincognito/pkg/mailer"
	"lincognito/pkg/mailer/providers"
	"lincognito/pkg/mailer/templates"
	"lincognito/pkg/metrics"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProvider struct {
	mu   sync.Mutex
	sent []*providers.EmailData
	fail bool
}

func (p *captureProvider) Send(_ context.Context, data *providers.EmailData) (*providers.EmailResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return &providers.EmailResult{Provider: "capture"}, errors.New("provider down")
	}
	p.sent = append(p.sent, data)
	return &providers.EmailResult{Success: true, Provider: "capture"}, nil
}

func (p *captureProvider) Verify(context.Context) (bool, error) { return true, nil }
func (p *captureProvider) GetName() string                      { return "capture" }

func newDispatcher(t *testing.T, p *captureProvider) *Dispatcher {
	t.Helper()
	svc, err := mailer.NewEmailService(mailer.EmailServiceConfig{
		Providers:   []providers.EmailProvider{p},
		DefaultFrom: "Lincognito <hello@lincognito.com>",
	})
	require.NoError(t, err)
	set, err := templates.LoadSet()
	require.NoError(t, err)
	return NewDispatcher(svc, set, Config{
		Company:     "Lincognito",
		AppURL:      "https://app.lincognito.com",
		MaxInFlight: 2,
		SendTimeout: time.Second,
	}, logrus.New(), metrics.New("lincognito-test"))
}

func TestDispatcher_SendsInBackground(t *testing.T) {
	p := &captureProvider{}
	d := newDispatcher(t, p)
	u := &user.User{ID: uuid.New(), Email: "ada@example.com", Name: "Ada"}
	c := &client.Client{ID: uuid.New(), Name: "Grace", Company: "Navy"}
	published := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pst := &post.Post{ID: uuid.New(), Content: "Shipping is a feature.", PublishedAt: &published}

	d.Welcome(u)
	d.ClientAdded(u, c, 3)
	d.PostPublished(u, c, pst)
	d.PasswordReset(u, "tok123", time.Hour)
	d.Wait()

	require.Len(t, p.sent, 4)
	for _, msg := range p.sent {
		assert.Equal(t, []string{"ada@example.com"}, msg.To)
		assert.NotEmpty(t, msg.Subject)
		assert.NotEmpty(t, msg.HTML)
	}
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	p := &captureProvider{fail: true}
	d := newDispatcher(t, p)

	d.Welcome(&user.User{Email: "ada@example.com"})
	d.Wait()

	assert.Empty(t, p.sent)
}

func TestDispatcher_WeeklyReportReturnsError(t *testing.T) {
	p := &captureProvider{fail: true}
	d := newDispatcher(t, p)

	err := d.WeeklyReport(context.Background(), &user.User{Email: "ada@example.com"}, templates.WeeklyReportContext{PeriodLabel: "Mar 2 - Mar 9"})
	assert.Error(t, err)
}

func TestDispatcher_DisabledIsNoop(t *testing.T) {
	set, err := templates.LoadSet()
	require.NoError(t, err)
	d := NewDispatcher(nil, set, Config{}, logrus.New(), nil)

	assert.False(t, d.Enabled())
	d.Welcome(&user.User{Email: "ada@example.com"})
	d.Wait()
	assert.NoError(t, d.WeeklyReport(context.Background(), &user.User{Email: "ada@example.com"}, templates.WeeklyReportContext{}))
}
