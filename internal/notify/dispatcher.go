// Package notify sends transactional email off the request path.
package notify

import (
	"context"
	"fmt"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/user"
	"lincognito/pkg/mailer"
	"lincognito/pkg/mailer/providers"
	"lincognito/pkg/mailer/templates"
	"lincognito/pkg/metrics"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultSendTimeout = 30 * time.Second
	excerptLen         = 280
	publishedAtLayout  = "Jan 2, 2006 15:04 MST"
)

// Config controls links placed in emails and the in-flight bound.
type Config struct {
	Company     string
	AppURL      string
	MaxInFlight int
	SendTimeout time.Duration
}

// Dispatcher renders typed templates and sends them in the background. A nil email
// service turns every send into a logged no-op.
type Dispatcher struct {
	svc     *mailer.EmailService
	tpl     *templates.Set
	cfg     Config
	sem     chan struct{}
	wg      sync.WaitGroup
	log     *logrus.Logger
	metrics *metrics.Collector
}

func NewDispatcher(svc *mailer.EmailService, tpl *templates.Set, cfg Config, log *logrus.Logger, m *metrics.Collector) *Dispatcher {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	return &Dispatcher{
		svc:     svc,
		tpl:     tpl,
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.MaxInFlight),
		log:     log,
		metrics: m,
	}
}

func (d *Dispatcher) Enabled() bool {
	return d.svc != nil
}

// Wait blocks until every queued send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) Welcome(u *user.User) {
	dispatch(d, d.tpl.Welcome, u.Email, templates.WelcomeContext{
		Company:      d.cfg.Company,
		UserName:     u.DisplayName(),
		DashboardURL: d.cfg.AppURL + "/dashboard",
	})
}

func (d *Dispatcher) PasswordReset(u *user.User, token string, ttl time.Duration) {
	dispatch(d, d.tpl.PasswordReset, u.Email, templates.PasswordResetContext{
		Company:     d.cfg.Company,
		UserName:    u.DisplayName(),
		ResetURL:    d.cfg.AppURL + "/reset-password?token=" + token,
		ExpiryHours: max(1, int(ttl.Hours())),
	})
}

func (d *Dispatcher) ClientAdded(u *user.User, c *client.Client, clientCount int) {
	dispatch(d, d.tpl.ClientAdded, u.Email, templates.ClientAddedContext{
		Company:     d.cfg.Company,
		UserName:    u.DisplayName(),
		ClientName:  c.Name,
		ClientOrg:   c.Company,
		ClientURL:   fmt.Sprintf("%s/dashboard/clients/%s", d.cfg.AppURL, c.ID),
		ClientCount: clientCount,
	})
}

func (d *Dispatcher) PostPublished(u *user.User, c *client.Client, p *post.Post) {
	publishedAt := time.Now().UTC()
	if p.PublishedAt != nil {
		publishedAt = p.PublishedAt.UTC()
	}
	dispatch(d, d.tpl.PostPublished, u.Email, templates.PostPublishedContext{
		Company:     d.cfg.Company,
		UserName:    u.DisplayName(),
		ClientName:  c.Name,
		Excerpt:     templates.Excerpt(p.Content, excerptLen),
		PublishedAt: publishedAt.Format(publishedAtLayout),
		PostURL:     fmt.Sprintf("%s/dashboard/posts/%s", d.cfg.AppURL, p.ID),
	})
}

// WeeklyReport sends synchronously; the caller owns the timeout and the error.
func (d *Dispatcher) WeeklyReport(ctx context.Context, u *user.User, report templates.WeeklyReportContext) error {
	report.Company = d.cfg.Company
	report.UserName = u.DisplayName()
	report.DashboardURL = d.cfg.AppURL + "/dashboard"
	return send(ctx, d, d.tpl.WeeklyReport, u.Email, report)
}

func dispatch[T any](d *Dispatcher, tpl *templates.TypedTemplate[T], to string, data T) {
	if !d.Enabled() {
		d.log.WithField("template", tpl.GetName()).Debug("email disabled, skipping send")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
		defer cancel()

		if err := send(ctx, d, tpl, to, data); err != nil {
			d.log.WithFields(logrus.Fields{
				"template": tpl.GetName(),
			}).WithError(err).Error("email send failed")
		}
	}()
}

func send[T any](ctx context.Context, d *Dispatcher, tpl *templates.TypedTemplate[T], to string, data T) error {
	if !d.Enabled() {
		return nil
	}
	_, err := mailer.SendWithTypedTemplate(ctx, d.svc, tpl, data, &providers.EmailData{To: []string{to}})
	if d.metrics != nil {
		d.metrics.EmailSent(tpl.GetName(), err)
	}
	return err
}
