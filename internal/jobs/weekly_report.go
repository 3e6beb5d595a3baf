package jobs

import (
	"context"
	"errors"
	"fmt"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/user"
	"lincognito/pkg/mailer/templates"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	WeeklyReportJobName = "weekly_report"
	reportWindow        = 7 * 24 * time.Hour
	periodLayout        = "Jan 2"
)

type ReportUsers interface {
	ListWeeklyReportRecipients(ctx context.Context) ([]*user.User, error)
}

type ReportClients interface {
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*client.Client, error)
}

type ReportPosts interface {
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*post.Post, error)
}

type ReportMailer interface {
	WeeklyReport(ctx context.Context, u *user.User, report templates.WeeklyReportContext) error
}

type WeeklyReport struct {
	users   ReportUsers
	clients ReportClients
	posts   ReportPosts
	mailer  ReportMailer
	log     *logrus.Logger
	now     func() time.Time
}

func NewWeeklyReport(users ReportUsers, clients ReportClients, posts ReportPosts, mailer ReportMailer, log *logrus.Logger) *WeeklyReport {
	return &WeeklyReport{
		users:   users,
		clients: clients,
		posts:   posts,
		mailer:  mailer,
		log:     log,
		now:     time.Now,
	}
}

func (j *WeeklyReport) Name() string {
	return WeeklyReportJobName
}

// Run sends one report per recipient. Per-user failures are logged and the pass continues.
func (j *WeeklyReport) Run(ctx context.Context) error {
	recipients, err := j.users.ListWeeklyReportRecipients(ctx)
	if err != nil {
		return err
	}

	now := j.now().UTC()
	var sent, failed int
	var errs []error
	for _, u := range recipients {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.sendOne(ctx, u, now); err != nil {
			failed++
			errs = append(errs, fmt.Errorf("user %s: %w", u.ID, err))
			j.log.WithField("user_id", u.ID).WithError(err).Warn("weekly report not sent")
			continue
		}
		sent++
	}

	j.log.WithFields(logrus.Fields{
		"recipients": len(recipients),
		"sent":       sent,
		"failed":     failed,
	}).Info("weekly report pass complete")

	if sent == 0 && failed > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (j *WeeklyReport) sendOne(ctx context.Context, u *user.User, now time.Time) error {
	clients, err := j.clients.ListAccessible(ctx, u.ID)
	if err != nil {
		return err
	}
	posts, err := j.posts.ListAccessible(ctx, u.ID)
	if err != nil {
		return err
	}
	return j.mailer.WeeklyReport(ctx, u, BuildReport(clients, posts, now))
}

// BuildReport summarises the week ending at now: posts published in the last seven days,
// posts scheduled for the next seven, and the engagement the published ones earned.
// Client rows are ordered by engagement, busiest first, and clients with no activity are left out.
func BuildReport(clients []*client.Client, posts []*post.Post, now time.Time) templates.WeeklyReportContext {
	from := now.Add(-reportWindow)
	until := now.Add(reportWindow)

	rows := make(map[uuid.UUID]*templates.WeeklyReportClientRow, len(clients))
	names := make(map[uuid.UUID]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	row := func(id uuid.UUID) *templates.WeeklyReportClientRow {
		r, ok := rows[id]
		if !ok {
			r = &templates.WeeklyReportClientRow{ClientName: names[id]}
			rows[id] = r
		}
		return r
	}

	report := templates.WeeklyReportContext{
		PeriodLabel: from.Format(periodLayout) + " - " + now.Format(periodLayout),
	}

	for _, p := range posts {
		if _, known := names[p.ClientID]; !known {
			continue
		}
		switch {
		case p.Status == post.StatusPublished && p.PublishedAt != nil && inWindow(*p.PublishedAt, from, now):
			engagement := p.Engagement.Total()
			report.PostsPublished++
			report.TotalEngagement += engagement
			r := row(p.ClientID)
			r.Published++
			r.Engagement += engagement
		case p.Status == post.StatusScheduled && p.ScheduledFor != nil && inWindow(*p.ScheduledFor, now, until):
			report.PostsScheduled++
			row(p.ClientID).Scheduled++
		}
	}

	for _, r := range rows {
		report.Clients = append(report.Clients, *r)
	}
	sort.Slice(report.Clients, func(i, k int) bool {
		a, b := report.Clients[i], report.Clients[k]
		if a.Engagement != b.Engagement {
			return a.Engagement > b.Engagement
		}
		return a.ClientName < b.ClientName
	})

	return report
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
