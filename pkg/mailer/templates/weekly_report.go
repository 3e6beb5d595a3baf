package templates

import (
	"lincognito/pkg/mailer/registry"
	"strings"
)

type WeeklyReportClientRow struct {
	ClientName string
	Published  int
	Scheduled  int
	Engagement int64
}

type WeeklyReportContext struct {
	Company         string
	UserName        string
	PeriodLabel     string
	PostsPublished  int
	PostsScheduled  int
	TotalEngagement int64
	Clients         []WeeklyReportClientRow
	DashboardURL    string
}

func WeeklyReportTemplate() (*TypedTemplate[WeeklyReportContext], error) {
	htmlTmpl := `
		<p>Hi {{.UserName}},</p>
		<p>Here is how your clients did for {{.PeriodLabel}}.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 16px 0;">
			<tr>
				<td style="padding: 8px; text-align: center;"><strong>{{.PostsPublished}}</strong><br>published</td>
				<td style="padding: 8px; text-align: center;"><strong>{{.PostsScheduled}}</strong><br>scheduled</td>
				<td style="padding: 8px; text-align: center;"><strong>{{.TotalEngagement}}</strong><br>engagements</td>
			</tr>
		</table>
		{{if .Clients}}
		<table style="width: 100%; border-collapse: collapse;">
			<tr style="background: #f1f5f9;"><th align="left">Client</th><th>Published</th><th>Scheduled</th><th>Engagement</th></tr>
			{{range .Clients}}
			<tr><td>{{.ClientName}}</td><td align="center">{{.Published}}</td><td align="center">{{.Scheduled}}</td><td align="center">{{.Engagement}}</td></tr>
			{{end}}
		</table>
		{{end}}
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.DashboardURL}}" style="background-color: #0a66c2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">
				Open dashboard
			</a>
		</div>`

	textTmpl := `
Your weekly report: {{.PeriodLabel}}

Hi {{.UserName}},

Published: {{.PostsPublished}}
Scheduled: {{.PostsScheduled}}
Engagement: {{.TotalEngagement}}
{{range .Clients}}
- {{.ClientName}}: {{.Published}} published, {{.Scheduled}} scheduled, {{.Engagement}} engagements{{end}}

Open dashboard: {{.DashboardURL}}
`

	parser := func(context WeeklyReportContext) (WeeklyReportContext, error) {
		context.Company = normalizeCompany(context.Company)
		context.UserName = strings.TrimSpace(context.UserName)
		context.PeriodLabel = strings.TrimSpace(context.PeriodLabel)
		if context.PeriodLabel == "" {
			return context, registry.ErrReportPeriodRequired
		}
		if context.UserName == "" {
			context.UserName = "there"
		}
		link, err := validateLink(context.DashboardURL)
		if err != nil {
			return context, err
		}
		context.DashboardURL = link
		return context, nil
	}

	subject := func(c WeeklyReportContext) string {
		return "Your " + c.Company + " weekly report: " + c.PeriodLabel
	}

	return NewTemplate(registry.TemplateNameWeeklyReport, subject, htmlTmpl, textTmpl, parser)
}
