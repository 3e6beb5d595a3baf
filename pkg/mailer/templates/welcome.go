package templates

import (
	"lincognito/pkg/mailer/registry"
	"strings"
)

type WelcomeContext struct {
	Company      string
	UserName     string
	DashboardURL string
}

func WelcomeTemplate() (*TypedTemplate[WelcomeContext], error) {
	htmlTmpl := `
		<p>Hi {{.UserName}},</p>
		<p>Welcome aboard! Your workspace is ready. Add your first client, capture their voice and start drafting posts.</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.DashboardURL}}" style="background-color: #0a66c2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">
				Open your dashboard
			</a>
		</div>
		<p>Need a hand? Just reply to this email.</p>`

	textTmpl := `
Welcome to {{.Company}}

Hi {{.UserName}},

Welcome aboard! Your workspace is ready. Add your first client, capture their voice and start drafting posts.

Open your dashboard: {{.DashboardURL}}
`

	parser := func(context WelcomeContext) (WelcomeContext, error) {
		context.Company = normalizeCompany(context.Company)
		context.UserName = strings.TrimSpace(context.UserName)
		if context.UserName == "" {
			return context, registry.ErrUserNameRequired
		}
		link, err := validateLink(context.DashboardURL)
		if err != nil {
			return context, err
		}
		context.DashboardURL = link
		return context, nil
	}

	subject := func(c WelcomeContext) string {
		return "Welcome to " + c.Company
	}

	return NewTemplate(registry.TemplateNameWelcome, subject, htmlTmpl, textTmpl, parser)
}
