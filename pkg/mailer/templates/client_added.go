package templates

import (
	"lincognito/pkg/mailer/registry"
	"strings"
)

type ClientAddedContext struct {
	Company     string
	UserName    string
	ClientName  string
	ClientOrg   string
	ClientURL   string
	ClientCount int
}

func ClientAddedTemplate() (*TypedTemplate[ClientAddedContext], error) {
	htmlTmpl := `
		<p>Hi {{.UserName}},</p>
		<p><strong>{{.ClientName}}</strong>{{if .ClientOrg}} ({{.ClientOrg}}){{end}} is now in your roster.
		{{if gt .ClientCount 1}}You are managing {{.ClientCount}} clients.{{end}}</p>
		<p>Fill in their tone, brand guidelines and hashtags so every draft sounds like them.</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.ClientURL}}" style="background-color: #0a66c2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">
				View client
			</a>
		</div>`

	textTmpl := `
New client added

Hi {{.UserName}},

{{.ClientName}}{{if .ClientOrg}} ({{.ClientOrg}}){{end}} is now in your roster.
{{if gt .ClientCount 1}}You are managing {{.ClientCount}} clients.
{{end}}
View client: {{.ClientURL}}
`

	parser := func(context ClientAddedContext) (ClientAddedContext, error) {
		context.Company = normalizeCompany(context.Company)
		context.UserName = strings.TrimSpace(context.UserName)
		context.ClientName = strings.TrimSpace(context.ClientName)
		context.ClientOrg = strings.TrimSpace(context.ClientOrg)
		if context.ClientName == "" {
			return context, registry.ErrClientNameRequired
		}
		if context.UserName == "" {
			context.UserName = "there"
		}
		link, err := validateLink(context.ClientURL)
		if err != nil {
			return context, err
		}
		context.ClientURL = link
		return context, nil
	}

	subject := func(c ClientAddedContext) string {
		return c.ClientName + " was added to " + c.Company
	}

	return NewTemplate(registry.TemplateNameClientAdded, subject, htmlTmpl, textTmpl, parser)
}
