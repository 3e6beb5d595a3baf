package templates

import (
	"lincognito/pkg/mailer/registry"
	"strings"
	"unicode/utf8"
)

const maxExcerptRunes = 280

type PostPublishedContext struct {
	Company     string
	UserName    string
	ClientName  string
	Excerpt     string
	PublishedAt string
	PostURL     string
}

func PostPublishedTemplate() (*TypedTemplate[PostPublishedContext], error) {
	htmlTmpl := `
		<p>Hi {{.UserName}},</p>
		<p>A post for <strong>{{.ClientName}}</strong> went live{{if .PublishedAt}} on {{.PublishedAt}}{{end}}.</p>
		<blockquote style="border-left: 4px solid #0a66c2; margin: 16px 0; padding: 8px 16px; color: #334155;">{{.Excerpt}}</blockquote>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.PostURL}}" style="background-color: #16a34a; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">
				Track engagement
			</a>
		</div>`

	textTmpl := `
Post published for {{.ClientName}}

Hi {{.UserName}},

A post for {{.ClientName}} went live{{if .PublishedAt}} on {{.PublishedAt}}{{end}}:

{{.Excerpt}}

Track engagement: {{.PostURL}}
`

	parser := func(context PostPublishedContext) (PostPublishedContext, error) {
		context.Company = normalizeCompany(context.Company)
		context.UserName = strings.TrimSpace(context.UserName)
		context.ClientName = strings.TrimSpace(context.ClientName)
		context.Excerpt = Excerpt(context.Excerpt, maxExcerptRunes)
		if context.ClientName == "" {
			return context, registry.ErrClientNameRequired
		}
		if context.Excerpt == "" {
			return context, registry.ErrPostExcerptRequired
		}
		if context.UserName == "" {
			context.UserName = "there"
		}
		link, err := validateLink(context.PostURL)
		if err != nil {
			return context, err
		}
		context.PostURL = link
		return context, nil
	}

	subject := func(c PostPublishedContext) string {
		return "Published: new post for " + c.ClientName
	}

	return NewTemplate(registry.TemplateNamePostPublished, subject, htmlTmpl, textTmpl, parser)
}

// Excerpt trims content to at most max runes, cutting on a word boundary when possible.
func Excerpt(content string, max int) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	cut := string(runes[:max])
	if i := strings.LastIndexAny(cut, " \n\t"); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}
