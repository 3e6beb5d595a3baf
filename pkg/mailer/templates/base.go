package templates

import (
	"bytes"
	"html/template"
	"lincognito/pkg/mailer/registry"
	"net/url"
	"strings"
	texttemplate "text/template"
)

type EmailTemplate interface {
	GetName() string
	RenderAny(context any) (html string, text string, err error)
}

type Parser[T any] func(context T) (T, error)

// TypedTemplate renders an HTML body and a plain-text alternative from one context type.
type TypedTemplate[T any] struct {
	Name         string
	Subject      func(T) string
	HTMLTemplate *template.Template
	TextTemplate *texttemplate.Template
	Parse        Parser[T]
}

func (t *TypedTemplate[T]) GetName() string {
	return t.Name
}

// Render validates the context and returns subject, html and text.
func (t *TypedTemplate[T]) Render(context T) (string, string, string, error) {
	if t.Parse != nil {
		parsed, err := t.Parse(context)
		if err != nil {
			return "", "", "", err
		}
		context = parsed
	}

	var htmlBuf bytes.Buffer
	if err := t.HTMLTemplate.Execute(&htmlBuf, context); err != nil {
		return "", "", "", err
	}

	var textBuf bytes.Buffer
	if t.TextTemplate != nil {
		if err := t.TextTemplate.Execute(&textBuf, context); err != nil {
			return "", "", "", err
		}
	}

	subject := ""
	if t.Subject != nil {
		subject = t.Subject(context)
	}

	return subject, htmlBuf.String(), strings.TrimSpace(textBuf.String()), nil
}

func (t *TypedTemplate[T]) RenderAny(context any) (string, string, error) {
	typedContext, ok := context.(T)
	if !ok {
		return "", "", registry.ErrInvalidTemplateContextType(t.Name)
	}

	_, html, text, err := t.Render(typedContext)
	return html, text, err
}

func NewTemplate[T any](name string, subject func(T) string, htmlBody string, textTmpl string, parser Parser[T]) (*TypedTemplate[T], error) {
	htmlTemplate, err := template.New(name + "_html").Parse(layoutHead + htmlBody + layoutFoot)
	if err != nil {
		return nil, err
	}

	var textTemplate *texttemplate.Template
	if textTmpl != "" {
		textTemplate, err = texttemplate.New(name + "_text").Parse(textTmpl)
		if err != nil {
			return nil, err
		}
	}

	return &TypedTemplate[T]{
		Name:         name,
		Subject:      subject,
		HTMLTemplate: htmlTemplate,
		TextTemplate: textTemplate,
		Parse:        parser,
	}, nil
}

// Set bundles every transactional template the service sends.
type Set struct {
	Welcome       *TypedTemplate[WelcomeContext]
	PasswordReset *TypedTemplate[PasswordResetContext]
	ClientAdded   *TypedTemplate[ClientAddedContext]
	PostPublished *TypedTemplate[PostPublishedContext]
	WeeklyReport  *TypedTemplate[WeeklyReportContext]
}

func LoadSet() (*Set, error) {
	welcome, err := WelcomeTemplate()
	if err != nil {
		return nil, err
	}
	reset, err := PasswordResetTemplate()
	if err != nil {
		return nil, err
	}
	clientAdded, err := ClientAddedTemplate()
	if err != nil {
		return nil, err
	}
	published, err := PostPublishedTemplate()
	if err != nil {
		return nil, err
	}
	weekly, err := WeeklyReportTemplate()
	if err != nil {
		return nil, err
	}
	return &Set{
		Welcome:       welcome,
		PasswordReset: reset,
		ClientAdded:   clientAdded,
		PostPublished: published,
		WeeklyReport:  weekly,
	}, nil
}

const layoutHead = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #1f2937; background: #f8fafc;">
	<div style="max-width: 600px; margin: 0 auto; padding: 24px; background: #ffffff;">
		<h2 style="color: #0a66c2;">{{.Company}}</h2>
`

const layoutFoot = `
		<p style="font-size: 12px; color: #64748b; margin-top: 32px;">You are receiving this email because you have a {{.Company}} account.</p>
	</div>
</body>
</html>
`

func normalizeCompany(company string) string {
	company = strings.TrimSpace(company)
	if company == "" {
		return registry.DefaultCompanyName
	}
	return company
}

func validateLink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() {
		return raw, registry.ErrURLAbsolute
	}
	if parsed.Scheme != registry.URLSchemeHTTP && parsed.Scheme != registry.URLSchemeHTTPS {
		return raw, registry.ErrURLScheme
	}
	return raw, nil
}
