package templates

import (
	"lincognito/pkg/mailer/registry"
	"strings"
)

type PasswordResetContext struct {
	Company     string
	UserName    string
	ResetURL    string
	ExpiryHours int
}

func PasswordResetTemplate() (*TypedTemplate[PasswordResetContext], error) {
	htmlTmpl := `
		<p>{{if .UserName}}Hi {{.UserName}},{{else}}Hi there,{{end}}</p>
		<p>We received a request to reset your password. Click the button below to choose a new one:</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.ResetURL}}" style="background-color: #dc3545; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">
				Reset Password
			</a>
		</div>
		<p>Or copy and paste this link into your browser:</p>
		<p style="word-break: break-all; color: #dc3545;">{{.ResetURL}}</p>
		<p>This link will expire in {{.ExpiryHours}} hour(s).</p>
		<p>If you didn't request a password reset, you can safely ignore this email.</p>`

	textTmpl := `
Reset Your Password

{{if .UserName}}Hi {{.UserName}},{{else}}Hi there,{{end}}

We received a request to reset your password for your {{.Company}} account.

Visit this link to choose a new password:
{{.ResetURL}}

This link will expire in {{.ExpiryHours}} hour(s).

If you didn't request a password reset, you can safely ignore this email.
`

	parser := func(context PasswordResetContext) (PasswordResetContext, error) {
		context.Company = normalizeCompany(context.Company)
		context.UserName = strings.TrimSpace(context.UserName)

		if strings.TrimSpace(context.ResetURL) == "" {
			return context, registry.ErrResetURLRequired
		}
		link, err := validateLink(context.ResetURL)
		if err != nil {
			return context, err
		}
		context.ResetURL = link

		if context.ExpiryHours <= 0 {
			context.ExpiryHours = registry.PasswordResetExpiryHours
		}

		return context, nil
	}

	subject := func(c PasswordResetContext) string {
		return "Reset your " + c.Company + " password"
	}

	return NewTemplate(registry.TemplateNamePasswordReset, subject, htmlTmpl, textTmpl, parser)
}
