package mailer

import (
	"lincognito/pkg/mailer/registry"
	"net/url"
	"strings"
)

// SanitizeURL returns rawURL when it is an http(s) URL, otherwise "".
func SanitizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if parsed.Scheme != registry.URLSchemeHTTP && parsed.Scheme != registry.URLSchemeHTTPS {
		return ""
	}

	return parsed.String()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
