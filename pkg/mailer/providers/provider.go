package providers

import (
	"context"
	"io"
	"lincognito/pkg/mailer/registry"
	"net/http"
)

type EmailProvider interface {
	Send(ctx context.Context, emailData *EmailData) (*EmailResult, error)
	Verify(ctx context.Context) (bool, error)
	GetName() string
}

type BaseProvider struct {
	APIKey       string
	ProviderName string
	HTTPClient   *http.Client
}

func (p *BaseProvider) GetName() string {
	return p.ProviderName
}

func (p *BaseProvider) client() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return &http.Client{Timeout: registry.DefaultHTTPTimeout}
}

func (p *BaseProvider) failure(err error, msg string) (*EmailResult, error) {
	return &EmailResult{
		Success:  false,
		Error:    msg,
		Provider: p.ProviderName,
	}, err
}

type EmailData struct {
	To      []string
	From    string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	CC      []string
	BCC     []string
	// Tag labels the message with the template that produced it.
	Tag string
}

type EmailResult struct {
	Success   bool
	MessageID string
	Error     string
	Provider  string
}

func isHTTPSuccess(statusCode int) bool {
	return statusCode >= registry.HTTPStatusSuccessMin && statusCode < registry.HTTPStatusSuccessMax
}

func readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, registry.MaxErrorBodyBytes))
	return string(body)
}
