package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"lincognito/pkg/mailer/registry"
	"net/http"
)

// SendGridProvider is the optional fallback when Resend is unavailable.
type SendGridProvider struct {
	BaseProvider
	APIURL string
}

type SendGridConfig struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client
}

func NewSendGridProvider(config SendGridConfig) *SendGridProvider {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = registry.SendGridAPIURL
	}

	return &SendGridProvider{
		BaseProvider: BaseProvider{
			APIKey:       config.APIKey,
			ProviderName: registry.ProviderSendGrid,
			HTTPClient:   config.HTTPClient,
		},
		APIURL: apiURL,
	}
}

func addressList(emails []string) []map[string]string {
	out := make([]map[string]string, len(emails))
	for i, email := range emails {
		out[i] = map[string]string{registry.JSONEmail: email}
	}
	return out
}

func (p *SendGridProvider) Send(ctx context.Context, emailData *EmailData) (*EmailResult, error) {
	if p.APIKey == "" {
		return p.failure(registry.ErrAPIKeyRequired, registry.ErrAPIKeyRequired.Error())
	}

	personalization := map[string]interface{}{
		registry.JSONTo: addressList(emailData.To),
	}
	if len(emailData.CC) > 0 {
		personalization[registry.JSONCC] = addressList(emailData.CC)
	}
	if len(emailData.BCC) > 0 {
		personalization[registry.JSONBCC] = addressList(emailData.BCC)
	}

	content := []map[string]string{}
	if emailData.Text != "" {
		// SendGrid requires text/plain to precede text/html.
		content = append(content, map[string]string{registry.JSONType: registry.MIMETextPlain, registry.JSONValue: emailData.Text})
	}
	content = append(content, map[string]string{registry.JSONType: registry.MIMETextHTML, registry.JSONValue: emailData.HTML})

	payload := map[string]interface{}{
		registry.JSONPersonalizations: []map[string]interface{}{personalization},
		registry.JSONFrom:             map[string]string{registry.JSONEmail: emailData.From},
		registry.JSONSubject:          emailData.Subject,
		registry.JSONContent:          content,
	}
	if emailData.ReplyTo != "" {
		payload[registry.JSONReplyTo] = map[string]string{registry.JSONEmail: emailData.ReplyTo}
	}
	if emailData.Tag != "" {
		payload[registry.JSONCategories] = []string{emailData.Tag}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return p.failure(err, fmt.Sprintf(registry.MsgFailedMarshalPayloadFmt, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.APIURL+registry.PathSendGridMailSend, bytes.NewReader(jsonData))
	if err != nil {
		return p.failure(err, fmt.Sprintf(registry.MsgFailedCreateRequestFmt, err))
	}

	req.Header.Set(registry.HeaderAuthorization, registry.AuthBearerPrefix+p.APIKey)
	req.Header.Set(registry.HeaderContentType, registry.MIMEApplicationJSON)

	resp, err := p.client().Do(req)
	if err != nil {
		wrapped := &registry.TransportError{Err: err}
		return p.failure(wrapped, wrapped.Error())
	}
	defer resp.Body.Close()

	if !isHTTPSuccess(resp.StatusCode) {
		return p.failure(
			registry.ErrAPIStatus(resp.StatusCode),
			fmt.Sprintf(registry.MsgSendGridAPIErrorFmt, resp.StatusCode, readErrorBody(resp.Body)),
		)
	}

	return &EmailResult{
		Success:   true,
		MessageID: resp.Header.Get(registry.HeaderMessageID),
		Provider:  p.ProviderName,
	}, nil
}

func (p *SendGridProvider) Verify(ctx context.Context) (bool, error) {
	if p.APIKey == "" {
		return false, registry.ErrAPIKeyRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.APIURL+registry.PathSendGridScopes, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set(registry.HeaderAuthorization, registry.AuthBearerPrefix+p.APIKey)

	resp, err := p.client().Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return isHTTPSuccess(resp.StatusCode), nil
}
