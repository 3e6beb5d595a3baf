package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"lincognito/pkg/mailer/registry"
	"net/http"
)

type ResendProvider struct {
	BaseProvider
	APIURL string
}

type ResendConfig struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client
}

func NewResendProvider(config ResendConfig) *ResendProvider {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = registry.ResendAPIURL
	}

	return &ResendProvider{
		BaseProvider: BaseProvider{
			APIKey:       config.APIKey,
			ProviderName: registry.ProviderResend,
			HTTPClient:   config.HTTPClient,
		},
		APIURL: apiURL,
	}
}

func (p *ResendProvider) Send(ctx context.Context, emailData *EmailData) (*EmailResult, error) {
	if p.APIKey == "" {
		return p.failure(registry.ErrAPIKeyRequired, registry.ErrAPIKeyRequired.Error())
	}

	payload := map[string]interface{}{
		registry.JSONFrom:    emailData.From,
		registry.JSONTo:      emailData.To,
		registry.JSONSubject: emailData.Subject,
		registry.JSONHTML:    emailData.HTML,
	}

	if emailData.Text != "" {
		payload[registry.JSONText] = emailData.Text
	}
	if emailData.ReplyTo != "" {
		payload[registry.JSONReplyTo] = emailData.ReplyTo
	}
	if len(emailData.CC) > 0 {
		payload[registry.JSONCC] = emailData.CC
	}
	if len(emailData.BCC) > 0 {
		payload[registry.JSONBCC] = emailData.BCC
	}
	if emailData.Tag != "" {
		// Resend tag values only allow ASCII letters, numbers, underscores and dashes.
		payload[registry.JSONTags] = []map[string]string{
			{registry.JSONName: "template", registry.JSONValue: emailData.Tag},
		}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return p.failure(err, fmt.Sprintf(registry.MsgFailedMarshalPayloadFmt, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.APIURL+registry.PathResendEmails, bytes.NewReader(jsonData))
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
			fmt.Sprintf(registry.MsgResendAPIErrorFmt, resp.StatusCode, readErrorBody(resp.Body)),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return p.failure(err, fmt.Sprintf(registry.MsgFailedParseResponseFmt, err))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return p.failure(err, fmt.Sprintf(registry.MsgFailedParseResponseFmt, err))
	}

	return &EmailResult{
		Success:   true,
		MessageID: result.ID,
		Provider:  p.ProviderName,
	}, nil
}

func (p *ResendProvider) Verify(ctx context.Context) (bool, error) {
	if p.APIKey == "" {
		return false, registry.ErrAPIKeyRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.APIURL+registry.PathResendDomains, nil)
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
