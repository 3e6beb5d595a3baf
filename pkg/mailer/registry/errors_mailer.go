package registry

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAtLeastOneProviderRequired = errors.New("at least one provider is required")
	ErrProviderCannotBeNil        = errors.New("provider cannot be nil")
	ErrInvalidDefaultFromEmail    = errors.New("invalid default from email")
	ErrEmailDataRequired          = errors.New("email data is required")
	ErrEmailTemplateRequired      = errors.New("email template is required")
	ErrEmailServiceRequired       = errors.New("email service is required")
	ErrNoProvidersConfigured      = errors.New("no email providers configured")
	ErrAllProvidersFailed         = errors.New("all providers failed")
	ErrAPIKeyRequired             = errors.New("api key is required")
	ErrAtLeastOneRecipient        = errors.New("at least one recipient required")
	ErrInvalidFromEmail           = errors.New("invalid 'from' email")
	ErrSubjectRequired            = errors.New("subject is required")
	ErrHTMLContentRequired        = errors.New("html content is required")
	ErrInvalidReplyToEmail        = errors.New("invalid 'replyTo' email")
	ErrCompanyRequired            = errors.New("company is required")
	ErrUserNameRequired           = errors.New("user name is required")
	ErrClientNameRequired         = errors.New("client name is required")
	ErrPostExcerptRequired        = errors.New("post excerpt is required")
	ErrReportPeriodRequired       = errors.New("report period is required")
	ErrResetURLRequired           = errors.New("reset URL is required")
	ErrURLAbsolute                = errors.New("URL must be a valid absolute URL")
	ErrURLScheme                  = errors.New("URL must use http or https")
)

// APIStatusError is returned when a provider answers with a non-2xx status.
type APIStatusError struct {
	StatusCode int
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.StatusCode)
}

// Retryable reports whether the provider may accept the same request later.
func (e *APIStatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= HTTPStatusServerMin
}

// TransportError wraps network failures talking to a provider.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf(MsgRequestFailedFmt, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *APIStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

func ErrInvalidToEmail(email string) error {
	return fmt.Errorf("invalid 'to' email: %s", email)
}

func ErrInvalidCCEmail(email string) error {
	return fmt.Errorf("invalid 'cc' email: %s", email)
}

func ErrInvalidBCCEmail(email string) error {
	return fmt.Errorf("invalid 'bcc' email: %s", email)
}

func ErrInvalidTemplateContextType(name string) error {
	return fmt.Errorf("invalid template context type for %q", name)
}

func ErrAPIStatus(statusCode int) error {
	return &APIStatusError{StatusCode: statusCode}
}
