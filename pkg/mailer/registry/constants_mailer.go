package registry

import "time"

const (
	ProviderResend   = "resend"
	ProviderSendGrid = "sendgrid"
)

const (
	ProviderLabelNone       = "none"
	ProviderLabelFailover   = "failover"
	ProviderLabelValidation = "validation"
	ProviderLabelTemplate   = "template"
	UnknownProviderName     = "unknown"
)

const (
	ResendAPIURL   = "https://api.resend.com"
	SendGridAPIURL = "https://api.sendgrid.com"
)

const (
	PathResendEmails     = "/emails"
	PathResendDomains    = "/domains"
	PathSendGridMailSend = "/v3/mail/send"
	PathSendGridScopes   = "/v3/scopes"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderMessageID     = "X-Message-Id"
)

const (
	AuthBearerPrefix    = "Bearer "
	MIMEApplicationJSON = "application/json"
)

const (
	JSONFrom             = "from"
	JSONTo               = "to"
	JSONSubject          = "subject"
	JSONHTML             = "html"
	JSONText             = "text"
	JSONReplyTo          = "reply_to"
	JSONCC               = "cc"
	JSONBCC              = "bcc"
	JSONTags             = "tags"
	JSONName             = "name"
	JSONValue            = "value"
	JSONEmail            = "email"
	JSONPersonalizations = "personalizations"
	JSONContent          = "content"
	JSONType             = "type"
	JSONCategories       = "categories"
)

const (
	MIMETextHTML  = "text/html"
	MIMETextPlain = "text/plain"
)

const (
	URLSchemeHTTP  = "http"
	URLSchemeHTTPS = "https"
)

const (
	TemplateNameWelcome       = "welcome"
	TemplateNamePasswordReset = "password-reset"
	TemplateNameClientAdded   = "client-added"
	TemplateNamePostPublished = "post-published"
	TemplateNameWeeklyReport  = "weekly-report"
)

const (
	PasswordResetExpiryHours = 1
	DefaultCompanyName       = "Lincognito"
)

const (
	HTTPStatusSuccessMin = 200
	HTTPStatusSuccessMax = 300
	HTTPStatusServerMin  = 500
)

const (
	DefaultHTTPTimeout    = 10 * time.Second
	DefaultRetryMax       = 2 // retries after the first attempt
	DefaultRetryBaseDelay = 200 * time.Millisecond
	DefaultRetryMaxDelay  = 5 * time.Second
	DefaultRetryJitter    = 0.1
	MaxErrorBodyBytes     = 4096
)

const (
	MessageSeparator       = "; "
	StrategySendFailedText = "send failed"
)

const (
	MsgFailedMarshalPayloadFmt = "failed to marshal payload: %v"
	MsgFailedCreateRequestFmt  = "failed to create request: %v"
	MsgRequestFailedFmt        = "request failed: %v"
	MsgFailedParseResponseFmt  = "failed to parse response: %v"
	MsgResendAPIErrorFmt       = "Resend API error: %d - %s"
	MsgSendGridAPIErrorFmt     = "SendGrid API error: %d - %s"
	MsgProviderErrorFmt        = "%s: %s"
)
