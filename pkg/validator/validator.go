package validator

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

const (
	minEmailLength      = 3
	maxEmailLength      = 255
	minPasswordLength   = 8
	maxPasswordLength   = 72 // bcrypt input limit
	maxNameLen          = 255
	maxShortTextLen     = 255
	maxLongTextLen      = 10000
	maxPostContentLen   = 3000
	maxMessageBodyLen   = 20000
	maxContentTypeLen   = 255
	maxTagsPerField     = 50
	maxTagLen           = 100
	asciiControlStart   = 32
	asciiDelete         = 127
	asciiNewline        = '\n'
	asciiCarriageReturn = '\r'
	asciiTab            = '\t'

	errEmailEmptyFmt           = "email cannot be empty"
	errEmailLengthFmt          = "email must be between %d and %d characters"
	errEmailInvalidFmt         = "invalid email format"
	errPasswordMinLengthFmt    = "password must be at least %d characters"
	errPasswordMaxLengthFmt    = "password must not exceed %d characters"
	errRequiredFmt             = "%s is required"
	errMaxLengthFmt            = "%s must not exceed %d characters"
	errControlCharsFmt         = "%s cannot contain control characters"
	errURLInvalidFmt           = "%s must be an absolute http or https URL"
	errContentTypeMaxLengthFmt = "content type must not exceed %d characters"
	errContentTypeInvalidFmt   = "invalid content type"
	errContentTypeImageFmt     = "only image and video uploads are supported"
	errTooManyTagsFmt          = "%s must not contain more than %d entries"
	errTagTooLongFmt           = "%s entries must not exceed %d characters"
)

var fields = playground.New()

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	// The domain must be fully qualified; "user@localhost" is not an address we can mail.
	_, domain, _ := strings.Cut(email, "@")
	if fields.Var(email, "email") != nil || fields.Var(domain, "fqdn") != nil {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

// Name validates a required single-line name such as a client, agency or template name.
func Name(field, name string) error {
	if name == "" {
		return fmt.Errorf(errRequiredFmt, field)
	}
	return singleLine(field, name, maxNameLen)
}

// OptionalText validates an optional single-line value.
func OptionalText(field, value string) error {
	if value == "" {
		return nil
	}
	return singleLine(field, value, maxShortTextLen)
}

// LongText validates optional multi-line free text (bio, brand guidelines).
func LongText(field, value string) error {
	return multiLine(field, value, maxLongTextLen)
}

func PostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf(errRequiredFmt, "content")
	}
	return multiLine("content", content, maxPostContentLen)
}

func MessageBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf(errRequiredFmt, "body")
	}
	return multiLine("body", body, maxMessageBodyLen)
}

func TemplateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf(errRequiredFmt, "content")
	}
	return multiLine("content", content, maxLongTextLen)
}

// Tags validates a parsed hashtag, keyword or mention list.
func Tags(field string, tags []string) error {
	if len(tags) > maxTagsPerField {
		return fmt.Errorf(errTooManyTagsFmt, field, maxTagsPerField)
	}
	for _, tag := range tags {
		if len(tag) > maxTagLen {
			return fmt.Errorf(errTagTooLongFmt, field, maxTagLen)
		}
	}
	return nil
}

// URL validates an optional absolute http(s) URL.
func URL(field, raw string) error {
	if raw == "" {
		return nil
	}
	if fields.Var(raw, "url") != nil {
		return fmt.Errorf(errURLInvalidFmt, field)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf(errURLInvalidFmt, field)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf(errURLInvalidFmt, field)
	}
	return nil
}

func MediaContentType(contentType string) error {
	if contentType == "" {
		return fmt.Errorf(errContentTypeInvalidFmt)
	}

	if len(contentType) > maxContentTypeLen {
		return fmt.Errorf(errContentTypeMaxLengthFmt, maxContentTypeLen)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf(errContentTypeInvalidFmt)
	}

	if !strings.HasPrefix(mediaType, "image/") && !strings.HasPrefix(mediaType, "video/") {
		return fmt.Errorf(errContentTypeImageFmt)
	}

	return nil
}

func singleLine(field, value string, max int) error {
	if len(value) > max {
		return fmt.Errorf(errMaxLengthFmt, field, max)
	}
	for _, char := range value {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errControlCharsFmt, field)
		}
	}
	return nil
}

func multiLine(field, value string, max int) error {
	if len(value) > max {
		return fmt.Errorf(errMaxLengthFmt, field, max)
	}
	for _, char := range value {
		if char == asciiNewline || char == asciiCarriageReturn || char == asciiTab {
			continue
		}
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errControlCharsFmt, field)
		}
	}
	return nil
}
