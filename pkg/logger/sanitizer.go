package logger

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sensitive field patterns to filter from logs
var (
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s]+`)
	tokenPattern    = regexp.MustCompile(`(?i)(token|jwt|bearer)[\s:=]+[^\s]+`)
	apiKeyPattern   = regexp.MustCompile(`(?i)(api[_-]?key|apikey)[\s:=]+[^\s]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|private[_-]?key)[\s:=]+[^\s]+`)
)

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"token", "jwt", "bearer", "authorization",
	"api_key", "apikey", "api-key",
	"secret", "private_key", "private-key",
}

const redactedPlaceholder = "[REDACTED]"

// SanitizeLogMessage removes sensitive information from log messages
func SanitizeLogMessage(message string) string {
	message = passwordPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = tokenPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = apiKeyPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = secretPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	return message
}

// IsSensitiveKey reports whether a field name looks like it carries a credential.
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitiveKey := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitiveKey) {
			return true
		}
	}
	return false
}

// SanitizeFields replaces values of sensitive keys.
func SanitizeFields(data map[string]interface{}) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(data))
	for k, v := range data {
		if IsSensitiveKey(k) {
			sanitized[k] = redactedPlaceholder
			continue
		}
		sanitized[k] = v
	}
	return sanitized
}

// RedactHook scrubs credentials from every log entry before it is formatted.
type RedactHook struct{}

func NewRedactHook() *RedactHook {
	return &RedactHook{}
}

func (h *RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *RedactHook) Fire(entry *logrus.Entry) error {
	entry.Message = SanitizeLogMessage(entry.Message)
	for k, v := range entry.Data {
		if IsSensitiveKey(k) {
			entry.Data[k] = redactedPlaceholder
			continue
		}
		if s, ok := v.(string); ok {
			entry.Data[k] = SanitizeLogMessage(s)
		}
	}
	return nil
}
