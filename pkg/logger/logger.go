package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the application-wide structured logger.
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

const (
	FormatJSON = "json"
	FormatText = "text"

	fieldService = "service"
)

// New creates a JSON logger at the given level with sensitive-field redaction enabled.
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, format)
}

func NewWithOutput(out io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if strings.EqualFold(format, FormatText) {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	log.AddHook(NewRedactHook())

	return log
}

// WithService returns an entry carrying the service name on every line.
func WithService(log *logrus.Logger, service string) *logrus.Entry {
	return log.WithField(fieldService, service)
}
