package config

import (
	"fmt"
	"os"
)

const (
	errRequiredEnvNotSetFmt = "config: required environment variable %s is not set\n"
)

type messageBuilders struct {
	requiredEnvNotSet func(string)
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) {
			fmt.Fprintf(os.Stderr, errRequiredEnvNotSetFmt, key)
		},
	}
}

var warnings = newMessageBuilders()
