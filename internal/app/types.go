package app

import (
	"io"
	"lincognito/internal/http/handler"
	"time"
)

const (
	serviceName       = "lincognito"
	redisKeyPrefix    = "lincognito:"
	cacheSweepEvery   = 5 * time.Minute
	redisConnectLimit = 5 * time.Second
)

// Mode selects which parts of the application are assembled.
type Mode int

const (
	// ModeServe builds the HTTP server and the cron scheduler.
	ModeServe Mode = iota
	// ModeJob builds only what one-off jobs need.
	ModeJob
)

type Options struct {
	Mode Mode
	Blog []handler.BlogPost
}

// closers run in reverse order on shutdown.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c *closers) addCloser(cl io.Closer) {
	c.add(cl.Close)
}
