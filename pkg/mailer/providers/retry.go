package providers

import (
	"context"
	"lincognito/pkg/mailer/registry"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: registry.DefaultRetryMax,
		BaseDelay:  registry.DefaultRetryBaseDelay,
		MaxDelay:   registry.DefaultRetryMaxDelay,
	}
}

func (c RetryConfig) normalize() RetryConfig {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = registry.DefaultRetryBaseDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// RetryingProvider retries transient failures (429, 5xx, network) of the wrapped provider.
type RetryingProvider struct {
	inner    EmailProvider
	executor failsafe.Executor[*EmailResult]
}

func WithRetry(inner EmailProvider, cfg RetryConfig) *RetryingProvider {
	cfg = cfg.normalize()
	policy := retrypolicy.NewBuilder[*EmailResult]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(registry.DefaultRetryJitter).
		HandleIf(func(_ *EmailResult, err error) bool {
			return registry.IsRetryable(err)
		}).
		Build()

	return &RetryingProvider{
		inner:    inner,
		executor: failsafe.With[*EmailResult](policy),
	}
}

func (p *RetryingProvider) GetName() string {
	return p.inner.GetName()
}

func (p *RetryingProvider) Send(ctx context.Context, emailData *EmailData) (*EmailResult, error) {
	result, err := p.executor.WithContext(ctx).Get(func() (*EmailResult, error) {
		return p.inner.Send(ctx, emailData)
	})
	if err != nil && result == nil {
		result = &EmailResult{Success: false, Error: err.Error(), Provider: p.inner.GetName()}
	}
	return result, err
}

func (p *RetryingProvider) Verify(ctx context.Context) (bool, error) {
	return p.inner.Verify(ctx)
}
