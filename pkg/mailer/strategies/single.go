package strategies

import (
	"context"
	"lincognito/pkg/mailer/providers"
	"lincognito/pkg/mailer/registry"
)

type SingleProviderStrategy struct{}

func (s *SingleProviderStrategy) Send(ctx context.Context, emailData *providers.EmailData, providerList []providers.EmailProvider) (*providers.EmailResult, error) {
	if len(providerList) == 0 || providerList[0] == nil {
		return &providers.EmailResult{
			Success:  false,
			Error:    registry.ErrNoProvidersConfigured.Error(),
			Provider: registry.ProviderLabelNone,
		}, registry.ErrNoProvidersConfigured
	}

	return providerList[0].Send(ctx, emailData)
}
