package strategies

import (
	"context"
	"fmt"
	"lincognito/pkg/mailer/providers"
	"lincognito/pkg/mailer/registry"
	"strings"
)

// FailoverStrategy tries providers in order and returns the first success.
type FailoverStrategy struct{}

func (s *FailoverStrategy) Send(ctx context.Context, emailData *providers.EmailData, providerList []providers.EmailProvider) (*providers.EmailResult, error) {
	if len(providerList) == 0 {
		return &providers.EmailResult{
			Success:  false,
			Error:    registry.ErrNoProvidersConfigured.Error(),
			Provider: registry.ProviderLabelNone,
		}, registry.ErrNoProvidersConfigured
	}

	var errorMessages []string

	for _, provider := range providerList {
		if ctx.Err() != nil {
			errorMessages = append(errorMessages, ctx.Err().Error())
			break
		}
		if provider == nil {
			errorMessages = append(errorMessages, fmt.Sprintf(registry.MsgProviderErrorFmt, registry.UnknownProviderName, registry.ErrProviderCannotBeNil.Error()))
			continue
		}

		result, err := provider.Send(ctx, emailData)
		if result != nil && result.Success {
			return result, nil
		}

		errorText := registry.StrategySendFailedText
		if result != nil && result.Error != "" {
			errorText = result.Error
		} else if err != nil {
			errorText = err.Error()
		}

		errorMessages = append(errorMessages, fmt.Sprintf(registry.MsgProviderErrorFmt, provider.GetName(), errorText))
	}

	return &providers.EmailResult{
		Success:  false,
		Error:    fmt.Sprintf(registry.MsgProviderErrorFmt, registry.ErrAllProvidersFailed.Error(), strings.Join(errorMessages, registry.MessageSeparator)),
		Provider: registry.ProviderLabelFailover,
	}, registry.ErrAllProvidersFailed
}
