package mailer

import (
	"context"
	"lincognito/pkg/mailer/providers"
	"lincognito/pkg/mailer/registry"
	"lincognito/pkg/mailer/strategies"
	"lincognito/pkg/mailer/templates"
	"sync"
)

type EmailService struct {
	providers   []providers.EmailProvider
	strategy    strategies.EmailStrategy
	defaultFrom string
	mu          sync.RWMutex
}

type EmailServiceConfig struct {
	Providers   []providers.EmailProvider
	Strategy    strategies.EmailStrategy
	DefaultFrom string
}

func NewEmailService(config EmailServiceConfig) (*EmailService, error) {
	if len(config.Providers) == 0 {
		return nil, registry.ErrAtLeastOneProviderRequired
	}
	providerList := make([]providers.EmailProvider, len(config.Providers))
	copy(providerList, config.Providers)

	for _, provider := range providerList {
		if provider == nil {
			return nil, registry.ErrProviderCannotBeNil
		}
	}

	strategy := config.Strategy
	if strategy == nil {
		if len(providerList) > 1 {
			strategy = &strategies.FailoverStrategy{}
		} else {
			strategy = &strategies.SingleProviderStrategy{}
		}
	}

	if config.DefaultFrom != "" {
		if err := ValidateEmail(config.DefaultFrom); err != nil {
			return nil, registry.ErrInvalidDefaultFromEmail
		}
	}

	return &EmailService{
		providers:   providerList,
		strategy:    strategy,
		defaultFrom: config.DefaultFrom,
	}, nil
}

func (s *EmailService) Send(ctx context.Context, emailData *providers.EmailData) (*providers.EmailResult, error) {
	if emailData == nil {
		return &providers.EmailResult{
			Success:  false,
			Error:    registry.ErrEmailDataRequired.Error(),
			Provider: registry.ProviderLabelValidation,
		}, registry.ErrEmailDataRequired
	}

	s.mu.RLock()
	defaultFrom := s.defaultFrom
	strategy := s.strategy
	providerList := make([]providers.EmailProvider, len(s.providers))
	copy(providerList, s.providers)
	s.mu.RUnlock()

	data := cloneEmailData(emailData)
	if data.From == "" && defaultFrom != "" {
		data.From = defaultFrom
	}

	if err := ValidateEmailData(data); err != nil {
		return &providers.EmailResult{
			Success:  false,
			Error:    err.Error(),
			Provider: registry.ProviderLabelValidation,
		}, err
	}

	return strategy.Send(ctx, data, providerList)
}

// SendWithTypedTemplate renders template with context and sends it; the template
// supplies the subject unless emailData already carries one.
func SendWithTypedTemplate[T any](ctx context.Context, service *EmailService, template *templates.TypedTemplate[T], context T, emailData *providers.EmailData) (*providers.EmailResult, error) {
	if service == nil {
		return &providers.EmailResult{
			Success:  false,
			Error:    registry.ErrEmailServiceRequired.Error(),
			Provider: registry.ProviderLabelTemplate,
		}, registry.ErrEmailServiceRequired
	}
	if template == nil {
		return &providers.EmailResult{
			Success:  false,
			Error:    registry.ErrEmailTemplateRequired.Error(),
			Provider: registry.ProviderLabelTemplate,
		}, registry.ErrEmailTemplateRequired
	}
	if emailData == nil {
		emailData = &providers.EmailData{}
	}

	subject, html, text, err := template.Render(context)
	if err != nil {
		return &providers.EmailResult{
			Success:  false,
			Error:    err.Error(),
			Provider: registry.ProviderLabelTemplate,
		}, err
	}

	data := cloneEmailData(emailData)
	data.HTML = html
	data.Text = text
	if data.Subject == "" {
		data.Subject = subject
	}
	if data.Tag == "" {
		data.Tag = template.GetName()
	}

	return service.Send(ctx, data)
}

func (s *EmailService) GetProviders() []providers.EmailProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	providerList := make([]providers.EmailProvider, len(s.providers))
	copy(providerList, s.providers)
	return providerList
}

// VerifyProviders checks each provider's credentials, keyed by provider name.
func (s *EmailService) VerifyProviders(ctx context.Context) map[string]bool {
	results := make(map[string]bool)
	for _, provider := range s.GetProviders() {
		verified, _ := provider.Verify(ctx)
		results[provider.GetName()] = verified
	}
	return results
}

func cloneEmailData(emailData *providers.EmailData) *providers.EmailData {
	clone := *emailData

	if emailData.To != nil {
		clone.To = append([]string(nil), emailData.To...)
	}
	if emailData.CC != nil {
		clone.CC = append([]string(nil), emailData.CC...)
	}
	if emailData.BCC != nil {
		clone.BCC = append([]string(nil), emailData.BCC...)
	}

	return &clone
}
