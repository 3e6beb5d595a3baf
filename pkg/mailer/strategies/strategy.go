package strategies

import (
	"context"
	"lincognito/pkg/mailer/providers"
)

type EmailStrategy interface {
	Send(ctx context.Context, emailData *providers.EmailData, providerList []providers.EmailProvider) (*providers.EmailResult, error)
}
