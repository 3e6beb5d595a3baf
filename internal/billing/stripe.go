package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	metaUserID = "user_id"
	metaPlanID = "plan_id"
)

// Gateway is the slice of Stripe the billing service calls.
type Gateway interface {
	FindOrCreateCustomer(ctx context.Context, info CustomerInfo) (string, error)
	CheckoutURL(ctx context.Context, params CheckoutParams) (string, error)
	PortalURL(ctx context.Context, customerID, returnURL string) (string, error)
}

type CustomerInfo struct {
	UserID string
	Email  string
	Name   string
}

type CheckoutParams struct {
	CustomerID string
	UserID     string
	PlanID     string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// StripeGateway talks to the Stripe API with the global key.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

// FindOrCreateCustomer looks the customer up by user_id metadata before creating one.
func (g *StripeGateway) FindOrCreateCustomer(ctx context.Context, info CustomerInfo) (string, error) {
	search := &stripe.CustomerSearchParams{}
	search.Query = fmt.Sprintf("metadata['%s']:'%s'", metaUserID, info.UserID)
	search.Context = ctx
	iter := customer.Search(search)
	for iter.Next() {
		return iter.Customer().ID, nil
	}

	params := &stripe.CustomerParams{
		Email:    stripe.String(info.Email),
		Name:     stripe.String(info.Name),
		Metadata: map[string]string{metaUserID: info.UserID},
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create Stripe customer: %w", err)
	}
	return cust.ID, nil
}

func (g *StripeGateway) CheckoutURL(ctx context.Context, p CheckoutParams) (string, error) {
	metadata := map[string]string{
		metaUserID: p.UserID,
		metaPlanID: p.PlanID,
	}

	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(p.CustomerID),
		ClientReferenceID: stripe.String(p.UserID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		Metadata:   metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (g *StripeGateway) PortalURL(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// VerifyWebhook checks the Stripe-Signature header and decodes the event.
func VerifyWebhook(payload []byte, signature, secret string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return event, nil
}
