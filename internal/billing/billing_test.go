package billing

import (
	"context"
	"encoding/json"
	"io"
	"lincognito/internal/config"
	"lincognito/internal/domain/user"
	apperrors "lincognito/pkg/errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type fakeGateway struct {
	customers int
	checkout  CheckoutParams
	portalFor string
}

func (g *fakeGateway) FindOrCreateCustomer(ctx context.Context, info CustomerInfo) (string, error) {
	g.customers++
	return "cus_new", nil
}

func (g *fakeGateway) CheckoutURL(ctx context.Context, p CheckoutParams) (string, error) {
	g.checkout = p
	return "https://checkout.stripe.test/session", nil
}

func (g *fakeGateway) PortalURL(ctx context.Context, customerID, returnURL string) (string, error) {
	g.portalFor = customerID
	return "https://billing.stripe.test/portal", nil
}

type fakeUsers struct {
	byID    map[uuid.UUID]*user.User
	updates []user.BillingUpdate
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*user.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	for _, u := range f.byID {
		if u.StripeCustomerID == customerID {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	f.byID[id].StripeCustomerID = customerID
	return nil
}

func (f *fakeUsers) UpdateBilling(ctx context.Context, id uuid.UUID, update user.BillingUpdate) error {
	u, ok := f.byID[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	f.updates = append(f.updates, update)
	u.Plan = update.Plan
	u.SubscriptionStatus = update.SubscriptionStatus
	if update.StripeCustomerID != "" {
		u.StripeCustomerID = update.StripeCustomerID
	}
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testCatalog() *Catalog {
	return NewCatalog(config.StripeConfig{PricePro: "price_pro", PriceAgency: "price_agency"})
}

func newTestService(gw Gateway, users *fakeUsers) *Service {
	return NewService(gw, testCatalog(), users, "https://app.test", quietLogger())
}

func event(t *testing.T, eventType string, obj any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(obj)
	require.NoError(t, err)
	return stripe.Event{Type: stripe.EventType(eventType), Data: &stripe.EventData{Raw: raw}}
}

func TestCatalog(t *testing.T) {
	c := testCatalog()
	assert.Len(t, c.Plans(), 3)

	free, ok := c.Find(user.PlanFree)
	require.True(t, ok)
	assert.False(t, free.Purchasable())

	plan, ok := c.ByPriceID("price_agency")
	require.True(t, ok)
	assert.Equal(t, user.PlanAgency, plan.ID)

	_, ok = c.ByPriceID("")
	assert.False(t, ok)
}

func TestCatalog_PriceIDNotSerialized(t *testing.T) {
	raw, err := json.Marshal(testCatalog().Plans())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "price_pro")
}

func TestCheckout_CreatesCustomerOnce(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "ada@example.com"}
	users := newFakeUsers(u)
	gw := &fakeGateway{}
	svc := newTestService(gw, users)

	url, err := svc.Checkout(context.Background(), u, user.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/session", url)
	assert.Equal(t, "cus_new", u.StripeCustomerID)
	assert.Equal(t, "price_pro", gw.checkout.PriceID)
	assert.Equal(t, "pro", gw.checkout.PlanID)
	assert.Equal(t, u.ID.String(), gw.checkout.UserID)

	_, err = svc.Checkout(context.Background(), u, user.PlanAgency)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.customers)
}

func TestCheckout_Rejections(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "ada@example.com"}
	tests := []struct {
		name    string
		gateway Gateway
		plan    user.Plan
		want    error
	}{
		{"unknown plan", &fakeGateway{}, user.Plan("enterprise"), apperrors.ErrValidation},
		{"free plan", &fakeGateway{}, user.PlanFree, apperrors.ErrValidation},
		{"billing disabled", nil, user.PlanPro, apperrors.ErrPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.gateway, newFakeUsers(u))
			_, err := svc.Checkout(context.Background(), u, tt.plan)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPortal(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(gw, newFakeUsers())

	_, err := svc.Portal(context.Background(), &user.User{ID: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	url, err := svc.Portal(context.Background(), &user.User{ID: uuid.New(), StripeCustomerID: "cus_1"})
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.test/portal", url)
	assert.Equal(t, "cus_1", gw.portalFor)
}

func TestHandleEvent_CheckoutCompleted(t *testing.T) {
	u := &user.User{ID: uuid.New(), Plan: user.PlanFree}
	users := newFakeUsers(u)
	svc := newTestService(&fakeGateway{}, users)

	ev := event(t, EventCheckoutCompleted, map[string]any{
		"id":       "cs_test",
		"object":   "checkout.session",
		"customer": "cus_42",
		"metadata": map[string]string{"user_id": u.ID.String(), "plan_id": "agency"},
	})

	require.NoError(t, svc.HandleEvent(context.Background(), ev))
	assert.Equal(t, user.PlanAgency, u.Plan)
	assert.Equal(t, user.SubscriptionActive, u.SubscriptionStatus)
	assert.Equal(t, "cus_42", u.StripeCustomerID)
}

func TestHandleEvent_SubscriptionLifecycle(t *testing.T) {
	u := &user.User{ID: uuid.New(), Plan: user.PlanFree, StripeCustomerID: "cus_7"}
	users := newFakeUsers(u)
	svc := newTestService(&fakeGateway{}, users)

	updated := event(t, EventSubscriptionUpdated, map[string]any{
		"id":       "sub_1",
		"object":   "subscription",
		"customer": "cus_7",
		"status":   "past_due",
		"items": map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "si_1", "object": "subscription_item", "price": map[string]any{"id": "price_pro", "object": "price"}},
			},
		},
	})
	require.NoError(t, svc.HandleEvent(context.Background(), updated))
	assert.Equal(t, user.PlanPro, u.Plan)
	assert.Equal(t, user.SubscriptionPastDue, u.SubscriptionStatus)

	deleted := event(t, EventSubscriptionDeleted, map[string]any{
		"id":       "sub_1",
		"object":   "subscription",
		"customer": "cus_7",
		"status":   "canceled",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), deleted))
	assert.Equal(t, user.PlanFree, u.Plan)
	assert.Equal(t, user.SubscriptionCanceled, u.SubscriptionStatus)
}

func TestHandleEvent_IgnoresUnknownCustomersAndTypes(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(&fakeGateway{}, users)

	ev := event(t, EventSubscriptionCreated, map[string]any{"id": "sub_9", "customer": "cus_missing", "status": "active"})
	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	require.NoError(t, svc.HandleEvent(context.Background(), event(t, "invoice.paid", map[string]any{"id": "in_1"})))
	assert.Empty(t, users.updates)
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   stripe.SubscriptionStatus
		want user.SubscriptionStatus
	}{
		{stripe.SubscriptionStatusActive, user.SubscriptionActive},
		{stripe.SubscriptionStatusTrialing, user.SubscriptionTrialing},
		{stripe.SubscriptionStatusPastDue, user.SubscriptionPastDue},
		{stripe.SubscriptionStatusIncompleteExpired, user.SubscriptionCanceled},
		{stripe.SubscriptionStatusUnpaid, user.SubscriptionUnpaid},
		{stripe.SubscriptionStatus("mystery"), user.SubscriptionNone},
	}
	for _, tt := range tests {
		if got := MapStatus(tt.in); got != tt.want {
			t.Errorf("MapStatus(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestVerifyWebhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{}}}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	ev, err := VerifyWebhook(signed.Payload, signed.Header, "whsec_test")
	require.NoError(t, err)
	assert.Equal(t, stripe.EventType("invoice.paid"), ev.Type)

	_, err = VerifyWebhook(signed.Payload, signed.Header, "whsec_other")
	assert.Error(t, err)
}
