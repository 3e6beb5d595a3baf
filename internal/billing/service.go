package billing

import (
	"context"
	"errors"
	"fmt"
	"lincognito/internal/domain/user"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"

	msgUnknownPlan        = "unknown plan"
	msgPlanNotPurchasable = "this plan cannot be purchased"
	msgNoCustomer         = "no billing account yet; subscribe to a plan first"
	msgBillingDisabled    = "billing is not configured"
)

type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error)
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	UpdateBilling(ctx context.Context, id uuid.UUID, update user.BillingUpdate) error
}

type Service struct {
	gateway Gateway
	catalog *Catalog
	users   Users
	appURL  string
	log     *logrus.Logger
}

// NewService accepts a nil gateway; checkout and portal then answer with a precondition error.
func NewService(gateway Gateway, catalog *Catalog, users Users, appURL string, log *logrus.Logger) *Service {
	return &Service{gateway: gateway, catalog: catalog, users: users, appURL: appURL, log: log}
}

func (s *Service) Plans() []Plan {
	return s.catalog.Plans()
}

// Subscription is what GET /api/billing/subscription reports.
type Subscription struct {
	Plan        user.Plan               `json:"plan"`
	Status      user.SubscriptionStatus `json:"status"`
	HasCustomer bool                    `json:"hasBillingAccount"`
}

func (s *Service) Subscription(u *user.User) Subscription {
	return Subscription{Plan: u.Plan, Status: u.SubscriptionStatus, HasCustomer: u.StripeCustomerID != ""}
}

// Checkout returns the hosted Checkout URL for a subscription to planID.
func (s *Service) Checkout(ctx context.Context, u *user.User, planID user.Plan) (string, error) {
	if s.gateway == nil {
		return "", apperrors.Precondition(msgBillingDisabled)
	}
	plan, ok := s.catalog.Find(planID)
	if !ok {
		return "", apperrors.Validation(msgUnknownPlan)
	}
	if !plan.Purchasable() {
		return "", apperrors.Validation(msgPlanNotPurchasable)
	}

	customerID := u.StripeCustomerID
	if customerID == "" {
		id, err := s.gateway.FindOrCreateCustomer(ctx, CustomerInfo{UserID: u.ID.String(), Email: u.Email, Name: u.DisplayName()})
		if err != nil {
			return "", err
		}
		if err := s.users.SetStripeCustomerID(ctx, u.ID, id); err != nil {
			return "", err
		}
		customerID = id
	}

	return s.gateway.CheckoutURL(ctx, CheckoutParams{
		CustomerID: customerID,
		UserID:     u.ID.String(),
		PlanID:     string(plan.ID),
		PriceID:    plan.PriceID,
		SuccessURL: s.appURL + "/dashboard/billing?checkout=success",
		CancelURL:  s.appURL + "/pricing?checkout=cancelled",
	})
}

func (s *Service) Portal(ctx context.Context, u *user.User) (string, error) {
	if s.gateway == nil {
		return "", apperrors.Precondition(msgBillingDisabled)
	}
	if u.StripeCustomerID == "" {
		return "", apperrors.Conflict(msgNoCustomer)
	}
	return s.gateway.PortalURL(ctx, u.StripeCustomerID, s.appURL+"/dashboard/billing")
}

// HandleEvent applies the subscription state an event carries. Unrelated event types are ignored.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := sess.UnmarshalJSON(event.Data.Raw); err != nil {
			return fmt.Errorf("failed to unmarshal checkout session: %w", err)
		}
		return s.applyCheckout(ctx, &sess)
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := sub.UnmarshalJSON(event.Data.Raw); err != nil {
			return fmt.Errorf("failed to unmarshal subscription: %w", err)
		}
		return s.applySubscription(ctx, &sub, event.Type == EventSubscriptionDeleted)
	default:
		s.log.WithField("event_type", event.Type).Debug("ignoring stripe event")
		return nil
	}
}

func (s *Service) applyCheckout(ctx context.Context, sess *stripe.CheckoutSession) error {
	userRef := sess.Metadata[metaUserID]
	if userRef == "" {
		userRef = sess.ClientReferenceID
	}
	userID, err := uuid.Parse(userRef)
	if err != nil {
		s.log.WithField("session_id", sess.ID).Warn("checkout session without a user reference")
		return nil
	}

	plan := user.Plan(sess.Metadata[metaPlanID])
	if !plan.Valid() {
		plan = user.PlanPro
	}

	update := user.BillingUpdate{Plan: plan, SubscriptionStatus: user.SubscriptionActive}
	if sess.Customer != nil {
		update.StripeCustomerID = sess.Customer.ID
	}

	if err := s.users.UpdateBilling(ctx, userID, update); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.log.WithField("user_id", userID).Warn("checkout completed for unknown user")
			return nil
		}
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "plan": plan}).Info("checkout completed")
	return nil
}

func (s *Service) applySubscription(ctx context.Context, sub *stripe.Subscription, deleted bool) error {
	if sub.Customer == nil || sub.Customer.ID == "" {
		return nil
	}
	u, err := s.users.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.log.WithField("customer_id", sub.Customer.ID).Warn("subscription event for unknown customer")
			return nil
		}
		return err
	}

	update := user.BillingUpdate{
		Plan:               s.planFor(sub, u.Plan),
		SubscriptionStatus: MapStatus(sub.Status),
	}
	if deleted {
		update.Plan = user.PlanFree
		update.SubscriptionStatus = user.SubscriptionCanceled
	}

	if err := s.users.UpdateBilling(ctx, u.ID, update); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": u.ID,
		"plan":    update.Plan,
		"status":  update.SubscriptionStatus,
	}).Info("subscription updated")
	return nil
}

func (s *Service) planFor(sub *stripe.Subscription, fallback user.Plan) user.Plan {
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.Price == nil {
				continue
			}
			if plan, ok := s.catalog.ByPriceID(item.Price.ID); ok {
				return plan.ID
			}
		}
	}
	if plan := user.Plan(sub.Metadata[metaPlanID]); plan.Valid() {
		return plan
	}
	return fallback
}

// MapStatus folds Stripe's subscription statuses into ours.
func MapStatus(status stripe.SubscriptionStatus) user.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return user.SubscriptionActive
	case stripe.SubscriptionStatusTrialing:
		return user.SubscriptionTrialing
	case stripe.SubscriptionStatusPastDue:
		return user.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return user.SubscriptionCanceled
	case stripe.SubscriptionStatusIncomplete:
		return user.SubscriptionIncomplete
	case stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusPaused:
		return user.SubscriptionUnpaid
	default:
		return user.SubscriptionNone
	}
}
