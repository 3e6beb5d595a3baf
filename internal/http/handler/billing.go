package handler

import (
	"io"
	"lincognito/internal/auth"
	"lincognito/internal/billing"
	"lincognito/internal/domain/user"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type BillingHandler struct {
	billing       BillingService
	users         UserGetter
	webhookSecret string
	log           *logrus.Logger
}

func NewBillingHandler(svc BillingService, users UserGetter, webhookSecret string, log *logrus.Logger) *BillingHandler {
	return &BillingHandler{billing: svc, users: users, webhookSecret: webhookSecret, log: log}
}

type CheckoutRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

type RedirectResponse struct {
	URL string `json:"url"`
}

func (h *BillingHandler) Plans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.billing.Plans())
}

func (h *BillingHandler) Subscription(c echo.Context) error {
	u, err := h.currentUser(c)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load user")
	}

	return c.JSON(http.StatusOK, h.billing.Subscription(u))
}

func (h *BillingHandler) CreateCheckout(c echo.Context) error {
	var req CheckoutRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	planID := strings.ToLower(strings.TrimSpace(req.PlanID))
	if planID == "" {
		return respondError(c, http.StatusBadRequest, msgPlanRequired)
	}

	u, err := h.currentUser(c)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load user")
	}

	url, err := h.billing.Checkout(c.Request().Context(), u, user.Plan(planID))
	if err != nil {
		return respondAppError(c, h.log, err, "failed to create checkout session")
	}

	return c.JSON(http.StatusOK, RedirectResponse{URL: url})
}

func (h *BillingHandler) CustomerPortal(c echo.Context) error {
	u, err := h.currentUser(c)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load user")
	}

	url, err := h.billing.Portal(c.Request().Context(), u)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to create portal session")
	}

	return c.JSON(http.StatusOK, RedirectResponse{URL: url})
}

// Webhook is unauthenticated; the Stripe signature is the only credential.
// Processing errors return 500 so Stripe redelivers the event.
func (h *BillingHandler) Webhook(c echo.Context) error {
	if h.webhookSecret == "" {
		return respondError(c, http.StatusServiceUnavailable, msgWebhookProcessFail)
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBytes))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRequestBody)
	}

	event, err := billing.VerifyWebhook(payload, c.Request().Header.Get(headerStripeSignature), h.webhookSecret)
	if err != nil {
		requestLogger(h.log, c).WithError(err).Warn("Rejected Stripe webhook")
		return respondError(c, http.StatusBadRequest, msgWebhookSignature)
	}

	if err := h.billing.HandleEvent(c.Request().Context(), event); err != nil {
		requestLogger(h.log, c).WithError(err).WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": string(event.Type),
		}).Error("Failed to process Stripe webhook")
		return respondError(c, http.StatusInternalServerError, msgWebhookProcessFail)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func (h *BillingHandler) currentUser(c echo.Context) (*user.User, error) {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return nil, err
	}
	return h.users.GetByID(c.Request().Context(), userID)
}
