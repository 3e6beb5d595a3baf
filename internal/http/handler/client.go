package handler

import (
	"context"
	"lincognito/internal/audit"
	"lincognito/internal/auth"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/notification"
	"lincognito/internal/domain/tags"
	"lincognito/internal/rbac/presets"
	"lincognito/pkg/validator"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ClientHandler struct {
	clients       ClientRepository
	posts         ClientPostLister
	access        AccessChecker
	stats         StatsCache
	users         UserGetter
	notifications NotificationCreator
	mailer        ClientMailer
	activity      ActivityRecorder
	log           *logrus.Logger
}

func NewClientHandler(
	clients ClientRepository,
	posts ClientPostLister,
	access AccessChecker,
	stats StatsCache,
	users UserGetter,
	notifications NotificationCreator,
	mailer ClientMailer,
	activity ActivityRecorder,
	log *logrus.Logger,
) *ClientHandler {
	return &ClientHandler{
		clients:       clients,
		posts:         posts,
		access:        access,
		stats:         stats,
		users:         users,
		notifications: notifications,
		mailer:        mailer,
		activity:      activity,
		log:           log,
	}
}

type CreateClientRequest struct {
	Name            string     `json:"name"`
	Company         string     `json:"company"`
	Bio             string     `json:"bio"`
	Tone            string     `json:"tone"`
	Industry        string     `json:"industry"`
	LinkedInURL     string     `json:"linkedinUrl"`
	BrandGuidelines string     `json:"brandGuidelines"`
	Hashtags        tags.List  `json:"hashtags"`
	Keywords        tags.List  `json:"keywords"`
	AgencyID        *uuid.UUID `json:"agencyId"`
}

type UpdateClientRequest struct {
	Name            *string    `json:"name"`
	Company         *string    `json:"company"`
	Bio             *string    `json:"bio"`
	Tone            *string    `json:"tone"`
	Industry        *string    `json:"industry"`
	LinkedInURL     *string    `json:"linkedinUrl"`
	BrandGuidelines *string    `json:"brandGuidelines"`
	Hashtags        *tags.List `json:"hashtags"`
	Keywords        *tags.List `json:"keywords"`
}

func (h *ClientHandler) CreateClient(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	var req CreateClientRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	input := client.CreateClientInput{
		Name:            strings.TrimSpace(req.Name),
		Company:         strings.TrimSpace(req.Company),
		Bio:             strings.TrimSpace(req.Bio),
		Tone:            strings.TrimSpace(req.Tone),
		Industry:        strings.TrimSpace(req.Industry),
		LinkedInURL:     strings.TrimSpace(req.LinkedInURL),
		BrandGuidelines: strings.TrimSpace(req.BrandGuidelines),
		Hashtags:        req.Hashtags.Hashtags(),
		Keywords:        req.Keywords.Plain(),
	}
	if input.Name == "" {
		return respondError(c, http.StatusBadRequest, msgClientNameRequired)
	}
	if err := validateClientInput(input); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if req.AgencyID != nil {
		if _, err := h.access.Agency(ctx, userID, *req.AgencyID, presets.ResourceClient, presets.ActionWrite); err != nil {
			return respondAppError(c, h.log, err, "agency access check failed")
		}
		input.AgencyID = req.AgencyID
	} else {
		input.OwnerUserID = &userID
	}

	created, err := h.clients.Create(ctx, input)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to create client")
	}

	h.activity.Record(c, audit.ResourceTypeClient, created.ID, audit.ActionCreate, map[string]any{"name": created.Name})
	h.announceClient(ctx, c, userID, created)

	return c.JSON(http.StatusCreated, client.NewView(created, &client.Stats{}))
}

// ListClients returns every accessible client with its aggregate stats.
func (h *ClientHandler) ListClients(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	ctx := c.Request().Context()
	clients, err := h.clients.ListAccessible(ctx, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list clients")
	}
	posts, err := h.posts.ListAccessible(ctx, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list posts for client stats")
	}

	byClient := client.ComputeStatsByClient(posts)
	views := make([]client.View, 0, len(clients))
	for _, cl := range clients {
		stats := byClient[cl.ID]
		views = append(views, client.NewView(cl, &stats))
	}

	return c.JSON(http.StatusOK, views)
}

func (h *ClientHandler) GetClient(c echo.Context) error {
	clientID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	cl, err := h.clients.GetByID(ctx, clientID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load client")
	}

	stats, err := h.statsFor(ctx, clientID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to compute client stats")
	}

	return c.JSON(http.StatusOK, client.NewView(cl, &stats))
}

func (h *ClientHandler) GetClientStats(c echo.Context) error {
	clientID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	stats, err := h.statsFor(c.Request().Context(), clientID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to compute client stats")
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *ClientHandler) UpdateClient(c echo.Context) error {
	clientID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req UpdateClientRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	input := client.UpdateClientInput{
		Name:            trimmed(req.Name),
		Company:         trimmed(req.Company),
		Bio:             trimmed(req.Bio),
		Tone:            trimmed(req.Tone),
		Industry:        trimmed(req.Industry),
		LinkedInURL:     trimmed(req.LinkedInURL),
		BrandGuidelines: trimmed(req.BrandGuidelines),
	}
	if req.Hashtags != nil {
		parsed := req.Hashtags.Hashtags()
		input.Hashtags = &parsed
	}
	if req.Keywords != nil {
		parsed := req.Keywords.Plain()
		input.Keywords = &parsed
	}
	if input.Empty() {
		return respondError(c, http.StatusBadRequest, msgNothingToUpdate)
	}
	if input.Name != nil && *input.Name == "" {
		return respondError(c, http.StatusBadRequest, msgClientNameRequired)
	}
	if err := validateClientInput(mergeForValidation(input)); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	updated, err := h.clients.Update(ctx, clientID, input)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to update client")
	}

	h.activity.Record(c, audit.ResourceTypeClient, clientID, audit.ActionUpdate, nil)

	stats, err := h.statsFor(ctx, clientID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to compute client stats")
	}

	return c.JSON(http.StatusOK, client.NewView(updated, &stats))
}

// DeleteClient removes the client; posts and messages go with it through the foreign keys.
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	clientID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	if err := h.clients.Delete(ctx, clientID); err != nil {
		return respondAppError(c, h.log, err, "failed to delete client")
	}

	h.stats.Invalidate(ctx, clientID)
	h.activity.Record(c, audit.ResourceTypeClient, clientID, audit.ActionDelete, nil)

	return c.NoContent(http.StatusNoContent)
}

func (h *ClientHandler) DisconnectLinkedIn(c echo.Context) error {
	clientID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if err := h.clients.ClearLinkedIn(c.Request().Context(), clientID); err != nil {
		return respondAppError(c, h.log, err, "failed to disconnect linkedin")
	}

	h.activity.Record(c, audit.ResourceTypeClient, clientID, audit.ActionUpdate, map[string]any{"linkedin": "disconnected"})

	return c.NoContent(http.StatusNoContent)
}

func (h *ClientHandler) statsFor(ctx context.Context, clientID uuid.UUID) (client.Stats, error) {
	if stats, ok := h.stats.Get(ctx, clientID); ok {
		return stats, nil
	}

	posts, err := h.posts.ListByClient(ctx, clientID)
	if err != nil {
		return client.Stats{}, err
	}

	stats := client.ComputeStats(posts)
	h.stats.Set(ctx, clientID, stats)
	return stats, nil
}

// announceClient notifies the creator in-app and, if their settings allow it, by email.
func (h *ClientHandler) announceClient(ctx context.Context, c echo.Context, userID uuid.UUID, created *client.Client) {
	entry := requestLogger(h.log, c).WithField("client_id", created.ID)

	if _, err := h.notifications.Create(ctx, notification.CreateNotificationInput{
		UserID:   userID,
		ClientID: &created.ID,
		Type:     notification.TypeClientAdded,
		Title:    "New client added",
		Body:     created.Name + " is ready for their first post.",
		Priority: notification.PriorityNormal,
	}); err != nil {
		entry.WithError(err).Warn("failed to create client notification")
	}

	settings, err := h.notifications.GetSettings(ctx, userID)
	if err != nil {
		entry.WithError(err).Warn("failed to load notification settings")
		return
	}
	if !settings.EmailClientAdded {
		return
	}

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		entry.WithError(err).Warn("failed to load user for client email")
		return
	}
	clients, err := h.clients.ListAccessible(ctx, userID)
	if err != nil {
		entry.WithError(err).Warn("failed to count clients for email")
		return
	}

	h.mailer.ClientAdded(u, created, len(clients))
}

func validateClientInput(in client.CreateClientInput) error {
	if in.Name != "" {
		if err := validator.Name("name", in.Name); err != nil {
			return err
		}
	}
	checks := []error{
		validator.OptionalText("company", in.Company),
		validator.LongText("bio", in.Bio),
		validator.OptionalText("tone", in.Tone),
		validator.OptionalText("industry", in.Industry),
		validator.URL("linkedinUrl", in.LinkedInURL),
		validator.LongText("brandGuidelines", in.BrandGuidelines),
		validator.Tags("hashtags", in.Hashtags),
		validator.Tags("keywords", in.Keywords),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// mergeForValidation lets partial updates share the create-time rules.
func mergeForValidation(in client.UpdateClientInput) client.CreateClientInput {
	out := client.CreateClientInput{}
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	out.Name = deref(in.Name)
	out.Company = deref(in.Company)
	out.Bio = deref(in.Bio)
	out.Tone = deref(in.Tone)
	out.Industry = deref(in.Industry)
	out.LinkedInURL = deref(in.LinkedInURL)
	out.BrandGuidelines = deref(in.BrandGuidelines)
	if in.Hashtags != nil {
		out.Hashtags = *in.Hashtags
	}
	if in.Keywords != nil {
		out.Keywords = *in.Keywords
	}
	return out
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
