package handler

import (
	"errors"
	"lincognito/internal/audit"
	"lincognito/internal/auth"
	"lincognito/internal/domain/agency"
	"lincognito/internal/domain/user"
	apperrors "lincognito/pkg/errors"
	"lincognito/pkg/validator"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AgencyHandler struct {
	agencies AgencyRepository
	users    UserByEmail
	activity ActivityRecorder
	log      *logrus.Logger
}

func NewAgencyHandler(agencies AgencyRepository, users UserByEmail, activity ActivityRecorder, log *logrus.Logger) *AgencyHandler {
	return &AgencyHandler{agencies: agencies, users: users, activity: activity, log: log}
}

type CreateAgencyRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type AddMemberRequest struct {
	Email string `json:"email" validate:"required"`
	Role  string `json:"role" validate:"required"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *AgencyHandler) CreateAgency(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	var req CreateAgencyRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return respondError(c, http.StatusBadRequest, msgAgencyNameRequired)
	}
	if err := validator.Name("name", req.Name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	a, err := h.agencies.Create(ctx, agency.CreateAgencyInput{Name: req.Name, OwnerID: userID})
	if err != nil {
		return respondAppError(c, h.log, err, "failed to create agency")
	}

	members, err := h.agencies.ListMembers(ctx, a.ID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list agency members")
	}

	h.activity.Record(c, audit.ResourceTypeAgency, a.ID, audit.ActionCreate, map[string]any{"name": a.Name})

	return c.JSON(http.StatusCreated, agency.WithMembers{Agency: a, Members: members})
}

func (h *AgencyHandler) ListAgencies(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	agencies, err := h.agencies.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list agencies")
	}
	if agencies == nil {
		agencies = []*agency.Agency{}
	}

	return c.JSON(http.StatusOK, agencies)
}

func (h *AgencyHandler) GetAgency(c echo.Context) error {
	agencyID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	a, err := h.agencies.GetByID(ctx, agencyID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load agency")
	}
	members, err := h.agencies.ListMembers(ctx, agencyID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list agency members")
	}

	return c.JSON(http.StatusOK, agency.WithMembers{Agency: a, Members: members})
}

// AddMember invites an existing user by email.
func (h *AgencyHandler) AddMember(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	agencyID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req AddMemberRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	role, err := agency.ParseRole(req.Role)
	if err != nil {
		return respondAppError(c, h.log, err, "invalid role")
	}
	email := user.NormalizeEmail(req.Email)
	if err := validator.Email(email); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	invitee, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgUserNotFound)
		}
		return respondAppError(c, h.log, err, "failed to look up invitee")
	}

	member, err := h.agencies.AddMember(ctx, agency.AddMemberInput{
		AgencyID:  agencyID,
		UserID:    invitee.ID,
		Role:      role,
		InvitedBy: userID,
	})
	if err != nil {
		return respondAppError(c, h.log, err, "failed to add member")
	}

	h.activity.Record(c, audit.ResourceTypeAgency, agencyID, audit.ActionMemberAdd, map[string]any{
		"member_id": invitee.ID.String(),
		"role":      string(role),
	})

	return c.JSON(http.StatusCreated, member)
}

func (h *AgencyHandler) UpdateMemberRole(c echo.Context) error {
	agencyID, memberID, err := memberParams(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req UpdateMemberRoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	role, err := agency.ParseRole(req.Role)
	if err != nil {
		return respondAppError(c, h.log, err, "invalid role")
	}

	member, err := h.agencies.UpdateMemberRole(c.Request().Context(), agency.UpdateMemberRoleInput{
		AgencyID: agencyID,
		UserID:   memberID,
		Role:     role,
	})
	if err != nil {
		return respondAppError(c, h.log, err, "failed to update member role")
	}

	h.activity.Record(c, audit.ResourceTypeAgency, agencyID, audit.ActionMemberUpdate, map[string]any{
		"member_id": memberID.String(),
		"role":      string(role),
	})

	return c.JSON(http.StatusOK, member)
}

func (h *AgencyHandler) RemoveMember(c echo.Context) error {
	agencyID, memberID, err := memberParams(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if err := h.agencies.RemoveMember(c.Request().Context(), agencyID, memberID); err != nil {
		return respondAppError(c, h.log, err, "failed to remove member")
	}

	h.activity.Record(c, audit.ResourceTypeAgency, agencyID, audit.ActionMemberRemove, map[string]any{
		"member_id": memberID.String(),
	})

	return c.NoContent(http.StatusNoContent)
}

func memberParams(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	agencyID, err := parseIDParam(c, paramID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	memberID, err := uuid.Parse(c.Param(paramUserID))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, msgInvalidUserID)
	}
	return agencyID, memberID, nil
}
