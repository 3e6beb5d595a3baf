package handler

import (
	"errors"
	"lincognito/internal/audit"
	"lincognito/internal/auth"
	"lincognito/internal/domain/user"
	apperrors "lincognito/pkg/errors"
	"lincognito/pkg/validator"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Pre-computed bcrypt hash (cost 12) used to equalize timing on failed lookups.
const dummyBcryptHash = "$2a$12$dWR5CQpS4zNHLavLSIr4o.P6QDQEUJKv7mJ7WekUHHqyRSRMJzH0S"

type AuthHandler struct {
	users    UserRepository
	tx       AccountTransactor
	resets   PasswordResetRepository
	tokens   TokenGenerator
	hasher   PasswordHasher
	mailer   AccountMailer
	activity ActivityRecorder
	resetTTL time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

func NewAuthHandler(
	users UserRepository,
	tx AccountTransactor,
	resets PasswordResetRepository,
	tokens TokenGenerator,
	hasher PasswordHasher,
	mailer AccountMailer,
	activity ActivityRecorder,
	resetTTL time.Duration,
	log *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tx:       tx,
		resets:   resets,
		tokens:   tokens,
		hasher:   hasher,
		mailer:   mailer,
		activity: activity,
		resetTTL: resetTTL,
		log:      log,
		now:      time.Now,
	}
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"max=255"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateMeRequest struct {
	Name            *string `json:"name"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = user.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Email(req.Email); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.Password(req.Password); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.OptionalText("name", req.Name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	u, err := h.tx.SignupTransaction(c.Request().Context(), user.CreateUserInput{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrEmailExists) {
			return respondError(c, http.StatusConflict, msgEmailAlreadyExists)
		}
		requestLogger(h.log, c).WithError(err).Error("signup failed")
		return respondError(c, http.StatusInternalServerError, msgCreateAccountFail)
	}

	resp, err := h.issue(u)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	c.Set(auth.ContextKeyUserID, u.ID)
	h.activity.Record(c, audit.ResourceTypeUser, u.ID, audit.ActionSignup, nil)
	h.mailer.Welcome(u)

	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = user.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		h.hasher.Verify("", dummyBcryptHash)
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	u, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		// Keep the unknown-email path as slow as a wrong password.
		h.hasher.Verify(req.Password, dummyBcryptHash)
		if !errors.Is(err, apperrors.ErrNotFound) {
			requestLogger(h.log, c).WithError(err).Error("login lookup failed")
		}
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	if !h.hasher.Verify(req.Password, u.PasswordHash) {
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	resp, err := h.issue(u)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	c.Set(auth.ContextKeyUserID, u.ID)
	h.activity.Record(c, audit.ResourceTypeUser, u.ID, audit.ActionLogin, nil)

	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	u, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load current user")
	}

	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	var req UpdateMeRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	current, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load current user")
	}

	var input user.UpdateUserInput
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validator.OptionalText("name", name); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
		input.Name = &name
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return respondError(c, http.StatusBadRequest, msgCurrentPasswordReq)
		}
		if !h.hasher.Verify(req.CurrentPassword, current.PasswordHash) {
			return respondError(c, http.StatusUnauthorized, msgCurrentPasswordBad)
		}
		if err := validator.Password(req.NewPassword); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
		hash, err := h.hasher.Hash(req.NewPassword)
		if err != nil {
			return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
		}
		input.PasswordHash = &hash
	}

	if input.Name == nil && input.PasswordHash == nil {
		return respondError(c, http.StatusBadRequest, msgNothingToUpdate)
	}

	updated, err := h.users.Update(ctx, userID, input)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to update user")
	}

	h.activity.Record(c, audit.ResourceTypeUser, userID, audit.ActionUpdate, map[string]any{
		"password_changed": input.PasswordHash != nil,
	})

	return c.JSON(http.StatusOK, updated)
}

// ForgotPassword always answers 202 so the endpoint does not reveal which emails have accounts.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	email := user.NormalizeEmail(req.Email)
	if err := validator.Email(email); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	u, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			requestLogger(h.log, c).WithError(err).Error("password reset lookup failed")
		}
		return respondMessage(c, http.StatusAccepted, msgResetRequested)
	}

	token, hash, err := auth.GenerateResetToken()
	if err != nil {
		requestLogger(h.log, c).WithError(err).Error("failed to generate reset token")
		return respondMessage(c, http.StatusAccepted, msgResetRequested)
	}

	if _, err := h.resets.Create(ctx, u.ID, hash, h.now().Add(h.resetTTL)); err != nil {
		requestLogger(h.log, c).WithError(err).Error("failed to store reset token")
		return respondMessage(c, http.StatusAccepted, msgResetRequested)
	}

	h.mailer.PasswordReset(u, token, h.resetTTL)
	return respondMessage(c, http.StatusAccepted, msgResetRequested)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return respondError(c, http.StatusBadRequest, msgResetInvalid)
	}
	if err := validator.Password(req.Password); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	reset, err := h.resets.GetByTokenHash(ctx, auth.HashToken(req.Token))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusBadRequest, msgResetInvalid)
		}
		return respondAppError(c, h.log, err, "failed to load reset token")
	}
	if !reset.Usable(h.now()) {
		return respondError(c, http.StatusBadRequest, msgResetInvalid)
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	if err := h.tx.ResetPasswordTransaction(ctx, reset.ID, reset.UserID, hash); err != nil {
		if errors.Is(err, apperrors.ErrExpired) || errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusBadRequest, msgResetInvalid)
		}
		return respondAppError(c, h.log, err, "failed to reset password")
	}

	c.Set(auth.ContextKeyUserID, reset.UserID)
	h.activity.Record(c, audit.ResourceTypeUser, reset.UserID, audit.ActionPasswordReset, nil)

	return respondMessage(c, http.StatusOK, msgPasswordUpdated)
}

func (h *AuthHandler) issue(u *user.User) (*AuthResponse, error) {
	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: h.now().Add(h.tokens.Expiry()).UTC(),
		User:      u,
	}, nil
}
