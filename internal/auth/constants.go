package auth

import "time"

const (
	ContextKeyUserID     = "user_id"
	ContextKeyEmail      = "user_email"
	ContextKeyClientRole = "client_role"
	ContextKeyAgencyRole = "agency_role"

	jsonKeyError = "error"

	headerAuthorization = "Authorization"

	paramID = "id"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	resetTokenBytes = 32
	roleLookupLimit = 3 * time.Second
)

const (
	msgMissingAuthorization    = "missing authorization token"
	msgInvalidOrExpiredToken   = "invalid or expired token"
	msgUserNotAuthenticated    = "user not authenticated"
	msgInvalidUserIDCtx        = "invalid user ID in context"
	msgInvalidID               = "invalid id"
	msgClientNotFound          = "client not found"
	msgAgencyNotFound          = "agency not found"
	msgAccessDenied            = "you do not have access to this resource"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgPasswordEmpty           = "password cannot be empty"
	msgHashPasswordFmt         = "failed to hash password: %w"
	msgGenerateTokenFmt        = "failed to generate token: %w"
)
