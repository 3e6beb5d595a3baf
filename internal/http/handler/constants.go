package handler

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"

	paramID     = "id"
	paramUserID = "userId"
	paramSlug   = "slug"

	queryClientID = "clientId"
	queryStatus   = "status"
	queryPriority = "priority"
	queryCategory = "category"
	queryQ        = "q"
	queryTypes    = "types"
	queryLimit    = "limit"
	queryHard     = "hard"

	headerStripeSignature = "Stripe-Signature"

	maxWebhookBytes int64 = 64 << 10
)

const (
	msgContentTypeJSONRequired = "content type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidID               = "invalid id"
	msgInvalidClientID         = "invalid clientId"
	msgInvalidUserID           = "invalid user id"
	msgInternalError           = "internal server error"

	msgInvalidCredentials  = "invalid email or password"
	msgEmailAlreadyExists  = "an account with this email already exists"
	msgPasswordProcessFail = "failed to process password"
	msgGenerateTokenFail   = "failed to generate token"
	msgCreateAccountFail   = "failed to create account"
	msgResetRequested      = "if an account exists for that email, a reset link is on its way"
	msgResetInvalid        = "invalid or expired reset token"
	msgPasswordUpdated     = "password updated"
	msgCurrentPasswordBad  = "current password is incorrect"
	msgCurrentPasswordReq  = "currentPassword is required to change the password"
	msgNothingToUpdate     = "no fields to update"

	msgClientNameRequired = "name is required"
	msgAgencyNameRequired = "name is required"
	msgContentRequired    = "content is required"
	msgVersionRequired    = "version is required"
	msgInvalidStatus      = "invalid status"
	msgInvalidSchedule    = "invalid scheduledFor"
	msgHardDeleteDraft    = "only draft posts can be deleted permanently"
	msgMediaDisabled      = "media uploads are not configured"
	msgMediaNotOnPost     = "media key does not belong to this post"
	msgUserNotFound       = "no user with that email"
	msgPlanRequired       = "planId is required"
	msgWebhookSignature   = "invalid webhook signature"
	msgWebhookProcessFail = "failed to process webhook"
	msgBlogPostNotFound   = "blog post not found"
	msgQueryRequired      = "q is required"
)
