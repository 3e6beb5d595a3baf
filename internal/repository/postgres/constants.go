package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errAgencyNotFound         = "agency not found"
	errClientNotFound         = "client not found"
	errClientOwnerRequired    = "a client belongs to exactly one user or agency"
	errEmailTaken             = "an account with this email already exists"
	errEngagementNegative     = "engagement counters cannot be negative"
	errEngagementNotPublished = "engagement can only be recorded on published posts"
	errHardDeleteNotDraft     = "only drafts can be deleted permanently"
	errMemberExists           = "user is already a member of this agency"
	errMemberNotFound         = "member not found"
	errMessageNotFound        = "message not found"
	errNotificationNotFound   = "notification not found"
	errPasswordResetExpired   = "password reset link has expired or was already used"
	errPasswordResetNotFound  = "password reset link is invalid"
	errPostNotFound           = "post not found"
	errPostVersionStale       = "post was modified by someone else; reload and try again"
	errScheduledForRequired   = "scheduled posts need a scheduled time"
	errStripeCustomerTaken    = "stripe customer is linked to another account"
	errTemplateNotFound       = "template not found"
	errUserNotFound           = "user not found"

	errFailedAddMemberFmt            = "failed to add member: %w"
	errFailedCommitTransactionFmt    = "failed to commit transaction: %w"
	errFailedConsumePasswordResetFmt = "failed to consume password reset: %w"
	errFailedCreateAgencyFmt         = "failed to create agency: %w"
	errFailedCreateClientFmt         = "failed to create client: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedCreateMessageFmt        = "failed to create message: %w"
	errFailedCreateNotificationFmt   = "failed to create notification: %w"
	errFailedCreatePasswordResetFmt  = "failed to create password reset: %w"
	errFailedCreatePostFmt           = "failed to create post: %w"
	errFailedCreateTemplateFmt       = "failed to create template: %w"
	errFailedCreateUserFmt           = "failed to create user: %w"
	errFailedDeleteClientFmt         = "failed to delete client: %w"
	errFailedDeleteMessageFmt        = "failed to delete message: %w"
	errFailedDeletePostFmt           = "failed to delete post: %w"
	errFailedDeleteTemplateFmt       = "failed to delete template: %w"
	errFailedGetAgencyFmt            = "failed to get agency: %w"
	errFailedGetClientFmt            = "failed to get client: %w"
	errFailedGetMemberFmt            = "failed to get member: %w"
	errFailedGetMessageFmt           = "failed to get message: %w"
	errFailedGetPasswordResetFmt     = "failed to get password reset: %w"
	errFailedGetPostFmt              = "failed to get post: %w"
	errFailedGetSettingsFmt          = "failed to get notification settings: %w"
	errFailedGetTemplateFmt          = "failed to get template: %w"
	errFailedGetUserFmt              = "failed to get user: %w"
	errFailedListAgenciesFmt         = "failed to list agencies: %w"
	errFailedListClientsFmt          = "failed to list clients: %w"
	errFailedListMembersFmt          = "failed to list members: %w"
	errFailedListMessagesFmt         = "failed to list messages: %w"
	errFailedListNotificationsFmt    = "failed to list notifications: %w"
	errFailedListPostsFmt            = "failed to list posts: %w"
	errFailedListTemplatesFmt        = "failed to list templates: %w"
	errFailedListUsersFmt            = "failed to list users: %w"
	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"
	errFailedRemoveMemberFmt         = "failed to remove member: %w"
	errFailedSaveSettingsFmt         = "failed to save notification settings: %w"
	errFailedScanAgencyFmt           = "failed to scan agency: %w"
	errFailedScanClientFmt           = "failed to scan client: %w"
	errFailedScanMemberFmt           = "failed to scan member: %w"
	errFailedScanMessageFmt          = "failed to scan message: %w"
	errFailedScanNotificationFmt     = "failed to scan notification: %w"
	errFailedScanPostFmt             = "failed to scan post: %w"
	errFailedScanTemplateFmt         = "failed to scan template: %w"
	errFailedScanUserFmt             = "failed to scan user: %w"
	errFailedStartTransactionFmt     = "failed to start transaction: %w"
	errFailedUpdateBillingFmt        = "failed to update billing state: %w"
	errFailedUpdateClientFmt         = "failed to update client: %w"
	errFailedUpdateMemberRoleFmt     = "failed to update member role: %w"
	errFailedUpdateMessageFmt        = "failed to update message: %w"
	errFailedUpdateNotificationFmt   = "failed to update notification: %w"
	errFailedUpdatePostFmt           = "failed to update post: %w"
	errFailedUpdateTemplateFmt       = "failed to update template: %w"
	errFailedUpdateUserFmt           = "failed to update user: %w"
	errIterateUsersFmt               = "error iterating users: %w"
)

var (
	errFailedAddMember            = func(err error) error { return fmt.Errorf(errFailedAddMemberFmt, err) }
	errFailedCommitTransaction    = func(err error) error { return fmt.Errorf(errFailedCommitTransactionFmt, err) }
	errFailedConsumePasswordReset = func(err error) error { return fmt.Errorf(errFailedConsumePasswordResetFmt, err) }
	errFailedCreateAgency         = func(err error) error { return fmt.Errorf(errFailedCreateAgencyFmt, err) }
	errFailedCreateClient         = func(err error) error { return fmt.Errorf(errFailedCreateClientFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedCreateMessage        = func(err error) error { return fmt.Errorf(errFailedCreateMessageFmt, err) }
	errFailedCreateNotification   = func(err error) error { return fmt.Errorf(errFailedCreateNotificationFmt, err) }
	errFailedCreatePasswordReset  = func(err error) error { return fmt.Errorf(errFailedCreatePasswordResetFmt, err) }
	errFailedCreatePost           = func(err error) error { return fmt.Errorf(errFailedCreatePostFmt, err) }
	errFailedCreateTemplate       = func(err error) error { return fmt.Errorf(errFailedCreateTemplateFmt, err) }
	errFailedCreateUser           = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedDeleteClient         = func(err error) error { return fmt.Errorf(errFailedDeleteClientFmt, err) }
	errFailedDeleteMessage        = func(err error) error { return fmt.Errorf(errFailedDeleteMessageFmt, err) }
	errFailedDeletePost           = func(err error) error { return fmt.Errorf(errFailedDeletePostFmt, err) }
	errFailedDeleteTemplate       = func(err error) error { return fmt.Errorf(errFailedDeleteTemplateFmt, err) }
	errFailedGetAgency            = func(err error) error { return fmt.Errorf(errFailedGetAgencyFmt, err) }
	errFailedGetClient            = func(err error) error { return fmt.Errorf(errFailedGetClientFmt, err) }
	errFailedGetMember            = func(err error) error { return fmt.Errorf(errFailedGetMemberFmt, err) }
	errFailedGetMessage           = func(err error) error { return fmt.Errorf(errFailedGetMessageFmt, err) }
	errFailedGetPasswordReset     = func(err error) error { return fmt.Errorf(errFailedGetPasswordResetFmt, err) }
	errFailedGetPost              = func(err error) error { return fmt.Errorf(errFailedGetPostFmt, err) }
	errFailedGetSettings          = func(err error) error { return fmt.Errorf(errFailedGetSettingsFmt, err) }
	errFailedGetTemplate          = func(err error) error { return fmt.Errorf(errFailedGetTemplateFmt, err) }
	errFailedGetUser              = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedListAgencies         = func(err error) error { return fmt.Errorf(errFailedListAgenciesFmt, err) }
	errFailedListClients          = func(err error) error { return fmt.Errorf(errFailedListClientsFmt, err) }
	errFailedListMembers          = func(err error) error { return fmt.Errorf(errFailedListMembersFmt, err) }
	errFailedListMessages         = func(err error) error { return fmt.Errorf(errFailedListMessagesFmt, err) }
	errFailedListNotifications    = func(err error) error { return fmt.Errorf(errFailedListNotificationsFmt, err) }
	errFailedListPosts            = func(err error) error { return fmt.Errorf(errFailedListPostsFmt, err) }
	errFailedListTemplates        = func(err error) error { return fmt.Errorf(errFailedListTemplatesFmt, err) }
	errFailedListUsers            = func(err error) error { return fmt.Errorf(errFailedListUsersFmt, err) }
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedRemoveMember         = func(err error) error { return fmt.Errorf(errFailedRemoveMemberFmt, err) }
	errFailedSaveSettings         = func(err error) error { return fmt.Errorf(errFailedSaveSettingsFmt, err) }
	errFailedScanAgency           = func(err error) error { return fmt.Errorf(errFailedScanAgencyFmt, err) }
	errFailedScanClient           = func(err error) error { return fmt.Errorf(errFailedScanClientFmt, err) }
	errFailedScanMember           = func(err error) error { return fmt.Errorf(errFailedScanMemberFmt, err) }
	errFailedScanMessage          = func(err error) error { return fmt.Errorf(errFailedScanMessageFmt, err) }
	errFailedScanNotification     = func(err error) error { return fmt.Errorf(errFailedScanNotificationFmt, err) }
	errFailedScanPost             = func(err error) error { return fmt.Errorf(errFailedScanPostFmt, err) }
	errFailedScanTemplate         = func(err error) error { return fmt.Errorf(errFailedScanTemplateFmt, err) }
	errFailedScanUser             = func(err error) error { return fmt.Errorf(errFailedScanUserFmt, err) }
	errFailedStartTransaction     = func(err error) error { return fmt.Errorf(errFailedStartTransactionFmt, err) }
	errFailedUpdateBilling        = func(err error) error { return fmt.Errorf(errFailedUpdateBillingFmt, err) }
	errFailedUpdateClient         = func(err error) error { return fmt.Errorf(errFailedUpdateClientFmt, err) }
	errFailedUpdateMemberRole     = func(err error) error { return fmt.Errorf(errFailedUpdateMemberRoleFmt, err) }
	errFailedUpdateMessage        = func(err error) error { return fmt.Errorf(errFailedUpdateMessageFmt, err) }
	errFailedUpdateNotification   = func(err error) error { return fmt.Errorf(errFailedUpdateNotificationFmt, err) }
	errFailedUpdatePost           = func(err error) error { return fmt.Errorf(errFailedUpdatePostFmt, err) }
	errFailedUpdateTemplate       = func(err error) error { return fmt.Errorf(errFailedUpdateTemplateFmt, err) }
	errFailedUpdateUser           = func(err error) error { return fmt.Errorf(errFailedUpdateUserFmt, err) }
	errIterateUsers               = func(err error) error { return fmt.Errorf(errIterateUsersFmt, err) }
)
