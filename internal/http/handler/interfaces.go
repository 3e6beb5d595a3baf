package handler

import (
	"context"
	"lincognito/internal/audit"
	"lincognito/internal/billing"
	"lincognito/internal/domain/agency"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/message"
	"lincognito/internal/domain/notification"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/template"
	"lincognito/internal/domain/user"
	"lincognito/internal/rbac"
	"lincognito/internal/service/publishing"
	"lincognito/internal/storage/s3"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v82"
)

// Consumer-side interfaces defined by handlers.
// Each interface contains only the methods needed by the specific handler.

// AuthHandler interfaces
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error)
}

type AccountTransactor interface {
	SignupTransaction(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	ResetPasswordTransaction(ctx context.Context, resetID, userID uuid.UUID, passwordHash string) error
}

type PasswordResetRepository interface {
	Create(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*user.PasswordReset, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*user.PasswordReset, error)
}

type TokenGenerator interface {
	Generate(userID uuid.UUID, email string) (string, error)
	Expiry() time.Duration
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type AccountMailer interface {
	Welcome(u *user.User)
	PasswordReset(u *user.User, token string, ttl time.Duration)
}

// Shared by the resource handlers
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type AccessChecker interface {
	Client(ctx context.Context, userID, clientID uuid.UUID, resource rbac.Resource, action rbac.Action) (rbac.Role, error)
	Agency(ctx context.Context, userID, agencyID uuid.UUID, resource rbac.Resource, action rbac.Action) (rbac.Role, error)
}

type ActivityRecorder interface {
	Record(c echo.Context, resourceType audit.ResourceType, resourceID uuid.UUID, action audit.Action, metadata map[string]any)
}

type NotificationCreator interface {
	Create(ctx context.Context, input notification.CreateNotificationInput) (*notification.Notification, error)
	GetSettings(ctx context.Context, userID uuid.UUID) (notification.Settings, error)
}

// ClientHandler interfaces
type ClientRepository interface {
	Create(ctx context.Context, input client.CreateClientInput) (*client.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error)
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*client.Client, error)
	Update(ctx context.Context, id uuid.UUID, input client.UpdateClientInput) (*client.Client, error)
	ClearLinkedIn(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClientPostLister interface {
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*post.Post, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*post.Post, error)
}

type StatsCache interface {
	Get(ctx context.Context, clientID uuid.UUID) (client.Stats, bool)
	Set(ctx context.Context, clientID uuid.UUID, stats client.Stats)
	Invalidate(ctx context.Context, clientID uuid.UUID)
}

type ClientMailer interface {
	ClientAdded(u *user.User, c *client.Client, clientCount int)
}

// PostHandler interfaces
type PostRepository interface {
	Create(ctx context.Context, input post.CreatePostInput) (*post.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*post.Post, error)
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*post.Post, error)
	Update(ctx context.Context, id uuid.UUID, input post.UpdatePostInput) (*post.Post, error)
	UpdateEngagement(ctx context.Context, id uuid.UUID, e post.Engagement) (*post.Post, error)
	AddMediaKey(ctx context.Context, id uuid.UUID, key string) (*post.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MediaStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (s3.PresignedURL, error)
	PresignDownload(ctx context.Context, key string) (s3.PresignedURL, error)
}

type Publisher interface {
	Transition(ctx context.Context, in publishing.TransitionInput) (*publishing.TransitionResult, error)
	Collaborate(ctx context.Context, in publishing.CollaborateInput) (*message.Message, error)
	History(ctx context.Context, actorID, postID uuid.UUID) ([]*audit.Event, error)
}

// TemplateHandler interfaces
type TemplateRepository interface {
	Create(ctx context.Context, input template.CreateTemplateInput) (*template.Template, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*template.Template, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*template.Template, error)
	Update(ctx context.Context, id, userID uuid.UUID, input template.UpdateTemplateInput) (*template.Template, error)
	IncrementUsage(ctx context.Context, id, userID uuid.UUID) (*template.Template, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// MessageHandler interfaces
type PostGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*post.Post, error)
}

type MessageRepository interface {
	Create(ctx context.Context, input message.CreateMessageInput) (*message.Message, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*message.Message, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*message.Message, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status message.Status) (*message.Message, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// NotificationHandler interfaces
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	GetSettings(ctx context.Context, userID uuid.UUID) (notification.Settings, error)
	UpsertSettings(ctx context.Context, s notification.Settings) (notification.Settings, error)
}

// AgencyHandler interfaces
type AgencyRepository interface {
	Create(ctx context.Context, input agency.CreateAgencyInput) (*agency.Agency, error)
	GetByID(ctx context.Context, id uuid.UUID) (*agency.Agency, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*agency.Agency, error)
	AddMember(ctx context.Context, input agency.AddMemberInput) (*agency.Member, error)
	ListMembers(ctx context.Context, agencyID uuid.UUID) ([]*agency.Member, error)
	UpdateMemberRole(ctx context.Context, input agency.UpdateMemberRoleInput) (*agency.Member, error)
	RemoveMember(ctx context.Context, agencyID, userID uuid.UUID) error
}

type UserByEmail interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// SearchHandler interfaces
type ClientSearcher interface {
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*client.Client, error)
}

type PostSearcher interface {
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*post.Post, error)
}

type TemplateSearcher interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*template.Template, error)
}

type MessageSearcher interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*message.Message, error)
}

// BillingHandler interfaces
type BillingService interface {
	Plans() []billing.Plan
	Subscription(u *user.User) billing.Subscription
	Checkout(ctx context.Context, u *user.User, planID user.Plan) (string, error)
	Portal(ctx context.Context, u *user.User) (string, error)
	HandleEvent(ctx context.Context, event stripe.Event) error
}

// HealthHandler interfaces
type Pinger interface {
	Ping(ctx context.Context) error
}
