package repository

import (
	"context"
	"lincognito/internal/domain/agency"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/message"
	"lincognito/internal/domain/notification"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/template"
	"lincognito/internal/domain/user"
	"lincognito/internal/repository/postgres"
	"time"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error)
	Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error)
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	UpdateBilling(ctx context.Context, id uuid.UUID, update user.BillingUpdate) error
	ListWeeklyReportRecipients(ctx context.Context) ([]*user.User, error)
}

type PasswordResetRepository interface {
	Create(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*user.PasswordReset, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*user.PasswordReset, error)
}

type ClientRepository interface {
	Create(ctx context.Context, input client.CreateClientInput) (*client.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error)
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*client.Client, error)
	GetAccessRole(ctx context.Context, clientID, userID uuid.UUID) (agency.Role, error)
	Update(ctx context.Context, id uuid.UUID, input client.UpdateClientInput) (*client.Client, error)
	ClearLinkedIn(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostRepository interface {
	Create(ctx context.Context, input post.CreatePostInput) (*post.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*post.Post, error)
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*post.Post, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*post.Post, error)
	Update(ctx context.Context, id uuid.UUID, input post.UpdatePostInput) (*post.Post, error)
	ApplyStatusChange(ctx context.Context, id uuid.UUID, change post.StatusChange) (*post.Post, error)
	UpdateEngagement(ctx context.Context, id uuid.UUID, e post.Engagement) (*post.Post, error)
	AddMediaKey(ctx context.Context, id uuid.UUID, key string) (*post.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TemplateRepository interface {
	Create(ctx context.Context, input template.CreateTemplateInput) (*template.Template, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*template.Template, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*template.Template, error)
	Update(ctx context.Context, id, userID uuid.UUID, input template.UpdateTemplateInput) (*template.Template, error)
	IncrementUsage(ctx context.Context, id, userID uuid.UUID) (*template.Template, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, input message.CreateMessageInput) (*message.Message, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*message.Message, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*message.Message, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*message.Message, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status message.Status) (*message.Message, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, input notification.CreateNotificationInput) (*notification.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	GetSettings(ctx context.Context, userID uuid.UUID) (notification.Settings, error)
	UpsertSettings(ctx context.Context, s notification.Settings) (notification.Settings, error)
}

type AgencyRepository interface {
	Create(ctx context.Context, input agency.CreateAgencyInput) (*agency.Agency, error)
	GetByID(ctx context.Context, id uuid.UUID) (*agency.Agency, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*agency.Agency, error)
	AddMember(ctx context.Context, input agency.AddMemberInput) (*agency.Member, error)
	GetMember(ctx context.Context, agencyID, userID uuid.UUID) (*agency.Member, error)
	ListMembers(ctx context.Context, agencyID uuid.UUID) ([]*agency.Member, error)
	UpdateMemberRole(ctx context.Context, input agency.UpdateMemberRoleInput) (*agency.Member, error)
	RemoveMember(ctx context.Context, agencyID, userID uuid.UUID) error
}

// Transactor runs the multi-table writes.
type Transactor interface {
	SignupTransaction(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	ResetPasswordTransaction(ctx context.Context, resetID, userID uuid.UUID, passwordHash string) error
}

// Repositories groups every store the application talks to.
type Repositories struct {
	Users          UserRepository
	PasswordResets PasswordResetRepository
	Clients        ClientRepository
	Posts          PostRepository
	Templates      TemplateRepository
	Messages       MessageRepository
	Notifications  NotificationRepository
	Agencies       AgencyRepository
	Tx             Transactor
}

func NewPostgres(db *postgres.DB) *Repositories {
	return &Repositories{
		Users:          postgres.NewUserRepository(db),
		PasswordResets: postgres.NewPasswordResetRepository(db),
		Clients:        postgres.NewClientRepository(db),
		Posts:          postgres.NewPostRepository(db),
		Templates:      postgres.NewTemplateRepository(db),
		Messages:       postgres.NewMessageRepository(db),
		Notifications:  postgres.NewNotificationRepository(db),
		Agencies:       postgres.NewAgencyRepository(db),
		Tx:             db,
	}
}
