package handler

import (
	"context"
	"io"
	"lincognito/internal/audit"
	"lincognito/internal/domain/agency"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/message"
	"lincognito/internal/domain/notification"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/template"
	"lincognito/internal/domain/user"
	"lincognito/internal/service/publishing"
	apperrors "lincognito/pkg/errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type nopActivity struct{}

func (nopActivity) Record(echo.Context, audit.ResourceType, uuid.UUID, audit.Action, map[string]any) {
}

// fakeUsers backs the auth, client and agency handlers.
type fakeUsers struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*user.User
	resets map[string]*user.PasswordReset
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*user.User{}, resets: map[string]*user.PasswordReset{}}
}

func (f *fakeUsers) add(email, hash string) *user.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &user.User{ID: uuid.New(), Email: email, PasswordHash: hash, Plan: user.PlanFree}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) Update(_ context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.PasswordHash != nil {
		u.PasswordHash = *input.PasswordHash
	}
	return u, nil
}

func (f *fakeUsers) SignupTransaction(_ context.Context, input user.CreateUserInput) (*user.User, error) {
	if _, err := f.GetByEmail(context.Background(), input.Email); err == nil {
		return nil, apperrors.Conflict("email taken")
	}
	u := f.add(input.Email, input.PasswordHash)
	u.Name = input.Name
	return u, nil
}

func (f *fakeUsers) ResetPasswordTransaction(_ context.Context, resetID, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resets {
		if r.ID == resetID {
			if r.UsedAt != nil {
				return apperrors.Expired("used")
			}
			now := time.Now()
			r.UsedAt = &now
			f.byID[userID].PasswordHash = passwordHash
			return nil
		}
	}
	return apperrors.NotFound("reset not found")
}

func (f *fakeUsers) Create(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*user.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &user.PasswordReset{ID: uuid.New(), UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	f.resets[tokenHash] = r
	return r, nil
}

func (f *fakeUsers) GetByTokenHash(_ context.Context, tokenHash string) (*user.PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.resets[tokenHash]; ok {
		return r, nil
	}
	return nil, apperrors.NotFound("reset not found")
}

type recordingMailer struct {
	mu            sync.Mutex
	welcomed      []string
	resetTokens   []string
	clientsAdded  []string
	clientCounter []int
}

func (m *recordingMailer) Welcome(u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomed = append(m.welcomed, u.Email)
}

func (m *recordingMailer) PasswordReset(_ *user.User, token string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetTokens = append(m.resetTokens, token)
}

func (m *recordingMailer) ClientAdded(_ *user.User, c *client.Client, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientsAdded = append(m.clientsAdded, c.Name)
	m.clientCounter = append(m.clientCounter, count)
}

// fakeStore holds clients, posts and the role each user has on each client.
type fakeStore struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*client.Client
	posts   map[uuid.UUID]*post.Post
	roles   map[uuid.UUID]map[uuid.UUID]agency.Role // client -> user -> role
	members map[uuid.UUID]map[uuid.UUID]agency.Role // agency -> user -> role
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients: map[uuid.UUID]*client.Client{},
		posts:   map[uuid.UUID]*post.Post{},
		roles:   map[uuid.UUID]map[uuid.UUID]agency.Role{},
		members: map[uuid.UUID]map[uuid.UUID]agency.Role{},
	}
}

func (s *fakeStore) addClient(name string, userID uuid.UUID, role agency.Role) *client.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &client.Client{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	s.clients[c.ID] = c
	s.roles[c.ID] = map[uuid.UUID]agency.Role{userID: role}
	return c
}

func (s *fakeStore) addPost(clientID uuid.UUID, content string, status post.Status) *post.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &post.Post{ID: uuid.New(), ClientID: clientID, Content: content, Status: status, Version: 1, CreatedAt: time.Now()}
	s.posts[p.ID] = p
	return p
}

// ClientRepository

func (s *fakeStore) Create(_ context.Context, input client.CreateClientInput) (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &client.Client{
		ID:          uuid.New(),
		OwnerUserID: input.OwnerUserID,
		AgencyID:    input.AgencyID,
		Name:        input.Name,
		Company:     input.Company,
		Hashtags:    input.Hashtags,
		Keywords:    input.Keywords,
		CreatedAt:   time.Now(),
	}
	s.clients[c.ID] = c
	if input.OwnerUserID != nil {
		s.roles[c.ID] = map[uuid.UUID]agency.Role{*input.OwnerUserID: agency.RoleOwner}
	}
	return c, nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("client not found")
}

func (s *fakeStore) ListAccessible(_ context.Context, userID uuid.UUID) ([]*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*client.Client
	for id, c := range s.clients {
		if s.roles[id][userID] != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) GetAccessRole(_ context.Context, clientID, userID uuid.UUID) (agency.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles[clientID][userID], nil
}

func (s *fakeStore) GetMember(_ context.Context, agencyID, userID uuid.UUID) (*agency.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.members[agencyID][userID]
	if !ok {
		return nil, apperrors.NotFound("member not found")
	}
	return &agency.Member{AgencyID: agencyID, UserID: userID, Role: role}, nil
}

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, input client.UpdateClientInput) (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, apperrors.NotFound("client not found")
	}
	if input.Name != nil {
		c.Name = *input.Name
	}
	return c, nil
}

func (s *fakeStore) ClearLinkedIn(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		c.LinkedIn = nil
		return nil
	}
	return apperrors.NotFound("client not found")
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
	return nil
}

// fakePosts exposes the post side of fakeStore.
type fakePosts struct{ *fakeStore }

func (p fakePosts) Create(_ context.Context, input post.CreatePostInput) (*post.Post, error) {
	created := p.addPost(input.ClientID, input.Content, input.Status)
	created.AuthorID = input.AuthorID
	created.Title = input.Title
	created.ScheduledFor = input.ScheduledFor
	return created, nil
}

func (p fakePosts) GetByID(_ context.Context, id uuid.UUID) (*post.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if found, ok := p.posts[id]; ok {
		return found, nil
	}
	return nil, apperrors.NotFound("post not found")
}

func (p fakePosts) ListAccessible(_ context.Context, userID uuid.UUID) ([]*post.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*post.Post
	for _, found := range p.posts {
		if p.roles[found.ClientID][userID] != "" {
			out = append(out, found)
		}
	}
	return out, nil
}

func (p fakePosts) ListByClient(_ context.Context, clientID uuid.UUID) ([]*post.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*post.Post
	for _, found := range p.posts {
		if found.ClientID == clientID {
			out = append(out, found)
		}
	}
	return out, nil
}

func (p fakePosts) Update(_ context.Context, id uuid.UUID, input post.UpdatePostInput) (*post.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	found, ok := p.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	if found.Version != input.ExpectedVersion {
		return nil, apperrors.StaleVersion("post was modified")
	}
	if input.Content != nil {
		found.Content = *input.Content
	}
	found.Version++
	return found, nil
}

func (p fakePosts) UpdateEngagement(_ context.Context, id uuid.UUID, e post.Engagement) (*post.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	found, ok := p.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	found.Engagement = e
	return found, nil
}

func (p fakePosts) AddMediaKey(_ context.Context, id uuid.UUID, key string) (*post.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	found, ok := p.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	found.MediaKeys = append(found.MediaKeys, key)
	return found, nil
}

func (p fakePosts) Delete(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.posts, id)
	return nil
}

type fakeNotifications struct {
	mu       sync.Mutex
	created  []notification.CreateNotificationInput
	items    []*notification.Notification
	settings notification.Settings
	saved    int
}

func (f *fakeNotifications) Create(_ context.Context, input notification.CreateNotificationInput) (*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, input)
	return &notification.Notification{ID: uuid.New(), UserID: input.UserID, Type: input.Type, Title: input.Title}, nil
}

func (f *fakeNotifications) GetSettings(_ context.Context, userID uuid.UUID) (notification.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.settings
	s.UserID = userID
	return s, nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notification.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID {
			n.Status = notification.StatusRead
			return n, nil
		}
	}
	return nil, apperrors.NotFound("notification not found")
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	for _, n := range f.items {
		if n.UserID == userID && n.Status == notification.StatusUnread {
			n.Status = notification.StatusRead
			updated++
		}
	}
	return updated, nil
}

func (f *fakeNotifications) UpsertSettings(_ context.Context, s notification.Settings) (notification.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = s
	f.saved++
	return s, nil
}

type fakeTemplates struct {
	mu    sync.Mutex
	items map[uuid.UUID]*template.Template
	now   time.Time
}

func newFakeTemplates(now time.Time) *fakeTemplates {
	return &fakeTemplates{items: map[uuid.UUID]*template.Template{}, now: now}
}

func (f *fakeTemplates) Create(_ context.Context, input template.CreateTemplateInput) (*template.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &template.Template{
		ID:       uuid.New(),
		UserID:   input.UserID,
		Name:     input.Name,
		Content:  input.Content,
		Category: input.Category,
		Tags:     input.Tags,
	}
	f.items[t.ID] = t
	return t, nil
}

func (f *fakeTemplates) GetByID(_ context.Context, id, userID uuid.UUID) (*template.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.items[id]; ok && t.UserID == userID {
		return t, nil
	}
	return nil, apperrors.NotFound("template not found")
}

func (f *fakeTemplates) ListByUser(_ context.Context, userID uuid.UUID) ([]*template.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*template.Template
	for _, t := range f.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplates) Update(_ context.Context, id, userID uuid.UUID, input template.UpdateTemplateInput) (*template.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok || t.UserID != userID {
		return nil, apperrors.NotFound("template not found")
	}
	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Content != nil {
		t.Content = *input.Content
	}
	return t, nil
}

func (f *fakeTemplates) IncrementUsage(_ context.Context, id, userID uuid.UUID) (*template.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok || t.UserID != userID {
		return nil, apperrors.NotFound("template not found")
	}
	t.UsageCount++
	used := f.now
	t.LastUsedAt = &used
	return t, nil
}

func (f *fakeTemplates) Delete(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.items[id]; !ok || t.UserID != userID {
		return apperrors.NotFound("template not found")
	}
	delete(f.items, id)
	return nil
}

// fakePublisher applies status changes straight to the store.
type fakePublisher struct {
	store       *fakeStore
	transitions []publishing.TransitionInput
}

func (f *fakePublisher) Transition(_ context.Context, in publishing.TransitionInput) (*publishing.TransitionResult, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.posts[in.PostID]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	f.transitions = append(f.transitions, in)
	changed := p.Status != in.Status
	p.Status = in.Status
	return &publishing.TransitionResult{Post: p, Changed: changed}, nil
}

func (f *fakePublisher) Collaborate(context.Context, publishing.CollaborateInput) (*message.Message, error) {
	return nil, apperrors.Precondition("not supported")
}

func (f *fakePublisher) History(context.Context, uuid.UUID, uuid.UUID) ([]*audit.Event, error) {
	return nil, nil
}

type fakeMessages struct {
	mu   sync.Mutex
	msgs map[uuid.UUID]*message.Message
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{msgs: map[uuid.UUID]*message.Message{}}
}

func (f *fakeMessages) Create(_ context.Context, input message.CreateMessageInput) (*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &message.Message{
		ID:        uuid.New(),
		UserID:    input.UserID,
		ClientID:  input.ClientID,
		PostID:    input.PostID,
		ParentID:  input.ParentID,
		Subject:   input.Subject,
		Body:      input.Body,
		Status:    input.Status,
		Priority:  input.Priority,
		Direction: input.Direction,
		CreatedAt: time.Now(),
	}
	f.msgs[m.ID] = m
	return m, nil
}

func (f *fakeMessages) GetByID(_ context.Context, id, userID uuid.UUID) (*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.msgs[id]; ok && m.UserID == userID {
		return m, nil
	}
	return nil, apperrors.NotFound("message not found")
}

func (f *fakeMessages) ListByUser(_ context.Context, userID uuid.UUID) ([]*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*message.Message
	for _, m := range f.msgs {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) UpdateStatus(_ context.Context, id, userID uuid.UUID, status message.Status) (*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok || m.UserID != userID {
		return nil, apperrors.NotFound("message not found")
	}
	m.Status = status
	return m, nil
}

func (f *fakeMessages) Delete(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.msgs[id]; !ok || m.UserID != userID {
		return apperrors.NotFound("message not found")
	}
	delete(f.msgs, id)
	return nil
}

type fakeAgencies struct {
	mu       sync.Mutex
	agencies map[uuid.UUID]*agency.Agency
	members  map[uuid.UUID][]*agency.Member
}

func newFakeAgencies() *fakeAgencies {
	return &fakeAgencies{agencies: map[uuid.UUID]*agency.Agency{}, members: map[uuid.UUID][]*agency.Member{}}
}

func (f *fakeAgencies) Create(_ context.Context, input agency.CreateAgencyInput) (*agency.Agency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &agency.Agency{ID: uuid.New(), Name: input.Name, OwnerID: input.OwnerID}
	f.agencies[a.ID] = a
	f.members[a.ID] = []*agency.Member{{AgencyID: a.ID, UserID: input.OwnerID, Role: agency.RoleOwner}}
	return a, nil
}

func (f *fakeAgencies) GetByID(_ context.Context, id uuid.UUID) (*agency.Agency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.agencies[id]; ok {
		return a, nil
	}
	return nil, apperrors.NotFound("agency not found")
}

func (f *fakeAgencies) ListByUser(_ context.Context, userID uuid.UUID) ([]*agency.Agency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*agency.Agency
	for id, members := range f.members {
		for _, m := range members {
			if m.UserID == userID {
				out = append(out, f.agencies[id])
			}
		}
	}
	return out, nil
}

func (f *fakeAgencies) AddMember(_ context.Context, input agency.AddMemberInput) (*agency.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members[input.AgencyID] {
		if m.UserID == input.UserID {
			return nil, apperrors.Conflict("already a member")
		}
	}
	invitedBy := input.InvitedBy
	m := &agency.Member{AgencyID: input.AgencyID, UserID: input.UserID, Role: input.Role, InvitedBy: &invitedBy}
	f.members[input.AgencyID] = append(f.members[input.AgencyID], m)
	return m, nil
}

func (f *fakeAgencies) ListMembers(_ context.Context, agencyID uuid.UUID) ([]*agency.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*agency.Member(nil), f.members[agencyID]...), nil
}

func (f *fakeAgencies) UpdateMemberRole(_ context.Context, input agency.UpdateMemberRoleInput) (*agency.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := agency.EnsureOwnerRemains(f.members[input.AgencyID], input.UserID, input.Role); err != nil {
		return nil, err
	}
	for _, m := range f.members[input.AgencyID] {
		if m.UserID == input.UserID {
			m.Role = input.Role
			return m, nil
		}
	}
	return nil, apperrors.NotFound("member not found")
}

func (f *fakeAgencies) RemoveMember(_ context.Context, agencyID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := f.members[agencyID]
	if err := agency.EnsureOwnerRemains(members, userID, ""); err != nil {
		return err
	}
	for i, m := range members {
		if m.UserID == userID {
			f.members[agencyID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("member not found")
}
