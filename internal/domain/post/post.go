package post

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusScheduled Status = "SCHEDULED"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"

	errInvalidStatusFmt = "invalid status: %s"
)

var allStatuses = []Status{StatusDraft, StatusScheduled, StatusPublished, StatusArchived}

// ParseStatus accepts any letter case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf(errInvalidStatusFmt, raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Tone string

const (
	ToneGray  Tone = "gray"
	ToneBlue  Tone = "blue"
	ToneGreen Tone = "green"
	ToneSlate Tone = "slate"
)

type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

func (s Status) Badge() Badge {
	switch s {
	case StatusDraft:
		return Badge{Label: "Draft", Tone: ToneGray}
	case StatusScheduled:
		return Badge{Label: "Scheduled", Tone: ToneBlue}
	case StatusPublished:
		return Badge{Label: "Published", Tone: ToneGreen}
	case StatusArchived:
		return Badge{Label: "Archived", Tone: ToneSlate}
	default:
		return Badge{Label: string(s), Tone: ToneGray}
	}
}

type Action string

const (
	ActionEdit        Action = "edit"
	ActionPublish     Action = "publish"
	ActionCollaborate Action = "collaborate"
	ActionUnschedule  Action = "unschedule"
	ActionArchive     Action = "archive"
)

// Actions lists what the dashboard may offer for a post in this status.
func (s Status) Actions() []Action {
	switch s {
	case StatusDraft:
		return []Action{ActionEdit, ActionPublish, ActionCollaborate, ActionArchive}
	case StatusScheduled:
		return []Action{ActionEdit, ActionUnschedule, ActionArchive}
	case StatusPublished:
		return []Action{ActionEdit, ActionArchive}
	default:
		return []Action{}
	}
}

func (s Status) Allows(a Action) bool {
	for _, allowed := range s.Actions() {
		if allowed == a {
			return true
		}
	}
	return false
}

type Engagement struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
	Views    int64 `json:"views"`
}

func (e Engagement) Total() int64 {
	return e.Likes + e.Comments + e.Shares + e.Views
}

type Post struct {
	ID           uuid.UUID  `json:"id"`
	ClientID     uuid.UUID  `json:"clientId"`
	AuthorID     uuid.UUID  `json:"authorId"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Status       Status     `json:"status"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	Engagement
	Hashtags  []string  `json:"hashtags"`
	Mentions  []string  `json:"mentions"`
	MediaKeys []string  `json:"mediaKeys"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayTitle falls back to the first line of content for untitled posts.
func (p *Post) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	first := strings.TrimSpace(strings.SplitN(p.Content, "\n", 2)[0])
	const maxTitle = 80
	if r := []rune(first); len(r) > maxTitle {
		return string(r[:maxTitle])
	}
	return first
}

// View is the API shape of a post: the record plus its badge and available actions.
type View struct {
	*Post
	Badge   Badge    `json:"badge"`
	Actions []Action `json:"actions"`
}

func NewView(p *Post) View {
	return View{Post: p, Badge: p.Status.Badge(), Actions: p.Status.Actions()}
}

func NewViews(posts []*Post) []View {
	out := make([]View, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewView(p))
	}
	return out
}

type CreatePostInput struct {
	ClientID     uuid.UUID
	AuthorID     uuid.UUID
	Title        string
	Content      string
	Status       Status
	ScheduledFor *time.Time
	Hashtags     []string
	Mentions     []string
}

type UpdatePostInput struct {
	Title           *string
	Content         *string
	Hashtags        *[]string
	Mentions        *[]string
	ScheduledFor    *time.Time
	ExpectedVersion int
}

// StatusChange is the persisted outcome of a transition.
type StatusChange struct {
	Status          Status
	ScheduledFor    *time.Time
	PublishedAt     *time.Time
	ExpectedVersion int
}
