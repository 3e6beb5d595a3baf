package client

import (
	"lincognito/internal/domain/post"
	"time"

	"github.com/google/uuid"
)

// Client is a ghostwriting client profile, owned by a user or by an agency.
type Client struct {
	ID              uuid.UUID       `json:"id"`
	OwnerUserID     *uuid.UUID      `json:"ownerUserId,omitempty"`
	AgencyID        *uuid.UUID      `json:"agencyId,omitempty"`
	Name            string          `json:"name"`
	Company         string          `json:"company"`
	Bio             string          `json:"bio"`
	Tone            string          `json:"tone"`
	Industry        string          `json:"industry"`
	LinkedInURL     string          `json:"linkedinUrl"`
	BrandGuidelines string          `json:"brandGuidelines"`
	Hashtags        []string        `json:"hashtags"`
	Keywords        []string        `json:"keywords"`
	LinkedIn        *LinkedInTokens `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// LinkedInTokens are the stored OAuth credentials. They never leave the server.
type LinkedInTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

func (c *Client) LinkedInConnected() bool {
	return c.LinkedIn != nil && c.LinkedIn.AccessToken != ""
}

type CreateClientInput struct {
	OwnerUserID     *uuid.UUID
	AgencyID        *uuid.UUID
	Name            string
	Company         string
	Bio             string
	Tone            string
	Industry        string
	LinkedInURL     string
	BrandGuidelines string
	Hashtags        []string
	Keywords        []string
}

type UpdateClientInput struct {
	Name            *string
	Company         *string
	Bio             *string
	Tone            *string
	Industry        *string
	LinkedInURL     *string
	BrandGuidelines *string
	Hashtags        *[]string
	Keywords        *[]string
}

func (in UpdateClientInput) Empty() bool {
	return in.Name == nil && in.Company == nil && in.Bio == nil && in.Tone == nil &&
		in.Industry == nil && in.LinkedInURL == nil && in.BrandGuidelines == nil &&
		in.Hashtags == nil && in.Keywords == nil
}

// Stats aggregates a client's posts. Engagement only counts published posts.
type Stats struct {
	PostCount       int   `json:"postCount"`
	TotalEngagement int64 `json:"totalEngagement"`
	ScheduledCount  int   `json:"scheduledCount"`
	PublishedCount  int   `json:"publishedCount"`
	DraftCount      int   `json:"draftCount"`
}

func ComputeStats(posts []*post.Post) Stats {
	var s Stats
	for _, p := range posts {
		s.PostCount++
		switch p.Status {
		case post.StatusDraft:
			s.DraftCount++
		case post.StatusScheduled:
			s.ScheduledCount++
		case post.StatusPublished:
			s.PublishedCount++
			s.TotalEngagement += p.Engagement.Total()
		}
	}
	return s
}

// ComputeStatsByClient groups posts by client and computes Stats for each.
func ComputeStatsByClient(posts []*post.Post) map[uuid.UUID]Stats {
	grouped := make(map[uuid.UUID][]*post.Post)
	for _, p := range posts {
		grouped[p.ClientID] = append(grouped[p.ClientID], p)
	}
	out := make(map[uuid.UUID]Stats, len(grouped))
	for id, group := range grouped {
		out[id] = ComputeStats(group)
	}
	return out
}

// View is the API shape of a client.
type View struct {
	*Client
	LinkedInConnected bool   `json:"linkedinConnected"`
	Stats             *Stats `json:"stats,omitempty"`
}

func NewView(c *Client, stats *Stats) View {
	return View{Client: c, LinkedInConnected: c.LinkedInConnected(), Stats: stats}
}
