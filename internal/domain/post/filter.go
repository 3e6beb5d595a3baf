package post

import (
	"strings"

	"github.com/google/uuid"
)

// ListFilter narrows an already fetched post list. Zero values match everything.
type ListFilter struct {
	ClientID uuid.UUID
	Status   Status
	Query    string
}

func (f ListFilter) Matches(p *Post) bool {
	if f.ClientID != uuid.Nil && p.ClientID != f.ClientID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Content), q) &&
			!containsFold(p.Hashtags, q) {
			return false
		}
	}
	return true
}

// Filter keeps the order of posts.
func Filter(posts []*Post, f ListFilter) []*Post {
	out := make([]*Post, 0, len(posts))
	for _, p := range posts {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// CountByStatus tallies posts per status, with every status present.
func CountByStatus(posts []*Post) map[Status]int {
	counts := make(map[Status]int, len(allStatuses))
	for _, s := range allStatuses {
		counts[s] = 0
	}
	for _, p := range posts {
		counts[p.Status]++
	}
	return counts
}

func containsFold(items []string, q string) bool {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item), q) {
			return true
		}
	}
	return false
}
