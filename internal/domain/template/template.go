package template

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const CategoryGeneral = "general"

// Template is a reusable post skeleton. It does not belong to a client.
type Template struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	UsageCount int        `json:"usageCount"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type CreateTemplateInput struct {
	UserID   uuid.UUID
	Name     string
	Content  string
	Category string
	Tags     []string
}

type UpdateTemplateInput struct {
	Name     *string
	Content  *string
	Category *string
	Tags     *[]string
}

// NormalizeCategory lowercases and defaults empty categories to "general".
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return CategoryGeneral
	}
	return category
}

type ListFilter struct {
	Query    string
	Category string
}

func Filter(templates []*Template, f ListFilter) []*Template {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	category := ""
	if strings.TrimSpace(f.Category) != "" {
		category = NormalizeCategory(f.Category)
	}

	out := make([]*Template, 0, len(templates))
	for _, t := range templates {
		if category != "" && t.Category != category {
			continue
		}
		if q != "" && !matchesQuery(t, q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesQuery(t *Template, q string) bool {
	if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Content), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Categories returns the distinct categories in use, sorted.
func Categories(templates []*Template) []string {
	seen := make(map[string]struct{})
	for _, t := range templates {
		seen[t.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
