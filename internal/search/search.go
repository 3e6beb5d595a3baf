// Package search ranks clients, posts, templates and messages against a free-text query.
package search

import (
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/message"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/template"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type Kind string

const (
	KindClient   Kind = "client"
	KindPost     Kind = "post"
	KindTemplate Kind = "template"
	KindMessage  Kind = "message"
)

var AllKinds = []Kind{KindClient, KindPost, KindTemplate, KindMessage}

const (
	WeightExactTitle    = 1.0
	WeightTitlePrefix   = 0.9
	WeightTitleContains = 0.75
	WeightTag           = 0.6
	WeightBody          = 0.5

	DefaultLimit = 20
	MaxLimit     = 50

	snippetRadius = 60
)

type Result struct {
	Kind     Kind      `json:"type"`
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Snippet  string    `json:"snippet,omitempty"`
	ClientID uuid.UUID `json:"clientId,omitempty"`
	Score    float64   `json:"score"`
}

// Corpus is everything the caller can see.
type Corpus struct {
	Clients   []*client.Client
	Posts     []*post.Post
	Templates []*template.Template
	Messages  []*message.Message
}

type Query struct {
	Text  string
	Kinds []Kind
	Limit int
}

// ParseKinds reads a comma-separated type list; unknown names are ignored and an
// empty result means all kinds.
func ParseKinds(raw string) []Kind {
	var out []Kind
	for _, part := range strings.Split(raw, ",") {
		k := Kind(strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "s"))))
		for _, known := range AllKinds {
			if k == known {
				out = append(out, k)
			}
		}
	}
	return out
}

// ClampLimit applies the default and the ceiling.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Score returns the best weight that applies, or 0 when nothing matches.
// q must already be lower-cased and trimmed.
func Score(q, title, body string, tags []string) float64 {
	if q == "" {
		return 0
	}
	t := strings.ToLower(strings.TrimSpace(title))
	switch {
	case t == q:
		return WeightExactTitle
	case strings.HasPrefix(t, q):
		return WeightTitlePrefix
	case strings.Contains(t, q):
		return WeightTitleContains
	}
	// A lone "#" or "@" would otherwise match every tag.
	if bare := strings.TrimLeft(q, "#@"); bare != "" {
		for _, tag := range tags {
			if strings.Contains(strings.ToLower(tag), bare) {
				return WeightTag
			}
		}
	}
	if strings.Contains(strings.ToLower(body), q) {
		return WeightBody
	}
	return 0
}

// Run scores the corpus and returns the top hits, best first, ties by title.
func Run(corpus Corpus, query Query) []Result {
	q := strings.ToLower(strings.TrimSpace(query.Text))
	if q == "" {
		return []Result{}
	}
	kinds := query.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	var results []Result
	add := func(r Result, body string, tags []string) {
		r.Score = Score(q, r.Title, body, tags)
		if r.Score == 0 {
			return
		}
		r.Snippet = snippet(body, q)
		results = append(results, r)
	}

	if want[KindClient] {
		for _, c := range corpus.Clients {
			body := strings.Join([]string{c.Company, c.Industry, c.Bio}, " ")
			add(Result{Kind: KindClient, ID: c.ID, Title: c.Name, ClientID: c.ID}, body, append(append([]string{}, c.Hashtags...), c.Keywords...))
		}
	}
	if want[KindPost] {
		for _, p := range corpus.Posts {
			add(Result{Kind: KindPost, ID: p.ID, Title: p.DisplayTitle(), ClientID: p.ClientID}, p.Content, append(append([]string{}, p.Hashtags...), p.Mentions...))
		}
	}
	if want[KindTemplate] {
		for _, t := range corpus.Templates {
			add(Result{Kind: KindTemplate, ID: t.ID, Title: t.Name}, t.Content, append([]string{t.Category}, t.Tags...))
		}
	}
	if want[KindMessage] {
		for _, m := range corpus.Messages {
			add(Result{Kind: KindMessage, ID: m.ID, Title: m.Subject, ClientID: m.ClientID}, m.Body, nil)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return strings.ToLower(results[i].Title) < strings.ToLower(results[j].Title)
	})

	if limit := ClampLimit(query.Limit); len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []Result{}
	}
	return results
}

func snippet(body, q string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, q)
	if idx < 0 || len(lower) != len(body) {
		return ""
	}
	start := max(0, idx-snippetRadius)
	end := min(len(body), idx+len(q)+snippetRadius)
	out := strings.TrimSpace(body[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(body) {
		out += "…"
	}
	return out
}
