// Package tags normalizes hashtag, keyword and mention lists entered as free text.
package tags

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	PrefixNone    = ""
	PrefixHashtag = "#"
	PrefixMention = "@"

	separator = ","

	errListTypeFmt = "expected a string or an array of strings"
)

// Parse splits a comma-separated string into a clean list: parts are trimmed,
// the prefix is stripped once, empties are dropped and duplicates removed
// keeping first-seen order. "a, b ,c" becomes ["a","b","c"].
func Parse(raw, prefix string) []string {
	return Normalize(strings.Split(raw, separator), prefix)
}

// Normalize applies the Parse rules to an already split list.
func Normalize(items []string, prefix string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if prefix != "" {
			item = strings.TrimSpace(strings.TrimPrefix(item, prefix))
		}
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Join renders a list back into the comma-separated form used by the dashboard forms.
func Join(items []string) string {
	return strings.Join(items, ", ")
}

// List decodes from either a JSON array of strings or a single comma-separated string.
// Normalization is left to the caller because the prefix depends on the field.
type List []string

func (l *List) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*l = strings.Split(raw, separator)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf(errListTypeFmt)
	}
	*l = items
	return nil
}

func (l List) Hashtags() []string {
	return Normalize(l, PrefixHashtag)
}

func (l List) Mentions() []string {
	return Normalize(l, PrefixMention)
}

func (l List) Plain() []string {
	return Normalize(l, PrefixNone)
}
