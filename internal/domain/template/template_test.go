package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	templates := []*Template{
		{Name: "Hook + story", Content: "Start with a bold claim", Category: "storytelling", Tags: []string{"hooks"}},
		{Name: "Weekly lessons", Content: "Three things I learned", Category: "educational"},
		{Name: "Launch post", Content: "We shipped", Category: "announcement", Tags: []string{"product"}},
	}

	assert.Len(t, Filter(templates, ListFilter{}), 3)
	assert.Len(t, Filter(templates, ListFilter{Category: " Educational "}), 1)
	assert.Len(t, Filter(templates, ListFilter{Query: "HOOK"}), 1)
	assert.Len(t, Filter(templates, ListFilter{Query: "product"}), 1)
	assert.Empty(t, Filter(templates, ListFilter{Query: "hook", Category: "educational"}))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryGeneral, NormalizeCategory("  "))
	assert.Equal(t, "storytelling", NormalizeCategory("Storytelling"))
}

func TestCategories(t *testing.T) {
	got := Categories([]*Template{{Category: "b"}, {Category: "a"}, {Category: "b"}})
	assert.Equal(t, []string{"a", "b"}, got)
}
