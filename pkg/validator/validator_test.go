package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("writer@lincognito.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("writer"))
	assert.Error(t, Email("writer@localhost"))
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("correct horse"))
	assert.Error(t, Password("short"))
	assert.NoError(t, Password(strings.Repeat("x", 72)))
	assert.Error(t, Password(strings.Repeat("x", 73)))
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("name", "Ada Lovelace"))
	assert.EqualError(t, Name("name", ""), "name is required")
	assert.Error(t, Name("name", "Ada\nLovelace"))
	assert.Error(t, Name("name", strings.Repeat("a", 256)))
}

func TestLongText_AllowsNewlines(t *testing.T) {
	assert.NoError(t, LongText("bio", "line one\nline two\ttabbed"))
	assert.Error(t, LongText("bio", "bell\a"))
}

func TestPostContent(t *testing.T) {
	assert.NoError(t, PostContent("Shipping day.\n\nHere is what we learned."))
	assert.Error(t, PostContent("   "))
	assert.Error(t, PostContent(strings.Repeat("a", 3001)))
}

func TestTags(t *testing.T) {
	assert.NoError(t, Tags("hashtags", []string{"leadership", "saas"}))
	assert.Error(t, Tags("hashtags", make([]string, 51)))
	assert.Error(t, Tags("hashtags", []string{strings.Repeat("t", 101)}))
}

func TestURL(t *testing.T) {
	assert.NoError(t, URL("linkedinUrl", ""))
	assert.NoError(t, URL("linkedinUrl", "https://www.linkedin.com/in/ada"))
	assert.Error(t, URL("linkedinUrl", "linkedin.com/in/ada"))
	assert.Error(t, URL("linkedinUrl", "ftp://linkedin.com/in/ada"))
}

func TestMediaContentType(t *testing.T) {
	assert.NoError(t, MediaContentType("image/png"))
	assert.NoError(t, MediaContentType("video/mp4; codecs=avc1"))
	assert.Error(t, MediaContentType("application/pdf"))
	assert.Error(t, MediaContentType(""))
}
