package templates

import (
	"lincognito/pkg/mailer/registry"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSet(t *testing.T) {
	set, err := LoadSet()
	require.NoError(t, err)
	assert.Equal(t, registry.TemplateNameWelcome, set.Welcome.GetName())
	assert.Equal(t, registry.TemplateNameWeeklyReport, set.WeeklyReport.GetName())
}

func TestPasswordReset_RejectsBadLinks(t *testing.T) {
	tmpl, err := PasswordResetTemplate()
	require.NoError(t, err)

	_, _, _, err = tmpl.Render(PasswordResetContext{})
	assert.ErrorIs(t, err, registry.ErrResetURLRequired)

	_, _, _, err = tmpl.Render(PasswordResetContext{ResetURL: "/reset?token=x"})
	assert.ErrorIs(t, err, registry.ErrURLAbsolute)

	_, _, _, err = tmpl.Render(PasswordResetContext{ResetURL: "javascript:alert(1)"})
	assert.Error(t, err)

	subject, html, text, err := tmpl.Render(PasswordResetContext{ResetURL: "https://app.lincognito.com/reset?token=abc"})
	require.NoError(t, err)
	assert.Equal(t, "Reset your Lincognito password", subject)
	assert.Contains(t, html, "expire in 1 hour(s)")
	assert.Contains(t, text, "token=abc")
}

func TestClientAdded_EscapesNames(t *testing.T) {
	tmpl, err := ClientAddedTemplate()
	require.NoError(t, err)

	_, html, text, err := tmpl.Render(ClientAddedContext{
		UserName:    "Ada",
		ClientName:  "<script>x</script>",
		ClientURL:   "https://app.lincognito.com/clients/1",
		ClientCount: 3,
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "managing 3 clients")
	assert.Contains(t, text, "<script>x</script>")
}

func TestPostPublished_TruncatesExcerpt(t *testing.T) {
	tmpl, err := PostPublishedTemplate()
	require.NoError(t, err)

	long := strings.Repeat("word ", 200)
	_, _, text, err := tmpl.Render(PostPublishedContext{
		ClientName: "Grace",
		Excerpt:    long,
		PostURL:    "https://app.lincognito.com/posts/9",
	})
	require.NoError(t, err)
	assert.Contains(t, text, "…")

	_, _, _, err = tmpl.Render(PostPublishedContext{ClientName: "Grace", PostURL: "https://x.y"})
	assert.ErrorIs(t, err, registry.ErrPostExcerptRequired)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("  short  ", 10))
	assert.Equal(t, "hello wonderful…", Excerpt("hello wonderful world", 18))
	assert.Equal(t, "hello wonder…", Excerpt("hello wonderful world", 12))
}

func TestWeeklyReport_ListsClients(t *testing.T) {
	tmpl, err := WeeklyReportTemplate()
	require.NoError(t, err)

	subject, html, _, err := tmpl.Render(WeeklyReportContext{
		UserName:        "Ada",
		PeriodLabel:     "Oct 5 - Oct 11",
		PostsPublished:  4,
		TotalEngagement: 120,
		Clients:         []WeeklyReportClientRow{{ClientName: "Grace", Published: 4, Engagement: 120}},
		DashboardURL:    "https://app.lincognito.com/dashboard",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your Lincognito weekly report: Oct 5 - Oct 11", subject)
	assert.Contains(t, html, "Grace")

	_, _, _, err = tmpl.Render(WeeklyReportContext{DashboardURL: "https://x.y"})
	assert.ErrorIs(t, err, registry.ErrReportPeriodRequired)
}
