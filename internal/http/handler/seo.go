package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

var staticPages = []string{"/", "/pricing", "/features", "/blog", "/login", "/signup"}

type BlogPost struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Author         string    `json:"author"`
	PublishedAt    time.Time `json:"publishedAt"`
	Tags           []string  `json:"tags"`
	ReadingMinutes int       `json:"readingMinutes"`
}

// DefaultBlog is the blog index shipped with the binary, newest first.
var DefaultBlog = []BlogPost{
	{
		Slug:           "ghostwriting-workflow-for-linkedin",
		Title:          "A Ghostwriting Workflow That Scales Past Five Clients",
		Description:    "How to move drafts from idea to approval to published without losing track of who said yes.",
		Author:         "Lincognito Team",
		PublishedAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Tags:           []string{"workflow", "agencies"},
		ReadingMinutes: 7,
	},
	{
		Slug:           "linkedin-hooks-that-work",
		Title:          "LinkedIn Hooks That Earn the Click on See More",
		Description:    "Twelve opening lines we reuse as templates, and the engagement numbers behind them.",
		Author:         "Lincognito Team",
		PublishedAt:    time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC),
		Tags:           []string{"templates", "writing"},
		ReadingMinutes: 5,
	},
	{
		Slug:           "reporting-engagement-to-clients",
		Title:          "Reporting Engagement to Clients Without a Spreadsheet",
		Description:    "What to put in a weekly report so clients renew, and what to leave out.",
		Author:         "Lincognito Team",
		PublishedAt:    time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC),
		Tags:           []string{"analytics", "clients"},
		ReadingMinutes: 6,
	},
}

type SEOHandler struct {
	siteURL string
	blog    []BlogPost
	// lastmod for pages that carry no date of their own
	builtAt time.Time
}

func NewSEOHandler(siteURL string, blog []BlogPost, builtAt time.Time) *SEOHandler {
	return &SEOHandler{
		siteURL: strings.TrimRight(siteURL, "/"),
		blog:    blog,
		builtAt: builtAt.UTC(),
	}
}

func (h *SEOHandler) Robots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /dashboard/\n")
	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", h.siteURL)

	return c.String(http.StatusOK, b.String())
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func (h *SEOHandler) Sitemap(c echo.Context) error {
	set := urlSet{XMLNS: sitemapNamespace}

	for _, page := range staticPages {
		priority := "0.8"
		if page == "/" {
			priority = "1.0"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + page,
			LastMod:    h.builtAt.Format(time.DateOnly),
			ChangeFreq: "weekly",
			Priority:   priority,
		})
	}
	for _, p := range h.blog {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + "/blog/" + p.Slug,
			LastMod:    p.PublishedAt.UTC().Format(time.DateOnly),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgInternalError)
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, append([]byte(xml.Header), out...))
}

func (h *SEOHandler) ListBlogPosts(c echo.Context) error {
	posts := h.blog
	if posts == nil {
		posts = []BlogPost{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *SEOHandler) GetBlogPost(c echo.Context) error {
	slug := c.Param(paramSlug)
	for _, p := range h.blog {
		if p.Slug == slug {
			return c.JSON(http.StatusOK, p)
		}
	}
	return respondError(c, http.StatusNotFound, msgBlogPostNotFound)
}
