package handler

import (
	"context"
	"lincognito/internal/auth"
	"lincognito/internal/search"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type SearchSources struct {
	Clients   ClientSearcher
	Posts     PostSearcher
	Templates TemplateSearcher
	Messages  MessageSearcher
}

type SearchHandler struct {
	src SearchSources
	log *logrus.Logger
}

func NewSearchHandler(src SearchSources, log *logrus.Logger) *SearchHandler {
	return &SearchHandler{src: src, log: log}
}

type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// Search ranks everything the caller can see against q. Only the requested kinds are loaded.
func (h *SearchHandler) Search(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	q := strings.TrimSpace(c.QueryParam(queryQ))
	if q == "" {
		return respondError(c, http.StatusBadRequest, msgQueryRequired)
	}
	limit, _ := strconv.Atoi(c.QueryParam(queryLimit))
	query := search.Query{
		Text:  q,
		Kinds: search.ParseKinds(c.QueryParam(queryTypes)),
		Limit: search.ClampLimit(limit),
	}

	corpus, err := h.load(c.Request().Context(), userID, query.Kinds)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load search corpus")
	}

	return c.JSON(http.StatusOK, SearchResponse{Query: q, Results: search.Run(corpus, query)})
}

func (h *SearchHandler) load(ctx context.Context, userID uuid.UUID, kinds []search.Kind) (search.Corpus, error) {
	want := func(k search.Kind) bool {
		if len(kinds) == 0 {
			return true
		}
		for _, kind := range kinds {
			if kind == k {
				return true
			}
		}
		return false
	}

	var corpus search.Corpus
	var err error
	if want(search.KindClient) {
		if corpus.Clients, err = h.src.Clients.ListAccessible(ctx, userID); err != nil {
			return corpus, err
		}
	}
	if want(search.KindPost) {
		if corpus.Posts, err = h.src.Posts.ListAccessible(ctx, userID); err != nil {
			return corpus, err
		}
	}
	if want(search.KindTemplate) {
		if corpus.Templates, err = h.src.Templates.ListByUser(ctx, userID); err != nil {
			return corpus, err
		}
	}
	if want(search.KindMessage) {
		if corpus.Messages, err = h.src.Messages.ListByUser(ctx, userID); err != nil {
			return corpus, err
		}
	}
	return corpus, nil
}
