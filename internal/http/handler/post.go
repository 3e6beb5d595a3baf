package handler

import (
	"context"
	"errors"
	"lincognito/internal/audit"
	"lincognito/internal/auth"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/tags"
	"lincognito/internal/rbac"
	"lincognito/internal/rbac/presets"
	"lincognito/internal/service/publishing"
	"lincognito/internal/storage/s3"
	apperrors "lincognito/pkg/errors"
	"lincognito/pkg/validator"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	msgPostNotFound      = "post not found"
	msgScheduleViaStatus = "use the transition endpoint to schedule a draft"
	msgFilenameRequired  = "filename is required"
	msgArchivedNoMedia   = "archived posts cannot take new media"

	fieldNote = "note"
)

type PostHandler struct {
	posts     PostRepository
	access    AccessChecker
	publisher Publisher
	media     MediaStorage
	stats     StatsCache
	activity  ActivityRecorder
	log       *logrus.Logger
	now       func() time.Time
}

// NewPostHandler accepts a nil media store; the media endpoints then answer 503.
func NewPostHandler(
	posts PostRepository,
	access AccessChecker,
	publisher Publisher,
	media MediaStorage,
	stats StatsCache,
	activity ActivityRecorder,
	log *logrus.Logger,
) *PostHandler {
	return &PostHandler{
		posts:     posts,
		access:    access,
		publisher: publisher,
		media:     media,
		stats:     stats,
		activity:  activity,
		log:       log,
		now:       time.Now,
	}
}

type CreatePostRequest struct {
	ClientID     uuid.UUID  `json:"clientId" validate:"required"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ScheduledFor *time.Time `json:"scheduledFor"`
	Hashtags     tags.List  `json:"hashtags"`
	Mentions     tags.List  `json:"mentions"`
}

type UpdatePostRequest struct {
	Title        *string    `json:"title"`
	Content      *string    `json:"content"`
	Hashtags     *tags.List `json:"hashtags"`
	Mentions     *tags.List `json:"mentions"`
	ScheduledFor *time.Time `json:"scheduledFor"`
	Version      int        `json:"version" validate:"required,gt=0"`
}

type TransitionRequest struct {
	Status       string     `json:"status" validate:"required"`
	ScheduledFor *time.Time `json:"scheduledFor"`
	NotifyClient bool       `json:"notifyClient"`
	Note         string     `json:"note"`
}

type TransitionResponse struct {
	Post post.View `json:"post"`
	*publishing.TransitionResult
}

type CollaborateRequest struct {
	Subject string `json:"subject" validate:"max=255"`
	Body    string `json:"body" validate:"required"`
}

type MediaUploadRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
}

type MediaUploadResponse struct {
	Upload s3.PresignedURL `json:"upload"`
	Post   post.View       `json:"post"`
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	var req CreatePostRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if req.ClientID == uuid.Nil {
		return respondError(c, http.StatusBadRequest, msgInvalidClientID)
	}

	input := post.CreatePostInput{
		ClientID: req.ClientID,
		AuthorID: userID,
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Status:   post.StatusDraft,
		Hashtags: req.Hashtags.Hashtags(),
		Mentions: req.Mentions.Mentions(),
	}
	if input.Content == "" {
		return respondError(c, http.StatusBadRequest, msgContentRequired)
	}
	if err := validatePostFields(input.Title, input.Content, input.Hashtags, input.Mentions); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if req.ScheduledFor != nil {
		if err := post.ValidateScheduledFor(*req.ScheduledFor, h.now()); err != nil {
			return respondAppError(c, h.log, err, "invalid schedule")
		}
		at := req.ScheduledFor.UTC()
		input.ScheduledFor = &at
		input.Status = post.StatusScheduled
	}

	ctx := c.Request().Context()
	if _, err := h.access.Client(ctx, userID, req.ClientID, presets.ResourcePost, presets.ActionWrite); err != nil {
		return respondAppError(c, h.log, err, "client access check failed")
	}

	created, err := h.posts.Create(ctx, input)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to create post")
	}

	h.stats.Invalidate(ctx, created.ClientID)
	h.activity.Record(c, audit.ResourceTypePost, created.ID, audit.ActionCreate, map[string]any{
		"client_id": created.ClientID.String(),
		"status":    string(created.Status),
	})

	return c.JSON(http.StatusCreated, post.NewView(created))
}

// ListPosts filters the caller's accessible posts in memory by client, status and text.
func (h *PostHandler) ListPosts(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	filter := post.ListFilter{Query: c.QueryParam(queryQ)}
	clientID, ok := parseOptionalUUID(c.QueryParam(queryClientID))
	if !ok {
		return respondError(c, http.StatusBadRequest, msgInvalidClientID)
	}
	filter.ClientID = clientID
	if raw := strings.TrimSpace(c.QueryParam(queryStatus)); raw != "" {
		status, err := post.ParseStatus(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidStatus)
		}
		filter.Status = status
	}

	posts, err := h.posts.ListAccessible(c.Request().Context(), userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list posts")
	}

	return c.JSON(http.StatusOK, post.NewViews(post.Filter(posts, filter)))
}

func (h *PostHandler) GetPost(c echo.Context) error {
	p, err := h.loadPost(c, presets.ActionRead)
	if err != nil {
		return h.fail(c, err, "failed to load post")
	}
	return c.JSON(http.StatusOK, post.NewView(p))
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req UpdatePostRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	current, err := h.loadPost(c, presets.ActionWrite)
	if err != nil {
		return h.fail(c, err, "failed to load post")
	}
	if err := post.ValidateEditable(current.Status); err != nil {
		return respondAppError(c, h.log, err, "post not editable")
	}

	input := post.UpdatePostInput{
		Title:           trimmed(req.Title),
		Content:         trimmed(req.Content),
		ExpectedVersion: req.Version,
	}
	if req.Hashtags != nil {
		parsed := req.Hashtags.Hashtags()
		input.Hashtags = &parsed
	}
	if req.Mentions != nil {
		parsed := req.Mentions.Mentions()
		input.Mentions = &parsed
	}
	if input.Content != nil && *input.Content == "" {
		return respondError(c, http.StatusBadRequest, msgContentRequired)
	}
	if err := validatePostFields(deref(input.Title), deref(input.Content), derefList(input.Hashtags), derefList(input.Mentions)); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if req.ScheduledFor != nil {
		if current.Status != post.StatusScheduled {
			return respondAppError(c, h.log, apperrors.InvalidTransition(msgScheduleViaStatus), "reschedule rejected")
		}
		if err := post.ValidateScheduledFor(*req.ScheduledFor, h.now()); err != nil {
			return respondAppError(c, h.log, err, "invalid schedule")
		}
		at := req.ScheduledFor.UTC()
		input.ScheduledFor = &at
	}

	ctx := c.Request().Context()
	updated, err := h.posts.Update(ctx, current.ID, input)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to update post")
	}

	h.stats.Invalidate(ctx, updated.ClientID)
	h.activity.Record(c, audit.ResourceTypePost, updated.ID, audit.ActionUpdate, map[string]any{"version": updated.Version})

	return c.JSON(http.StatusOK, post.NewView(updated))
}

// DeletePost archives the post. With ?hard=true a draft is removed for good.
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	current, err := h.loadPost(c, presets.ActionDelete)
	if err != nil {
		return h.fail(c, err, "failed to load post")
	}

	ctx := c.Request().Context()
	if c.QueryParam(queryHard) == "true" {
		if current.Status != post.StatusDraft {
			return respondAppError(c, h.log, apperrors.InvalidTransition(msgHardDeleteDraft), "hard delete rejected")
		}
		if err := h.posts.Delete(ctx, current.ID); err != nil {
			return respondAppError(c, h.log, err, "failed to delete post")
		}
		h.stats.Invalidate(ctx, current.ClientID)
		h.activity.Record(c, audit.ResourceTypePost, current.ID, audit.ActionDelete, nil)
		return c.NoContent(http.StatusNoContent)
	}

	if _, err := h.publisher.Transition(ctx, publishing.TransitionInput{
		PostID:  current.ID,
		ActorID: userID,
		Status:  post.StatusArchived,
		Meta:    audit.MetaFromContext(c),
	}); err != nil {
		return respondAppError(c, h.log, err, "failed to archive post")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PostHandler) UpdateEngagement(c echo.Context) error {
	var req post.Engagement
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	current, err := h.loadPost(c, presets.ActionWrite)
	if err != nil {
		return h.fail(c, err, "failed to load post")
	}
	if err := post.ValidateEngagement(current.Status, req); err != nil {
		return respondAppError(c, h.log, err, "engagement rejected")
	}

	ctx := c.Request().Context()
	updated, err := h.posts.UpdateEngagement(ctx, current.ID, req)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to update engagement")
	}

	h.stats.Invalidate(ctx, updated.ClientID)
	h.activity.Record(c, audit.ResourceTypePost, updated.ID, audit.ActionEngagement, map[string]any{
		"total": updated.Engagement.Total(),
	})

	return c.JSON(http.StatusOK, post.NewView(updated))
}

func (h *PostHandler) Transition(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	postID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req TransitionRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	status, err := post.ParseStatus(req.Status)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidStatus)
	}
	note := strings.TrimSpace(req.Note)
	if err := validator.LongText(fieldNote, note); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.publisher.Transition(c.Request().Context(), publishing.TransitionInput{
		PostID:       postID,
		ActorID:      userID,
		Status:       status,
		ScheduledFor: req.ScheduledFor,
		NotifyClient: req.NotifyClient,
		Note:         note,
		Meta:         audit.MetaFromContext(c),
	})
	if err != nil {
		return respondAppError(c, h.log, err, "transition failed")
	}

	return c.JSON(http.StatusOK, TransitionResponse{Post: post.NewView(result.Post), TransitionResult: result})
}

func (h *PostHandler) Collaborate(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	postID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req CollaborateRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	msg, err := h.publisher.Collaborate(c.Request().Context(), publishing.CollaborateInput{
		PostID:  postID,
		ActorID: userID,
		Subject: req.Subject,
		Body:    req.Body,
		Meta:    audit.MetaFromContext(c),
	})
	if err != nil {
		return respondAppError(c, h.log, err, "collaboration request failed")
	}

	return c.JSON(http.StatusCreated, msg)
}

func (h *PostHandler) Activity(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	postID, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	events, err := h.publisher.History(c.Request().Context(), userID, postID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load post activity")
	}

	return c.JSON(http.StatusOK, events)
}

// CreateMediaUpload hands out a presigned PUT URL and records the key on the post.
func (h *PostHandler) CreateMediaUpload(c echo.Context) error {
	if h.media == nil {
		return respondError(c, http.StatusServiceUnavailable, msgMediaDisabled)
	}

	var req MediaUploadRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	req.Filename = strings.TrimSpace(req.Filename)
	if req.Filename == "" {
		return respondError(c, http.StatusBadRequest, msgFilenameRequired)
	}
	if err := validator.MediaContentType(req.ContentType); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	current, err := h.loadPost(c, presets.ActionWrite)
	if err != nil {
		return h.fail(c, err, "failed to load post")
	}
	if !current.Status.Allows(post.ActionEdit) {
		return respondAppError(c, h.log, apperrors.InvalidTransition(msgArchivedNoMedia), "media upload rejected")
	}

	ctx := c.Request().Context()
	key := s3.MediaKey(current.ClientID, current.ID, req.Filename)
	upload, err := h.media.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to presign media upload")
	}

	updated, err := h.posts.AddMediaKey(ctx, current.ID, key)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to record media key")
	}

	h.activity.Record(c, audit.ResourceTypePost, current.ID, audit.ActionMediaUpload, map[string]any{"key": key})

	return c.JSON(http.StatusCreated, MediaUploadResponse{Upload: upload, Post: post.NewView(updated)})
}

func (h *PostHandler) ListMedia(c echo.Context) error {
	if h.media == nil {
		return respondError(c, http.StatusServiceUnavailable, msgMediaDisabled)
	}

	current, err := h.loadPost(c, presets.ActionRead)
	if err != nil {
		return h.fail(c, err, "failed to load post")
	}

	ctx := c.Request().Context()
	urls := make([]s3.PresignedURL, 0, len(current.MediaKeys))
	for _, key := range current.MediaKeys {
		if !s3.BelongsTo(key, current.ClientID, current.ID) {
			requestLogger(h.log, c).WithField("key", key).Warn(msgMediaNotOnPost)
			continue
		}
		u, err := h.media.PresignDownload(ctx, key)
		if err != nil {
			return respondAppError(c, h.log, err, "failed to presign media download")
		}
		urls = append(urls, u)
	}

	return c.JSON(http.StatusOK, urls)
}

// loadPost fetches the post named by :id and checks the caller's role on its client.
func (h *PostHandler) loadPost(c echo.Context, action rbac.Action) (*post.Post, error) {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return nil, err
	}
	postID, err := parseIDParam(c, paramID)
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	p, err := h.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := h.checkPostAccess(ctx, userID, p, action); err != nil {
		return nil, err
	}
	return p, nil
}

func (h *PostHandler) checkPostAccess(ctx context.Context, userID uuid.UUID, p *post.Post, action rbac.Action) error {
	_, err := h.access.Client(ctx, userID, p.ClientID, presets.ResourcePost, action)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound(msgPostNotFound)
	}
	return err
}

func (h *PostHandler) fail(c echo.Context, err error, what string) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return handleHTTPError(c, he)
	}
	return respondAppError(c, h.log, err, what)
}

func validatePostFields(title, content string, hashtags, mentions []string) error {
	checks := []error{
		validator.OptionalText("title", title),
		validator.Tags("hashtags", hashtags),
		validator.Tags("mentions", mentions),
	}
	if content != "" {
		checks = append(checks, validator.PostContent(content))
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefList(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}
