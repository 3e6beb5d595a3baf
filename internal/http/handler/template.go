package handler

import (
	"lincognito/internal/audit"
	"lincognito/internal/auth"
	"lincognito/internal/domain/tags"
	"lincognito/internal/domain/template"
	"lincognito/pkg/validator"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type TemplateHandler struct {
	templates TemplateRepository
	activity  ActivityRecorder
	log       *logrus.Logger
}

func NewTemplateHandler(templates TemplateRepository, activity ActivityRecorder, log *logrus.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, activity: activity, log: log}
}

type CreateTemplateRequest struct {
	Name     string    `json:"name"`
	Content  string    `json:"content"`
	Category string    `json:"category"`
	Tags     tags.List `json:"tags"`
}

type UpdateTemplateRequest struct {
	Name     *string    `json:"name"`
	Content  *string    `json:"content"`
	Category *string    `json:"category"`
	Tags     *tags.List `json:"tags"`
}

type TemplateListResponse struct {
	Templates  []*template.Template `json:"templates"`
	Categories []string             `json:"categories"`
}

type UseTemplateResponse struct {
	Content  string             `json:"content"`
	Template *template.Template `json:"template"`
}

func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	all, err := h.templates.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list templates")
	}

	filtered := template.Filter(all, template.ListFilter{
		Query:    c.QueryParam(queryQ),
		Category: c.QueryParam(queryCategory),
	})

	return c.JSON(http.StatusOK, TemplateListResponse{
		Templates:  filtered,
		Categories: template.Categories(all),
	})
}

func (h *TemplateHandler) CreateTemplate(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	var req CreateTemplateRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	input := template.CreateTemplateInput{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Content:  strings.TrimSpace(req.Content),
		Category: template.NormalizeCategory(req.Category),
		Tags:     req.Tags.Plain(),
	}
	if err := validator.Name("name", input.Name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validator.TemplateContent(input.Content); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if err := validateTemplateMeta(input.Category, input.Tags); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	created, err := h.templates.Create(c.Request().Context(), input)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to create template")
	}

	h.activity.Record(c, audit.ResourceTypeTemplate, created.ID, audit.ActionCreate, nil)

	return c.JSON(http.StatusCreated, created)
}

func (h *TemplateHandler) GetTemplate(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	t, err := h.templates.GetByID(c.Request().Context(), id, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load template")
	}

	return c.JSON(http.StatusOK, t)
}

func (h *TemplateHandler) UpdateTemplate(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req UpdateTemplateRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	input := template.UpdateTemplateInput{
		Name:    trimmed(req.Name),
		Content: trimmed(req.Content),
	}
	if req.Category != nil {
		category := template.NormalizeCategory(*req.Category)
		input.Category = &category
	}
	if req.Tags != nil {
		parsed := req.Tags.Plain()
		input.Tags = &parsed
	}
	if input.Name == nil && input.Content == nil && input.Category == nil && input.Tags == nil {
		return respondError(c, http.StatusBadRequest, msgNothingToUpdate)
	}
	if input.Name != nil {
		if err := validator.Name("name", *input.Name); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}
	if input.Content != nil {
		if err := validator.TemplateContent(*input.Content); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}
	if err := validateTemplateMeta(deref(input.Category), derefList(input.Tags)); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	updated, err := h.templates.Update(c.Request().Context(), id, userID, input)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to update template")
	}

	h.activity.Record(c, audit.ResourceTypeTemplate, id, audit.ActionUpdate, nil)

	return c.JSON(http.StatusOK, updated)
}

func (h *TemplateHandler) DeleteTemplate(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if err := h.templates.Delete(c.Request().Context(), id, userID); err != nil {
		return respondAppError(c, h.log, err, "failed to delete template")
	}

	h.activity.Record(c, audit.ResourceTypeTemplate, id, audit.ActionDelete, nil)

	return c.NoContent(http.StatusNoContent)
}

// UseTemplate bumps the usage stats and hands back the content to paste into a draft.
func (h *TemplateHandler) UseTemplate(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	t, err := h.templates.IncrementUsage(c.Request().Context(), id, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to record template use")
	}

	return c.JSON(http.StatusOK, UseTemplateResponse{Content: t.Content, Template: t})
}

func validateTemplateMeta(category string, tagList []string) error {
	if err := validator.OptionalText("category", category); err != nil {
		return err
	}
	return validator.Tags("tags", tagList)
}
