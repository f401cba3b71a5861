package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "commercego/internal/errors"
	"commercego/internal/middleware"
	"commercego/internal/model"
	"commercego/internal/service"
)

// WebpageHandler handles storefront page endpoints.
type WebpageHandler struct {
	webpages service.WebpageService
}

// NewWebpageHandler creates a new webpage handler.
func NewWebpageHandler(webpages service.WebpageService) *WebpageHandler {
	return &WebpageHandler{webpages: webpages}
}

// WebpageRequest carries the storefront fields for create and update.
type WebpageRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	City     string `json:"city" validate:"max=128"`
	Activity string `json:"activity" validate:"max=128"`
	Summary  string `json:"summary" validate:"max=1024"`
}

// Create opens a new storefront page owned by the calling merchant.
func (h *WebpageHandler) Create(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil || identity.Kind != model.KindMerchant {
		return httpError(apperrors.ErrForbidden)
	}

	var req WebpageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page, err := h.webpages.Create(c.Request().Context(), identity.ID, service.WebpageParams{
		Name:     req.Name,
		City:     req.City,
		Activity: req.Activity,
		Summary:  req.Summary,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, page)
}

// List returns every storefront page, or one merchant's with ?merchant=.
func (h *WebpageHandler) List(c echo.Context) error {
	if merchantParam := c.QueryParam("merchant"); merchantParam != "" {
		id, err := parseUintParam(merchantParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{Error: "invalid merchant id", Code: "INVALID_ID"})
		}
		pages, err := h.webpages.ListByMerchant(c.Request().Context(), id)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pages)
	}

	pages, err := h.webpages.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pages)
}

// Get returns one storefront page.
func (h *WebpageHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	page, err := h.webpages.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// Update rewrites a storefront page, ownership permitting.
func (h *WebpageHandler) Update(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return httpError(apperrors.ErrUnauthenticated)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req WebpageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	params := service.WebpageParams{
		Name:     req.Name,
		City:     req.City,
		Activity: req.Activity,
		Summary:  req.Summary,
	}
	if err := h.webpages.Update(c.Request().Context(), identity, id, params); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "webpage updated successfully"})
}

// Delete removes a storefront page, ownership permitting.
func (h *WebpageHandler) Delete(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return httpError(apperrors.ErrUnauthenticated)
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.webpages.Delete(c.Request().Context(), identity, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "webpage deleted successfully"})
}
