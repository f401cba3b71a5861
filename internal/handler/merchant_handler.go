package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"commercego/internal/service"
)

// MerchantHandler handles merchant registration, acceptance and profiles.
type MerchantHandler struct {
	auth      service.AuthService
	merchants service.MerchantService
}

// NewMerchantHandler creates a new merchant handler.
func NewMerchantHandler(auth service.AuthService, merchants service.MerchantService) *MerchantHandler {
	return &MerchantHandler{auth: auth, merchants: merchants}
}

// RegisterMerchantRequest represents a merchant registration request.
type RegisterMerchantRequest struct {
	Merchantname string `json:"merchantname" validate:"required,min=3,max=64"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	CIF          string `json:"cif" validate:"required"`
	Address      string `json:"address"`
}

// UpdateMerchantRequest rewrites the merchant profile fields.
type UpdateMerchantRequest struct {
	Merchantname string `json:"merchantname" validate:"required,min=3,max=64"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	CIF          string `json:"cif" validate:"required"`
	Address      string `json:"address"`
}

// Register godoc
// @Summary Register a new merchant
// @Tags merchants
// @Accept json
// @Produce json
// @Param request body RegisterMerchantRequest true "Registration data"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /merchants/register [post]
func (h *MerchantHandler) Register(c echo.Context) error {
	var req RegisterMerchantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.auth.RegisterMerchant(c.Request().Context(), req.Merchantname, req.Email, req.Password, req.CIF, req.Address); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, MessageResponse{Message: "merchant registered successfully, check your email to activate the account"})
}

// Accept godoc
// @Summary Accept an activated merchant
// @Tags merchants
// @Produce json
// @Param id path int true "Merchant id"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /merchants/accept/{id} [put]
// @Security BearerAuth
func (h *MerchantHandler) Accept(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.auth.AcceptMerchant(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "merchant accepted successfully"})
}

// List returns all merchants.
func (h *MerchantHandler) List(c echo.Context) error {
	merchants, err := h.merchants.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, merchants)
}

// Get returns one merchant profile.
func (h *MerchantHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	merchant, err := h.merchants.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, merchant)
}

// Update rewrites a merchant profile.
func (h *MerchantHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UpdateMerchantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	params := service.UpdateMerchantParams{
		Merchantname: req.Merchantname,
		Email:        req.Email,
		Password:     req.Password,
		CIF:          req.CIF,
		Address:      req.Address,
	}
	if err := h.merchants.Update(c.Request().Context(), id, params); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "merchant updated successfully"})
}

// Delete removes a merchant account.
func (h *MerchantHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.merchants.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "merchant deleted successfully"})
}
