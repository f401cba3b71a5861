package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "commercego/internal/errors"

	"commercego/internal/middleware"
	"commercego/internal/model"
	"commercego/internal/service"
)

// AccountHandler serves login, activation and password restoration for one
// principal kind. It is instantiated twice: once for users under /accounts,
// once for merchants under /merchants.
type AccountHandler struct {
	kind     model.PrincipalKind
	auth     service.AuthService
	recovery service.RecoveryService
}

// NewAccountHandler creates an account handler bound to a principal kind.
func NewAccountHandler(kind model.PrincipalKind, auth service.AuthService, recovery service.RecoveryService) *AccountHandler {
	return &AccountHandler{kind: kind, auth: auth, recovery: recovery}
}

// LoginRequest represents a login request. Username also accepts the
// registered email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and the authenticated principal.
type LoginResponse struct {
	Token     string          `json:"token"`
	Principal *model.Identity `json:"principal"`
}

// RestoreEmailRequest starts a password restoration flow.
type RestoreEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RestoreCodeRequest submits the emailed restoration code.
type RestoreCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// RestorePasswordRequest submits the replacement password.
type RestorePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// Login godoc
// @Summary Log in with handle or email
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /accounts/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, identity, err := h.auth.Login(c.Request().Context(), h.kind, req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, LoginResponse{Token: token, Principal: identity})
}

// Activate godoc
// @Summary Activate an account with the emailed token
// @Tags accounts
// @Produce json
// @Param token path string true "Activation token"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /accounts/activate/{token} [put]
func (h *AccountHandler) Activate(c echo.Context) error {
	claims := middleware.ActivationClaimsFrom(c)
	if claims == nil {
		return httpError(apperrors.ErrUnauthenticated)
	}

	token, err := h.auth.Activate(c.Request().Context(), h.kind, claims.PrincipalID)
	if err != nil {
		return httpError(err)
	}
	// Merchants get no auto-login token; they still need admin acceptance.
	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// RestoreEmail godoc
// @Summary Start password restoration
// @Description Always succeeds with a phase-1 token, whether or not the email is registered.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body RestoreEmailRequest true "Registered email"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /accounts/restorepassword/email [post]
func (h *AccountHandler) RestoreEmail(c echo.Context) error {
	var req RestoreEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.recovery.RequestRestoration(c.Request().Context(), h.kind, req.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// RestoreCode godoc
// @Summary Verify the emailed restoration code
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body RestoreCodeRequest true "Six digit code"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /accounts/restorepassword/code [post]
// @Security BearerAuth
func (h *AccountHandler) RestoreCode(c echo.Context) error {
	claims := middleware.RestorationCodeClaimsFrom(c)
	if claims == nil {
		return httpError(apperrors.ErrUnauthenticated)
	}

	var req RestoreCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.recovery.VerifyCode(c.Request().Context(), claims, req.Code)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// RestorePassword godoc
// @Summary Finalize password restoration
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body RestorePasswordRequest true "New password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /accounts/restorepassword [put]
// @Security BearerAuth
func (h *AccountHandler) RestorePassword(c echo.Context) error {
	claims := middleware.RestorationPasswordClaimsFrom(c)
	if claims == nil {
		return httpError(apperrors.ErrUnauthenticated)
	}

	var req RestorePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.recovery.RestorePassword(c.Request().Context(), claims, req.Password); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "password restored successfully"})
}
