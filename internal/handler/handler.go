package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "commercego/internal/errors"
)

func httpError(err error) *echo.HTTPError {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(400, apperrors.ErrorResponse{Error: "invalid id", Code: "INVALID_ID"})
	}
	return uint(id), nil
}

func parseUintParam(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	return uint(v), err
}

// MessageResponse is the generic success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries a single issued token.
type TokenResponse struct {
	Token string `json:"token"`
}
