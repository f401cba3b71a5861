package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "commercego/internal/errors"
	"commercego/internal/model"
)

// RequireRoles refuses the request unless the resolved principal holds one of
// the allowed roles. An identity without a role reads as merchant.
func (a *Auth) RequireRoles(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return httpError(apperrors.ErrUnauthenticated)
			}
			role := identity.Role
			if role == "" {
				role = model.RoleMerchant
			}
			for _, r := range allowed {
				if role == r {
					return next(c)
				}
			}
			return httpError(apperrors.ErrForbidden)
		}
	}
}

// RequireSameOrGreaterPrivilege loads the entity addressed by the :id path
// parameter and lets the request through only when the actor is that same
// principal or outranks it. Acting sideways or upward is refused; a missing
// target is reported as not found.
func (a *Auth) RequireSameOrGreaterPrivilege(kind model.PrincipalKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return httpError(apperrors.ErrUnauthenticated)
			}

			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return echo.NewHTTPError(400, apperrors.ErrorResponse{Error: "invalid id", Code: "INVALID_ID"})
			}

			affected, err := a.store(kind).FindIdentity(c.Request().Context(), uint(id))
			if err != nil {
				a.logger.Warn("privilege target load failed", zap.Uint64("id", id), zap.Error(err))
				return httpError(apperrors.ErrPrincipalNotFound)
			}

			self := identity.ID == affected.ID && identity.Kind == affected.Kind
			outranks := model.RoleRank[identity.Role] < model.RoleRank[affected.Role]
			if !self && !outranks {
				return httpError(apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}
