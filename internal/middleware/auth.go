package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"commercego/internal/auth"
	apperrors "commercego/internal/errors"
	"commercego/internal/model"
	"commercego/internal/repository"
)

const (
	identityKey                = "identity"
	restorationCodeClaimsKey   = "restoration_code_claims"
	restorationPasswdClaimsKey = "restoration_password_claims"
	activationClaimsKey        = "activation_claims"
)

// Auth carries the dependencies of the authentication gate and the
// authorization policy middlewares.
type Auth struct {
	tokens    *auth.JWTService
	userStore repository.PrincipalStore
	mercStore repository.PrincipalStore
	logger    *zap.Logger
}

// NewAuth creates the middleware set.
func NewAuth(tokens *auth.JWTService, userStore, mercStore repository.PrincipalStore, logger *zap.Logger) *Auth {
	return &Auth{
		tokens:    tokens,
		userStore: userStore,
		mercStore: mercStore,
		logger:    logger.Named("gate"),
	}
}

func (a *Auth) store(kind model.PrincipalKind) repository.PrincipalStore {
	if kind == model.KindMerchant {
		return a.mercStore
	}
	return a.userStore
}

// bearerToken extracts the token from the Authorization header, keeping the
// part after the scheme prefix.
func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	return parts[len(parts)-1], true
}

// Session resolves the request principal from a bearer session token: verify,
// dispatch on the embedded kind, load from the matching partition and gate on
// account status. The resolved identity lands in the request context.
func (a *Auth) Session() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return httpError(apperrors.ErrUnauthenticated)
			}
			claims, err := a.tokens.ValidateSessionToken(token)
			if err != nil {
				return httpError(apperrors.ErrInvalidToken)
			}

			identity, err := a.store(claims.Kind).FindIdentity(c.Request().Context(), uint(claims.PrincipalID))
			if err != nil {
				a.logger.Warn("session principal load failed", zap.Int64("principal_id", claims.PrincipalID), zap.Error(err))
				return httpError(apperrors.ErrInvalidToken)
			}
			if !identity.Enabled {
				return httpError(apperrors.ErrAccountNotActivated)
			}
			if identity.Kind == model.KindMerchant && !identity.Accepted {
				return httpError(apperrors.ErrMerchantNotAccepted)
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// Activation authenticates the activation endpoint, where the path token is
// the credential. The enabled/already-activated state check happens in the
// service so the principal is loaded once.
func (a *Auth) Activation(kind model.PrincipalKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Param("token")
			if token == "" {
				return httpError(apperrors.ErrUnauthenticated)
			}
			claims, err := a.tokens.ValidateSessionToken(token)
			if err != nil || claims.Kind != kind {
				return httpError(apperrors.ErrInvalidToken)
			}
			c.Set(activationClaimsKey, claims)
			return next(c)
		}
	}
}

// RestorationCode authenticates phase 2 of the recovery flow with the phase-1
// bearer token. A token carrying the sentinel principal is rejected as a wrong
// code, never as "account not found".
func (a *Auth) RestorationCode(kind model.PrincipalKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return httpError(apperrors.ErrUnauthenticated)
			}
			claims, err := a.tokens.ValidateRestorationCodeToken(token)
			if err != nil || claims.Kind != kind {
				return httpError(apperrors.ErrInvalidToken)
			}
			if claims.PrincipalID == auth.SentinelPrincipalID {
				return httpError(apperrors.ErrInvalidCode)
			}
			c.Set(restorationCodeClaimsKey, claims)
			return next(c)
		}
	}
}

// RestorationPassword authenticates phase 3 with the phase-2 bearer token.
func (a *Auth) RestorationPassword(kind model.PrincipalKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return httpError(apperrors.ErrUnauthenticated)
			}
			claims, err := a.tokens.ValidateRestorationPasswordToken(token)
			if err != nil || claims.Kind != kind {
				return httpError(apperrors.ErrInvalidToken)
			}
			c.Set(restorationPasswdClaimsKey, claims)
			return next(c)
		}
	}
}

// IdentityFrom returns the principal resolved by Session, or nil.
func IdentityFrom(c echo.Context) *model.Identity {
	identity, _ := c.Get(identityKey).(*model.Identity)
	return identity
}

// ActivationClaimsFrom returns the claims stashed by Activation, or nil.
func ActivationClaimsFrom(c echo.Context) *auth.SessionClaims {
	claims, _ := c.Get(activationClaimsKey).(*auth.SessionClaims)
	return claims
}

// RestorationCodeClaimsFrom returns the claims stashed by RestorationCode, or nil.
func RestorationCodeClaimsFrom(c echo.Context) *auth.RestorationCodeClaims {
	claims, _ := c.Get(restorationCodeClaimsKey).(*auth.RestorationCodeClaims)
	return claims
}

// RestorationPasswordClaimsFrom returns the claims stashed by RestorationPassword, or nil.
func RestorationPasswordClaimsFrom(c echo.Context) *auth.RestorationPasswordClaims {
	claims, _ := c.Get(restorationPasswdClaimsKey).(*auth.RestorationPasswordClaims)
	return claims
}

func httpError(err error) *echo.HTTPError {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}
