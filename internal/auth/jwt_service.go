package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"commercego/internal/model"
)

const (
	// SessionTokenExpiry is the lifetime of session and activation tokens.
	SessionTokenExpiry = 2 * time.Hour
	// RestorationCodeExpiry is the lifetime of the phase-1 recovery token.
	RestorationCodeExpiry = 30 * time.Minute
	// RestorationPasswordExpiry is the lifetime of the phase-2 recovery token.
	// Each step toward the actual password change gets a shorter replay window.
	RestorationPasswordExpiry = 5 * time.Minute
)

// SentinelPrincipalID marks the dummy principal embedded in restoration tokens
// issued for unknown or ineligible emails.
const SentinelPrincipalID int64 = -1

// SessionClaims carries the identity of a logged-in principal. The same claims
// double as the activation token: activation is scoped by principal id and
// made single-use by the accountEnabled flag, not by token revocation.
type SessionClaims struct {
	PrincipalID int64               `json:"principal_id"`
	Kind        model.PrincipalKind `json:"kind"`
	Role        string              `json:"role"`
	jwt.RegisteredClaims
}

// RestorationCodeClaims is the phase-1 recovery token payload. PasswordSnapshot
// is the hashed password at issuance time; once the live hash differs the whole
// token chain is spent.
type RestorationCodeClaims struct {
	PrincipalID          int64               `json:"principal_id"`
	Kind                 model.PrincipalKind `json:"kind"`
	Code                 string              `json:"code"`
	PasswordSnapshot     string              `json:"password_snapshot"`
	RestorationRequestID int64               `json:"restoration_request_id"`
	MaxAttempts          int                 `json:"max_attempts"`
	jwt.RegisteredClaims
}

// RestorationPasswordClaims is the phase-2 recovery token payload, issued only
// after the emailed code was verified.
type RestorationPasswordClaims struct {
	PrincipalID          int64               `json:"principal_id"`
	Kind                 model.PrincipalKind `json:"kind"`
	PasswordSnapshot     string              `json:"password_snapshot"`
	RestorationRequestID int64               `json:"restoration_request_id"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies the three token kinds of the auth core.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// GenerateSessionToken issues a session (or activation) token for a principal.
func (s *JWTService) GenerateSessionToken(principalID int64, kind model.PrincipalKind, role string) (string, error) {
	claims := &SessionClaims{
		PrincipalID:      principalID,
		Kind:             kind,
		Role:             role,
		RegisteredClaims: registeredClaims(SessionTokenExpiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// GenerateRestorationCodeToken issues the phase-1 recovery token. For unknown
// or ineligible principals the caller passes the sentinel id, a dummy snapshot
// and a sentinel request id so the token still issues and the response shape
// never betrays whether the email exists.
func (s *JWTService) GenerateRestorationCodeToken(principalID int64, kind model.PrincipalKind, code, passwordSnapshot string, restorationRequestID int64, maxAttempts int) (string, error) {
	claims := &RestorationCodeClaims{
		PrincipalID:          principalID,
		Kind:                 kind,
		Code:                 code,
		PasswordSnapshot:     passwordSnapshot,
		RestorationRequestID: restorationRequestID,
		MaxAttempts:          maxAttempts,
		RegisteredClaims:     registeredClaims(RestorationCodeExpiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// GenerateRestorationPasswordToken issues the phase-2 recovery token.
func (s *JWTService) GenerateRestorationPasswordToken(principalID int64, kind model.PrincipalKind, passwordSnapshot string, restorationRequestID int64) (string, error) {
	claims := &RestorationPasswordClaims{
		PrincipalID:          principalID,
		Kind:                 kind,
		PasswordSnapshot:     passwordSnapshot,
		RestorationRequestID: restorationRequestID,
		RegisteredClaims:     registeredClaims(RestorationPasswordExpiry),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateSessionToken validates a session token and returns the claims.
func (s *JWTService) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRestorationCodeToken validates a phase-1 token and returns the claims.
func (s *JWTService) ValidateRestorationCodeToken(tokenString string) (*RestorationCodeClaims, error) {
	claims := &RestorationCodeClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRestorationPasswordToken validates a phase-2 token and returns the claims.
func (s *JWTService) ValidateRestorationPasswordToken(tokenString string) (*RestorationPasswordClaims, error) {
	claims := &RestorationPasswordClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

func registeredClaims(expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}
