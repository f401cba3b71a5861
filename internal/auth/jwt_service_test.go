package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commercego/internal/model"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateSessionToken(42, model.KindUser, model.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.PrincipalID)
	assert.Equal(t, model.KindUser, claims.Kind)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(SessionTokenExpiry), claims.ExpiresAt.Time, time.Minute)
}

func TestSessionTokenExpired(t *testing.T) {
	svc := NewJWTService("test-secret")

	claims := &SessionClaims{
		PrincipalID: 7,
		Kind:        model.KindUser,
		Role:        model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-3 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateSessionToken(1, model.KindUser, model.RoleUser)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestSessionTokenMalformed(t *testing.T) {
	svc := NewJWTService("test-secret")
	for _, bad := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ValidateSessionToken(bad)
		assert.Error(t, err, "token %q should not validate", bad)
	}
}

func TestRestorationCodeTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateRestorationCodeToken(9, model.KindMerchant, "123456", "$2a$10$hash", 3, 5)
	require.NoError(t, err)

	claims, err := svc.ValidateRestorationCodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.PrincipalID)
	assert.Equal(t, model.KindMerchant, claims.Kind)
	assert.Equal(t, "123456", claims.Code)
	assert.Equal(t, "$2a$10$hash", claims.PasswordSnapshot)
	assert.Equal(t, int64(3), claims.RestorationRequestID)
	assert.Equal(t, 5, claims.MaxAttempts)
	assert.WithinDuration(t, time.Now().Add(RestorationCodeExpiry), claims.ExpiresAt.Time, time.Minute)
}

func TestRestorationPasswordTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateRestorationPasswordToken(9, model.KindUser, "$2a$10$hash", 3)
	require.NoError(t, err)

	claims, err := svc.ValidateRestorationPasswordToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.PrincipalID)
	assert.Equal(t, "$2a$10$hash", claims.PasswordSnapshot)
	assert.Equal(t, int64(3), claims.RestorationRequestID)
	// shortest lifetime of the chain
	assert.WithinDuration(t, time.Now().Add(RestorationPasswordExpiry), claims.ExpiresAt.Time, time.Minute)
}

func TestSentinelTokenIssues(t *testing.T) {
	svc := NewJWTService("test-secret")

	// tokens for unknown principals still issue, carrying the sentinel
	token, err := svc.GenerateRestorationCodeToken(SentinelPrincipalID, model.KindUser, "123456", "dumb", SentinelPrincipalID, 5)
	require.NoError(t, err)

	claims, err := svc.ValidateRestorationCodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, SentinelPrincipalID, claims.PrincipalID)
	assert.Equal(t, SentinelPrincipalID, claims.RestorationRequestID)
}
