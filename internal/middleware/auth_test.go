package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"commercego/internal/auth"
	apperrors "commercego/internal/errors"
	"commercego/internal/model"
)

type stubStore struct {
	kind       model.PrincipalKind
	identities map[uint]*model.Identity
}

func newStubStore(kind model.PrincipalKind, identities ...*model.Identity) *stubStore {
	s := &stubStore{kind: kind, identities: make(map[uint]*model.Identity)}
	for _, id := range identities {
		s.identities[id.ID] = id
	}
	return s
}

func (s *stubStore) Kind() model.PrincipalKind { return s.kind }

func (s *stubStore) FindIdentity(_ context.Context, id uint) (*model.Identity, error) {
	identity, ok := s.identities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return identity, nil
}

func (s *stubStore) FindIdentityByEmail(_ context.Context, email string) (*model.Identity, error) {
	for _, identity := range s.identities {
		if identity.Email == email {
			return identity, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) FindIdentityByHandle(_ context.Context, handle string) (*model.Identity, error) {
	for _, identity := range s.identities {
		if identity.Handle == handle {
			return identity, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) SetEnabled(_ context.Context, id uint) error { return nil }

func (s *stubStore) UpdatePassword(_ context.Context, id uint, passwordHash string) error {
	return nil
}

type gateFixture struct {
	gate      *Auth
	tokens    *auth.JWTService
	userStore *stubStore
	mercStore *stubStore
}

func newGateFixture(identities ...*model.Identity) *gateFixture {
	f := &gateFixture{
		tokens:    auth.NewJWTService("test-secret"),
		userStore: newStubStore(model.KindUser),
		mercStore: newStubStore(model.KindMerchant),
	}
	for _, id := range identities {
		if id.Kind == model.KindMerchant {
			f.mercStore.identities[id.ID] = id
		} else {
			f.userStore.identities[id.ID] = id
		}
	}
	f.gate = NewAuth(f.tokens, f.userStore, f.mercStore, zap.NewNop())
	return f
}

func newTestContext(authHeader string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func assertHTTPStatus(t *testing.T, err error, wantStatus int, wantCode string) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, wantStatus, he.Code)
	resp, ok := he.Message.(apperrors.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, wantCode, resp.Code)
}

func passthrough(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(http.StatusOK)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "bearer scheme", header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		{name: "bare token", header: "abc.def.ghi", want: "abc.def.ghi", ok: true},
		{name: "missing", header: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := bearerToken(newTestContext(tt.header))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, token)
			}
		})
	}
}

func TestSessionMissingHeader(t *testing.T) {
	f := newGateFixture()
	called := false

	err := f.gate.Session()(passthrough(&called))(newTestContext(""))
	assertHTTPStatus(t, err, http.StatusUnauthorized, "UNAUTHENTICATED")
	assert.False(t, called)
}

func TestSessionBadToken(t *testing.T) {
	f := newGateFixture()
	called := false

	err := f.gate.Session()(passthrough(&called))(newTestContext("Bearer not-a-jwt"))
	assertHTTPStatus(t, err, http.StatusUnauthorized, "INVALID_TOKEN")
	assert.False(t, called)
}

func TestSessionDeletedPrincipal(t *testing.T) {
	f := newGateFixture()
	token, err := f.tokens.GenerateSessionToken(42, model.KindUser, model.RoleUser)
	require.NoError(t, err)

	called := false
	err = f.gate.Session()(passthrough(&called))(newTestContext("Bearer " + token))
	assertHTTPStatus(t, err, http.StatusUnauthorized, "INVALID_TOKEN")
	assert.False(t, called)
}

func TestSessionDisabledAccount(t *testing.T) {
	f := newGateFixture(&model.Identity{
		ID: 1, Kind: model.KindUser, Role: model.RoleUser, Enabled: false, Accepted: true,
	})
	token, err := f.tokens.GenerateSessionToken(1, model.KindUser, model.RoleUser)
	require.NoError(t, err)

	called := false
	err = f.gate.Session()(passthrough(&called))(newTestContext("Bearer " + token))
	assertHTTPStatus(t, err, http.StatusUnauthorized, "ACCOUNT_NOT_ACTIVATED")
	assert.False(t, called)
}

func TestSessionMerchantNotAccepted(t *testing.T) {
	f := newGateFixture(&model.Identity{
		ID: 2, Kind: model.KindMerchant, Role: model.RoleMerchant, Enabled: true, Accepted: false,
	})
	token, err := f.tokens.GenerateSessionToken(2, model.KindMerchant, model.RoleMerchant)
	require.NoError(t, err)

	called := false
	err = f.gate.Session()(passthrough(&called))(newTestContext("Bearer " + token))
	assertHTTPStatus(t, err, http.StatusUnauthorized, "MERCHANT_NOT_ACCEPTED")
	assert.False(t, called)
}

func TestSessionKindDispatch(t *testing.T) {
	// same numeric id on both partitions; the token's kind decides the store
	f := newGateFixture(
		&model.Identity{ID: 3, Kind: model.KindUser, Handle: "user3", Role: model.RoleUser, Enabled: true, Accepted: true},
		&model.Identity{ID: 3, Kind: model.KindMerchant, Handle: "merchant3", Role: model.RoleMerchant, Enabled: true, Accepted: true},
	)
	token, err := f.tokens.GenerateSessionToken(3, model.KindMerchant, model.RoleMerchant)
	require.NoError(t, err)

	c := newTestContext("Bearer " + token)
	var resolved *model.Identity
	err = f.gate.Session()(func(c echo.Context) error {
		resolved = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, model.KindMerchant, resolved.Kind)
	assert.Equal(t, "merchant3", resolved.Handle)
}

func TestActivation(t *testing.T) {
	f := newGateFixture()
	userToken, err := f.tokens.GenerateSessionToken(5, model.KindUser, model.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		kind     model.PrincipalKind
		wantCode string
	}{
		{name: "valid", token: userToken, kind: model.KindUser},
		{name: "kind mismatch", token: userToken, kind: model.KindMerchant, wantCode: "INVALID_TOKEN"},
		{name: "garbage token", token: "garbage", kind: model.KindUser, wantCode: "INVALID_TOKEN"},
		{name: "missing token", token: "", kind: model.KindUser, wantCode: "UNAUTHENTICATED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext("")
			c.SetParamNames("token")
			c.SetParamValues(tt.token)

			var stashed *auth.SessionClaims
			err := f.gate.Activation(tt.kind)(func(c echo.Context) error {
				stashed = ActivationClaimsFrom(c)
				return c.NoContent(http.StatusOK)
			})(c)

			if tt.wantCode != "" {
				assertHTTPStatus(t, err, http.StatusUnauthorized, tt.wantCode)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, stashed)
			assert.Equal(t, int64(5), stashed.PrincipalID)
		})
	}
}

func TestRestorationCode(t *testing.T) {
	f := newGateFixture()
	realToken, err := f.tokens.GenerateRestorationCodeToken(7, model.KindUser, "123456", "$2a$10$hash", 1, 5)
	require.NoError(t, err)
	dummyToken, err := f.tokens.GenerateRestorationCodeToken(auth.SentinelPrincipalID, model.KindUser, "123456", "dumb", auth.SentinelPrincipalID, 5)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		kind     model.PrincipalKind
		wantCode string
	}{
		{name: "valid", header: "Bearer " + realToken, kind: model.KindUser},
		{name: "sentinel principal", header: "Bearer " + dummyToken, kind: model.KindUser, wantCode: "INVALID_CODE"},
		{name: "kind mismatch", header: "Bearer " + realToken, kind: model.KindMerchant, wantCode: "INVALID_TOKEN"},
		{name: "missing header", header: "", kind: model.KindUser, wantCode: "UNAUTHENTICATED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stashed *auth.RestorationCodeClaims
			err := f.gate.RestorationCode(tt.kind)(func(c echo.Context) error {
				stashed = RestorationCodeClaimsFrom(c)
				return c.NoContent(http.StatusOK)
			})(newTestContext(tt.header))

			if tt.wantCode != "" {
				assertHTTPStatus(t, err, http.StatusUnauthorized, tt.wantCode)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, stashed)
			assert.Equal(t, int64(7), stashed.PrincipalID)
			assert.Equal(t, "123456", stashed.Code)
		})
	}
}

func TestRestorationPassword(t *testing.T) {
	f := newGateFixture()
	token, err := f.tokens.GenerateRestorationPasswordToken(7, model.KindUser, "$2a$10$hash", 1)
	require.NoError(t, err)

	var stashed *auth.RestorationPasswordClaims
	err = f.gate.RestorationPassword(model.KindUser)(func(c echo.Context) error {
		stashed = RestorationPasswordClaimsFrom(c)
		return c.NoContent(http.StatusOK)
	})(newTestContext("Bearer " + token))
	require.NoError(t, err)
	require.NotNil(t, stashed)
	assert.Equal(t, "$2a$10$hash", stashed.PasswordSnapshot)

	err = f.gate.RestorationPassword(model.KindMerchant)(passthroughNoop)(newTestContext("Bearer " + token))
	assertHTTPStatus(t, err, http.StatusUnauthorized, "INVALID_TOKEN")
}

func passthroughNoop(c echo.Context) error { return c.NoContent(http.StatusOK) }
