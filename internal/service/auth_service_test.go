package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"commercego/internal/auth"
	apperrors "commercego/internal/errors"
	"commercego/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) CountConflicts(ctx context.Context, username, email string, excludeID uint) (int64, error) {
	args := m.Called(ctx, username, email, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMerchantRepository is a mock implementation of MerchantRepository.
type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) Create(ctx context.Context, merchant *model.Merchant) error {
	args := m.Called(ctx, merchant)
	return args.Error(0)
}

func (m *MockMerchantRepository) FindByID(ctx context.Context, id uint) (*model.Merchant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) FindByEmail(ctx context.Context, email string) (*model.Merchant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) FindByMerchantname(ctx context.Context, name string) (*model.Merchant, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) List(ctx context.Context) ([]model.Merchant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) CountConflicts(ctx context.Context, merchantname, email string, excludeID uint) (int64, error) {
	args := m.Called(ctx, merchantname, email, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMerchantRepository) Update(ctx context.Context, merchant *model.Merchant) error {
	args := m.Called(ctx, merchant)
	return args.Error(0)
}

func (m *MockMerchantRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockMerchantRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type authFixture struct {
	svc       AuthService
	tokens    *auth.JWTService
	users     *MockUserRepository
	merchants *MockMerchantRepository
	userStore *memoryPrincipalStore
	mercStore *memoryPrincipalStore
	mailer    *captureMailer
}

func newAuthFixture(identities ...*model.Identity) *authFixture {
	f := &authFixture{
		tokens:    auth.NewJWTService("test-secret"),
		users:     new(MockUserRepository),
		merchants: new(MockMerchantRepository),
		userStore: newMemoryStore(model.KindUser),
		mercStore: newMemoryStore(model.KindMerchant),
		mailer:    &captureMailer{},
	}
	for _, id := range identities {
		if id.Kind == model.KindMerchant {
			f.mercStore.identities[id.ID] = id
		} else {
			f.userStore.identities[id.ID] = id
		}
	}
	f.svc = NewAuthService(f.users, f.merchants, f.userStore, f.mercStore, f.tokens, f.mailer, "https://commercego.test", zap.NewNop())
	return f
}

func TestRegisterUser(t *testing.T) {
	f := newAuthFixture()
	f.users.On("CountConflicts", mock.Anything, "alice", "alice@example.com", uint(0)).Return(int64(0), nil)
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 7
	}).Return(nil)

	user, err := f.svc.RegisterUser(context.Background(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.False(t, user.AccountEnabled)
	assert.True(t, auth.CheckPassword("password123", user.PasswordHash))

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].Body, "https://commercego.test/accounts/activate/")
	f.users.AssertExpectations(t)
}

func TestRegisterUserConflict(t *testing.T) {
	f := newAuthFixture()
	f.users.On("CountConflicts", mock.Anything, "alice", "alice@example.com", uint(0)).Return(int64(1), nil)

	_, err := f.svc.RegisterUser(context.Background(), "alice", "alice@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrPrincipalExists)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.mailer.sent)
}

func TestRegisterUserMailFailure(t *testing.T) {
	f := newAuthFixture()
	f.mailer.err = errors.New("smtp down")
	f.users.On("CountConflicts", mock.Anything, "alice", "alice@example.com", uint(0)).Return(int64(0), nil)
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	_, err := f.svc.RegisterUser(context.Background(), "alice", "alice@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrMailDelivery)
}

func TestRegisterMerchant(t *testing.T) {
	f := newAuthFixture()
	f.merchants.On("CountConflicts", mock.Anything, "acme", "acme@example.com", uint(0)).Return(int64(0), nil)
	f.merchants.On("Create", mock.Anything, mock.AnythingOfType("*model.Merchant")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Merchant).ID = 3
	}).Return(nil)

	merchant, err := f.svc.RegisterMerchant(context.Background(), "acme", "acme@example.com", "password123", "B12345678", "1 Main St")
	require.NoError(t, err)
	assert.False(t, merchant.AccountEnabled)
	assert.False(t, merchant.AccountAccepted)

	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].Body, "https://commercego.test/merchants/activate/")
	f.merchants.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	active := &model.Identity{
		ID: 1, Kind: model.KindUser, Handle: "alice", Email: "alice@example.com",
		PasswordHash: hash, Role: model.RoleUser, Enabled: true, Accepted: true,
	}
	disabled := &model.Identity{
		ID: 2, Kind: model.KindUser, Handle: "bob", Email: "bob@example.com",
		PasswordHash: hash, Role: model.RoleUser, Enabled: false, Accepted: true,
	}

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{name: "by handle", identifier: "alice", password: "password123"},
		{name: "by email", identifier: "alice@example.com", password: "password123"},
		{name: "unknown handle", identifier: "mallory", password: "password123", wantErr: apperrors.ErrInvalidLogin},
		{name: "unknown email", identifier: "mallory@example.com", password: "password123", wantErr: apperrors.ErrInvalidLogin},
		{name: "wrong password", identifier: "alice", password: "password124", wantErr: apperrors.ErrInvalidLogin},
		{name: "disabled account", identifier: "bob", password: "password123", wantErr: apperrors.ErrInvalidLogin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(active, disabled)
			token, identity, err := f.svc.Login(context.Background(), model.KindUser, tt.identifier, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(1), identity.ID)

			claims, err := f.tokens.ValidateSessionToken(token)
			require.NoError(t, err)
			assert.Equal(t, int64(1), claims.PrincipalID)
			assert.Equal(t, model.KindUser, claims.Kind)
		})
	}
}

func TestLoginMerchantRequiresAcceptance(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	merchant := &model.Identity{
		ID: 4, Kind: model.KindMerchant, Handle: "acme", Email: "acme@example.com",
		PasswordHash: hash, Role: model.RoleMerchant, Enabled: true, Accepted: false,
	}
	f := newAuthFixture(merchant)

	// activated but not yet accepted by an admin
	_, _, err = f.svc.Login(context.Background(), model.KindMerchant, "acme", "password123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidLogin)

	merchant.Accepted = true
	token, identity, err := f.svc.Login(context.Background(), model.KindMerchant, "acme", "password123")
	require.NoError(t, err)
	assert.Equal(t, model.KindMerchant, identity.Kind)

	claims, err := f.tokens.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, model.KindMerchant, claims.Kind)
	assert.Equal(t, model.RoleMerchant, claims.Role)
}

func TestActivateUser(t *testing.T) {
	pending := &model.Identity{
		ID: 5, Kind: model.KindUser, Handle: "carol", Email: "carol@example.com",
		PasswordHash: "$2a$10$hash", Role: model.RoleUser, Enabled: false, Accepted: true,
	}
	f := newAuthFixture(pending)

	// users get an auto-login token back
	token, err := f.svc.Activate(context.Background(), model.KindUser, 5)
	require.NoError(t, err)
	claims, err := f.tokens.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.PrincipalID)

	enabled, err := f.userStore.FindIdentity(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)

	// replaying the activation hits the already-activated guard
	_, err = f.svc.Activate(context.Background(), model.KindUser, 5)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyActivated)
}

func TestActivateMerchant(t *testing.T) {
	pending := &model.Identity{
		ID: 6, Kind: model.KindMerchant, Handle: "acme", Email: "acme@example.com",
		PasswordHash: "$2a$10$hash", Role: model.RoleMerchant, Enabled: false, Accepted: false,
	}
	f := newAuthFixture(pending)

	// no token until an admin accepts the merchant
	token, err := f.svc.Activate(context.Background(), model.KindMerchant, 6)
	require.NoError(t, err)
	assert.Empty(t, token)

	enabled, err := f.mercStore.FindIdentity(context.Background(), 6)
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)
	assert.False(t, enabled.Accepted)
}

func TestActivateUnknownPrincipal(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Activate(context.Background(), model.KindUser, 99)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAcceptMerchant(t *testing.T) {
	f := newAuthFixture()
	f.merchants.On("FindByID", mock.Anything, uint(4)).Return(&model.Merchant{ID: 4}, nil)
	f.merchants.On("UpdateFields", mock.Anything, uint(4), map[string]interface{}{"account_accepted": true}).Return(nil)

	require.NoError(t, f.svc.AcceptMerchant(context.Background(), 4))
	f.merchants.AssertExpectations(t)
}

func TestAcceptMerchantNotFound(t *testing.T) {
	f := newAuthFixture()
	f.merchants.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	err := f.svc.AcceptMerchant(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrPrincipalNotFound)
}
