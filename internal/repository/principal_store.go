package repository

import (
	"context"

	"commercego/internal/model"
)

// PrincipalStore is the partition-agnostic port the auth core depends on.
// One implementation wraps the user table, the other the merchant table; the
// gate, the activation flow and the whole restoration pipeline are written
// against this interface only.
type PrincipalStore interface {
	Kind() model.PrincipalKind
	FindIdentity(ctx context.Context, id uint) (*model.Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	FindIdentityByHandle(ctx context.Context, handle string) (*model.Identity, error)
	SetEnabled(ctx context.Context, id uint) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

type userPrincipalStore struct {
	users UserRepository
}

// NewUserPrincipalStore adapts the user repository to the auth-core port.
func NewUserPrincipalStore(users UserRepository) PrincipalStore {
	return &userPrincipalStore{users: users}
}

func (s *userPrincipalStore) Kind() model.PrincipalKind { return model.KindUser }

func (s *userPrincipalStore) FindIdentity(ctx context.Context, id uint) (*model.Identity, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

func (s *userPrincipalStore) FindIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

func (s *userPrincipalStore) FindIdentityByHandle(ctx context.Context, handle string) (*model.Identity, error) {
	user, err := s.users.FindByUsername(ctx, handle)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

func (s *userPrincipalStore) SetEnabled(ctx context.Context, id uint) error {
	return s.users.UpdateFields(ctx, id, map[string]interface{}{"account_enabled": true})
}

func (s *userPrincipalStore) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return s.users.UpdateFields(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

type merchantPrincipalStore struct {
	merchants MerchantRepository
}

// NewMerchantPrincipalStore adapts the merchant repository to the auth-core port.
func NewMerchantPrincipalStore(merchants MerchantRepository) PrincipalStore {
	return &merchantPrincipalStore{merchants: merchants}
}

func (s *merchantPrincipalStore) Kind() model.PrincipalKind { return model.KindMerchant }

func (s *merchantPrincipalStore) FindIdentity(ctx context.Context, id uint) (*model.Identity, error) {
	merchant, err := s.merchants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return merchant.Identity(), nil
}

func (s *merchantPrincipalStore) FindIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	merchant, err := s.merchants.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return merchant.Identity(), nil
}

func (s *merchantPrincipalStore) FindIdentityByHandle(ctx context.Context, handle string) (*model.Identity, error) {
	merchant, err := s.merchants.FindByMerchantname(ctx, handle)
	if err != nil {
		return nil, err
	}
	return merchant.Identity(), nil
}

func (s *merchantPrincipalStore) SetEnabled(ctx context.Context, id uint) error {
	return s.merchants.UpdateFields(ctx, id, map[string]interface{}{"account_enabled": true})
}

func (s *merchantPrincipalStore) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return s.merchants.UpdateFields(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}
