package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"commercego/internal/auth"
	apperrors "commercego/internal/errors"
	"commercego/internal/mail"
	"commercego/internal/model"
	"commercego/internal/repository"
)

// AuthService handles registration, login, activation and merchant acceptance.
type AuthService interface {
	RegisterUser(ctx context.Context, username, email, password string) (*model.User, error)
	RegisterMerchant(ctx context.Context, merchantname, email, password, cif, address string) (*model.Merchant, error)
	Login(ctx context.Context, kind model.PrincipalKind, identifier, password string) (token string, identity *model.Identity, err error)
	Activate(ctx context.Context, kind model.PrincipalKind, principalID int64) (token string, err error)
	AcceptMerchant(ctx context.Context, id uint) error
}

type authService struct {
	users      repository.UserRepository
	merchants  repository.MerchantRepository
	userStore  repository.PrincipalStore
	mercStore  repository.PrincipalStore
	jwtService *auth.JWTService
	mailer     mail.Mailer
	publicURL  string
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	merchants repository.MerchantRepository,
	userStore, mercStore repository.PrincipalStore,
	jwtService *auth.JWTService,
	mailer mail.Mailer,
	publicURL string,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:      users,
		merchants:  merchants,
		userStore:  userStore,
		mercStore:  mercStore,
		jwtService: jwtService,
		mailer:     mailer,
		publicURL:  publicURL,
		logger:     logger.Named("auth"),
	}
}

func (s *authService) store(kind model.PrincipalKind) repository.PrincipalStore {
	if kind == model.KindMerchant {
		return s.mercStore
	}
	return s.userStore
}

// RegisterUser creates a disabled user account and emails the activation link.
// A failed activation mail fails the registration: without the link the
// account can never be enabled.
func (s *authService) RegisterUser(ctx context.Context, username, email, password string) (*model.User, error) {
	conflicts, err := s.users.CountConflicts(ctx, username, email, 0)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if conflicts > 0 {
		return nil, apperrors.ErrPrincipalExists
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hashed,
		Role:           model.RoleUser,
		Avatar:         "NONE",
		AccountEnabled: false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendActivationMail(ctx, user.Identity(), "/accounts/activate/"); err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterMerchant creates a merchant that is both disabled and unaccepted.
func (s *authService) RegisterMerchant(ctx context.Context, merchantname, email, password, cif, address string) (*model.Merchant, error) {
	conflicts, err := s.merchants.CountConflicts(ctx, merchantname, email, 0)
	if err != nil {
		return nil, fmt.Errorf("check merchant existence: %w", err)
	}
	if conflicts > 0 {
		return nil, apperrors.ErrPrincipalExists
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	merchant := &model.Merchant{
		Merchantname:    merchantname,
		Email:           email,
		PasswordHash:    hashed,
		CIF:             cif,
		Address:         address,
		AccountEnabled:  false,
		AccountAccepted: false,
	}
	if err := s.merchants.Create(ctx, merchant); err != nil {
		return nil, fmt.Errorf("create merchant: %w", err)
	}

	if err := s.sendActivationMail(ctx, merchant.Identity(), "/merchants/activate/"); err != nil {
		return nil, err
	}
	return merchant, nil
}

func (s *authService) sendActivationMail(ctx context.Context, identity *model.Identity, activatePath string) error {
	token, err := s.jwtService.GenerateSessionToken(int64(identity.ID), identity.Kind, identity.Role)
	if err != nil {
		return fmt.Errorf("sign activation token: %w", err)
	}
	msg := mail.Message{
		To:      identity.Email,
		Subject: fmt.Sprintf("CommerceGo account activation (%s)", identity.Handle),
		Body:    "Activation link: " + s.publicURL + activatePath + token,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("activation mail failed", zap.String("email", identity.Email), zap.Error(err))
		return apperrors.ErrMailDelivery
	}
	return nil
}

// Login authenticates a principal by handle or email. Every failure mode
// returns the same error so responses never reveal whether the account exists.
func (s *authService) Login(ctx context.Context, kind model.PrincipalKind, identifier, password string) (string, *model.Identity, error) {
	store := s.store(kind)

	var identity *model.Identity
	var err error
	if strings.Contains(identifier, "@") {
		identity, err = store.FindIdentityByEmail(ctx, identifier)
	} else {
		identity, err = store.FindIdentityByHandle(ctx, identifier)
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login lookup failed", zap.Error(err))
		}
		return "", nil, apperrors.ErrInvalidLogin
	}

	if !identity.Enabled || !identity.Accepted {
		return "", nil, apperrors.ErrInvalidLogin
	}
	if !auth.CheckPassword(password, identity.PasswordHash) {
		return "", nil, apperrors.ErrInvalidLogin
	}

	token, err := s.jwtService.GenerateSessionToken(int64(identity.ID), identity.Kind, identity.Role)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return token, identity, nil
}

// Activate consumes an activation token's claims and enables the account.
// The token is single-use in effect: once accountEnabled flips, a replay hits
// the already-activated guard. Users get an auto-login token back; merchants
// get nothing until an admin accepts them.
func (s *authService) Activate(ctx context.Context, kind model.PrincipalKind, principalID int64) (string, error) {
	store := s.store(kind)

	identity, err := store.FindIdentity(ctx, uint(principalID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidToken
		}
		return "", fmt.Errorf("load principal: %w", err)
	}
	if identity.Enabled {
		return "", apperrors.ErrAlreadyActivated
	}

	if err := store.SetEnabled(ctx, identity.ID); err != nil {
		return "", fmt.Errorf("enable account: %w", err)
	}

	if kind == model.KindMerchant {
		return "", nil
	}
	token, err := s.jwtService.GenerateSessionToken(int64(identity.ID), identity.Kind, identity.Role)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// AcceptMerchant is the admin action that completes merchant onboarding.
func (s *authService) AcceptMerchant(ctx context.Context, id uint) error {
	if _, err := s.merchants.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPrincipalNotFound
		}
		return fmt.Errorf("load merchant: %w", err)
	}
	return s.merchants.UpdateFields(ctx, id, map[string]interface{}{"account_accepted": true})
}
