package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"commercego/internal/auth"
	apperrors "commercego/internal/errors"
	"commercego/internal/mail"
	"commercego/internal/model"
	"commercego/internal/repository"
)

const (
	restorationCodeLength  = 6
	restorationMaxAttempts = 5

	// dummySnapshot is the password snapshot embedded in tokens issued for
	// unknown or ineligible emails. It can never equal a bcrypt hash, so the
	// snapshot guard rejects any attempt to ride the dummy token forward.
	dummySnapshot = "dumb"
)

// RecoveryService implements the three-phase password restoration pipeline.
// Each phase's output token is the only valid credential for the next phase.
type RecoveryService interface {
	RequestRestoration(ctx context.Context, kind model.PrincipalKind, email string) (token string, err error)
	VerifyCode(ctx context.Context, claims *auth.RestorationCodeClaims, submittedCode string) (token string, err error)
	RestorePassword(ctx context.Context, claims *auth.RestorationPasswordClaims, newPassword string) error
}

type recoveryService struct {
	userStore    repository.PrincipalStore
	mercStore    repository.PrincipalStore
	restorations repository.RestorationRepository
	jwtService   *auth.JWTService
	mailer       mail.Mailer
	logger       *zap.Logger
}

// NewRecoveryService creates a new password recovery service.
func NewRecoveryService(
	userStore, mercStore repository.PrincipalStore,
	restorations repository.RestorationRepository,
	jwtService *auth.JWTService,
	mailer mail.Mailer,
	logger *zap.Logger,
) RecoveryService {
	return &recoveryService{
		userStore:    userStore,
		mercStore:    mercStore,
		restorations: restorations,
		jwtService:   jwtService,
		mailer:       mailer,
		logger:       logger.Named("recovery"),
	}
}

func (s *recoveryService) store(kind model.PrincipalKind) repository.PrincipalStore {
	if kind == model.KindMerchant {
		return s.mercStore
	}
	return s.userStore
}

// RequestRestoration starts a recovery flow for the given email. The response
// is structurally identical whether or not the email belongs to a real,
// eligible principal: unknown emails get a token built around the sentinel
// principal and the dummy snapshot. Mail delivery is best effort here; a send
// failure is logged and the request still succeeds.
func (s *recoveryService) RequestRestoration(ctx context.Context, kind model.PrincipalKind, email string) (string, error) {
	store := s.store(kind)

	principalID := auth.SentinelPrincipalID
	snapshot := dummySnapshot
	requestID := auth.SentinelPrincipalID

	identity, err := store.FindIdentityByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("look up principal: %w", err)
	}
	eligible := err == nil && identity.Enabled && identity.Accepted

	code, err := auth.GenerateCode(restorationCodeLength)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	if eligible {
		principalID = int64(identity.ID)
		snapshot = identity.PasswordHash

		msg := mail.Message{
			To:      email,
			Subject: "CommerceGo password restoration",
			Body:    "Restoration code: " + code,
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.Error("restoration mail failed", zap.String("email", email), zap.Error(err))
		}

		req := &model.RestorationRequest{
			PrincipalID: identity.ID,
			Kind:        kind,
			Attempts:    0,
		}
		if err := s.restorations.Create(ctx, req); err != nil {
			return "", fmt.Errorf("create restoration request: %w", err)
		}
		requestID = int64(req.ID)
	}

	return s.jwtService.GenerateRestorationCodeToken(principalID, kind, code, snapshot, requestID, restorationMaxAttempts)
}

// VerifyCode checks the submitted code against the phase-1 token. The attempt
// bound is checked before the code itself, so the request that pushes past the
// limit is rejected without a further increment; the request record is purged
// at that point.
func (s *recoveryService) VerifyCode(ctx context.Context, claims *auth.RestorationCodeClaims, submittedCode string) (string, error) {
	// The dummy-principal token reads as a wrong code, not as "no such account".
	if claims.PrincipalID == auth.SentinelPrincipalID {
		return "", apperrors.ErrInvalidCode
	}
	store := s.store(claims.Kind)

	req, err := s.restorations.FindByID(ctx, uint(claims.RestorationRequestID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrRestorationNotFound
		}
		return "", fmt.Errorf("load restoration request: %w", err)
	}

	if req.Attempts > claims.MaxAttempts {
		if err := s.restorations.Delete(ctx, req.ID); err != nil {
			s.logger.Error("purge restoration request failed", zap.Uint("request_id", req.ID), zap.Error(err))
		}
		return "", apperrors.ErrTooManyAttempts
	}

	identity, err := store.FindIdentity(ctx, uint(claims.PrincipalID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrRestorationNotFound
		}
		return "", fmt.Errorf("load principal: %w", err)
	}
	if identity.PasswordHash != claims.PasswordSnapshot {
		return "", apperrors.ErrRestorationUsed
	}

	if submittedCode != claims.Code {
		if err := s.restorations.UpdateAttempts(ctx, req.ID, req.Attempts+1); err != nil {
			s.logger.Error("increment attempts failed", zap.Uint("request_id", req.ID), zap.Error(err))
		}
		return "", apperrors.ErrInvalidCode
	}

	return s.jwtService.GenerateRestorationPasswordToken(claims.PrincipalID, claims.Kind, claims.PasswordSnapshot, claims.RestorationRequestID)
}

// RestorePassword finalizes the flow: the snapshot guard makes the phase-2
// token single-use, the new password is hashed and persisted, and the
// restoration record is deleted.
func (s *recoveryService) RestorePassword(ctx context.Context, claims *auth.RestorationPasswordClaims, newPassword string) error {
	store := s.store(claims.Kind)

	identity, err := store.FindIdentity(ctx, uint(claims.PrincipalID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRestorationNotFound
		}
		return fmt.Errorf("load principal: %w", err)
	}
	if identity.PasswordHash != claims.PasswordSnapshot {
		return apperrors.ErrRestorationUsed
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := store.UpdatePassword(ctx, identity.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// The password change already committed; a failed cleanup only leaves a
	// dangling counter row behind.
	if err := s.restorations.Delete(ctx, uint(claims.RestorationRequestID)); err != nil {
		s.logger.Error("delete restoration request failed", zap.Int64("request_id", claims.RestorationRequestID), zap.Error(err))
	}
	return nil
}
