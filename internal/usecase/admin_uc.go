package usecase

import (
	"context"
	"errors"
	"fmt"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/ports/repository"
	"card-key-service/internal/infra/logging"
	"card-key-service/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check
var _ AdminUseCase = (*adminUC)(nil)

// AdminUseCase verifies operator logins and handles password changes.
// Admin passwords are verification-only, so they are bcrypt-hashed; they
// are never revealed, unlike card-bound account credentials.
type AdminUseCase interface {
	// Verify returns domain.ErrBadCredentials for an unknown username or a
	// wrong password; the two cases are indistinguishable to the caller.
	Verify(ctx context.Context, username, password string) error
	ChangePassword(ctx context.Context, username, current, next string) error
}

type adminUC struct {
	admins repository.AdminRepository
	log    *zerolog.Logger
}

func NewAdminUseCase(admins repository.AdminRepository, logger *zerolog.Logger) *adminUC {
	return &adminUC{admins: admins, log: logger}
}

func (u *adminUC) Verify(ctx context.Context, username, password string) error {
	defer logging.TraceDuration(u.log, "AdminUC.Verify")()

	if username == "" || password == "" {
		metrics.IncAdminLogin("denied")
		return domain.ErrBadCredentials
	}
	admin, err := u.admins.FindByUsername(ctx, repository.NoTX, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncAdminLogin("denied")
			return domain.ErrBadCredentials
		}
		metrics.IncStoreError()
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		metrics.IncAdminLogin("denied")
		return domain.ErrBadCredentials
	}
	metrics.IncAdminLogin("ok")
	return nil
}

func (u *adminUC) ChangePassword(ctx context.Context, username, current, next string) error {
	defer logging.TraceDuration(u.log, "AdminUC.ChangePassword")()

	if next == "" {
		return domain.ErrInvalidArgument
	}
	admin, err := u.admins.FindByUsername(ctx, repository.NoTX, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrBadCredentials
		}
		metrics.IncStoreError()
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)) != nil {
		return domain.ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin.PasswordHash = string(hash)
	if err := u.admins.Save(ctx, repository.NoTX, admin); err != nil {
		metrics.IncStoreError()
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	u.log.Info().Str("admin", username).Msg("admin password changed")
	return nil
}
