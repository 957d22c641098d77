package repository

import (
	"context"

	"card-key-service/internal/domain/model"
)

// AdminRepository is the port for admin credentials.
type AdminRepository interface {
	// FindByUsername returns the admin, or domain.ErrNotFound.
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.Admin, error)
	// Save creates or overwrites an admin record.
	Save(ctx context.Context, tx Tx, admin *model.Admin) error
}
