package repositories

import (
	"context"

	"github.com/fundlane/fundlane/internal/domain/models"
)

type UserRepository interface {
	// GetByID returns (nil, nil) when the user does not exist.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
