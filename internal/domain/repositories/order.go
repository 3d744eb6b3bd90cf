package repositories

import (
	"context"
	"time"

	"github.com/fundlane/fundlane/internal/domain/models"
)

const (
	SerializationError       = "40001"
	UniqueViolationError     = "23505"
	ForeignKeyViolationError = "23503"
)

type OrderRepository interface {
	// Create inserts the order with status created. The order id is the
	// provider-issued id and is unique.
	Create(ctx context.Context, order *models.Order) error
	// GetByOrderID returns (nil, nil) when no such order exists.
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	// ExpireStale moves created orders older than olderThan to failed and
	// returns how many were swept. Paid and failed orders are untouched.
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
