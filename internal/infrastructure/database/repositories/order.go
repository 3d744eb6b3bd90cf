package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/fundlane/fundlane/internal/domain/repositories"
	apperrors "github.com/fundlane/fundlane/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewOrderRepositoryImpl(db *pgxpool.Pool) repositories.OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, order *models.Order) error {
	err := r.db.QueryRow(
		ctx,
		`INSERT INTO payment_orders (order_id, user_id, campaign_id, amount, currency, funding_type, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 'created', NOW(), NOW())
		 RETURNING created_at, updated_at`,
		order.OrderID,
		order.UserID,
		order.CampaignID,
		order.AmountMinor,
		order.Currency,
		order.FundingType,
	).Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.SQLState() {
			case repositories.UniqueViolationError:
				return apperrors.NewDuplicateOrderError(order.OrderID)
			case repositories.ForeignKeyViolationError:
				return apperrors.NewNotFoundError("campaign")
			}
		}
		return fmt.Errorf("insert order %s: %w", order.OrderID, err)
	}

	order.Status = models.OrderStatusCreated
	return nil
}

func (r *OrderRepositoryImpl) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	order := &models.Order{}
	err := r.db.QueryRow(
		ctx,
		`SELECT order_id, user_id, campaign_id, amount, currency, funding_type, status, payment_id, verified_at, created_at, updated_at
		 FROM payment_orders WHERE order_id = $1`,
		orderID,
	).Scan(
		&order.OrderID,
		&order.UserID,
		&order.CampaignID,
		&order.AmountMinor,
		&order.Currency,
		&order.FundingType,
		&order.Status,
		&order.PaymentID,
		&order.VerifiedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return order, nil
}

// ExpireStale fails created orders whose confirmation never arrived. Paid and
// failed orders are terminal and never touched.
func (r *OrderRepositoryImpl) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE payment_orders
		 SET status = 'failed', updated_at = NOW()
		 WHERE status = 'created' AND created_at < NOW() - $1::INTERVAL`,
		fmt.Sprintf("%d seconds", int64(olderThan.Seconds())),
	)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
