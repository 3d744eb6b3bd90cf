package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/fundlane/fundlane/internal/domain/repositories"
	apperrors "github.com/fundlane/fundlane/internal/errors"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type LedgerRepositoryImpl struct {
	db     *pgxpool.Pool
	logger *zerolog.Logger
}

func NewLedgerRepositoryImpl(db *pgxpool.Pool) repositories.LedgerRepository {
	l := log.GetLogger()
	return &LedgerRepositoryImpl{db: db, logger: &l}
}

// settleQuery transitions the order, appends the ledger entry and bumps the
// campaign aggregate in a single statement. If the order is not in created
// state the first CTE matches nothing and the whole statement yields no rows.
// The funded advancement is monotonic: only active campaigns move to funded.
const settleQuery = `
WITH paid_order AS (
  UPDATE payment_orders
  SET payment_id = $2, status = 'paid', verified_at = NOW(), updated_at = NOW()
  WHERE order_id = $1 AND user_id = $3 AND status = 'created'
  RETURNING order_id, user_id, campaign_id
),
new_transaction AS (
  INSERT INTO transactions (id, order_id, payment_id, user_id, campaign_id, amount, funding_type, status, created_at)
  SELECT $6, po.order_id, $2, po.user_id, po.campaign_id, $4::NUMERIC(14,2), $5, 'completed', NOW()
  FROM paid_order po
  RETURNING id, order_id, payment_id, user_id, campaign_id, amount, funding_type, status, created_at
),
updated_campaign AS (
  UPDATE campaigns c
  SET raised_amount = c.raised_amount + nt.amount,
      backers_count = c.backers_count + 1,
      status = CASE
                 WHEN c.status = 'active' AND c.raised_amount + nt.amount >= c.goal_amount THEN 'funded'
                 ELSE c.status
               END,
      updated_at = NOW()
  FROM new_transaction nt
  WHERE c.id = nt.campaign_id
  RETURNING c.id, c.raised_amount, c.backers_count, c.status
)
SELECT nt.id, nt.order_id, nt.payment_id, nt.user_id, nt.campaign_id, nt.amount, nt.funding_type, nt.status, nt.created_at,
       uc.raised_amount, uc.backers_count, uc.status
FROM new_transaction nt, updated_campaign uc;`

// Settle executes the settlement unit of work, retrying serialization
// failures and mapping the order-id unique violation to DuplicateOrderError.
func (r *LedgerRepositoryImpl) Settle(ctx context.Context, params repositories.SettleParams) (repositories.SettleRow, error) {
	args := []interface{}{
		params.OrderID,
		params.PaymentID,
		params.UserID,
		params.Amount,
		params.FundingType,
		uuid.New().String(),
	}

	var row repositories.SettleRow
	var pgErr *pgconn.PgError
	for {
		tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
		if err != nil {
			return row, err
		}

		err = tx.QueryRow(ctx, settleQuery, args...).Scan(
			&row.Transaction.ID,
			&row.Transaction.OrderID,
			&row.Transaction.PaymentID,
			&row.Transaction.UserID,
			&row.Transaction.CampaignID,
			&row.Transaction.Amount,
			&row.Transaction.FundingType,
			&row.Transaction.Status,
			&row.Transaction.CreatedAt,
			&row.CampaignRaised,
			&row.CampaignBackers,
			&row.CampaignStatus,
		)
		if err != nil {
			tx.Rollback(ctx)
		} else {
			if err = tx.Commit(ctx); err == nil {
				return row, nil
			}
			r.logger.Error().Err(err).Str("order_id", params.OrderID).Msg("settlement commit failed")
			tx.Rollback(ctx)
		}

		if isSerializationError(err) {
			// retry transaction if serialization error occurs (SQLSTATE 40001)
			continue
		}
		if errors.Is(err, pgx.ErrNoRows) {
			// the order left the created state between our read and this
			// write: a concurrent callback won the race
			return row, apperrors.NewAlreadySettledError(params.OrderID)
		}
		if errors.As(err, &pgErr) && pgErr.SQLState() == repositories.UniqueViolationError {
			return row, apperrors.NewDuplicateOrderError(params.OrderID)
		}
		return row, fmt.Errorf("settle order %s: %w", params.OrderID, err)
	}
}

func (r *LedgerRepositoryImpl) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := r.db.QueryRow(
		ctx,
		`SELECT id, order_id, payment_id, user_id, campaign_id, amount, funding_type, status, created_at
		 FROM transactions WHERE order_id = $1`,
		orderID,
	).Scan(&t.ID, &t.OrderID, &t.PaymentID, &t.UserID, &t.CampaignID, &t.Amount, &t.FundingType, &t.Status, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return t, nil
}

func (r *LedgerRepositoryImpl) ListByCampaign(ctx context.Context, campaignID string) ([]repositories.CampaignTransactionRow, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT t.id, t.order_id, t.payment_id, t.user_id, t.campaign_id, t.amount, t.funding_type, t.status, t.created_at,
		        COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.email, '')
		 FROM transactions t
		 LEFT JOIN users u ON t.user_id = u.id
		 WHERE t.campaign_id = $1 AND t.status = 'completed'
		 ORDER BY t.created_at DESC`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]repositories.CampaignTransactionRow, 0)
	for rows.Next() {
		var row repositories.CampaignTransactionRow
		err = rows.Scan(
			&row.ID, &row.OrderID, &row.PaymentID, &row.UserID, &row.CampaignID,
			&row.Amount, &row.FundingType, &row.Status, &row.CreatedAt,
			&row.BackerFirstName, &row.BackerLastName, &row.BackerEmail,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func (r *LedgerRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]repositories.UserTransactionRow, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT t.id, t.order_id, t.payment_id, t.user_id, t.campaign_id, t.amount, t.funding_type, t.status, t.created_at,
		        COALESCE(c.title, ''), COALESCE(c.category, ''), COALESCE(c.type_of_campaign, '')
		 FROM transactions t
		 LEFT JOIN campaigns c ON t.campaign_id = c.id
		 WHERE t.user_id = $1 AND t.status = 'completed'
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]repositories.UserTransactionRow, 0)
	for rows.Next() {
		var row repositories.UserTransactionRow
		err = rows.Scan(
			&row.ID, &row.OrderID, &row.PaymentID, &row.UserID, &row.CampaignID,
			&row.Amount, &row.FundingType, &row.Status, &row.CreatedAt,
			&row.CampaignTitle, &row.CampaignCategory, &row.CampaignType,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

func (r *LedgerRepositoryImpl) SumByCampaign(ctx context.Context, campaignID string) (repositories.LedgerTotals, error) {
	var totals repositories.LedgerTotals
	err := r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*)
		 FROM transactions
		 WHERE campaign_id = $1 AND status = 'completed'`,
		campaignID,
	).Scan(&totals.TotalRaised, &totals.TotalBackers)

	return totals, err
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == repositories.SerializationError
}
