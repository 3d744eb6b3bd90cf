package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fundlane/fundlane/internal/domain/models"
	"github.com/fundlane/fundlane/internal/domain/repositories"
	apperrors "github.com/fundlane/fundlane/internal/errors"
	"github.com/fundlane/fundlane/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type CampaignRepositoryImpl struct {
	db     *pgxpool.Pool
	logger *zerolog.Logger
}

func NewCampaignRepositoryImpl(db *pgxpool.Pool) repositories.CampaignRepository {
	l := log.GetLogger()
	return &CampaignRepositoryImpl{db: db, logger: &l}
}

const campaignColumns = `
	c.id, c.creator_id, c.title, c.description, c.category, c.type_of_campaign,
	c.funding_type, c.goal_amount, c.raised_amount, c.backers_count, c.status,
	COALESCE(c.location, ''), c.deadline,
	c.valuation, c.equity_offered, c.minimum_investment,
	c.interest_rate, c.loan_term_months, COALESCE(c.repayment_schedule, ''),
	(SELECT COUNT(*) FROM campaign_likes l WHERE l.campaign_id = c.id) AS total_likes,
	c.created_at, c.updated_at`

type campaignScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row campaignScanner) (*models.Campaign, error) {
	c := &models.Campaign{}
	var fundingType models.FundingType
	var valuation, equityOffered, minimumInvestment, interestRate decimal.NullDecimal
	var loanTermMonths *int
	var repaymentSchedule string

	err := row.Scan(
		&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.Category, &c.TypeOfCampaign,
		&fundingType, &c.GoalAmount, &c.RaisedAmount, &c.BackersCount, &c.Status,
		&c.Location, &c.Deadline,
		&valuation, &equityOffered, &minimumInvestment,
		&interestRate, &loanTermMonths, &repaymentSchedule,
		&c.TotalLikes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Funding = models.FundingDetails{Type: fundingType}
	switch fundingType {
	case models.FundingEquity:
		c.Funding.Equity = &models.EquityTerms{
			Valuation:         valuation.Decimal,
			EquityOffered:     equityOffered.Decimal,
			MinimumInvestment: minimumInvestment.Decimal,
		}
	case models.FundingDebt:
		terms := &models.DebtTerms{
			InterestRate:      interestRate.Decimal,
			RepaymentSchedule: repaymentSchedule,
		}
		if loanTermMonths != nil {
			terms.LoanTermMonths = *loanTermMonths
		}
		c.Funding.Debt = terms
	}

	return c, nil
}

func (r *CampaignRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM campaigns c WHERE c.id = $1", campaignColumns), id)

	campaign, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if campaign.Funding.Type == models.FundingReward {
		if campaign.Funding.Rewards, err = r.loadRewards(ctx, id); err != nil {
			return nil, err
		}
	}
	if campaign.Media, err = r.loadMedia(ctx, id); err != nil {
		return nil, err
	}

	return campaign, nil
}

func (r *CampaignRepositoryImpl) loadRewards(ctx context.Context, campaignID string) ([]models.RewardTier, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, amount, title, COALESCE(description, ''), delivery_date
		 FROM campaign_rewards WHERE campaign_id = $1 ORDER BY amount ASC`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make([]models.RewardTier, 0)
	for rows.Next() {
		var tier models.RewardTier
		if err = rows.Scan(&tier.ID, &tier.Amount, &tier.Title, &tier.Description, &tier.DeliveryDate); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}

	return tiers, rows.Err()
}

func (r *CampaignRepositoryImpl) loadMedia(ctx context.Context, campaignID string) ([]models.CampaignMedia, error) {
	rows, err := r.db.Query(
		ctx,
		"SELECT id, kind, url FROM campaign_media WHERE campaign_id = $1 ORDER BY id",
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	media := make([]models.CampaignMedia, 0)
	for rows.Next() {
		var m models.CampaignMedia
		if err = rows.Scan(&m.ID, &m.Kind, &m.URL); err != nil {
			return nil, err
		}
		media = append(media, m)
	}

	return media, rows.Err()
}

var allowedSortColumns = map[string]string{
	"created_at":    "c.created_at",
	"goal_amount":   "c.goal_amount",
	"raised_amount": "c.raised_amount",
	"deadline":      "c.deadline",
	"total_likes":   "total_likes",
}

func (r *CampaignRepositoryImpl) List(ctx context.Context, filters repositories.CampaignFilters) ([]models.Campaign, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)

	addFilter := func(clause, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	addFilter("c.category = $%d", filters.Category)
	addFilter("c.status = $%d", filters.Status)
	addFilter("c.type_of_campaign = $%d", filters.TypeOfCampaign)
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where = append(where, fmt.Sprintf("(c.title ILIKE $%d OR c.description ILIKE $%d)", len(args), len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM campaigns c", campaignColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	sortColumn, ok := allowedSortColumns[filters.SortBy]
	if !ok {
		sortColumn = "c.created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filters.SortOrder, "ASC") {
		sortOrder = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortColumn, sortOrder)

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]models.Campaign, 0)
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *campaign)
	}

	return campaigns, rows.Err()
}

func (r *CampaignRepositoryImpl) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var valuation, equityOffered, minimumInvestment, interestRate *decimal.Decimal
	var loanTermMonths *int
	var repaymentSchedule *string
	if eq := campaign.Funding.Equity; eq != nil {
		valuation, equityOffered, minimumInvestment = &eq.Valuation, &eq.EquityOffered, &eq.MinimumInvestment
	}
	if dt := campaign.Funding.Debt; dt != nil {
		interestRate = &dt.InterestRate
		loanTermMonths = &dt.LoanTermMonths
		repaymentSchedule = &dt.RepaymentSchedule
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO campaigns (
		   id, creator_id, title, description, category, type_of_campaign, funding_type,
		   goal_amount, raised_amount, backers_count, status, location, deadline,
		   valuation, equity_offered, minimum_investment, interest_rate, loan_term_months, repayment_schedule,
		   created_at, updated_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, 'active', $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		campaign.ID, campaign.CreatorID, campaign.Title, campaign.Description,
		campaign.Category, campaign.TypeOfCampaign, campaign.Funding.Type,
		campaign.GoalAmount, campaign.Location, campaign.Deadline,
		valuation, equityOffered, minimumInvestment,
		interestRate, loanTermMonths, repaymentSchedule,
	).Scan(&campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	for i := range campaign.Funding.Rewards {
		tier := &campaign.Funding.Rewards[i]
		if tier.ID == "" {
			tier.ID = uuid.New().String()
		}
		_, err = tx.Exec(
			ctx,
			`INSERT INTO campaign_rewards (id, campaign_id, amount, title, description, delivery_date)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			tier.ID, campaign.ID, tier.Amount, tier.Title, tier.Description, tier.DeliveryDate,
		)
		if err != nil {
			return fmt.Errorf("insert reward tier: %w", err)
		}
	}

	for i := range campaign.Media {
		m := &campaign.Media[i]
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		_, err = tx.Exec(
			ctx,
			"INSERT INTO campaign_media (id, campaign_id, kind, url) VALUES ($1, $2, $3, $4)",
			m.ID, campaign.ID, m.Kind, m.URL,
		)
		if err != nil {
			return fmt.Errorf("insert campaign media: %w", err)
		}
	}

	campaign.Status = models.CampaignStatusActive
	campaign.RaisedAmount = decimal.Zero
	campaign.BackersCount = 0
	return tx.Commit(ctx)
}

// Update mutates only the allow-listed fields. raised_amount, backers_count
// and the funding terms are not reachable from here.
func (r *CampaignRepositoryImpl) Update(ctx context.Context, id string, update repositories.CampaignUpdate) (*models.Campaign, error) {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		addSet("title", *update.Title)
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.GoalAmount != nil {
		addSet("goal_amount", *update.GoalAmount)
	}
	if update.Location != nil {
		addSet("location", *update.Location)
	}
	if update.Status != nil {
		addSet("status", *update.Status)
	}

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	set = append(set, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE campaigns SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update campaign %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.NewNotFoundError("campaign")
	}

	return r.GetByID(ctx, id)
}

// Delete removes a campaign with all dependent rows in one transaction so a
// failure midway leaves no orphans.
func (r *CampaignRepositoryImpl) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	dependents := []string{
		"DELETE FROM campaign_rewards WHERE campaign_id = $1",
		"DELETE FROM campaign_likes WHERE campaign_id = $1",
		"DELETE FROM campaign_comments WHERE campaign_id = $1",
		"DELETE FROM campaign_media WHERE campaign_id = $1",
		"DELETE FROM transactions WHERE campaign_id = $1",
		"DELETE FROM payment_orders WHERE campaign_id = $1",
	}
	for _, stmt := range dependents {
		if _, err = tx.Exec(ctx, stmt, id); err != nil {
			return fmt.Errorf("cascade delete campaign %s: %w", id, err)
		}
	}

	tag, err := tx.Exec(ctx, "DELETE FROM campaigns WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete campaign %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("campaign")
	}

	return tx.Commit(ctx)
}

// ToggleLike inserts against the unique (campaign_id, user_id) constraint; a
// conflict means the like already exists and the toggle becomes a delete.
func (r *CampaignRepositoryImpl) ToggleLike(ctx context.Context, campaignID, userID string) (bool, int, error) {
	tag, err := r.db.Exec(
		ctx,
		`INSERT INTO campaign_likes (campaign_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (campaign_id, user_id) DO NOTHING`,
		campaignID, userID,
	)
	if err != nil {
		return false, 0, err
	}

	liked := tag.RowsAffected() > 0
	if !liked {
		if _, err = r.db.Exec(
			ctx,
			"DELETE FROM campaign_likes WHERE campaign_id = $1 AND user_id = $2",
			campaignID, userID,
		); err != nil {
			return false, 0, err
		}
	}

	var total int
	err = r.db.QueryRow(ctx, "SELECT COUNT(*) FROM campaign_likes WHERE campaign_id = $1", campaignID).Scan(&total)
	return liked, total, err
}

func (r *CampaignRepositoryImpl) AddComment(ctx context.Context, campaignID, userID, comment string) (*models.Comment, error) {
	c := &models.Comment{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		UserID:     userID,
		Comment:    comment,
	}
	err := r.db.QueryRow(
		ctx,
		`INSERT INTO campaign_comments (id, campaign_id, user_id, comment, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING created_at`,
		c.ID, c.CampaignID, c.UserID, c.Comment,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (r *CampaignRepositoryImpl) ListComments(ctx context.Context, campaignID string, limit, offset int) ([]models.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := r.db.Query(
		ctx,
		`SELECT id, campaign_id, user_id, comment, created_at
		 FROM campaign_comments
		 WHERE campaign_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		campaignID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err = rows.Scan(&c.ID, &c.CampaignID, &c.UserID, &c.Comment, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// reconcileQuery recomputes every campaign's totals from the ledger and
// overwrites the live aggregate where it drifted. The ledger wins, never the
// aggregate.
const reconcileQuery = `
WITH ledger AS (
  SELECT c.id AS campaign_id,
         c.raised_amount AS live_raised,
         c.backers_count AS live_backers,
         COALESCE(SUM(t.amount), 0) AS ledger_raised,
         COUNT(t.id) AS ledger_backers
  FROM campaigns c
  LEFT JOIN transactions t ON t.campaign_id = c.id AND t.status = 'completed'
  GROUP BY c.id, c.raised_amount, c.backers_count
),
drifted AS (
  SELECT * FROM ledger
  WHERE live_raised <> ledger_raised OR live_backers <> ledger_backers
),
corrected AS (
  UPDATE campaigns c
  SET raised_amount = d.ledger_raised,
      backers_count = d.ledger_backers,
      updated_at = NOW()
  FROM drifted d
  WHERE c.id = d.campaign_id
  RETURNING c.id
)
SELECT d.campaign_id, d.live_raised, d.live_backers, d.ledger_raised, d.ledger_backers
FROM drifted d;`

func (r *CampaignRepositoryImpl) ReconcileAggregates(ctx context.Context) ([]repositories.ReconcileRow, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, reconcileQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drifted := make([]repositories.ReconcileRow, 0)
	for rows.Next() {
		var row repositories.ReconcileRow
		if err = rows.Scan(&row.CampaignID, &row.LiveRaised, &row.LiveBackers, &row.LedgerRaised, &row.LedgerBackers); err != nil {
			return nil, err
		}
		drifted = append(drifted, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return drifted, tx.Commit(ctx)
}
