package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/deikas123/thefoodbasket-sub001/internal/audit"
	"github.com/deikas123/thefoodbasket-sub001/internal/config"
	"github.com/deikas123/thefoodbasket-sub001/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RewardsService exposes the mutating loyalty operations. Every operation
// reads the active settings once, computes its point delta, and writes
// ledger entries atomically with the account projection.
type RewardsService struct {
	db       *sql.DB
	redis    *redis.Client
	ledger   *LedgerService
	settings *SettingsService
	audit    *audit.Logger
	config   *config.LoyaltyConfig
}

// AwardResult is returned by the earn operations.
type AwardResult struct {
	Account       *models.Account     `json:"account"`
	PointsAwarded int64               `json:"points_awarded"`
	Entry         *models.LedgerEntry `json:"entry,omitempty"`
}

type redemptionEvent struct {
	RedemptionID  string    `json:"redemption_id"`
	AccountID     string    `json:"account_id"`
	Points        int64     `json:"points"`
	CurrencyValue float64   `json:"currency_value"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewRewardsService(db *sql.DB, redisClient *redis.Client, ledger *LedgerService, settings *SettingsService, cfg *config.LoyaltyConfig) *RewardsService {
	return &RewardsService{
		db:       db,
		redis:    redisClient,
		ledger:   ledger,
		settings: settings,
		audit:    audit.NewLogger(),
		config:   cfg,
	}
}

// GetAccount returns the projected account state with its derived tier.
func (s *RewardsService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	cfg, err := s.settings.Active(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	tier := ResolveTier(account.LifetimePointsEarned, cfg)
	account.Tier = &tier
	return account, nil
}

// ListEntries pages the account's ledger, most recent first.
func (s *RewardsService) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]models.LedgerEntry, error) {
	return s.ledger.ListEntries(ctx, accountID, limit, offset)
}

// AwardPurchase credits tier-multiplied points for a paid order. Calling
// it twice with the same order id fails with ErrDuplicateAward. Purchases
// whose rounded award is zero are a no-op. On the referred account's
// first awarded purchase the referrer receives the fixed purchase bonus
// and the referral completes, in the same transaction.
func (s *RewardsService) AwardPurchase(ctx context.Context, accountID string, purchaseAmount float64, orderID string) (*AwardResult, error) {
	if purchaseAmount < 0 {
		return nil, fmt.Errorf("negative purchase amount: %w", ErrInvalidDelta)
	}

	cfg, err := s.settings.Active(ctx)
	if err != nil {
		return nil, err
	}

	var result *AwardResult
	err = s.withRetry(ctx, func() error {
		var txErr error
		result, txErr = s.awardPurchaseTx(ctx, cfg, accountID, purchaseAmount, orderID)
		return txErr
	})
	if err != nil {
		s.audit.LogError(accountID, "AWARD_PURCHASE", err)
		return nil, err
	}

	if result.Entry != nil {
		s.audit.LogEntry(result.Entry.EntryID, accountID, models.SourcePurchase, result.PointsAwarded)
	}
	log.Printf("[REWARDS] AwardPurchase - account: %s, order: %s, awarded: %d, balance: %d",
		accountID, orderID, result.PointsAwarded, result.Account.PointsBalance)
	return result, nil
}

func (s *RewardsService) awardPurchaseTx(ctx context.Context, cfg *models.Settings, accountID string, purchaseAmount float64, orderID string) (*AwardResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM ledger_entries
			WHERE related_order_id = $1 AND source = $2 AND kind = $3
		)`, orderID, models.SourcePurchase, models.KindEarned).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrDuplicateAward)
	}

	// The referrer lock must be decided before any row lock is taken so
	// the pair is always acquired in sorted order.
	referrerID, referralID, err := s.pendingReferralFor(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	var account, referrer *models.Account
	if referrerID != "" {
		account, referrer, err = s.ledger.lockAccountPair(ctx, tx, accountID, referrerID)
	} else {
		account, err = s.ledger.lockAccount(ctx, tx, accountID)
	}
	if err != nil {
		return nil, err
	}

	base := int64(math.Floor(purchaseAmount * cfg.PointsPerCurrencyUnit))
	tier := ResolveTier(account.LifetimePointsEarned, cfg)
	awarded := MultiplyPoints(base, tier.Multiplier)

	if awarded <= 0 {
		// Below the rounding threshold: no entry, unchanged account.
		account.Tier = &tier
		return &AwardResult{Account: account, PointsAwarded: 0}, nil
	}

	orderRef := orderID
	entry, err := s.ledger.appendEntryTx(ctx, tx, account, awarded, models.KindEarned, models.SourcePurchase,
		fmt.Sprintf("Purchase of %.2f at %s tier (x%.2f)", purchaseAmount, tier.Name, tier.Multiplier), &orderRef, true)
	if err != nil {
		return nil, err
	}

	if referrer != nil {
		if cfg.ReferralPurchaseBonus > 0 {
			if _, err := s.ledger.appendEntryTx(ctx, tx, referrer, cfg.ReferralPurchaseBonus,
				models.KindEarned, models.SourceReferralPurchase,
				fmt.Sprintf("Referral purchase bonus for %s", accountID), &orderRef, true); err != nil {
				return nil, err
			}
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE referrals SET status = $1, completed_at = NOW()
			WHERE referral_id = $2`, models.ReferralCompleted, referralID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	newTier := ResolveTier(account.LifetimePointsEarned, cfg)
	account.Tier = &newTier
	return &AwardResult{Account: account, PointsAwarded: awarded, Entry: entry}, nil
}

// pendingReferralFor reports the referrer awaiting a purchase bonus for
// the account, if any.
func (s *RewardsService) pendingReferralFor(ctx context.Context, tx *sql.Tx, accountID string) (referrerID, referralID string, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT referrer_account_id, referral_id FROM referrals
		WHERE referred_account_id = $1 AND status = $2`,
		accountID, models.ReferralPending).Scan(&referrerID, &referralID)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return referrerID, referralID, nil
}

// AwardReview credits a flat number of points for a product review. The
// tier multiplier does not apply.
func (s *RewardsService) AwardReview(ctx context.Context, accountID string, points int64) (*AwardResult, error) {
	if points <= 0 {
		return nil, ErrInvalidDelta
	}

	var entry *models.LedgerEntry
	var account *models.Account
	err := s.withRetry(ctx, func() error {
		var txErr error
		entry, account, txErr = s.ledger.Append(ctx, accountID, points, models.KindEarned, models.SourceReview, "Product review bonus", nil)
		return txErr
	})
	if err != nil {
		s.audit.LogError(accountID, "AWARD_REVIEW", err)
		return nil, err
	}

	s.audit.LogEntry(entry.EntryID, accountID, models.SourceReview, points)
	log.Printf("[REWARDS] AwardReview - account: %s, awarded: %d, balance: %d", accountID, points, account.PointsBalance)
	return &AwardResult{Account: account, PointsAwarded: points, Entry: entry}, nil
}

// Redeem converts points into currency value at the configured rate. The
// deduction and the redemption record commit together; the caller (the
// wallet collaborator) performs the actual credit and calls
// CompensateRedemption on its own failure.
func (s *RewardsService) Redeem(ctx context.Context, accountID string, points int64) (*models.Redemption, error) {
	if points <= 0 {
		return nil, ErrInvalidDelta
	}

	cfg, err := s.settings.Active(ctx)
	if err != nil {
		return nil, err
	}

	if points < cfg.MinRedemptionPoints {
		return nil, fmt.Errorf("minimum is %d points: %w", cfg.MinRedemptionPoints, ErrBelowMinimumRedemption)
	}

	var redemption *models.Redemption
	err = s.withRetry(ctx, func() error {
		var txErr error
		redemption, txErr = s.redeemTx(ctx, cfg, accountID, points)
		return txErr
	})
	if err != nil {
		s.audit.LogError(accountID, "REDEEM", err)
		return nil, err
	}

	s.queueRedemptionEvent(ctx, redemption)

	log.Printf("[REWARDS] Redeem - account: %s, points: %d, value: %.2f", accountID, points, redemption.CurrencyValue)
	return redemption, nil
}

func (s *RewardsService) redeemTx(ctx context.Context, cfg *models.Settings, accountID string, points int64) (*models.Redemption, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	account, err := s.ledger.lockAccount(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if points > account.PointsBalance {
		return nil, fmt.Errorf("balance %d, requested %d: %w", account.PointsBalance, points, ErrInsufficientBalance)
	}

	redemption := &models.Redemption{
		RedemptionID:   uuid.NewString(),
		AccountID:      accountID,
		PointsRedeemed: points,
		CurrencyValue:  float64(points) * cfg.CurrencyValuePerPoint,
		Status:         models.RedemptionCompleted,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	entry, err := s.ledger.appendEntryTx(ctx, tx, account, -points, models.KindSpent, models.SourceRedemption,
		fmt.Sprintf("Redeemed %d points for %.2f", points, redemption.CurrencyValue), nil, true)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO redemptions (redemption_id, account_id, points_redeemed, currency_value, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		redemption.RedemptionID, redemption.AccountID, redemption.PointsRedeemed,
		redemption.CurrencyValue, redemption.Status, redemption.CreatedAt, redemption.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.audit.LogEntry(entry.EntryID, accountID, models.SourceRedemption, -points)
	return redemption, nil
}

// CompensateRedemption reverses a completed redemption after the wallet
// collaborator reports a failed currency credit. The reversing entry
// restores the balance without touching lifetime earned; the redemption
// moves to cancelled. Already-cancelled redemptions are returned as-is.
func (s *RewardsService) CompensateRedemption(ctx context.Context, redemptionID string) (*models.Redemption, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var redemption models.Redemption
	err = tx.QueryRowContext(ctx, `
		SELECT redemption_id, account_id, points_redeemed, currency_value, status, created_at, updated_at
		FROM redemptions
		WHERE redemption_id = $1
		FOR UPDATE`, redemptionID).Scan(
		&redemption.RedemptionID, &redemption.AccountID, &redemption.PointsRedeemed,
		&redemption.CurrencyValue, &redemption.Status, &redemption.CreatedAt, &redemption.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRedemptionNotFound
	}
	if err != nil {
		return nil, err
	}

	if redemption.Status == models.RedemptionCancelled {
		return &redemption, nil
	}

	account, err := s.ledger.lockAccount(ctx, tx, redemption.AccountID)
	if err != nil {
		return nil, err
	}

	// Reversal restores balance only: it is a refund, not new earning.
	entry, err := s.ledger.appendEntryTx(ctx, tx, account, redemption.PointsRedeemed,
		models.KindEarned, models.SourceRedemption,
		fmt.Sprintf("Reversal of redemption %s after settlement failure", redemptionID), nil, false)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE redemptions SET status = $1, updated_at = NOW()
		WHERE redemption_id = $2`, models.RedemptionCancelled, redemptionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	redemption.Status = models.RedemptionCancelled
	s.audit.LogEntry(entry.EntryID, redemption.AccountID, models.SourceRedemption, redemption.PointsRedeemed)
	log.Printf("[REWARDS] CompensateRedemption - redemption: %s, account: %s, restored: %d",
		redemptionID, redemption.AccountID, redemption.PointsRedeemed)
	return &redemption, nil
}

// AdjustPoints applies an admin correction. Deductions cannot exceed the
// current balance. The tier multiplier does not apply.
func (s *RewardsService) AdjustPoints(ctx context.Context, accountID string, points int64, reason string, isDeduction bool) (*AwardResult, error) {
	if points <= 0 {
		return nil, ErrInvalidDelta
	}

	delta := points
	kind := models.KindEarned
	if isDeduction {
		delta = -points
		kind = models.KindSpent
	}

	var entry *models.LedgerEntry
	var account *models.Account
	err := s.withRetry(ctx, func() error {
		var txErr error
		entry, account, txErr = s.ledger.Append(ctx, accountID, delta, kind, models.SourceAdminAdjustment, reason, nil)
		return txErr
	})
	if err != nil {
		s.audit.LogError(accountID, "ADJUST_POINTS", err)
		return nil, err
	}

	s.audit.LogEntry(entry.EntryID, accountID, models.SourceAdminAdjustment, delta)
	log.Printf("[ADMIN] AdjustPoints - account: %s, delta: %d, reason: %s", accountID, delta, reason)
	return &AwardResult{Account: account, PointsAwarded: delta, Entry: entry}, nil
}

// ExpireSweep zeroes the balance of every account inactive beyond the
// configured window. Each account is re-checked under its own row lock,
// so a concurrent earn or redeem cannot race past the staleness check.
// Returns the number of accounts expired.
func (s *RewardsService) ExpireSweep(ctx context.Context, now time.Time) (int, error) {
	cfg, err := s.settings.Active(ctx)
	if err != nil {
		return 0, err
	}
	if cfg.PointsExpirationDays <= 0 {
		return 0, nil
	}

	cutoff := now.AddDate(0, 0, -cfg.PointsExpirationDays)
	expired := 0

	for {
		ids, err := s.staleAccounts(ctx, cutoff, s.config.SweepBatchSize)
		if err != nil {
			return expired, err
		}
		if len(ids) == 0 {
			break
		}

		for _, accountID := range ids {
			var didExpire bool
			err := s.withRetry(ctx, func() error {
				var txErr error
				didExpire, txErr = s.expireAccountTx(ctx, accountID, cutoff)
				return txErr
			})
			if err != nil {
				s.audit.LogError(accountID, "EXPIRE_SWEEP", err)
				return expired, err
			}
			if didExpire {
				expired++
			}
		}
	}

	log.Printf("[SWEEP] ExpireSweep - expired %d accounts (cutoff %s)", expired, cutoff.Format(time.RFC3339))
	return expired, nil
}

func (s *RewardsService) staleAccounts(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id FROM loyalty_accounts
		WHERE points_balance > 0 AND last_activity_at <= $1
		ORDER BY account_id
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *RewardsService) expireAccountTx(ctx context.Context, accountID string, cutoff time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	account, err := s.ledger.lockAccount(ctx, tx, accountID)
	if err != nil {
		return false, err
	}

	// Re-check under lock: an earn or redeem may have landed since the
	// candidate scan.
	if account.PointsBalance <= 0 || account.LastActivityAt.After(cutoff) {
		return false, nil
	}

	entry, err := s.ledger.appendEntryTx(ctx, tx, account, -account.PointsBalance,
		models.KindSpent, models.SourceExpiration,
		fmt.Sprintf("Points expired, account inactive since %s", account.LastActivityAt.Format("2006-01-02")), nil, true)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	s.audit.LogEntry(entry.EntryID, accountID, models.SourceExpiration, entry.Delta)
	return true, nil
}

// queueRedemptionEvent notifies the wallet collaborator after commit. A
// queue failure never invalidates the redemption; the wallet can also
// poll.
func (s *RewardsService) queueRedemptionEvent(ctx context.Context, redemption *models.Redemption) {
	if s.redis == nil {
		return
	}

	event := redemptionEvent{
		RedemptionID:  redemption.RedemptionID,
		AccountID:     redemption.AccountID,
		Points:        redemption.PointsRedeemed,
		CurrencyValue: redemption.CurrencyValue,
		CreatedAt:     redemption.CreatedAt,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := s.redis.RPush(ctx, s.config.RedemptionQueue, data).Err(); err != nil {
		log.Printf("[REWARDS] Failed to queue redemption event %s: %v", redemption.RedemptionID, err)
	}
}

func (s *RewardsService) withRetry(ctx context.Context, fn func() error) error {
	return retryOnConflict(ctx, s.config.TxRetryAttempts, s.config.TxRetryBackoff, fn)
}
