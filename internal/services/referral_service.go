package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/deikas123/thefoodbasket-sub001/internal/audit"
	"github.com/deikas123/thefoodbasket-sub001/internal/config"
	"github.com/deikas123/thefoodbasket-sub001/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Ambiguous characters (0/O, 1/I) are excluded so codes survive being
// read aloud or retyped from a screenshot.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ReferralService owns the referral directory: code generation and the
// dual-credited referral relationship.
type ReferralService struct {
	db       *sql.DB
	redis    *redis.Client
	ledger   *LedgerService
	settings *SettingsService
	audit    *audit.Logger
	config   *config.LoyaltyConfig
}

func NewReferralService(db *sql.DB, redisClient *redis.Client, ledger *LedgerService, settings *SettingsService, cfg *config.LoyaltyConfig) *ReferralService {
	return &ReferralService{
		db:       db,
		redis:    redisClient,
		ledger:   ledger,
		settings: settings,
		audit:    audit.NewLogger(),
		config:   cfg,
	}
}

// GenerateCode returns the account's referral code, minting one on first
// call. Minting retries on a directory collision with a fresh random
// code.
func (s *ReferralService) GenerateCode(ctx context.Context, accountID string) (string, error) {
	account, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	if account.ReferralCode != nil {
		return *account.ReferralCode, nil
	}

	if err := s.checkRateLimit(ctx, accountID); err != nil {
		return "", err
	}

	for attempt := 0; attempt < 5; attempt++ {
		code := s.randomCode()

		result, err := s.db.ExecContext(ctx, `
			UPDATE loyalty_accounts
			SET referral_code = $1, updated_at = NOW()
			WHERE account_id = $2 AND referral_code IS NULL`, code, accountID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				log.Printf("[REFERRAL] Code collision on attempt %d, retrying", attempt+1)
				continue
			}
			return "", err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return "", err
		}
		if rowsAffected == 0 {
			// A concurrent call won the mint; return its code.
			account, err = s.ledger.GetAccount(ctx, accountID)
			if err != nil {
				return "", err
			}
			if account.ReferralCode != nil {
				return *account.ReferralCode, nil
			}
			continue
		}

		s.incrementRateLimit(ctx, accountID)
		s.audit.LogOperation(accountID, "REFERRAL_CODE_MINTED", code)
		log.Printf("[REFERRAL] GenerateCode - account: %s, code: %s", accountID, code)
		return code, nil
	}

	return "", fmt.Errorf("could not mint a unique referral code for %s", accountID)
}

// ApplyCode records the referral relationship and credits the fixed
// signup bonus to both accounts in one transaction. Both entries land or
// neither does.
func (s *ReferralService) ApplyCode(ctx context.Context, accountID, code string) (*models.Referral, error) {
	cfg, err := s.settings.Active(ctx)
	if err != nil {
		return nil, err
	}

	var referral *models.Referral
	err = retryOnConflict(ctx, s.config.TxRetryAttempts, s.config.TxRetryBackoff, func() error {
		var txErr error
		referral, txErr = s.applyCodeTx(ctx, cfg, accountID, code)
		return txErr
	})
	if err != nil {
		s.audit.LogError(accountID, "REFERRAL_APPLY", err)
		return nil, err
	}

	s.audit.LogOperation(accountID, "REFERRAL_APPLIED", referral.ReferralCode)
	log.Printf("[REFERRAL] ApplyCode - referred: %s, referrer: %s, bonus: %d",
		accountID, referral.ReferrerAccountID, cfg.ReferralSignupBonus)
	return referral, nil
}

func (s *ReferralService) applyCodeTx(ctx context.Context, cfg *models.Settings, accountID, code string) (*models.Referral, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var referrerID string
	err = tx.QueryRowContext(ctx, `
		SELECT account_id FROM loyalty_accounts WHERE referral_code = $1`, code).Scan(&referrerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("code %s: %w", code, ErrInvalidReferralCode)
	}
	if err != nil {
		return nil, err
	}

	if referrerID == accountID {
		return nil, ErrSelfReferral
	}

	referred, referrer, err := s.ledger.lockAccountPair(ctx, tx, accountID, referrerID)
	if err != nil {
		return nil, err
	}

	if referred.ReferredBy != nil {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrAlreadyReferred)
	}

	// referred_by changes outside the versioned projection update; the
	// row lock covers it.
	_, err = tx.ExecContext(ctx, `
		UPDATE loyalty_accounts SET referred_by = $1, updated_at = NOW()
		WHERE account_id = $2`, referrerID, accountID)
	if err != nil {
		return nil, err
	}

	referral := &models.Referral{
		ReferralID:        uuid.NewString(),
		ReferrerAccountID: referrerID,
		ReferredAccountID: accountID,
		ReferralCode:      code,
		Status:            models.ReferralPending,
		CreatedAt:         time.Now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO referrals (referral_id, referrer_account_id, referred_account_id, referral_code, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		referral.ReferralID, referral.ReferrerAccountID, referral.ReferredAccountID,
		referral.ReferralCode, referral.Status, referral.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("account %s: %w", accountID, ErrAlreadyReferred)
		}
		return nil, err
	}

	if cfg.ReferralSignupBonus > 0 {
		if _, err := s.ledger.appendEntryTx(ctx, tx, referred, cfg.ReferralSignupBonus,
			models.KindEarned, models.SourceReferralSignup,
			fmt.Sprintf("Signup bonus for joining via %s", code), nil, true); err != nil {
			return nil, err
		}
		if _, err := s.ledger.appendEntryTx(ctx, tx, referrer, cfg.ReferralSignupBonus,
			models.KindEarned, models.SourceReferralSignup,
			fmt.Sprintf("Signup bonus for referring %s", accountID), nil, true); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return referral, nil
}

func (s *ReferralService) randomCode() string {
	code := make([]byte, s.config.ReferralCodeLength)
	charsetLen := big.NewInt(int64(len(codeCharset)))
	for i := range code {
		n, _ := rand.Int(rand.Reader, charsetLen)
		code[i] = codeCharset[n.Int64()]
	}
	return string(code)
}

func (s *ReferralService) checkRateLimit(ctx context.Context, accountID string) error {
	if s.redis == nil {
		return nil
	}

	key := fmt.Sprintf("loyalty:codegen:%s", accountID)
	count, err := s.redis.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		return err
	}

	if count >= s.config.MaxCodeGenPerUser {
		return ErrRateLimited
	}
	return nil
}

func (s *ReferralService) incrementRateLimit(ctx context.Context, accountID string) {
	if s.redis == nil {
		return
	}

	key := fmt.Sprintf("loyalty:codegen:%s", accountID)
	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.config.RateLimitWindow)
	pipe.Exec(ctx)
}
