package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/deikas123/thefoodbasket-sub001/internal/models"
	"github.com/google/uuid"
)

// LedgerService is the source of truth for point movements. Every append
// writes an immutable ledger entry and updates the account projection
// (balance, lifetime earned, last activity) inside the same database
// transaction, so no caller observes one without the other.
type LedgerService struct {
	db *sql.DB
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db}
}

// GetAccount returns the projected account state, creating a zero-balance
// account on first read.
func (s *LedgerService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	if err := s.ensureAccount(ctx, s.db, accountID); err != nil {
		return nil, err
	}

	var account models.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, points_balance, lifetime_points_earned, last_activity_at,
		       referral_code, referred_by, version, created_at, updated_at
		FROM loyalty_accounts
		WHERE account_id = $1`, accountID).Scan(
		&account.AccountID, &account.PointsBalance, &account.LifetimePointsEarned,
		&account.LastActivityAt, &account.ReferralCode, &account.ReferredBy,
		&account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// Append writes a single ledger entry in its own transaction. Multi-entry
// operations (redemption, referral crediting) manage their own
// transaction and call appendEntryTx directly.
func (s *LedgerService) Append(ctx context.Context, accountID string, delta int64, kind, source, description string, relatedOrderID *string) (*models.LedgerEntry, *models.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	account, err := s.lockAccount(ctx, tx, accountID)
	if err != nil {
		return nil, nil, err
	}

	entry, err := s.appendEntryTx(ctx, tx, account, delta, kind, source, description, relatedOrderID, true)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return entry, account, nil
}

// ListEntries returns the account's entries most recent first.
func (s *LedgerService) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, account_id, delta, kind, source, description, related_order_id, counts_lifetime, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.EntryID, &e.AccountID, &e.Delta, &e.Kind, &e.Source,
			&e.Description, &e.RelatedOrderID, &e.CountsLifetime, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ensureAccount lazily creates the account row so locks always find one.
func (s *LedgerService) ensureAccount(ctx context.Context, db execer, accountID string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO loyalty_accounts (account_id, points_balance, lifetime_points_earned, last_activity_at, version, created_at, updated_at)
		VALUES ($1, 0, 0, NOW(), 1, NOW(), NOW())
		ON CONFLICT (account_id) DO NOTHING`, accountID)
	return err
}

// lockAccount creates the row if needed and takes the row lock for the
// remainder of the transaction.
func (s *LedgerService) lockAccount(ctx context.Context, tx *sql.Tx, accountID string) (*models.Account, error) {
	if err := s.ensureAccount(ctx, tx, accountID); err != nil {
		return nil, err
	}

	var account models.Account
	err := tx.QueryRowContext(ctx, `
		SELECT account_id, points_balance, lifetime_points_earned, last_activity_at,
		       referral_code, referred_by, version, created_at, updated_at
		FROM loyalty_accounts
		WHERE account_id = $1
		FOR UPDATE`, accountID).Scan(
		&account.AccountID, &account.PointsBalance, &account.LifetimePointsEarned,
		&account.LastActivityAt, &account.ReferralCode, &account.ReferredBy,
		&account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// lockAccountPair locks two accounts in account-id order so opposing
// two-account operations cannot deadlock.
func (s *LedgerService) lockAccountPair(ctx context.Context, tx *sql.Tx, firstID, secondID string) (*models.Account, *models.Account, error) {
	lockA, lockB := firstID, secondID
	if lockA > lockB {
		lockA, lockB = lockB, lockA
	}

	a, err := s.lockAccount(ctx, tx, lockA)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.lockAccount(ctx, tx, lockB)
	if err != nil {
		return nil, nil, err
	}

	if a.AccountID != firstID {
		a, b = b, a
	}
	return a, b, nil
}

// appendEntryTx inserts the entry and advances the projection under the
// caller's transaction. The account must be row-locked; its fields are
// updated in place on success.
func (s *LedgerService) appendEntryTx(ctx context.Context, tx *sql.Tx, account *models.Account, delta int64, kind, source, description string, relatedOrderID *string, countsLifetime bool) (*models.LedgerEntry, error) {
	if delta == 0 {
		return nil, ErrInvalidDelta
	}

	newBalance := account.PointsBalance + delta
	if newBalance < 0 {
		return nil, ErrInsufficientBalance
	}

	newLifetime := account.LifetimePointsEarned
	if delta > 0 && countsLifetime {
		newLifetime += delta
	}

	entry := &models.LedgerEntry{
		EntryID:        uuid.NewString(),
		AccountID:      account.AccountID,
		Delta:          delta,
		Kind:           kind,
		Source:         source,
		Description:    description,
		RelatedOrderID: relatedOrderID,
		CountsLifetime: countsLifetime,
		CreatedAt:      time.Now(),
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (entry_id, account_id, delta, kind, source, description, related_order_id, counts_lifetime, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.EntryID, entry.AccountID, entry.Delta, entry.Kind, entry.Source,
		entry.Description, entry.RelatedOrderID, entry.CountsLifetime, entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE loyalty_accounts
		SET points_balance = $1, lifetime_points_earned = $2, last_activity_at = $3, version = version + 1, updated_at = $3
		WHERE account_id = $4 AND version = $5`,
		newBalance, newLifetime, entry.CreatedAt, account.AccountID, account.Version)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("account %s: %w", account.AccountID, ErrConcurrencyConflict)
	}

	account.PointsBalance = newBalance
	account.LifetimePointsEarned = newLifetime
	account.LastActivityAt = entry.CreatedAt
	account.Version++

	return entry, nil
}
