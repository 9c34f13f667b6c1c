package models

import (
	"time"
)

// Account is the projected loyalty state for one customer. PointsBalance
// always equals the sum of the account's ledger entry deltas;
// LifetimePointsEarned never decreases.
type Account struct {
	AccountID            string    `json:"account_id" db:"account_id"`
	PointsBalance        int64     `json:"points_balance" db:"points_balance"`
	LifetimePointsEarned int64     `json:"lifetime_points_earned" db:"lifetime_points_earned"`
	LastActivityAt       time.Time `json:"last_activity_at" db:"last_activity_at"`
	ReferralCode         *string   `json:"referral_code,omitempty" db:"referral_code"`
	ReferredBy           *string   `json:"referred_by,omitempty" db:"referred_by"`
	Version              int       `json:"version" db:"version"` // for optimistic locking
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
	Tier                 *Tier     `json:"tier,omitempty" db:"-"` // derived, never stored
}
