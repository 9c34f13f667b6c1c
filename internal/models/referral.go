package models

import (
	"time"
)

type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralCompleted ReferralStatus = "completed"
)

// Referral links a referred account to its referrer. A referred account
// has at most one referral relationship.
type Referral struct {
	ReferralID        string         `json:"referral_id" db:"referral_id"`
	ReferrerAccountID string         `json:"referrer_account_id" db:"referrer_account_id"`
	ReferredAccountID string         `json:"referred_account_id" db:"referred_account_id"`
	ReferralCode      string         `json:"referral_code" db:"referral_code"`
	Status            ReferralStatus `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
}
