package models

import (
	"time"
)

// Entry kinds.
const (
	KindEarned = "earned"
	KindSpent  = "spent"
)

// Entry sources.
const (
	SourcePurchase         = "purchase"
	SourceReview           = "review"
	SourceReferralSignup   = "referral_signup"
	SourceReferralPurchase = "referral_purchase"
	SourceRedemption       = "redemption"
	SourceExpiration       = "expiration"
	SourceAdminAdjustment  = "admin_adjustment"
)

// LedgerEntry is one immutable signed point movement. Corrections are new
// compensating entries, never updates.
type LedgerEntry struct {
	EntryID        string    `json:"entry_id" db:"entry_id"`
	AccountID      string    `json:"account_id" db:"account_id"`
	Delta          int64     `json:"delta" db:"delta"` // signed, nonzero
	Kind           string    `json:"kind" db:"kind"`
	Source         string    `json:"source" db:"source"`
	Description    string    `json:"description" db:"description"`
	RelatedOrderID *string   `json:"related_order_id,omitempty" db:"related_order_id"`
	CountsLifetime bool      `json:"counts_lifetime" db:"counts_lifetime"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
