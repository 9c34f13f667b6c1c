package models

import (
	"time"
)

type RedemptionStatus string

const (
	RedemptionCompleted RedemptionStatus = "completed"
	RedemptionPending   RedemptionStatus = "pending" // reserved for async payout
	RedemptionCancelled RedemptionStatus = "cancelled"
)

// Redemption records one point-to-currency conversion, one-to-one with a
// spent/redemption ledger entry.
type Redemption struct {
	RedemptionID   string           `json:"redemption_id" db:"redemption_id"`
	AccountID      string           `json:"account_id" db:"account_id"`
	PointsRedeemed int64            `json:"points_redeemed" db:"points_redeemed"`
	CurrencyValue  float64          `json:"currency_value" db:"currency_value"`
	Status         RedemptionStatus `json:"status" db:"status"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}
