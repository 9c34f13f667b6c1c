package models

import (
	"time"
)

// Tier names, lowest first.
const (
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

// Tier is derived from lifetime earned points against the active settings.
type Tier struct {
	Name       string  `json:"name"`
	Threshold  int64   `json:"threshold"`
	Multiplier float64 `json:"multiplier"`
}

// Settings is one version of the loyalty configuration. A new row is
// written on every change; the highest id is active. Operations read the
// active version at call time, so past ledger entries are never
// recomputed.
type Settings struct {
	ID                    int       `json:"id" db:"id"`
	PointsPerCurrencyUnit float64   `json:"points_per_currency_unit" db:"points_per_currency_unit" validate:"required,gt=0"`
	CurrencyValuePerPoint float64   `json:"currency_value_per_point" db:"currency_value_per_point" validate:"required,gt=0"`
	MinRedemptionPoints   int64     `json:"min_redemption_points" db:"min_redemption_points" validate:"gte=0"`
	SilverThreshold       int64     `json:"silver_threshold" db:"silver_threshold" validate:"required,gt=0"`
	GoldThreshold         int64     `json:"gold_threshold" db:"gold_threshold" validate:"required,gt=0"`
	BronzeMultiplier      float64   `json:"bronze_multiplier" db:"bronze_multiplier" validate:"required,gte=1"`
	SilverMultiplier      float64   `json:"silver_multiplier" db:"silver_multiplier" validate:"required,gte=1"`
	GoldMultiplier        float64   `json:"gold_multiplier" db:"gold_multiplier" validate:"required,gte=1"`
	PointsExpirationDays  int       `json:"points_expiration_days" db:"points_expiration_days" validate:"gte=0"` // 0 disables expiration
	ReferralSignupBonus   int64     `json:"referral_signup_bonus" db:"referral_signup_bonus" validate:"gte=0"`
	ReferralPurchaseBonus int64     `json:"referral_purchase_bonus" db:"referral_purchase_bonus" validate:"gte=0"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
}
