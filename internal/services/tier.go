package services

import (
	"math"

	"github.com/deikas123/thefoodbasket-sub001/internal/models"
)

// ResolveTier selects the highest tier whose threshold is at or below the
// lifetime earned total. Bronze starts at zero.
func ResolveTier(lifetimeEarned int64, settings *models.Settings) models.Tier {
	switch {
	case lifetimeEarned >= settings.GoldThreshold:
		return models.Tier{Name: models.TierGold, Threshold: settings.GoldThreshold, Multiplier: settings.GoldMultiplier}
	case lifetimeEarned >= settings.SilverThreshold:
		return models.Tier{Name: models.TierSilver, Threshold: settings.SilverThreshold, Multiplier: settings.SilverMultiplier}
	default:
		return models.Tier{Name: models.TierBronze, Threshold: 0, Multiplier: settings.BronzeMultiplier}
	}
}

// MultiplyPoints applies a tier multiplier to a base point amount,
// rounding to the nearest whole point.
func MultiplyPoints(base int64, multiplier float64) int64 {
	return int64(math.Round(float64(base) * multiplier))
}

// ValidateSettings enforces the invariants the admin UI historically did
// not: strictly increasing thresholds and non-decreasing multipliers
// across bronze < silver < gold.
func ValidateSettings(s *models.Settings) error {
	if s.PointsPerCurrencyUnit <= 0 || s.CurrencyValuePerPoint <= 0 {
		return ErrInvalidSettings
	}
	if s.MinRedemptionPoints < 0 || s.PointsExpirationDays < 0 {
		return ErrInvalidSettings
	}
	if s.ReferralSignupBonus < 0 || s.ReferralPurchaseBonus < 0 {
		return ErrInvalidSettings
	}
	if s.SilverThreshold <= 0 || s.GoldThreshold <= s.SilverThreshold {
		return ErrInvalidSettings
	}
	if s.BronzeMultiplier < 1 || s.SilverMultiplier < s.BronzeMultiplier || s.GoldMultiplier < s.SilverMultiplier {
		return ErrInvalidSettings
	}
	return nil
}
