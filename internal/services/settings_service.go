package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/deikas123/thefoodbasket-sub001/internal/models"
)

// SettingsService stores loyalty configuration as versioned rows. Writes
// append a new version; reads pick the latest, once per operation, so a
// configuration change applies to subsequent operations only.
type SettingsService struct {
	db *sql.DB
}

func NewSettingsService(db *sql.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Active returns the current settings version.
func (s *SettingsService) Active(ctx context.Context) (*models.Settings, error) {
	var cfg models.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT id, points_per_currency_unit, currency_value_per_point, min_redemption_points,
		       silver_threshold, gold_threshold, bronze_multiplier, silver_multiplier, gold_multiplier,
		       points_expiration_days, referral_signup_bonus, referral_purchase_bonus, created_at
		FROM loyalty_settings
		ORDER BY id DESC
		LIMIT 1`).Scan(
		&cfg.ID, &cfg.PointsPerCurrencyUnit, &cfg.CurrencyValuePerPoint, &cfg.MinRedemptionPoints,
		&cfg.SilverThreshold, &cfg.GoldThreshold, &cfg.BronzeMultiplier, &cfg.SilverMultiplier, &cfg.GoldMultiplier,
		&cfg.PointsExpirationDays, &cfg.ReferralSignupBonus, &cfg.ReferralPurchaseBonus, &cfg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("load active settings: %w", err)
	}
	return &cfg, nil
}

// Update validates the new configuration and appends it as the active
// version. Past ledger entries are never recomputed.
func (s *SettingsService) Update(ctx context.Context, cfg *models.Settings) (*models.Settings, error) {
	if err := ValidateSettings(cfg); err != nil {
		return nil, err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO loyalty_settings
		(points_per_currency_unit, currency_value_per_point, min_redemption_points,
		 silver_threshold, gold_threshold, bronze_multiplier, silver_multiplier, gold_multiplier,
		 points_expiration_days, referral_signup_bonus, referral_purchase_bonus, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING id, created_at`,
		cfg.PointsPerCurrencyUnit, cfg.CurrencyValuePerPoint, cfg.MinRedemptionPoints,
		cfg.SilverThreshold, cfg.GoldThreshold, cfg.BronzeMultiplier, cfg.SilverMultiplier, cfg.GoldMultiplier,
		cfg.PointsExpirationDays, cfg.ReferralSignupBonus, cfg.ReferralPurchaseBonus).
		Scan(&cfg.ID, &cfg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store settings version: %w", err)
	}

	log.Printf("[SETTINGS] New settings version %d active", cfg.ID)
	return cfg, nil
}
