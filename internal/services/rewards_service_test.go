package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/deikas123/thefoodbasket-sub001/internal/config"
	"github.com/deikas123/thefoodbasket-sub001/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

func settingsRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "points_per_currency_unit", "currency_value_per_point", "min_redemption_points",
		"silver_threshold", "gold_threshold", "bronze_multiplier", "silver_multiplier", "gold_multiplier",
		"points_expiration_days", "referral_signup_bonus", "referral_purchase_bonus", "created_at",
	}).AddRow(1, 1.0, 0.1, 100, 500, 2000, 1.0, 1.5, 2.0, 365, 100, 50, time.Now())
}

func newTestRewardsService(db *sql.DB, redisClient *redis.Client) *RewardsService {
	return NewRewardsService(db, redisClient, NewLedgerService(db), NewSettingsService(db), config.LoadLoyaltyConfig())
}

func TestRewardsService_AwardPurchase(t *testing.T) {
	t.Run("awards tier multiplied points", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("order-1", "purchase", "earned").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("FROM referrals").
			WithArgs("acct-1", "pending").
			WillReturnRows(sqlmock.NewRows([]string{"referrer_account_id", "referral_id"}))
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 0, 600, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "acct-1", 1500, "earned", "purchase", sqlmock.AnyArg(), "order-1", true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(1500, 2100, sqlmock.AnyArg(), "acct-1", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		svc := newTestRewardsService(db, nil)
		res, err := svc.AwardPurchase(context.Background(), "acct-1", 1000.00, "order-1")

		assert.NoError(t, err)
		assert.Equal(t, int64(1500), res.PointsAwarded)
		assert.Equal(t, int64(1500), res.Account.PointsBalance)
		assert.Equal(t, int64(2100), res.Account.LifetimePointsEarned)
		// The silver multiplier applied, but the purchase itself crossed
		// the gold threshold.
		assert.Equal(t, "gold", res.Account.Tier.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a repeated order id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("order-1", "purchase", "earned").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		svc := newTestRewardsService(db, nil)
		_, err = svc.AwardPurchase(context.Background(), "acct-1", 1000.00, "order-1")

		assert.ErrorIs(t, err, ErrDuplicateAward)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tiny purchase is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("order-2", "purchase", "earned").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("FROM referrals").
			WithArgs("acct-1", "pending").
			WillReturnRows(sqlmock.NewRows([]string{"referrer_account_id", "referral_id"}))
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 0, 0, 1))
		mock.ExpectRollback()

		svc := newTestRewardsService(db, nil)
		res, err := svc.AwardPurchase(context.Background(), "acct-1", 0.40, "order-2")

		assert.NoError(t, err)
		assert.Equal(t, int64(0), res.PointsAwarded)
		assert.Nil(t, res.Entry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first purchase completes a pending referral", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("order-9", "purchase", "earned").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("FROM referrals").
			WithArgs("user-b", "pending").
			WillReturnRows(sqlmock.NewRows([]string{"referrer_account_id", "referral_id"}).
				AddRow("user-a", "ref-1"))
		// Pair locked in account-id order: referrer user-a sorts first.
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("user-a").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("user-a").
			WillReturnRows(accountRows("user-a", 200, 700, 3))
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("user-b").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("user-b").
			WillReturnRows(accountRows("user-b", 0, 0, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "user-b", 500, "earned", "purchase", sqlmock.AnyArg(), "order-9", true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(500, 500, sqlmock.AnyArg(), "user-b", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "user-a", 50, "earned", "referral_purchase", sqlmock.AnyArg(), "order-9", true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(250, 750, sqlmock.AnyArg(), "user-a", 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE referrals SET status").
			WithArgs("completed", "ref-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		svc := newTestRewardsService(db, nil)
		res, err := svc.AwardPurchase(context.Background(), "user-b", 500.00, "order-9")

		assert.NoError(t, err)
		assert.Equal(t, int64(500), res.PointsAwarded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		svc := newTestRewardsService(db, nil)
		_, err = svc.AwardPurchase(context.Background(), "acct-1", -5.00, "order-1")
		assert.ErrorIs(t, err, ErrInvalidDelta)
	})
}

func TestRewardsService_AwardReview(t *testing.T) {
	t.Run("retries once on a version conflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		// First attempt loses the version check to a concurrent writer.
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 100, 100, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "acct-1", 25, "earned", "review", "Product review bonus", nil, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(125, 125, sqlmock.AnyArg(), "acct-1", 1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 150, 150, 2))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "acct-1", 25, "earned", "review", "Product review bonus", nil, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(175, 175, sqlmock.AnyArg(), "acct-1", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		svc := newTestRewardsService(db, nil)
		res, err := svc.AwardReview(context.Background(), "acct-1", 25)

		assert.NoError(t, err)
		assert.Equal(t, int64(175), res.Account.PointsBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive points", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		svc := newTestRewardsService(db, nil)
		_, err = svc.AwardReview(context.Background(), "acct-1", 0)
		assert.ErrorIs(t, err, ErrInvalidDelta)
	})
}

func TestRewardsService_Redeem(t *testing.T) {
	t.Run("deducts points and records the redemption", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, rmock := redismock.NewClientMock()
		rmock.Regexp().ExpectRPush("redemption_events", `.*redemption_id.*`).SetVal(1)

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 1600, 2100, 4))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "acct-1", -1000, "spent", "redemption", sqlmock.AnyArg(), nil, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(600, 2100, sqlmock.AnyArg(), "acct-1", 4).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO redemptions").
			WithArgs(sqlmock.AnyArg(), "acct-1", 1000, 100.0, "completed", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		svc := newTestRewardsService(db, redisClient)
		redemption, err := svc.Redeem(context.Background(), "acct-1", 1000)

		assert.NoError(t, err)
		assert.Equal(t, int64(1000), redemption.PointsRedeemed)
		assert.Equal(t, 100.0, redemption.CurrencyValue)
		assert.Equal(t, models.RedemptionCompleted, redemption.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("rejects below the redemption minimum", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())

		svc := newTestRewardsService(db, nil)
		_, err = svc.Redeem(context.Background(), "acct-1", 50)

		assert.ErrorIs(t, err, ErrBelowMinimumRedemption)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects more points than the balance", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 100, 100, 1))
		mock.ExpectRollback()

		svc := newTestRewardsService(db, nil)
		_, err = svc.Redeem(context.Background(), "acct-1", 500)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRewardsService_CompensateRedemption(t *testing.T) {
	redemptionCols := []string{
		"redemption_id", "account_id", "points_redeemed", "currency_value", "status", "created_at", "updated_at",
	}

	t.Run("restores balance without lifetime earned", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM redemptions").
			WithArgs("red-1").
			WillReturnRows(sqlmock.NewRows(redemptionCols).
				AddRow("red-1", "acct-1", 1000, 100.0, "completed", now, now))
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 600, 2100, 5))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "acct-1", 1000, "earned", "redemption", sqlmock.AnyArg(), nil, false, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(1600, 2100, sqlmock.AnyArg(), "acct-1", 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE redemptions SET status").
			WithArgs("cancelled", "red-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		svc := newTestRewardsService(db, nil)
		redemption, err := svc.CompensateRedemption(context.Background(), "red-1")

		assert.NoError(t, err)
		assert.Equal(t, models.RedemptionCancelled, redemption.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already cancelled is returned unchanged", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM redemptions").
			WithArgs("red-1").
			WillReturnRows(sqlmock.NewRows(redemptionCols).
				AddRow("red-1", "acct-1", 1000, 100.0, "cancelled", now, now))
		mock.ExpectRollback()

		svc := newTestRewardsService(db, nil)
		redemption, err := svc.CompensateRedemption(context.Background(), "red-1")

		assert.NoError(t, err)
		assert.Equal(t, models.RedemptionCancelled, redemption.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown redemption id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("FROM redemptions").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(redemptionCols))
		mock.ExpectRollback()

		svc := newTestRewardsService(db, nil)
		_, err = svc.CompensateRedemption(context.Background(), "ghost")

		assert.ErrorIs(t, err, ErrRedemptionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRewardsService_AdjustPoints(t *testing.T) {
	t.Run("deduction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 500, 800, 2))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "acct-1", -200, "spent", "admin_adjustment", "fraudulent review award", nil, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(300, 800, sqlmock.AnyArg(), "acct-1", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		svc := newTestRewardsService(db, nil)
		res, err := svc.AdjustPoints(context.Background(), "acct-1", 200, "fraudulent review award", true)

		assert.NoError(t, err)
		assert.Equal(t, int64(-200), res.PointsAwarded)
		assert.Equal(t, int64(300), res.Account.PointsBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deduction cannot exceed the balance", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("acct-1").
			WillReturnRows(accountRows("acct-1", 100, 100, 1))
		mock.ExpectRollback()

		svc := newTestRewardsService(db, nil)
		_, err = svc.AdjustPoints(context.Background(), "acct-1", 500, "cleanup", true)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRewardsService_ExpireSweep(t *testing.T) {
	t.Run("zeroes a dormant account", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		old := time.Now().AddDate(0, 0, -400)
		dormant := sqlmock.NewRows(accountCols).
			AddRow("dormant-1", 250, 900, old, nil, nil, 2, old, old)

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())
		mock.ExpectQuery("WHERE points_balance > 0").
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("dormant-1"))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("dormant-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("dormant-1").
			WillReturnRows(dormant)
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(sqlmock.AnyArg(), "dormant-1", -250, "spent", "expiration", sqlmock.AnyArg(), nil, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance").
			WithArgs(0, 900, sqlmock.AnyArg(), "dormant-1", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery("WHERE points_balance > 0").
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}))

		svc := newTestRewardsService(db, nil)
		expired, err := svc.ExpireSweep(context.Background(), time.Now())

		assert.NoError(t, err)
		assert.Equal(t, 1, expired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips an account active again by lock time", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(settingsRows())
		mock.ExpectQuery("WHERE points_balance > 0").
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("busy-1"))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs("busy-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		// accountRows stamps last_activity_at with time.Now(), inside the
		// expiration window.
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("busy-1").
			WillReturnRows(accountRows("busy-1", 250, 900, 2))
		mock.ExpectRollback()
		mock.ExpectQuery("WHERE points_balance > 0").
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}))

		svc := newTestRewardsService(db, nil)
		expired, err := svc.ExpireSweep(context.Background(), time.Now())

		assert.NoError(t, err)
		assert.Equal(t, 0, expired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("disabled when expiration days is zero", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		disabled := sqlmock.NewRows([]string{
			"id", "points_per_currency_unit", "currency_value_per_point", "min_redemption_points",
			"silver_threshold", "gold_threshold", "bronze_multiplier", "silver_multiplier", "gold_multiplier",
			"points_expiration_days", "referral_signup_bonus", "referral_purchase_bonus", "created_at",
		}).AddRow(2, 1.0, 0.1, 100, 500, 2000, 1.0, 1.5, 2.0, 0, 100, 50, time.Now())
		mock.ExpectQuery("FROM loyalty_settings").WillReturnRows(disabled)

		svc := newTestRewardsService(db, nil)
		expired, err := svc.ExpireSweep(context.Background(), time.Now())

		assert.NoError(t, err)
		assert.Equal(t, 0, expired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
