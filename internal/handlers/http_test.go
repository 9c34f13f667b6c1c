package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/deikas123/thefoodbasket-sub001/internal/config"
	"github.com/deikas123/thefoodbasket-sub001/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{services.ErrInsufficientBalance, http.StatusBadRequest},
		{services.ErrBelowMinimumRedemption, http.StatusBadRequest},
		{services.ErrInvalidDelta, http.StatusBadRequest},
		{services.ErrSelfReferral, http.StatusBadRequest},
		{services.ErrInvalidSettings, http.StatusBadRequest},
		{services.ErrInvalidReferralCode, http.StatusNotFound},
		{services.ErrRedemptionNotFound, http.StatusNotFound},
		{services.ErrAlreadyReferred, http.StatusConflict},
		{services.ErrDuplicateAward, http.StatusConflict},
		{services.ErrConcurrencyConflict, http.StatusConflict},
		{services.ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
		// Wrapped errors map the same as bare ones.
		{fmt.Errorf("order 42: %w", services.ErrDuplicateAward), http.StatusConflict},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, statusForError(tc.err), "error %v", tc.err)
	}
}

func TestRewardsHandler_RequestDecoding(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := services.NewRewardsService(db, nil,
		services.NewLedgerService(db), services.NewSettingsService(db), config.LoadLoyaltyConfig())
	h := NewRewardsHandler(svc)

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/loyalty/redemptions", strings.NewReader("{not json"))
		w := httptest.NewRecorder()

		h.Redeem(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		body := `{"accountId":"acct-1","points":500,"pointz":1}`
		r := httptest.NewRequest(http.MethodPost, "/loyalty/redemptions", strings.NewReader(body))
		w := httptest.NewRecorder()

		h.Redeem(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure short-circuits", func(t *testing.T) {
		body := `{"accountId":"acct-1","points":-5}`
		r := httptest.NewRequest(http.MethodPost, "/loyalty/redemptions", strings.NewReader(body))
		w := httptest.NewRecorder()

		h.Redeem(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
