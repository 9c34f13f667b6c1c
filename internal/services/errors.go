package services

import "errors"

// Terminal validation errors are returned to the caller for user-facing
// messaging. ErrConcurrencyConflict is transient and retried internally
// before surfacing.
var (
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrBelowMinimumRedemption = errors.New("below minimum redemption")
	ErrInvalidReferralCode    = errors.New("invalid referral code")
	ErrSelfReferral           = errors.New("self referral not allowed")
	ErrAlreadyReferred        = errors.New("account already referred")
	ErrDuplicateAward         = errors.New("order already awarded")
	ErrInvalidDelta           = errors.New("ledger delta must be nonzero")
	ErrConcurrencyConflict    = errors.New("concurrent update conflict")
	ErrSettlementFailure      = errors.New("redemption settlement failed")
	ErrInvalidSettings        = errors.New("invalid loyalty settings")
	ErrRedemptionNotFound     = errors.New("redemption not found")
	ErrRateLimited            = errors.New("rate limit exceeded")
)
