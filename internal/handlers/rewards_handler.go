package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/deikas123/thefoodbasket-sub001/internal/services"
	"github.com/go-chi/chi/v5"
)

type RewardsHandler struct {
	service   *services.RewardsService
	validator *services.ValidationHelper
}

func NewRewardsHandler(service *services.RewardsService) *RewardsHandler {
	return &RewardsHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// AwardPurchase credits points for a paid order
// @Summary Award purchase points
// @Description Credit tier-multiplied points for a paid order; idempotent per order id
// @Tags loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{accountId=string,amount=number,orderId=string} true "Paid order"
// @Success 200 {object} object{newBalance=int64,pointsAwarded=int64,tier=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /loyalty/purchases [post]
func (h *RewardsHandler) AwardPurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string  `json:"accountId" validate:"required"`
		Amount    float64 `json:"amount" validate:"required,gt=0"`
		OrderID   string  `json:"orderId" validate:"required"`
	}

	if !h.decode(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.service.AwardPurchase(r.Context(), req.AccountID, req.Amount, req.OrderID)
	if err != nil {
		log.Printf("[REWARDS] AwardPurchase - error for order %s: %v", req.OrderID, err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"newBalance":    result.Account.PointsBalance,
		"pointsAwarded": result.PointsAwarded,
		"tier":          result.Account.Tier.Name,
	})
}

// AwardReview credits a flat review bonus
// @Summary Award review points
// @Description Credit a flat, non-multiplied bonus for a product review
// @Tags loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{accountId=string,points=int64} true "Review bonus"
// @Success 200 {object} object{newBalance=int64,pointsAwarded=int64}
// @Failure 400 {object} services.ErrorResponse
// @Router /loyalty/reviews [post]
func (h *RewardsHandler) AwardReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"accountId" validate:"required"`
		Points    int64  `json:"points" validate:"required,gt=0"`
	}

	if !h.decode(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.service.AwardReview(r.Context(), req.AccountID, req.Points)
	if err != nil {
		log.Printf("[REWARDS] AwardReview - error for account %s: %v", req.AccountID, err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"newBalance":    result.Account.PointsBalance,
		"pointsAwarded": result.PointsAwarded,
	})
}

// Redeem converts points to currency value
// @Summary Redeem points
// @Description Deduct points and return the currency value for the wallet to credit
// @Tags loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{accountId=string,points=int64} true "Redemption request"
// @Success 200 {object} object{redemptionId=string,currencyValue=number,status=string}
// @Failure 400 {object} services.ErrorResponse
// @Router /loyalty/redemptions [post]
func (h *RewardsHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"accountId" validate:"required"`
		Points    int64  `json:"points" validate:"required,gt=0"`
	}

	if !h.decode(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	redemption, err := h.service.Redeem(r.Context(), req.AccountID, req.Points)
	if err != nil {
		log.Printf("[REWARDS] Redeem - error for account %s: %v", req.AccountID, err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"redemptionId":  redemption.RedemptionID,
		"currencyValue": redemption.CurrencyValue,
		"status":        redemption.Status,
	})
}

// CompensateRedemption reverses a redemption after a failed credit
// @Summary Compensate a redemption
// @Description Called by the wallet collaborator when its currency credit fails; restores the points
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param redemptionId path string true "Redemption ID"
// @Success 200 {object} object{redemptionId=string,status=string}
// @Failure 404 {object} services.ErrorResponse
// @Router /loyalty/redemptions/{redemptionId}/compensate [post]
func (h *RewardsHandler) CompensateRedemption(w http.ResponseWriter, r *http.Request) {
	redemptionID := chi.URLParam(r, "redemptionId")

	redemption, err := h.service.CompensateRedemption(r.Context(), redemptionID)
	if err != nil {
		log.Printf("[REWARDS] CompensateRedemption - error for %s: %v", redemptionID, err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"redemptionId": redemption.RedemptionID,
		"status":       redemption.Status,
	})
}

// GetAccount returns balance and tier
// @Summary Get loyalty account
// @Description Current balance, lifetime earned and derived tier; creates the account on first read
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Success 200 {object} models.Account
// @Failure 500 {object} services.ErrorResponse
// @Router /loyalty/accounts/{accountId} [get]
func (h *RewardsHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		log.Printf("[REWARDS] GetAccount - error for %s: %v", accountID, err)
		services.SendErrorResponse(w, "Failed to fetch account", statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

// ListEntries pages the account's ledger
// @Summary List ledger entries
// @Description Ledger entries for an account, most recent first
// @Tags loyalty
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{entries=[]models.LedgerEntry,count=int}
// @Failure 500 {object} services.ErrorResponse
// @Router /loyalty/accounts/{accountId}/entries [get]
func (h *RewardsHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.service.ListEntries(r.Context(), accountID, limit, offset)
	if err != nil {
		log.Printf("[REWARDS] ListEntries - error for %s: %v", accountID, err)
		services.SendErrorResponse(w, "Failed to fetch entries", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// ExpireSweep runs the expiration batch immediately
// @Summary Run expiration sweep
// @Description Zero the balance of accounts inactive beyond the configured window
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{expired=int}
// @Failure 500 {object} services.ErrorResponse
// @Router /admin/expire-sweep [post]
func (h *RewardsHandler) ExpireSweep(w http.ResponseWriter, r *http.Request) {
	expired, err := h.service.ExpireSweep(r.Context(), time.Now())
	if err != nil {
		log.Printf("[SWEEP] ExpireSweep - error: %v", err)
		services.SendErrorResponse(w, "Sweep failed", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"expired": expired})
}

func (h *RewardsHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}
