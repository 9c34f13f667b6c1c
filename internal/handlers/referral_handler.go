package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/deikas123/thefoodbasket-sub001/internal/services"
	qrcode "github.com/skip2/go-qrcode"
)

type ReferralHandler struct {
	service   *services.ReferralService
	validator *services.ValidationHelper
}

func NewReferralHandler(service *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// GenerateCode mints or returns the caller's referral code
// @Summary Generate referral code
// @Description Idempotent: returns the existing code or mints a unique one
// @Tags referrals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{code=string}
// @Failure 401 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Router /referrals/code [post]
func (h *ReferralHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value("userID").(string)
	if !ok || accountID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	code, err := h.service.GenerateCode(r.Context(), accountID)
	if err != nil {
		log.Printf("[REFERRAL] GenerateCode - error for account %s: %v", accountID, err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"code": code})
}

// ApplyCode records a referral and dual-credits the signup bonus
// @Summary Apply referral code
// @Description Credits both referrer and referred atomically; an account can be referred once
// @Tags referrals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{code=string} true "Referral code"
// @Success 200 {object} object{referralId=string,referrerAccountId=string,status=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /referrals/apply [post]
func (h *ReferralHandler) ApplyCode(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value("userID").(string)
	if !ok || accountID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Code string `json:"code" validate:"required,min=4,max=16"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	referral, err := h.service.ApplyCode(r.Context(), accountID, req.Code)
	if err != nil {
		log.Printf("[REFERRAL] ApplyCode - error for account %s: %v", accountID, err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"referralId":        referral.ReferralID,
		"referrerAccountId": referral.ReferrerAccountID,
		"status":            referral.Status,
	})
}

// ShareQR renders the caller's referral code as a QR image
// @Summary Referral code QR
// @Description PNG QR of the caller's referral code for sharing
// @Tags referrals
// @Produce png
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 401 {object} services.ErrorResponse
// @Router /referrals/qr [get]
func (h *ReferralHandler) ShareQR(w http.ResponseWriter, r *http.Request) {
	accountID, ok := r.Context().Value("userID").(string)
	if !ok || accountID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	code, err := h.service.GenerateCode(r.Context(), accountID)
	if err != nil {
		log.Printf("[REFERRAL] ShareQR - error for account %s: %v", accountID, err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		log.Printf("[REFERRAL] ShareQR - encode error: %v", err)
		services.SendErrorResponse(w, "Failed to render QR", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(png)
}
