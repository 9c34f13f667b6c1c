package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/deikas123/thefoodbasket-sub001/internal/models"
	"github.com/deikas123/thefoodbasket-sub001/internal/services"
)

type AdminHandler struct {
	rewards   *services.RewardsService
	settings  *services.SettingsService
	validator *services.ValidationHelper
}

func NewAdminHandler(rewards *services.RewardsService, settings *services.SettingsService) *AdminHandler {
	return &AdminHandler{
		rewards:   rewards,
		settings:  settings,
		validator: services.NewValidationHelper(),
	}
}

// AdjustPoints applies a manual correction
// @Summary Adjust points
// @Description Admin-only credit or deduction with a recorded reason
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{accountId=string,points=int64,reason=string,isDeduction=bool} true "Adjustment"
// @Success 200 {object} object{newBalance=int64,delta=int64}
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/adjustments [post]
func (h *AdminHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID   string `json:"accountId" validate:"required"`
		Points      int64  `json:"points" validate:"required,gt=0"`
		Reason      string `json:"reason" validate:"required,max=200"`
		IsDeduction bool   `json:"isDeduction"`
	}

	if !h.decode(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.rewards.AdjustPoints(r.Context(), req.AccountID, req.Points, req.Reason, req.IsDeduction)
	if err != nil {
		log.Printf("[ADMIN] AdjustPoints - error for account %s: %v", req.AccountID, err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"newBalance": result.Account.PointsBalance,
		"delta":      result.PointsAwarded,
	})
}

// GetSettings returns the active configuration version
// @Summary Get loyalty settings
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Settings
// @Failure 500 {object} services.ErrorResponse
// @Router /admin/settings [get]
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.Active(r.Context())
	if err != nil {
		log.Printf("[ADMIN] GetSettings - error: %v", err)
		services.SendErrorResponse(w, "Failed to load settings", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

// UpdateSettings writes a new configuration version
// @Summary Update loyalty settings
// @Description Validates tier ordering and rates, then activates a new settings version
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param settings body models.Settings true "New settings"
// @Success 200 {object} models.Settings
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/settings [put]
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var cfg models.Settings

	if !h.decode(w, r, &cfg) {
		return
	}

	if err := h.validator.ValidateStruct(&cfg); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	updated, err := h.settings.Update(r.Context(), &cfg)
	if err != nil {
		log.Printf("[ADMIN] UpdateSettings - error: %v", err)
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
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
