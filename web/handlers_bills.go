package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/metersplit/metersplit/domain/bill"
	"github.com/metersplit/metersplit/ports"
)

// BillRequest represents a request to compute a bill.
type BillRequest struct {
	Month           string `json:"month,omitempty" example:"2024-05"`
	IncludeLateFee  bool   `json:"include_late_fee"`
	IncludeBkashFee bool   `json:"include_bkash_fee"`
}

// UserShareResponse represents one tenant's row in a bill.
type UserShareResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	UnitsUsed    float64 `json:"units_used"`
	EnergyCost   float64 `json:"energy_cost"`
	FixedCost    float64 `json:"fixed_cost"`
	TotalPayable float64 `json:"total_payable"`
	Previous     float64 `json:"previous"`
	Current      float64 `json:"current"`
}

// BillBreakdownResponse represents a full allocation breakdown.
type BillBreakdownResponse struct {
	Month           string              `json:"month,omitempty"`
	VATFixed        float64             `json:"vat_fixed"`
	VATDistributed  float64             `json:"vat_distributed"`
	VATTotal        float64             `json:"vat_total"`
	LateFee         float64             `json:"late_fee"`
	CalculatedRate  float64             `json:"calculated_rate"`
	TotalUnits      float64             `json:"total_units"`
	TotalCollection float64             `json:"total_collection"`
	Users           []UserShareResponse `json:"users"`
}

// BillRecordResponse represents a stored bill in history listings.
type BillRecordResponse struct {
	ID               string          `json:"id"`
	Month            string          `json:"month"`
	GeneratedAt      string          `json:"generated_at"`
	IncludeLateFee   bool            `json:"include_late_fee"`
	IncludeBkashFee  bool            `json:"include_bkash_fee"`
	TotalBillPayable float64         `json:"total_bill_payable"`
	MainMeter        MeterResponse   `json:"main_meter"`
	SubMeters        []MeterResponse `json:"sub_meters,omitempty"`
	TariffVersion    int64           `json:"tariff_version"`
	CreatedAt        string          `json:"created_at,omitempty"`
}

// PreviewBill computes a bill without persisting anything.
//
//	@Summary		Preview bill
//	@Description	Run the allocation over current meters and tariff without saving
//	@Tags			Bills
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BillRequest				true	"Bill options"
//	@Success		200		{object}	BillBreakdownResponse	"Allocation breakdown"
//	@Router			/api/v1/bills/preview [post]
func (h *Handler) PreviewBill(w http.ResponseWriter, r *http.Request) {
	// Empty body means current month with default options.
	var req BillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	res, _, err := h.billing.Preview(r.Context(), bill.Options{
		Month:           req.Month,
		IncludeLateFee:  req.IncludeLateFee,
		IncludeBkashFee: req.IncludeBkashFee,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to preview bill")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute bill")
		return
	}

	writeJSON(w, http.StatusOK, breakdownToResponse(req.Month, res))
}

// SaveBill computes a bill and persists it to history.
//
//	@Summary		Save bill
//	@Description	Run the allocation and store the snapshot in bill history
//	@Tags			Bills
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BillRequest				true	"Bill options"
//	@Success		201		{object}	map[string]interface{}	"Stored record plus breakdown"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/bills [post]
func (h *Handler) SaveBill(w http.ResponseWriter, r *http.Request) {
	var req BillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	rec, res, err := h.billing.SaveToHistory(r.Context(), bill.Options{
		Month:           req.Month,
		IncludeLateFee:  req.IncludeLateFee,
		IncludeBkashFee: req.IncludeBkashFee,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to save bill")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save bill")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"bill":      recordToResponse(rec),
		"breakdown": breakdownToResponse(rec.Month, res),
	})
}

// ListBills returns stored bills, newest first.
//
//	@Summary		List bill history
//	@Tags			Bills
//	@Produce		json
//	@Param			limit	query		int						false	"Max results"	default(100)
//	@Success		200		{object}	map[string]interface{}	"Bills list"
//	@Router			/api/v1/bills [get]
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	recs, err := h.bills.List(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list bills")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list bills")
		return
	}

	response := make([]BillRecordResponse, len(recs))
	for i, rec := range recs {
		response[i] = recordToResponse(rec)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bills": response,
		"total": len(response),
	})
}

// GetBill returns a stored bill with its per-user breakdown.
//
//	@Summary		Get stored bill
//	@Tags			Bills
//	@Produce		json
//	@Param			id	path		string					true	"Bill ID"
//	@Success		200	{object}	map[string]interface{}	"Bill record and user shares"
//	@Failure		404	{object}	ErrorResponse			"Bill not found"
//	@Router			/api/v1/bills/{id} [get]
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.bills.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Bill not found")
		return
	}

	users, err := h.bills.ListUsers(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("bill_id", id).Msg("failed to load bill users")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load bill")
		return
	}

	userResp := make([]UserShareResponse, len(users))
	for i, u := range users {
		userResp[i] = userToResponse(u)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bill":  recordToResponse(rec),
		"users": userResp,
	})
}

// ReplayBill re-runs the allocation over a stored snapshot.
//
//	@Summary		Replay stored bill
//	@Description	Re-run the allocation over the stored meter snapshot with the current tariff
//	@Tags			Bills
//	@Produce		json
//	@Param			id	path		string					true	"Bill ID"
//	@Success		200	{object}	map[string]interface{}	"Stored record plus recomputed breakdown"
//	@Failure		404	{object}	ErrorResponse			"Bill not found"
//	@Router			/api/v1/bills/{id}/replay [get]
func (h *Handler) ReplayBill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, res, err := h.billing.Replay(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Bill not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bill":      recordToResponse(rec),
		"breakdown": breakdownToResponse(rec.Month, res),
	})
}

// DeleteBill removes a stored bill.
//
//	@Summary		Delete stored bill
//	@Tags			Bills
//	@Produce		json
//	@Param			id	path		string				true	"Bill ID"
//	@Success		200	{object}	map[string]string	"Deleted"
//	@Failure		404	{object}	ErrorResponse		"Bill not found"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/bills/{id} [delete]
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.bills.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Bill not found")
		return
	}

	h.logger.Info().Str("bill_id", id).Msg("bill deleted")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Rollover closes the billing period for every meter.
//
//	@Summary		Roll over billing period
//	@Description	Copy every meter's current reading into its previous reading
//	@Tags			Bills
//	@Produce		json
//	@Success		200	{object}	map[string]string	"Rolled over"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/rollover [post]
func (h *Handler) Rollover(w http.ResponseWriter, r *http.Request) {
	if err := h.billing.Rollover(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to roll over period")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to roll over period")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "rolled_over"})
}

func breakdownToResponse(month string, res bill.Result) BillBreakdownResponse {
	users := make([]UserShareResponse, len(res.Users))
	for i, u := range res.Users {
		users[i] = userToResponse(u)
	}
	return BillBreakdownResponse{
		Month:           month,
		VATFixed:        res.VATFixed,
		VATDistributed:  res.VATDistributed,
		VATTotal:        res.VATTotal,
		LateFee:         res.LateFee,
		CalculatedRate:  res.CalculatedRate,
		TotalUnits:      res.TotalUnits,
		TotalCollection: res.TotalCollection,
		Users:           users,
	}
}

func userToResponse(u bill.UserShare) UserShareResponse {
	return UserShareResponse{
		ID:           u.ID,
		Name:         u.Name,
		UnitsUsed:    u.UnitsUsed,
		EnergyCost:   u.EnergyCost,
		FixedCost:    u.FixedCost,
		TotalPayable: u.TotalPayable,
		Previous:     u.Previous,
		Current:      u.Current,
	}
}

func recordToResponse(rec ports.BillRecord) BillRecordResponse {
	subs := make([]MeterResponse, len(rec.SubMeters))
	for i, m := range rec.SubMeters {
		subs[i] = meterToResponse(m)
	}
	resp := BillRecordResponse{
		ID:               rec.ID,
		Month:            rec.Month,
		GeneratedAt:      rec.GeneratedAt.Format(time.RFC3339),
		IncludeLateFee:   rec.IncludeLateFee,
		IncludeBkashFee:  rec.IncludeBkashFee,
		TotalBillPayable: rec.TotalBillPayable,
		MainMeter:        meterToResponse(rec.MainMeter),
		SubMeters:        subs,
		TariffVersion:    rec.TariffVersion,
	}
	if !rec.CreatedAt.IsZero() {
		resp.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
