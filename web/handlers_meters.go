package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/metersplit/metersplit/domain/meter"
)

// MeterResponse represents a meter in API responses.
type MeterResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MeterNo     string  `json:"meter_no,omitempty"`
	Previous    float64 `json:"previous"`
	Current     float64 `json:"current"`
	Consumption float64 `json:"consumption"`
}

// CreateMeterRequest represents a request to register a sub-meter.
type CreateMeterRequest struct {
	Name    string `json:"name"`
	MeterNo string `json:"meter_no,omitempty"`
}

// UpdateMeterRequest represents a request to update meter metadata.
type UpdateMeterRequest struct {
	Name    string `json:"name,omitempty"`
	MeterNo string `json:"meter_no,omitempty"`
}

// ReadingsRequest represents a request to update meter readings.
// Omitted fields keep their stored value.
type ReadingsRequest struct {
	MeterNo  string   `json:"meter_no,omitempty"`
	Previous *float64 `json:"previous,omitempty"`
	Current  *float64 `json:"current,omitempty"`
}

// ListMeters returns all sub-meters.
//
//	@Summary		List sub-meters
//	@Description	Get all tenant sub-meters in insertion order
//	@Tags			Meters
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Meters list"
//	@Router			/api/v1/meters [get]
func (h *Handler) ListMeters(w http.ResponseWriter, r *http.Request) {
	readings, err := h.meters.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list meters")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list meters")
		return
	}

	response := make([]MeterResponse, len(readings))
	for i, m := range readings {
		response[i] = meterToResponse(m)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meters": response,
		"total":  len(response),
	})
}

// GetMeter returns a single sub-meter.
//
//	@Summary		Get sub-meter
//	@Tags			Meters
//	@Produce		json
//	@Param			id	path		string			true	"Meter ID"
//	@Success		200	{object}	MeterResponse	"Meter data"
//	@Failure		404	{object}	ErrorResponse	"Meter not found"
//	@Router			/api/v1/meters/{id} [get]
func (h *Handler) GetMeter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := h.meters.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Meter not found")
		return
	}

	writeJSON(w, http.StatusOK, meterToResponse(m))
}

// CreateMeter registers a new sub-meter.
//
//	@Summary		Create sub-meter
//	@Description	Register a tenant sub-meter with zero readings
//	@Tags			Meters
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateMeterRequest	true	"Meter data"
//	@Success		201		{object}	MeterResponse		"Created meter"
//	@Failure		400		{object}	ErrorResponse		"Invalid request"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/meters [post]
func (h *Handler) CreateMeter(w http.ResponseWriter, r *http.Request) {
	var req CreateMeterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	m, err := h.meters.Add(r.Context(), req.Name, req.MeterNo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_meter", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, meterToResponse(m))
}

// UpdateMeter updates meter metadata.
//
//	@Summary		Update sub-meter
//	@Description	Rename a sub-meter or change its meter number
//	@Tags			Meters
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Meter ID"
//	@Param			request	body		UpdateMeterRequest	true	"Update data"
//	@Success		200		{object}	MeterResponse		"Updated meter"
//	@Failure		404		{object}	ErrorResponse		"Meter not found"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/meters/{id} [put]
func (h *Handler) UpdateMeter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateMeterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if _, err := h.meters.Get(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Meter not found")
		return
	}

	if req.Name != "" {
		if err := h.meters.Rename(r.Context(), id, req.Name); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_meter", err.Error())
			return
		}
	}
	if req.MeterNo != "" {
		if err := h.meters.SetMeterNo(r.Context(), id, req.MeterNo); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_meter", err.Error())
			return
		}
	}

	m, err := h.meters.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load meter")
		return
	}

	writeJSON(w, http.StatusOK, meterToResponse(m))
}

// DeleteMeter removes a sub-meter.
//
//	@Summary		Delete sub-meter
//	@Tags			Meters
//	@Produce		json
//	@Param			id	path		string				true	"Meter ID"
//	@Success		200	{object}	map[string]string	"Deleted"
//	@Failure		404	{object}	ErrorResponse		"Meter not found"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/meters/{id} [delete]
func (h *Handler) DeleteMeter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.meters.Remove(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Meter not found")
		return
	}

	h.logger.Info().Str("meter_id", id).Msg("meter deleted")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetMeterReadings updates a sub-meter's readings.
//
//	@Summary		Set sub-meter readings
//	@Description	Update previous and/or current readings. Omitted fields are unchanged.
//	@Tags			Meters
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Meter ID"
//	@Param			request	body		ReadingsRequest	true	"Readings"
//	@Success		200		{object}	MeterResponse	"Updated meter"
//	@Failure		404		{object}	ErrorResponse	"Meter not found"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/meters/{id}/readings [put]
func (h *Handler) SetMeterReadings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ReadingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	m, err := h.meters.SetReadings(r.Context(), id, req.Previous, req.Current)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Meter not found")
		return
	}

	writeJSON(w, http.StatusOK, meterToResponse(m))
}

// GetMainMeter returns the main meter reading.
//
//	@Summary		Get main meter
//	@Tags			Meters
//	@Produce		json
//	@Success		200	{object}	MeterResponse	"Main meter"
//	@Router			/api/v1/meters/main [get]
func (h *Handler) GetMainMeter(w http.ResponseWriter, r *http.Request) {
	m, err := h.meters.Main(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load main meter")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load main meter")
		return
	}

	writeJSON(w, http.StatusOK, meterToResponse(m))
}

// SetMainReadings updates the main meter readings.
//
//	@Summary		Set main meter readings
//	@Description	Update previous and/or current main meter readings. Omitted fields are unchanged.
//	@Tags			Meters
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ReadingsRequest	true	"Readings"
//	@Success		200		{object}	MeterResponse	"Main meter"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/meters/main/readings [put]
func (h *Handler) SetMainReadings(w http.ResponseWriter, r *http.Request) {
	var req ReadingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	m, err := h.meters.SetMainReadings(r.Context(), req.MeterNo, req.Previous, req.Current)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to update main meter")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to update main meter")
		return
	}

	writeJSON(w, http.StatusOK, meterToResponse(m))
}

func meterToResponse(m meter.Reading) MeterResponse {
	return MeterResponse{
		ID:          m.ID,
		Name:        m.Name,
		MeterNo:     m.MeterNo,
		Previous:    m.Previous,
		Current:     m.Current,
		Consumption: m.Consumption(),
	}
}
