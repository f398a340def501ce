package web

import (
	"encoding/json"
	"net/http"

	"github.com/metersplit/metersplit/domain/tariff"
)

// TariffResponse represents the tariff configuration in API responses.
type TariffResponse struct {
	Version int64         `json:"version"`
	Config  tariff.Config `json:"config"`
}

// GetTariff returns the current tariff configuration.
//
//	@Summary		Get tariff
//	@Description	Get the current tariff configuration and its version
//	@Tags			Tariff
//	@Produce		json
//	@Success		200	{object}	TariffResponse	"Tariff config"
//	@Router			/api/v1/tariff [get]
func (h *Handler) GetTariff(w http.ResponseWriter, r *http.Request) {
	cfg, version, err := h.tariffs.Get(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load tariff")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load tariff")
		return
	}

	writeJSON(w, http.StatusOK, TariffResponse{Version: version, Config: cfg})
}

// UpdateTariff stores a new tariff configuration.
//
//	@Summary		Update tariff
//	@Description	Validate and store a new tariff configuration version
//	@Tags			Tariff
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tariff.Config	true	"Tariff config"
//	@Success		200		{object}	TariffResponse	"Stored config with new version"
//	@Failure		400		{object}	ErrorResponse	"Invalid config"
//	@Security		ApiKeyAuth
//	@Router			/api/v1/tariff [put]
func (h *Handler) UpdateTariff(w http.ResponseWriter, r *http.Request) {
	var cfg tariff.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	version, err := h.tariffs.Update(r.Context(), cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_tariff", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TariffResponse{Version: version, Config: cfg})
}
