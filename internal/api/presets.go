package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kartoza/material-forecast/internal/forecast"
	"github.com/kartoza/material-forecast/internal/httputil"
	"github.com/kartoza/material-forecast/internal/presets"
)

// handleListPresets returns all saved presets
func (h *Handler) handleListPresets(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		httputil.RespondJSON(w, http.StatusOK, []*presets.Preset{})
		return
	}

	list, err := h.presets.List()
	if err != nil {
		log.Printf("Error listing presets: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "could not list presets")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, list)
}

// handleGetPreset returns a single preset
func (h *Handler) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		httputil.RespondError(w, http.StatusNotFound, "presets not available")
		return
	}

	p, err := h.presets.Get(mux.Vars(r)["id"])
	if err != nil {
		h.respondPresetError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}

// handleCreatePreset saves a new preset
func (h *Handler) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "presets not available")
		return
	}

	var p presets.Preset
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.presets.Create(&p)
	if err != nil {
		h.respondPresetError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, created)
}

// handleUpdatePreset updates an existing preset
func (h *Handler) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		httputil.RespondError(w, http.StatusNotFound, "presets not available")
		return
	}

	var updates presets.Preset
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&updates); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.presets.Update(mux.Vars(r)["id"], &updates)
	if err != nil {
		h.respondPresetError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}

// handleDeletePreset removes a preset
func (h *Handler) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if h.presets == nil {
		httputil.RespondError(w, http.StatusNotFound, "presets not available")
		return
	}

	if err := h.presets.Delete(mux.Vars(r)["id"]); err != nil {
		h.respondPresetError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondPresetError(w http.ResponseWriter, err error) {
	var verr *forecast.ValidationError
	switch {
	case errors.Is(err, presets.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr), errors.Is(err, presets.ErrTitleRequired):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Error handling preset: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "could not handle preset")
	}
}
