package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/kartoza/material-forecast/internal/config"
	"github.com/kartoza/material-forecast/internal/forecast"
	"github.com/kartoza/material-forecast/internal/history"
	"github.com/kartoza/material-forecast/internal/httputil"
	"github.com/kartoza/material-forecast/internal/models"
	"github.com/kartoza/material-forecast/internal/predict"
	"github.com/kartoza/material-forecast/internal/presets"
	"github.com/kartoza/material-forecast/internal/service"
)

const maxBodyBytes = 1 << 20

// Handler provides HTTP API endpoints
type Handler struct {
	forecaster *service.Forecaster
	client     *predict.Client
	history    *history.Store
	presets    *presets.Store
	cfg        config.Config
}

// NewHandler creates a new API handler. history and presetStore may be nil.
func NewHandler(
	forecaster *service.Forecaster,
	client *predict.Client,
	history *history.Store,
	presetStore *presets.Store,
	cfg config.Config,
) *Handler {
	return &Handler{
		forecaster: forecaster,
		client:     client,
		history:    history,
		presets:    presetStore,
		cfg:        cfg,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Health and info
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")

	// Forecasting
	r.HandleFunc("/options", h.handleOptions).Methods("GET")
	r.HandleFunc("/forecast", h.handleForecast).Methods("POST")

	// History
	r.HandleFunc("/forecasts", h.handleListForecasts).Methods("GET")
	r.HandleFunc("/forecasts", h.handleClearForecasts).Methods("DELETE")
	r.HandleFunc("/forecasts/{id}", h.handleGetForecast).Methods("GET")
	r.HandleFunc("/forecasts/{id}", h.handleDeleteForecast).Methods("DELETE")

	// Presets
	r.HandleFunc("/presets", h.handleListPresets).Methods("GET")
	r.HandleFunc("/presets", h.handleCreatePreset).Methods("POST")
	r.HandleFunc("/presets/{id}", h.handleGetPreset).Methods("GET")
	r.HandleFunc("/presets/{id}", h.handleUpdatePreset).Methods("PUT")
	r.HandleFunc("/presets/{id}", h.handleDeletePreset).Methods("DELETE")

	// Settings
	r.HandleFunc("/settings", h.handleGetSettings).Methods("GET")
	r.HandleFunc("/settings", h.handlePutSettings).Methods("PUT")
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server information and prediction service reachability
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := models.InfoResponse{
		Version:        h.cfg.Version,
		APIURL:         h.client.BaseURL(),
		HistoryEnabled: h.history != nil,
		PresetsEnabled: h.presets != nil,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.client.Ping(ctx); err != nil {
		info.UpstreamError = err.Error()
	} else {
		info.UpstreamOnline = true
	}

	if h.client.Latency != nil {
		info.Latency = h.client.Latency.Snapshot()
	}

	httputil.RespondJSON(w, http.StatusOK, info)
}

// handleOptions returns the form choices and defaults
func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, models.OptionsResponse{
		Fields:   forecast.SelectFields(),
		Defaults: forecast.DefaultRequest(),
	})
}

// handleForecast validates a request and forwards it to the prediction service
func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecast.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.forecaster.Submit(r.Context(), req)
	if err != nil {
		var verr *forecast.ValidationError
		if errors.As(err, &verr) {
			httputil.RespondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		httputil.RespondError(w, http.StatusBadGateway, predict.ErrPredictionFailed.Error())
		return
	}

	httputil.RespondJSON(w, http.StatusOK, res)
}

// handleListForecasts returns recent submissions, newest first
func (h *Handler) handleListForecasts(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		httputil.RespondJSON(w, http.StatusOK, []*history.Entry{})
		return
	}

	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.history.List(limit)
	if err != nil {
		log.Printf("Error listing forecasts: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "could not list forecasts")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, entries)
}

// handleGetForecast returns one recorded submission
func (h *Handler) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		httputil.RespondError(w, http.StatusNotFound, "history not available")
		return
	}

	entry, err := h.history.Get(mux.Vars(r)["id"])
	if errors.Is(err, history.ErrNotFound) {
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("Error reading forecast: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "could not read forecast")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, entry)
}

// handleDeleteForecast removes one recorded submission
func (h *Handler) handleDeleteForecast(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		httputil.RespondError(w, http.StatusNotFound, "history not available")
		return
	}

	err := h.history.Delete(mux.Vars(r)["id"])
	if errors.Is(err, history.ErrNotFound) {
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("Error deleting forecast: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "could not delete forecast")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearForecasts removes all recorded submissions
func (h *Handler) handleClearForecasts(w http.ResponseWriter, r *http.Request) {
	if h.history != nil {
		if err := h.history.Clear(); err != nil {
			log.Printf("Error clearing forecasts: %v", err)
			httputil.RespondError(w, http.StatusInternalServerError, "could not clear forecasts")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSettings returns the active prediction service address
func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, models.SettingsResponse{APIURL: h.client.BaseURL()})
}

// handlePutSettings persists a new prediction service address and applies it
func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	apiURL := strings.TrimRight(strings.TrimSpace(req.APIURL), "/")
	if err := config.ValidateAPIURL(apiURL); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Printf("Warning: could not load settings, overwriting: %v", err)
	}
	settings.APIURL = apiURL
	if err := config.SaveSettings(settings); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "could not save settings")
		return
	}

	h.client.SetBaseURL(apiURL)
	log.Printf("Prediction service set to %s", apiURL)
	httputil.RespondJSON(w, http.StatusOK, models.SettingsResponse{APIURL: apiURL})
}
