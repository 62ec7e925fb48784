// Package web serves the landing page and the forecast form/result page as
// server-rendered HTML.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kartoza/material-forecast/internal/forecast"
	"github.com/kartoza/material-forecast/internal/predict"
	"github.com/kartoza/material-forecast/internal/presets"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Submitter runs one forecast submission
type Submitter interface {
	Submit(ctx context.Context, req forecast.Request) (*forecast.Result, error)
}

// PresetSource provides saved parameter sets for the form
type PresetSource interface {
	List() ([]*presets.Preset, error)
	Get(id string) (*presets.Preset, error)
}

type pageData struct {
	Title   string
	Active  string
	Version string

	Fields  []forecast.Field
	Presets []*presets.Preset
	Preset  string
	Form    forecast.Request
	Result  *forecast.Result
	Metrics []forecast.Metric
	Error   string
}

// Handler renders the application pages
type Handler struct {
	submitter Submitter
	presets   PresetSource
	version   string
	pages     map[string]*template.Template
	static    http.Handler
}

// NewHandler parses the embedded templates. presetSource may be nil.
func NewHandler(submitter Submitter, presetSource PresetSource, version string) (*Handler, error) {
	h := &Handler{
		submitter: submitter,
		presets:   presetSource,
		version:   version,
		pages:     make(map[string]*template.Template),
	}

	for _, name := range []string{"landing", "forecast"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		h.pages[name] = tmpl
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	h.static = http.StripPrefix("/static/", http.FileServer(http.FS(staticContent)))

	return h, nil
}

// RegisterRoutes sets up the page routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleLanding).Methods("GET")
	r.HandleFunc("/forecast", h.handleForecastForm).Methods("GET")
	r.HandleFunc("/forecast", h.handleForecastSubmit).Methods("POST")
	r.PathPrefix("/static/").Handler(h.static).Methods("GET")
}

// handleLanding renders the landing page
func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "landing", pageData{Title: "Home", Active: "landing"})
}

// handleForecastForm renders a fresh form with default values, or with the
// values of the preset named by ?preset=
func (h *Handler) handleForecastForm(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("preset")
	if id == "" || h.presets == nil {
		h.render(w, http.StatusOK, "forecast", h.forecastPage(forecast.DefaultRequest()))
		return
	}

	p, err := h.presets.Get(id)
	if err != nil {
		data := h.forecastPage(forecast.DefaultRequest())
		if errors.Is(err, presets.ErrNotFound) {
			data.Error = err.Error()
			h.render(w, http.StatusNotFound, "forecast", data)
			return
		}
		log.Printf("Error loading preset %s: %v", id, err)
		data.Error = "could not load preset"
		h.render(w, http.StatusInternalServerError, "forecast", data)
		return
	}

	data := h.forecastPage(p.Request)
	data.Preset = p.ID
	h.render(w, http.StatusOK, "forecast", data)
}

// handleForecastSubmit sends the submitted form to the prediction service and
// renders the result or the error. The submitted values stay in the form.
func (h *Handler) handleForecastSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		data := h.forecastPage(forecast.DefaultRequest())
		data.Error = "invalid form submission"
		h.render(w, http.StatusBadRequest, "forecast", data)
		return
	}

	req := forecast.FromForm(r.PostForm)
	data := h.forecastPage(req)

	res, err := h.submitter.Submit(r.Context(), req)
	if err != nil {
		var verr *forecast.ValidationError
		if errors.As(err, &verr) {
			data.Error = verr.Error()
			h.render(w, http.StatusBadRequest, "forecast", data)
			return
		}
		data.Error = predict.ErrPredictionFailed.Error()
		h.render(w, http.StatusBadGateway, "forecast", data)
		return
	}

	data.Result = res
	data.Metrics = res.Metrics()
	h.render(w, http.StatusOK, "forecast", data)
}

func (h *Handler) forecastPage(req forecast.Request) pageData {
	data := pageData{
		Title:  "Demand Forecast",
		Active: "forecast",
		Fields: forecast.SelectFields(),
		Form:   req,
	}
	if h.presets != nil {
		list, err := h.presets.List()
		if err != nil {
			log.Printf("Warning: could not list presets: %v", err)
		}
		data.Presets = list
	}
	return data
}

// render executes into a buffer first so template errors never leave a
// half-written page
func (h *Handler) render(w http.ResponseWriter, status int, page string, data pageData) {
	data.Version = h.version

	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("Error rendering %s page: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
