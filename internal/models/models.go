package models

import (
	"github.com/kartoza/material-forecast/internal/forecast"
	"github.com/kartoza/material-forecast/internal/metrics"
)

// OptionsResponse lists the form choices and their defaults
type OptionsResponse struct {
	Fields   []forecast.Field `json:"fields"`
	Defaults forecast.Request `json:"defaults"`
}

// InfoResponse describes the running server and its prediction service
type InfoResponse struct {
	Version        string                     `json:"version"`
	APIURL         string                     `json:"api_url"`
	UpstreamOnline bool                       `json:"upstream_online"`
	UpstreamError  string                     `json:"upstream_error,omitempty"`
	HistoryEnabled bool                       `json:"history_enabled"`
	PresetsEnabled bool                       `json:"presets_enabled"`
	Latency        map[string]metrics.Latency `json:"latency"`
}

// SettingsRequest updates the prediction service address
type SettingsRequest struct {
	APIURL string `json:"api_url"`
}

// SettingsResponse contains the active prediction service address
type SettingsResponse struct {
	APIURL string `json:"api_url"`
}
