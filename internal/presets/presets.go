package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kartoza/material-forecast/internal/forecast"
)

var (
	// ErrNotFound is returned when no preset has the requested ID
	ErrNotFound = errors.New("preset not found")
	// ErrTitleRequired is returned when a preset is saved without a title
	ErrTitleRequired = errors.New("title is required")
)

// Preset is a named set of project parameters that can be loaded into the form
type Preset struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Request     forecast.Request `json:"request"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

// Store handles preset persistence as one JSON file per preset
type Store struct {
	presetsDir string
}

// NewStore creates a new preset store under dataDir/presets
func NewStore(dataDir string) (*Store, error) {
	presetsDir := filepath.Join(dataDir, "presets")

	if err := os.MkdirAll(presetsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create presets directory: %w", err)
	}

	return &Store{presetsDir: presetsDir}, nil
}

// List returns all presets sorted by creation date (newest first)
func (s *Store) List() ([]*Preset, error) {
	entries, err := os.ReadDir(s.presetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets directory: %w", err)
	}

	presets := make([]*Preset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p, err := s.load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // Skip unreadable presets
		}
		presets = append(presets, p)
	}

	sort.Slice(presets, func(i, j int) bool {
		return presets[i].CreatedAt > presets[j].CreatedAt
	})

	return presets, nil
}

// Get retrieves a preset by ID
func (s *Store) Get(id string) (*Preset, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.load(id)
}

// Create validates and saves a new preset
func (s *Store) Create(p *Preset) (*Preset, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := forecast.Validate(p.Request); err != nil {
		return nil, err
	}

	p.ID = uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies non-empty fields of updates to an existing preset
func (s *Store) Update(id string, updates *Preset) (*Preset, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if updates.Title != "" {
		p.Title = updates.Title
	}
	if updates.Description != "" {
		p.Description = updates.Description
	}
	if updates.Request != (forecast.Request{}) {
		if err := forecast.Validate(updates.Request); err != nil {
			return nil, err
		}
		p.Request = updates.Request
	}
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a preset
func (s *Store) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return os.Remove(s.path(id))
}

func (s *Store) path(id string) string {
	return filepath.Join(s.presetsDir, id+".json")
}

// load reads a preset from disk
func (s *Store) load(id string) (*Preset, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}
	return &p, nil
}

// save writes a preset to disk
func (s *Store) save(p *Preset) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}
	if err := os.WriteFile(s.path(p.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}
	return nil
}
