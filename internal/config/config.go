package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultAPIURL is the prediction service address used when nothing else is configured
const DefaultAPIURL = "http://127.0.0.1:5000"

// Config holds the application configuration
type Config struct {
	Port           int
	DataDir        string
	APIURL         string
	RequestTimeout time.Duration
	Version        string
}

// ResolveAPIURL picks the prediction service URL in order of precedence:
// explicit flag, API_URL, VITE_API_URL, saved settings, then DefaultAPIURL.
func ResolveAPIURL(flagValue string, settings *Settings) string {
	candidates := []string{
		flagValue,
		os.Getenv("API_URL"),
		os.Getenv("VITE_API_URL"),
	}
	if settings != nil {
		candidates = append(candidates, settings.APIURL)
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return strings.TrimRight(c, "/")
		}
	}
	return DefaultAPIURL
}

// ValidateAPIURL checks that raw is an absolute http(s) URL
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api url %q: missing host", raw)
	}
	return nil
}
