package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Optional service auth: when set, API requests need this bearer token.
	ServiceAPIKey string

	// Default Jira credentials; per-request headers override these, so a
	// deployment may leave them empty and pass credentials per session.
	JiraBaseURL  string
	JiraEmail    string
	JiraAPIToken string

	// AcceptanceFieldID names a custom field already holding acceptance
	// criteria (e.g. "customfield_10042"). Empty means discovery only.
	AcceptanceFieldID string

	// Batch pipeline
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration
	MaxRetries   int

	// Upload limits for story import
	MaxUploadBytes int64

	// Stats window
	StatsWindow time.Duration

	// PDF import
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8085"),

		ServiceAPIKey: os.Getenv("SERVICE_API_KEY"),

		JiraBaseURL:  os.Getenv("JIRA_BASE_URL"),
		JiraEmail:    os.Getenv("JIRA_EMAIL"),
		JiraAPIToken: os.Getenv("JIRA_API_TOKEN"),

		AcceptanceFieldID: os.Getenv("ACCEPTANCE_FIELD_ID"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),
		MaxRetries:   envInt("MAX_RETRIES", 3),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.JiraBaseURL != "" {
		u, err := url.Parse(c.JiraBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("JIRA_BASE_URL is not an absolute URL: %q", c.JiraBaseURL)
		}
	}
	// Partial default credentials are a misconfiguration; all-or-nothing.
	set := 0
	for _, v := range []string{c.JiraBaseURL, c.JiraEmail, c.JiraAPIToken} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("JIRA_BASE_URL, JIRA_EMAIL and JIRA_API_TOKEN must be set together")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
