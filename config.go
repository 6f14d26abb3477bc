package spacetraveling

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/pejamp/spacetraveling/blog"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // Site name (default "spacetraveling")
	URL         string `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"SITE_DESCRIPTION"` // Site description for RSS and meta tags
	Author      string `env:"SITE_AUTHOR"`      // Publisher name for JSON-LD

	Addr string `env:"ADDR"` // Listen address (default ":3000")

	// PrismicEndpoint is the repository API root, e.g.
	// https://spacetraveling.cdn.prismic.io/api/v2. When empty the site
	// serves the local SQLite repository at LocalDatabasePath.
	PrismicEndpoint    string        `env:"PRISMIC_API_ENDPOINT"`
	PrismicAccessToken string        `env:"PRISMIC_ACCESS_TOKEN"`
	LocalDatabasePath  string        `env:"LOCAL_DATABASE_PATH"` // default "data/content.db"
	DocumentType       string        `env:"DOCUMENT_TYPE"`       // default "posts"
	PageSize           int           `env:"PAGE_SIZE"`           // Listing page size (default 1)
	HTTPTimeout        time.Duration `env:"HTTP_TIMEOUT"`        // Backend request timeout (default 10s)

	Revalidate    time.Duration `env:"REVALIDATE"`    // Page cache TTL (default 1h)
	WarmupWorkers int           `env:"WARMUP_WORKERS"` // Concurrent detail loads at startup (default 4)

	SessionSecret string `env:"SESSION_SECRET"` // Required: preview session signing secret
	CookieSecure  bool   `env:"COOKIE_SECURE"`  // Set true for HTTPS

	Locale   string `env:"LOCALE"`    // UI language (default "pt-BR")
	TimeZone string `env:"TIME_ZONE"` // IANA zone for displayed times (default "UTC")

	Comments CommentsConfig
}

// CommentsConfig configures the utterances widget on post pages.
type CommentsConfig struct {
	Disabled  bool   `env:"UTTERANCES_DISABLED"`
	Repo      string `env:"UTTERANCES_REPO"`
	Theme     string `env:"UTTERANCES_THEME"`
	Label     string `env:"UTTERANCES_LABEL"`
	IssueTerm string `env:"UTTERANCES_ISSUE_TERM"`
}

// ConfigFromEnv loads a SiteConfig from environment variables and fills
// unset fields with their defaults.
func ConfigFromEnv() (SiteConfig, error) {
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.LocalDatabasePath == "" {
		c.LocalDatabasePath = "data/content.db"
	}
	if c.DocumentType == "" {
		c.DocumentType = blog.DefaultDocumentType
	}
	if c.PageSize <= 0 {
		c.PageSize = 1
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.Revalidate <= 0 {
		c.Revalidate = time.Hour
	}
	if c.WarmupWorkers <= 0 {
		c.WarmupWorkers = 4
	}
	if c.Locale == "" {
		c.Locale = "pt-BR"
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
	if c.Comments.Repo == "" {
		c.Comments.Repo = "pejamp/spacetraveling-utterance-comments"
	}
	if c.Comments.Theme == "" {
		c.Comments.Theme = "photon-dark"
	}
	if c.Comments.Label == "" {
		c.Comments.Label = "comment :speech_balloon:"
	}
	if c.Comments.IssueTerm == "" {
		c.Comments.IssueTerm = "pathname"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithBackend replaces the content backend chosen from the configuration.
// Tests use it to run the site against a fake repository.
func WithBackend(b blog.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithHTTPClient sets the client used to reach the remote API.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}
