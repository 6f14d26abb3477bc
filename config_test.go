package spacetraveling

import (
	"testing"
	"time"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SITE_URL", "https://spacetraveling.example")
	t.Setenv("PRISMIC_API_ENDPOINT", "https://spacetraveling.cdn.prismic.io/api/v2")
	t.Setenv("PAGE_SIZE", "5")
	t.Setenv("REVALIDATE", "30m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("UTTERANCES_THEME", "github-light")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.URL != "https://spacetraveling.example" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.PrismicEndpoint != "https://spacetraveling.cdn.prismic.io/api/v2" {
		t.Errorf("PrismicEndpoint = %q", cfg.PrismicEndpoint)
	}
	if cfg.PageSize != 5 || cfg.Revalidate != 30*time.Minute || !cfg.CookieSecure {
		t.Errorf("PageSize = %d, Revalidate = %v, CookieSecure = %v", cfg.PageSize, cfg.Revalidate, cfg.CookieSecure)
	}
	if cfg.Comments.Theme != "github-light" {
		t.Errorf("Comments.Theme = %q", cfg.Comments.Theme)
	}
	if cfg.Comments.Repo != "pejamp/spacetraveling-utterance-comments" {
		t.Errorf("Comments.Repo default = %q", cfg.Comments.Repo)
	}
}

func TestConfigFromEnvInvalid(t *testing.T) {
	t.Setenv("PAGE_SIZE", "many")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for non-numeric PAGE_SIZE")
	}
}

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Name", cfg.Name, "spacetraveling"},
		{"URL", cfg.URL, "http://localhost:3000"},
		{"Addr", cfg.Addr, ":3000"},
		{"LocalDatabasePath", cfg.LocalDatabasePath, "data/content.db"},
		{"DocumentType", cfg.DocumentType, "posts"},
		{"PageSize", cfg.PageSize, 1},
		{"Revalidate", cfg.Revalidate, time.Hour},
		{"HTTPTimeout", cfg.HTTPTimeout, 10 * time.Second},
		{"Locale", cfg.Locale, "pt-BR"},
		{"Comments.IssueTerm", cfg.Comments.IssueTerm, "pathname"},
		{"Comments.Label", cfg.Comments.Label, "comment :speech_balloon:"},
		{"Comments.Theme", cfg.Comments.Theme, "photon-dark"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}
