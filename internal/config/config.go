// Package config loads and validates researcher configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper. No component
// reads global state; the orchestrator passes values down by constructor.
type Config struct {
	Website      WebsiteConfig      `mapstructure:"website"`
	Browser      BrowserConfig      `mapstructure:"browser"`
	Research     ResearchConfig     `mapstructure:"research"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Encyclopedia EncyclopediaConfig `mapstructure:"encyclopedia"`
	Geocoding    GeocodingConfig    `mapstructure:"geocoding"`
	Translation  TranslationConfig  `mapstructure:"translation"`
	Output       OutputConfig       `mapstructure:"output"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// WebsiteConfig points at the primary catalog.
type WebsiteConfig struct {
	BaseURL   string   `mapstructure:"base_url"`
	PageTypes []string `mapstructure:"page_types"`
	UserAgent string   `mapstructure:"user_agent"`
}

// BrowserConfig controls the headless rendering session.
type BrowserConfig struct {
	Headless      bool `mapstructure:"headless"`
	WindowWidth   int  `mapstructure:"window_width"`
	WindowHeight  int  `mapstructure:"window_height"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// ResearchConfig governs the per-site pipeline.
type ResearchConfig struct {
	MatchThreshold     float64 `mapstructure:"match_threshold"`
	MinParagraphLength int     `mapstructure:"min_paragraph_length"`
	MaxFacts           int     `mapstructure:"max_facts"`
	MaxSubLocations    int     `mapstructure:"max_sub_locations"`
	MaxTerms           int     `mapstructure:"max_terms"`
	MaxTips            int     `mapstructure:"max_tips"`
	MaxImages          int     `mapstructure:"max_images"`
	Concurrency        int     `mapstructure:"concurrency"`
	MaxSitesPerType    int     `mapstructure:"max_sites_per_type"`
}

// HTTPConfig configures HTTP client timeout and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxRetries       int `mapstructure:"max_retries"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// RateLimitConfig sets the minimum spacing between calls per service.
type RateLimitConfig struct {
	PrimaryIntervalMs      int `mapstructure:"primary_interval_ms"`
	EncyclopediaIntervalMs int `mapstructure:"encyclopedia_interval_ms"`
	GeocodingIntervalMs    int `mapstructure:"geocoding_interval_ms"`
	TranslationIntervalMs  int `mapstructure:"translation_interval_ms"`
}

// EncyclopediaConfig points at the MediaWiki API.
type EncyclopediaConfig struct {
	EndpointTemplate string `mapstructure:"endpoint_template"`
	UserAgent        string `mapstructure:"user_agent"`
	SearchLimit      int    `mapstructure:"search_limit"`
}

// GeocodingConfig points at the Nominatim endpoint.
type GeocodingConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	UserAgent string `mapstructure:"user_agent"`
}

// TranslationConfig points at the translation endpoint.
type TranslationConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	SourceLang string `mapstructure:"source_lang"`
	TargetLang string `mapstructure:"target_lang"`
}

// OutputConfig sets the export destination.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment on top of v, which may
// already carry CLI flag bindings.
func Load(v *viper.Viper, path string) (Config, error) {
	v.SetEnvPrefix("RESEARCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("website.base_url", "https://egymonuments.gov.eg")
	v.SetDefault("website.page_types", []string{
		"archaeological-sites", "monuments", "museums", "sunken-monuments",
	})
	v.SetDefault("website.user_agent", "HeritageResearcher/1.0 (educational research project)")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.nav_timeout_seconds", 25)

	v.SetDefault("research.match_threshold", 0.65)
	v.SetDefault("research.min_paragraph_length", 40)
	v.SetDefault("research.max_facts", 5)
	v.SetDefault("research.max_sub_locations", 5)
	v.SetDefault("research.max_terms", 8)
	v.SetDefault("research.max_tips", 8)
	v.SetDefault("research.max_images", 5)
	v.SetDefault("research.concurrency", 2)
	v.SetDefault("research.max_sites_per_type", 0)

	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)

	v.SetDefault("ratelimit.primary_interval_ms", 500)
	v.SetDefault("ratelimit.encyclopedia_interval_ms", 200)
	v.SetDefault("ratelimit.geocoding_interval_ms", 1000)
	v.SetDefault("ratelimit.translation_interval_ms", 200)

	v.SetDefault("encyclopedia.endpoint_template", "https://%s.wikipedia.org/w/api.php")
	v.SetDefault("encyclopedia.user_agent", "HeritageResearcher/1.0 (educational research project)")
	v.SetDefault("encyclopedia.search_limit", 5)

	v.SetDefault("geocoding.endpoint", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geocoding.user_agent", "HeritageResearcher/1.0 (educational research project)")

	v.SetDefault("translation.endpoint", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("translation.source_lang", "en")
	v.SetDefault("translation.target_lang", "ar")

	v.SetDefault("output.path", "data/unlock_egypt.json")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Website.BaseURL == "" {
		return fmt.Errorf("website.base_url must be set")
	}
	if c.Research.MatchThreshold <= 0 || c.Research.MatchThreshold > 1 {
		return fmt.Errorf("research.match_threshold must be in (0, 1]")
	}
	if c.Research.Concurrency <= 0 {
		return fmt.Errorf("research.concurrency must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.RateLimit.GeocodingIntervalMs <= 0 {
		return fmt.Errorf("ratelimit.geocoding_interval_ms must be > 0")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must be set")
	}
	return nil
}

// HTTPTimeout converts the configured timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
