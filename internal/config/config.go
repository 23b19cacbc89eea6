// Package config defines the crawler's configuration surface and its
// defaults, loading (viper), and validation.
package config

import (
	"regexp"
	"strings"
)

// Config is the root configuration object, mirroring the db/logic/
// sources/logs sections of the configuration surface.
type Config struct {
	DB      DBConfig                `mapstructure:"db"`
	Logic   LogicConfig             `mapstructure:"logic"`
	Sources map[string]SourceConfig `mapstructure:"sources"`
	Logs    LogsConfig              `mapstructure:"logs"`
}

// DBConfig names the MongoDB connection and collections backing the
// TaskStore and DocumentStore.
type DBConfig struct {
	URI                 string `mapstructure:"uri"`
	Database            string `mapstructure:"database"`
	DocumentsCollection string `mapstructure:"documents_collection"`
	TasksCollection     string `mapstructure:"tasks_collection"`
}

// LogicConfig holds the coordinator's scheduling and retry knobs.
type LogicConfig struct {
	DelaySeconds            float64 `mapstructure:"delay_seconds"`
	LockTTLSeconds          int     `mapstructure:"lock_ttl_seconds"`
	RecrawlSeconds          int     `mapstructure:"recrawl_seconds"`
	MaxRetries              int     `mapstructure:"max_retries"`
	UserAgent               string  `mapstructure:"user_agent"`
	WorkerThreadsPerSource  int     `mapstructure:"worker_threads_per_source"`
	RetryBackoffBaseSeconds float64 `mapstructure:"retry_backoff_base_seconds"`
	RetryBackoffMaxSeconds  float64 `mapstructure:"retry_backoff_max_seconds"`
	TimeoutSeconds          float64 `mapstructure:"timeout_seconds"`
	ProgressLogSeconds      int     `mapstructure:"progress_log_seconds"`

	// StatusPort, when non-zero, makes the supervisor start a
	// read-only JSON status server on this port alongside the crawl.
	StatusPort int `mapstructure:"status_port"`
}

// SourceConfig is the union of every per-source key; a given source
// type only populates the fields relevant to it (encyclopedia vs. the
// two listing-paginated sources).
type SourceConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	MinWords int  `mapstructure:"min_words"`

	// Encyclopedia (category-graph) source.
	SeedCategories    []string `mapstructure:"seed_categories"`
	MaxDepth          int      `mapstructure:"max_depth"`
	DiscoveryMaxPages int      `mapstructure:"discovery_max_pages"`

	// Paginated-listing sources.
	ListingPagesFrom int `mapstructure:"listing_pages_from"`
	ListingPagesTo   int `mapstructure:"listing_pages_to"`
}

// LogsConfig configures the logging surface. Physical log rotation
// (MaxMB, Backups) is carried as config but has no rotation library
// wired in; see SPEC_FULL.md §10.1 for why.
type LogsConfig struct {
	Dir     string `mapstructure:"dir"`
	Level   string `mapstructure:"level"`
	MaxMB   int    `mapstructure:"max_mb"`
	Backups int    `mapstructure:"backups"`
}

// Source name constants matching the three sources this crawler
// implements: an encyclopedia category graph and two article/blog
// sites with paginated listings.
const (
	SourceEncyclopedia = "wiki"
	SourceArticleSite  = "championat"
	SourceBlogSite     = "sportsru"
)

// DefaultConfig returns a Config with sane out-of-the-box defaults for
// all three sources.
func DefaultConfig() *Config {
	return &Config{
		DB: DBConfig{
			URI:                 "mongodb://localhost:27017",
			Database:            "longform_crawl",
			DocumentsCollection: "documents",
			TasksCollection:     "tasks",
		},
		Logic: LogicConfig{
			DelaySeconds:            0.35,
			LockTTLSeconds:          120,
			RecrawlSeconds:          24 * 3600,
			MaxRetries:              5,
			UserAgent:               "longform-crawl/1.0 (+https://example.invalid/bot)",
			WorkerThreadsPerSource:  2,
			RetryBackoffBaseSeconds: 30,
			RetryBackoffMaxSeconds:  3600,
			TimeoutSeconds:          15,
			ProgressLogSeconds:      30,
			StatusPort:              0,
		},
		Sources: map[string]SourceConfig{
			SourceEncyclopedia: {
				Enabled:           true,
				MinWords:          40,
				SeedCategories:    []string{},
				MaxDepth:          2,
				DiscoveryMaxPages: 5000,
			},
			SourceArticleSite: {
				Enabled:          true,
				MinWords:         40,
				ListingPagesFrom: 1,
				ListingPagesTo:   50,
			},
			SourceBlogSite: {
				Enabled:          true,
				MinWords:         30,
				ListingPagesFrom: 1,
				ListingPagesTo:   50,
			},
		},
		Logs: LogsConfig{
			Dir:     "./logs",
			Level:   "info",
			MaxMB:   50,
			Backups: 3,
		},
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9_]+`)

// SafeSourceName sanitizes a source tag for use as a logger/file-name
// component: lowercased, non [a-z0-9_] runs collapsed to "_".
func SafeSourceName(source string) string {
	lower := strings.ToLower(source)
	return unsafeNameChars.ReplaceAllString(lower, "_")
}
