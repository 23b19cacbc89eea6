package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks the configuration for invalid values, matching the
// teacher's range/enum style validator.
func Validate(cfg *Config) error {
	if cfg.DB.URI == "" {
		return fmt.Errorf("db.uri must not be empty")
	}
	if cfg.DB.Database == "" {
		return fmt.Errorf("db.database must not be empty")
	}
	if cfg.DB.TasksCollection == "" {
		return fmt.Errorf("db.tasks_collection must not be empty")
	}
	if cfg.DB.DocumentsCollection == "" {
		return fmt.Errorf("db.documents_collection must not be empty")
	}

	if cfg.Logic.DelaySeconds < 0 {
		return fmt.Errorf("logic.delay_seconds must be >= 0, got %v", cfg.Logic.DelaySeconds)
	}
	if cfg.Logic.LockTTLSeconds <= 0 {
		return fmt.Errorf("logic.lock_ttl_seconds must be > 0, got %d", cfg.Logic.LockTTLSeconds)
	}
	if cfg.Logic.TimeoutSeconds <= 0 {
		return fmt.Errorf("logic.timeout_seconds must be > 0, got %v", cfg.Logic.TimeoutSeconds)
	}
	if float64(cfg.Logic.LockTTLSeconds) < 5*cfg.Logic.TimeoutSeconds {
		return fmt.Errorf("logic.lock_ttl_seconds (%d) should be at least 5x logic.timeout_seconds (%v) so a lease outlives a stalled fetch",
			cfg.Logic.LockTTLSeconds, cfg.Logic.TimeoutSeconds)
	}
	if cfg.Logic.MaxRetries < 0 {
		return fmt.Errorf("logic.max_retries must be >= 0, got %d", cfg.Logic.MaxRetries)
	}
	if cfg.Logic.WorkerThreadsPerSource < 1 {
		return fmt.Errorf("logic.worker_threads_per_source must be >= 1, got %d", cfg.Logic.WorkerThreadsPerSource)
	}
	if cfg.Logic.RetryBackoffBaseSeconds <= 0 {
		return fmt.Errorf("logic.retry_backoff_base_seconds must be > 0")
	}
	if cfg.Logic.RetryBackoffMaxSeconds < cfg.Logic.RetryBackoffBaseSeconds {
		return fmt.Errorf("logic.retry_backoff_max_seconds must be >= retry_backoff_base_seconds")
	}
	if cfg.Logic.ProgressLogSeconds <= 0 {
		return fmt.Errorf("logic.progress_log_seconds must be > 0")
	}
	if cfg.Logic.StatusPort < 0 || cfg.Logic.StatusPort > 65535 {
		return fmt.Errorf("logic.status_port must be 0-65535, got %d", cfg.Logic.StatusPort)
	}

	if len(cfg.Sources) == 0 {
		return fmt.Errorf("sources must declare at least one source")
	}
	for name, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}
		if src.MinWords < 0 {
			return fmt.Errorf("sources.%s.min_words must be >= 0, got %d", name, src.MinWords)
		}
		if name == SourceEncyclopedia {
			if src.MaxDepth < 0 {
				return fmt.Errorf("sources.%s.max_depth must be >= 0, got %d", name, src.MaxDepth)
			}
			if src.DiscoveryMaxPages < 1 {
				return fmt.Errorf("sources.%s.discovery_max_pages must be >= 1, got %d", name, src.DiscoveryMaxPages)
			}
		} else {
			if src.ListingPagesFrom < 1 {
				return fmt.Errorf("sources.%s.listing_pages_from must be >= 1, got %d", name, src.ListingPagesFrom)
			}
			if src.ListingPagesTo < src.ListingPagesFrom {
				return fmt.Errorf("sources.%s.listing_pages_to must be >= listing_pages_from", name)
			}
		}
	}

	if !validLogLevels[cfg.Logs.Level] {
		return fmt.Errorf("logs.level must be debug/info/warn/error, got %q", cfg.Logs.Level)
	}

	return nil
}
