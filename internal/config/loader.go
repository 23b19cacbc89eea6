package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the given file path, layered over
// defaults and overridable by LONGFORM_-prefixed environment variables
// (env > file > defaults). The config path is always an explicit
// argument rather than a flag with a default.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("LONGFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %q: %w", configPath, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("db.uri", cfg.DB.URI)
	v.SetDefault("db.database", cfg.DB.Database)
	v.SetDefault("db.documents_collection", cfg.DB.DocumentsCollection)
	v.SetDefault("db.tasks_collection", cfg.DB.TasksCollection)

	v.SetDefault("logic.delay_seconds", cfg.Logic.DelaySeconds)
	v.SetDefault("logic.lock_ttl_seconds", cfg.Logic.LockTTLSeconds)
	v.SetDefault("logic.recrawl_seconds", cfg.Logic.RecrawlSeconds)
	v.SetDefault("logic.max_retries", cfg.Logic.MaxRetries)
	v.SetDefault("logic.user_agent", cfg.Logic.UserAgent)
	v.SetDefault("logic.worker_threads_per_source", cfg.Logic.WorkerThreadsPerSource)
	v.SetDefault("logic.retry_backoff_base_seconds", cfg.Logic.RetryBackoffBaseSeconds)
	v.SetDefault("logic.retry_backoff_max_seconds", cfg.Logic.RetryBackoffMaxSeconds)
	v.SetDefault("logic.timeout_seconds", cfg.Logic.TimeoutSeconds)
	v.SetDefault("logic.progress_log_seconds", cfg.Logic.ProgressLogSeconds)
	v.SetDefault("logic.status_port", cfg.Logic.StatusPort)

	v.SetDefault("logs.dir", cfg.Logs.Dir)
	v.SetDefault("logs.level", cfg.Logs.Level)
	v.SetDefault("logs.max_mb", cfg.Logs.MaxMB)
	v.SetDefault("logs.backups", cfg.Logs.Backups)

	for name, src := range cfg.Sources {
		prefix := "sources." + name + "."
		v.SetDefault(prefix+"enabled", src.Enabled)
		v.SetDefault(prefix+"min_words", src.MinWords)
		v.SetDefault(prefix+"seed_categories", src.SeedCategories)
		v.SetDefault(prefix+"max_depth", src.MaxDepth)
		v.SetDefault(prefix+"discovery_max_pages", src.DiscoveryMaxPages)
		v.SetDefault(prefix+"listing_pages_from", src.ListingPagesFrom)
		v.SetDefault(prefix+"listing_pages_to", src.ListingPagesTo)
	}
}
