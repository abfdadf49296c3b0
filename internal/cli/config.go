package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/pipeline"
)

// configFileName is the per-project config file looked up in the
// working directory.
const configFileName = "flowsmith.toml"

// fileConfig holds defaults loaded from a TOML config file. Command-line
// flags always win over config values.
type fileConfig struct {
	Language        string `toml:"language"`
	ProjectName     string `toml:"project_name"`
	IncludeComments bool   `toml:"comments"`
	IncludeTracing  bool   `toml:"tracing"`
	Output          string `toml:"output"`
	Addr            string `toml:"addr"`

	// Cache selects the backend: "file" (default), "redis", "mongo", or
	// "none". Connection details come from the matching fields or from
	// the FLOWSMITH_REDIS_URL / FLOWSMITH_MONGO_URI environment, which
	// wins over the file.
	Cache    string `toml:"cache"`
	RedisURL string `toml:"redis_url"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`

	// CacheScope prefixes all cache keys, isolating workspaces that share
	// a Redis or MongoDB backend. FLOWSMITH_CACHE_SCOPE wins over the
	// file.
	CacheScope string `toml:"cache_scope"`
}

// configPaths returns candidate config file locations in precedence
// order: project-local first, then the XDG config directory.
func configPaths() []string {
	paths := []string{configFileName}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		paths = append(paths, filepath.Join(configHome, appName, "config.toml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}
	return paths
}

// loadConfig reads the first config file found. A missing file is not an
// error; a malformed one is.
func loadConfig() (fileConfig, error) {
	var cfg fileConfig
	for _, path := range configPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

// applyConfig fills options from the config file for every flag the user
// did not set explicitly.
func applyConfig(cmd *cobra.Command, cfg fileConfig, opts *pipeline.Options, output *string) {
	if opts.Language == "" {
		opts.Language = cfg.Language
	}
	if opts.ProjectName == "" {
		opts.ProjectName = cfg.ProjectName
	}
	if !cmd.Flags().Changed("comments") {
		opts.IncludeComments = opts.IncludeComments || cfg.IncludeComments
	}
	if !cmd.Flags().Changed("tracing") {
		opts.IncludeTracing = opts.IncludeTracing || cfg.IncludeTracing
	}
	if output != nil && *output == "" {
		*output = cfg.Output
	}
}
