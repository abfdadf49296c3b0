// Package cli implements the flowsmith command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/buildinfo"
	"github.com/flowsmith/flowsmith/pkg/cache"
	"github.com/flowsmith/flowsmith/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flowsmith"

// Environment variables selecting a shared cache backend. When neither is
// set, a local file cache under the XDG cache directory is used.
const (
	envRedisURL   = "FLOWSMITH_REDIS_URL"
	envMongoURI   = "FLOWSMITH_MONGO_URI"
	envMongoDB    = "FLOWSMITH_MONGO_DB"
	envCacheScope = "FLOWSMITH_CACHE_SCOPE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
// A .env file in the working directory is loaded if present so cache
// backend variables can be configured per project.
func New(w io.Writer, level log.Level) *CLI {
	_ = godotenv.Load()
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "flowsmith",
		Short:        "Flowsmith converts visual flow exports to runnable code",
		Long:         `Flowsmith is a CLI tool for converting flow-builder JSON exports into standalone Python or TypeScript programs, with structural analysis and dependency manifests along the way.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.convertersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A cache scope from
// the environment or config file namespaces all cache keys, so shared
// backends can keep workspaces apart.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cfg, err := loadConfig()
	if err != nil {
		c.Logger.Warnf("Ignoring config file: %v", err)
		cfg = fileConfig{}
	}
	store, err := c.newCache(noCache, cfg)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope := firstNonEmpty(os.Getenv(envCacheScope), cfg.CacheScope); scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope+":")
	}
	return pipeline.NewRunner(store, keyer, nil, c.Logger)
}

// newCache selects the cache backend: Redis or MongoDB when configured
// through the environment or the config file, otherwise a local file
// cache. Backend failures degrade to a null cache rather than failing
// the command.
func (c *CLI) newCache(noCache bool, cfg fileConfig) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}

	redisURL := firstNonEmpty(os.Getenv(envRedisURL), cfg.RedisURL)
	mongoURI := firstNonEmpty(os.Getenv(envMongoURI), cfg.MongoURI)
	mongoDB := firstNonEmpty(os.Getenv(envMongoDB), cfg.MongoDB, appName)

	backend := cfg.Cache
	if backend == "" {
		switch {
		case redisURL != "":
			backend = "redis"
		case mongoURI != "":
			backend = "mongo"
		default:
			backend = "file"
		}
	}

	ctx, cancel := backendContext()
	defer cancel()

	switch backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		store, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			c.Logger.Warnf("Redis cache unavailable: %v", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	case "mongo":
		store, err := cache.NewMongoCache(ctx, mongoURI, mongoDB)
		if err != nil {
			c.Logger.Warnf("MongoDB cache unavailable: %v", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	case "file":
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		c.Logger.Warnf("Unknown cache backend %q, caching disabled", backend)
		return cache.NewNullCache(), nil
	}
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flowsmith/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// backendContext bounds backend connection attempts so a misconfigured
// Redis or MongoDB URL does not hang the command.
func backendContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
