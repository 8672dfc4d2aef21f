// Package cli implements the planweave command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cfaller/planweave/pkg/buildinfo"
	"github.com/cfaller/planweave/pkg/config"
	"github.com/cfaller/planweave/pkg/kv"
	"github.com/cfaller/planweave/pkg/pipeline"
	"github.com/cfaller/planweave/pkg/source"
)

const (
	// appName is the application name used for directories and display.
	appName = "planweave"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "planweave",
		Short:        "Planweave lays out strategic roadmaps as timelines",
		Long:         `Planweave is a CLI tool for turning nested strategic-planning documents into positioned timeline layouts: workstream tracks, dated milestone placements, and classified connections, with persistent drag adjustments.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.overridesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the effective configuration.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// newStore opens the configured override store.
func (c *CLI) newStore(cmd *cobra.Command, cfg config.Config, noStore bool) (kv.Store, error) {
	if noStore {
		return kv.NewMemoryStore(), nil
	}
	switch cfg.Store.Backend {
	case "memory":
		return kv.NewMemoryStore(), nil
	case "redis":
		return kv.NewRedisStore(cmd.Context(), kv.RedisOptions{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
	default:
		dir := cfg.Store.Dir
		if dir == "" {
			dir = storeDir()
		}
		return kv.NewFileStore(dir)
	}
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cmd *cobra.Command, cfg config.Config, noStore bool) (*pipeline.Runner, error) {
	store, err := c.newStore(cmd, cfg, noStore)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, c.Logger), nil
}

// newLoader picks a document loader: a remote URL or local file when input
// is given, otherwise the configured MongoDB source.
func (c *CLI) newLoader(cmd *cobra.Command, cfg config.Config, input string) (source.Loader, func(), error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		var fetchStore kv.Store
		if store, err := kv.NewFileStore(storeDir()); err == nil {
			fetchStore = store
		}
		loader, err := source.NewHTTPLoader(input, fetchStore, 15*time.Minute)
		if err != nil {
			return nil, nil, err
		}
		return loader, func() {
			if fetchStore != nil {
				_ = fetchStore.Close()
			}
		}, nil
	}
	if input != "" {
		loader, err := source.NewFileLoader(input)
		return loader, func() {}, err
	}
	if cfg.Source.Mongo.URI == "" {
		return nil, nil, errMissingInput
	}
	loader, err := source.NewMongoLoader(cmd.Context(), cfg.Source.Mongo.URI, cfg.Source.Mongo.Database, cfg.Source.Mongo.Collection)
	if err != nil {
		return nil, nil, err
	}
	return loader, func() { _ = loader.Close(cmd.Context()) }, nil
}

// storeDir returns the override store directory using XDG standard
// (~/.cache/planweave/).
func storeDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, ".cache", appName)
}
