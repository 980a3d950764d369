package domainprompts

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/go-domainprompts/pkg/config"
	"github.com/soundprediction/go-domainprompts/pkg/logger"
	"github.com/soundprediction/go-domainprompts/pkg/prompts"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "domainprompts",
	Short: "Render domain-specific entity and relationship extraction prompts",
	Long: `domainprompts routes an extraction context to the prompt templates of its
source domain (AWS, Azure, GCP, GitHub, CI/CD, logs, metrics, traces, ...) and
renders the LLM messages for node and edge extraction.

Configuration can be provided through a config file, DOMAINPROMPTS_* environment
variables, or command-line flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./domainprompts.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app is the wired dependency graph shared by the subcommands.
type app struct {
	loader   *config.Loader
	cfg      *config.Config
	logger   *slog.Logger
	registry *prompts.Registry
	library  *prompts.LibraryImpl
}

func newApp(cmd *cobra.Command) (*app, error) {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg.Prompts, log)
	if err != nil {
		return nil, err
	}
	library, err := prompts.NewLibrary(registry, log)
	if err != nil {
		return nil, err
	}
	return &app{loader: loader, cfg: cfg, logger: log, registry: registry, library: library}, nil
}

// buildRegistry installs the built-in sets, the configured aliases and any
// bundles found in the templates directory. A loaded bundle is registered
// under its own name and under every binding that names it.
func buildRegistry(cfg config.PromptsConfig, log *slog.Logger) (*prompts.Registry, error) {
	var loaded []*prompts.TemplateSet
	if cfg.TemplatesDir != "" {
		sets, err := prompts.LoadTemplateSets(os.DirFS(cfg.TemplatesDir), ".")
		if err != nil {
			return nil, err
		}
		loaded = sets
	}

	names := make([]string, len(loaded))
	for i, set := range loaded {
		names[i] = set.Name()
	}
	registry, err := prompts.NewDefaultRegistry(log, cfg.RegistryOptions(names...)...)
	if err != nil {
		return nil, err
	}

	for _, set := range loaded {
		if !set.Family().Dynamic() {
			log.Warn("Ignoring template bundle outside the extraction families", "source", set.Source(), "family", set.Family())
			continue
		}
		if err := registry.Register(set.Name(), set); err != nil {
			return nil, err
		}
		for key, name := range cfg.Bindings {
			if name == set.Name() {
				if err := registry.Register(key, set); err != nil {
					return nil, err
				}
			}
		}
	}
	return registry, nil
}
