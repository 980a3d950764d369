package domainprompts

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/go-domainprompts/pkg/cache"
	"github.com/soundprediction/go-domainprompts/pkg/config"
	"github.com/soundprediction/go-domainprompts/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prompt rendering HTTP server",
	Long: `Start the HTTP server that renders domain-specific extraction prompts.

The server provides endpoints for:
- Rendering the messages of a prompt operation
- Listing and rebinding domain template sets
- Health checks

Alias changes in the config file are applied without a restart.`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
	serveMode string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Server host")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&serveMode, "mode", "release", "Server mode (debug, release, test)")
	serveCmd.Flags().Bool("cache", false, "Enable the render cache")
	serveCmd.Flags().String("cache-path", "", "Render cache directory (empty keeps it in memory)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	overrideConfigWithFlags(cmd, a.cfg)
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var renderCache *cache.RenderCache
	if a.cfg.Cache.Enabled {
		store, err := cache.NewBadgerCache(a.cfg.Cache.Path)
		if err != nil {
			return err
		}
		renderCache = cache.NewRenderCache(store, a.cfg.Cache.TTL, a.logger)
		defer renderCache.Close()
	}

	if a.loader.ConfigFileUsed() != "" {
		err := a.loader.Watch(func(cfg *config.Config, err error) {
			if err != nil {
				a.logger.Error("Failed to reload config", "error", err)
				return
			}
			if err := a.registry.SetAliases(cfg.Prompts.AliasTable()); err != nil {
				a.logger.Error("Failed to apply reloaded aliases", "error", err)
				return
			}
			a.logger.Info("Reloaded domain aliases", "file", a.loader.ConfigFileUsed(), "generation", a.registry.Generation())
		})
		if err != nil {
			a.logger.Warn("Config watch disabled", "error", err)
		}
	}

	srv := server.New(a.cfg.Server, a.library, renderCache, a.logger)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		a.logger.Info("Received signal, shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		a.logger.Info("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serveMode
	}
	if cmd.Flags().Changed("cache") {
		cfg.Cache.Enabled, _ = cmd.Flags().GetBool("cache")
	}
	if cmd.Flags().Changed("cache-path") {
		cfg.Cache.Path, _ = cmd.Flags().GetString("cache-path")
	}
}
