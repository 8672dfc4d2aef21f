package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cfaller/planweave/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		input   string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Start an HTTP server exposing the layout pipeline.

POST /api/layout computes a positioned layout for the configured document
source, and the /api/datasets/{id}/overrides endpoints commit, list, and
clear drag adjustments. Documents come from the configured MongoDB source
or from a local file given with --input.`,
		Example: `  # Serve the configured MongoDB source on the default address
  planweave serve

  # Serve a local roadmap file on a custom port
  planweave serve --input roadmap.json --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, addr, input, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVarP(&input, "input", "i", "", "serve a local roadmap file instead of the configured source")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "keep overrides in memory only")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, addr, input string, noStore bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	loader, closeLoader, err := c.newLoader(cmd, cfg, input)
	if err != nil {
		return err
	}
	defer closeLoader()

	runner, err := c.newRunner(cmd, cfg, noStore)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(runner, loader, c.Logger)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	c.Logger.Info("listening", "addr", addr)
	printSuccess("Serving layout API on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
