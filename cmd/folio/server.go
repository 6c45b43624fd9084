package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/folio/internal/api"
	"github.com/kalambet/folio/internal/config"
	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development profile service (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show profile service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve read-only MCP tools over stdio")
}

func runServer(withMCP bool) error {
	fmt.Fprintf(os.Stderr, "folio version %s\n", version)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	signingKey, err := config.SigningKey(config.NewSecretStore())
	if err != nil {
		return fmt.Errorf("initializing signing key: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			printWarning("closing storage: %v", err)
		}
	}()

	profileMgr := profile.NewManager(store)
	handler := api.NewHandler(api.Deps{
		Profile:    profileMgr,
		SigningKey: signingKey,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	if withMCP {
		stdioSrv := server.NewStdioServer(api.NewMCPServer(profileMgr, version))
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		printStep("folio listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		printStep("shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore opens the profile database and reports its schema version.
func openStore(dataDir string) (*storage.Store, error) {
	store, err := storage.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	versions, err := store.AppliedMigrations()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	if n := len(versions); n > 0 {
		printStep("storage at %s (schema v%d)", dataDir, versions[n-1])
	}
	return store, nil
}

func showStatus(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	secrets := config.NewSecretStore()
	client := newRemoteClient(cfg, secrets)

	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Health(probeCtx); err != nil {
		printStatus("Service", "unreachable at %s", client.BaseURL())
		slog.Debug("health probe failed", "error", err)
	} else {
		printStatus("Service", "running at %s", client.BaseURL())
	}

	if _, err := secrets.Get(config.SecretToken); err != nil {
		printWarning("Token missing (run `folio token issue` or `folio token set`)")
	} else {
		printStatus("Token", "stored")
	}

	printStatus("Timeout", "%s", cfg.Client.Timeout)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
