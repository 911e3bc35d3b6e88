// Command jive-server runs the work-item management MCP server over
// stdio, HTTP, or both at once (spec §4.1).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mehmetkoksal-w/jive-mcp/internal/config"
	"github.com/mehmetkoksal-w/jive-mcp/internal/logging"
	"github.com/mehmetkoksal-w/jive-mcp/internal/mcp"
	"github.com/mehmetkoksal-w/jive-mcp/internal/namespace"
	"github.com/mehmetkoksal-w/jive-mcp/internal/session"
	"github.com/mehmetkoksal-w/jive-mcp/internal/tools"
	"github.com/mehmetkoksal-w/jive-mcp/internal/transport"
)

var (
	version    = "0.1.0"
	configPath string
	stdioOnly  bool
	httpOnly   bool
)

func main() {
	root := &cobra.Command{
		Use:   "jive-server",
		Short: "Work-item management MCP server",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")

	root.AddCommand(serveCmd(), namespaceCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	cmd.Flags().BoolVar(&stdioOnly, "stdio", false, "serve only the stdio transport")
	cmd.Flags().BoolVar(&httpOnly, "http", false, "serve only the HTTP/WebSocket transport")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func namespaceCmd() *cobra.Command {
	parent := &cobra.Command{Use: "namespace", Short: "Manage work-item namespaces"}

	parent.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List namespaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ns := namespace.NewManager(cfg)
			defer ns.CloseAll()
			names, err := ns.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	})

	parent.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ns := namespace.NewManager(cfg)
			defer ns.CloseAll()
			return ns.Create(args[0])
		},
	})

	parent.AddCommand(&cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ns := namespace.NewManager(cfg)
			defer ns.CloseAll()
			return ns.Delete(args[0])
		},
	})

	return parent
}

func runServe() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(logging.ParseLevel(cfg.Server.LogLevel))
	defer logging.Sync()

	nsManager := namespace.NewManager(cfg)
	defer nsManager.CloseAll()

	reg, err := tools.New(cfg.Namespace.Default, nsManager)
	if err != nil {
		return fmt.Errorf("build tool registry: %w", err)
	}
	dispatcher := mcp.New(cfg, reg)
	sessions := session.NewManager()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logging.Infow("shutdown signal received")
		cancel()
	}()

	serveStdio := !httpOnly
	serveHTTP := !stdioOnly

	errCh := make(chan error, 2)

	if serveHTTP {
		httpSrv := transport.NewHTTPServer(cfg, dispatcher, sessions, nsManager)
		srv := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: httpSrv.Mux(),
		}
		go func() {
			logging.Infow("http transport listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("http transport: %w", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if serveStdio {
		go func() {
			if err := transport.ServeStdio(ctx, os.Stdin, os.Stdout, dispatcher, sessions); err != nil {
				errCh <- fmt.Errorf("stdio transport: %w", err)
			}
			cancel()
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
