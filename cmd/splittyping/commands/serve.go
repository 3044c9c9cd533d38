package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/haivivi/splittyping/pkg/chatstate"
	"github.com/haivivi/splittyping/pkg/server"
	"github.com/haivivi/splittyping/pkg/typing"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WebSocket delivery server",
	Long: `Run an HTTP server exposing the paced delivery WebSocket at /ws.

Chat split state is kept according to the state section of the settings:
in process memory by default, or in a badger database when state.dir or
state.in_memory is set.

Endpoints:
  GET /ws              WebSocket (message and reply frames)
  GET /healthz         liveness probe
  GET /v1/chats        stored chat states
  GET /v1/deliveries   recent deliveries

Examples:
  splittyping serve
  splittyping serve --addr 127.0.0.1:9000 -v`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	logger := slog.Default()
	store, err := cfg.OpenStore(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	states := chatstate.New(store)
	planner := typing.NewPlanner(cfg.TypingConfig())
	dispatcher := typing.NewDispatcher(planner, nil, typing.WithLogger(logger))
	srv := server.New(states, dispatcher, server.WithLogger(logger))

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		logger.Info("commands: serving", "addr", addr, "mode", planner.Config().Segment.Mode)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("commands: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Close()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
