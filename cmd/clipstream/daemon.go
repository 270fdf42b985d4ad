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

	"github.com/soheilhy/cmux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"go.klb.dev/clipstream/internal/clip"
	"go.klb.dev/clipstream/internal/core"
	"go.klb.dev/clipstream/internal/grpcservice"
	"go.klb.dev/clipstream/internal/history"
	"go.klb.dev/clipstream/internal/httpapi"
	"go.klb.dev/clipstream/internal/ipc"
	"go.klb.dev/clipstream/internal/monitor"
	"go.klb.dev/clipstream/internal/probe"
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Record clipboard history and serve it to the CLI",
		Long: `Starts the clipstream daemon. It opens the history database, prunes
old entries, watches the system clipboard and serves gRPC and a JSON HTTP API
on the local socket.

Config file search order:
  /etc/clipstream/clipstream.toml
  $HOME/.config/clipstream/clipstream.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPSTREAM_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("db", defaultDBPath(), "history database path")
	f.Int("retention-days", 7, "drop unpinned entries older than this at startup (-1 = keep)")
	f.Int("max-entries", 500, "keep at most this many unpinned entries at startup (-1 = unlimited)")
	f.Int("queue-size", monitor.DefaultQueueSize, "clipboard change queue capacity")
	f.Bool("no-monitor", false, "do not watch the system clipboard")
	f.String("clipboard", "native", "clipboard backend: native|memory")
	addSocketFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(ctx context.Context, v *viper.Viper) error {
	logCloser, err := setupLogging(v)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath := v.GetString("db")
	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	var backend clip.Backend
	switch v.GetString("clipboard") {
	case "memory":
		backend = clip.NewMemory()
	case "native", "":
		backend = clip.New()
	default:
		return fmt.Errorf("unknown clipboard backend %q", v.GetString("clipboard"))
	}

	c := core.New(core.Options{
		Store:     store,
		Backend:   backend,
		Prober:    probe.New(),
		QueueSize: v.GetInt("queue-size"),
	})

	removed, err := c.Cleanup(ctx, v.GetInt("retention-days"), v.GetInt("max-entries"))
	if err != nil {
		slog.Warn("startup cleanup failed", "err", err)
	}

	slog.Info("clipstream daemon starting",
		"version", Version,
		"db", dbPath,
		"backend", backend.Name(),
		"pruned", removed,
	)

	socket := v.GetString("socket")
	ln, err := ipc.Listen(socket)
	if err != nil {
		return fmt.Errorf("listen %s: %w", socket, err)
	}
	slog.Info("IPC socket listening", "path", socket)

	if !v.GetBool("no-monitor") {
		c.StartMonitor()
	}
	defer c.StopMonitor()

	return serve(ctx, ln, c)
}

// serve splits ln between gRPC (HTTP/2) and the JSON API (HTTP/1.1) and runs
// both until ctx ends.
func serve(ctx context.Context, ln net.Listener, c *core.Core) error {
	m := cmux.New(ln)
	grpcLn := m.Match(cmux.HTTP2())
	httpLn := m.Match(cmux.HTTP1Fast())

	grpcSrv := grpcservice.NewServer(c)
	httpSrv := &http.Server{
		Handler:           httpapi.New(c, slog.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 3)
	go func() { errc <- grpcSrv.Serve(grpcLn) }()
	go func() { errc <- httpSrv.Serve(httpLn) }()
	go func() { errc <- m.Serve() }()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	stopGRPC(shutdownCtx, grpcSrv)
	m.Close()

	if serveErr != nil && !isClosedErr(serveErr) {
		return fmt.Errorf("serve: %w", serveErr)
	}
	slog.Info("clipstream daemon stopped")
	return nil
}

// stopGRPC drains in-flight calls, then cuts off Watch streams that outlive ctx.
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
	}
}

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, http.ErrServerClosed) ||
		errors.Is(err, grpc.ErrServerStopped) ||
		errors.Is(err, cmux.ErrListenerClosed) ||
		errors.Is(err, cmux.ErrServerClosed)
}
