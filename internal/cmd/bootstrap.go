package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yetidevworks/raygun/internal/config"
	"github.com/yetidevworks/raygun/internal/exitcode"
	"github.com/yetidevworks/raygun/internal/ingest"
	"github.com/yetidevworks/raygun/internal/logging"
	"github.com/yetidevworks/raygun/internal/timeline"
	"github.com/yetidevworks/raygun/internal/tui"
	"github.com/yetidevworks/raygun/internal/web"
)

// shutdownGrace bounds how long the HTTP server is given to drain
// in-flight requests before its listener is aborted outright.
const shutdownGrace = 2 * time.Second

func runRoot(cmd *cobra.Command, args []string) error {
	log := logging.New()
	cfg := config.Resolve(bindFlag, debugDumpFlag)

	listener, err := net.Listen("tcp", cfg.Bind)
	if err != nil {
		return exitcode.BindFailed(cfg.Bind, err)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		listener.Close()
		return exitcode.New(exitcode.ErrUsage, "raygun's timeline UI requires a terminal; stdout is not a TTY")
	}

	store := timeline.NewDefault()

	var sink *ingest.DebugSink
	if cfg.DebugDump != "" {
		sink = ingest.NewDebugSink(cfg.DebugDump, log)
		defer sink.Close()
	}

	coordinator := ingest.New(store, sink)
	handler := web.NewHandler(coordinator, store, log)
	server := &http.Server{Handler: handler}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	log.Info().Str("addr", listener.Addr().String()).Msg("HTTP server ready")

	program := tea.NewProgram(tui.New(store), tea.WithAltScreen())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		program.Quit()
	}()

	_, runErr := program.Run()

	shutdownServer(server, log)

	if runErr != nil {
		return exitcode.Wrap(exitcode.ErrInternal, "terminal UI exited with an error", runErr)
	}
	if err := <-serverErr; err != nil {
		return exitcode.Wrap(exitcode.ErrInternal, "HTTP server exited with an error", err)
	}
	return nil
}

// shutdownServer races a graceful HTTP shutdown against shutdownGrace,
// aborting the listener outright if it hangs.
func shutdownServer(server *http.Server, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = server.Shutdown(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("HTTP server shutdown timed out; aborting")
		_ = server.Close()
		<-done
	}
}
