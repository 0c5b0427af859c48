package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
)

// Worker supervision.
const (
	defaultRestartBackoff = time.Second
	defaultMaxRestarts    = 10
	defaultStableAfter    = 30 * time.Second
)

// ServerConfig configures the HTTPServer plugin.
type ServerConfig struct {
	// Port defaults to PORT, then 5000.
	Port int

	// Workers is the number of accept loops, capped at the CPU count.
	// Defaults to 2.
	Workers int
}

// Server runs a fixed number of supervised workers that accept connections
// from one listener. A worker whose serve loop fails is replaced after a
// linear backoff; a worker failing maxRestarts times in a row stops the server.
type Server struct {
	reg             *Registry
	addr            string
	workers         int
	shutdownTimeout time.Duration
	restartBackoff  time.Duration
	maxRestarts     int
	stableAfter     time.Duration
}

// HTTPServerPlugin prepares the server. Nothing listens until Registry.Run.
var HTTPServerPlugin = NewPlugin("http-server", installServer)

func installServer(_ context.Context, r *Registry, cfg ServerConfig) (*Server, error) {
	env := r.Config()

	port := cfg.Port
	if port <= 0 {
		port = env.Port
	}
	if port <= 0 {
		port = defaultPort
	}
	if port > 65535 {
		return nil, fmt.Errorf("%w: port %d", ErrInvalidConfig, port)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	shutdownTimeout := env.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		reg:             r,
		addr:            ":" + strconv.Itoa(port),
		workers:         max(1, min(runtime.NumCPU(), workers)),
		shutdownTimeout: shutdownTimeout,
		restartBackoff:  defaultRestartBackoff,
		maxRestarts:     defaultMaxRestarts,
		stableAfter:     defaultStableAfter,
	}
	r.with(func(r *Registry) { r.server = s })
	return s, nil
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Workers is the effective number of workers.
func (s *Server) Workers() int { return s.workers }

// Run listens on the configured address and serves until ctx is cancelled
// or SIGINT/SIGTERM arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves ln until ctx is done, then closes ln and runs the
// registry's shutdown hooks.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	log := s.reg.Logger()

	var handler http.Handler = http.NotFoundHandler()
	if mux := s.reg.Mux(); mux != nil {
		handler = mux
	}

	d := newDispatcher(ln)
	go d.run()

	log.InfoContext(ctx, "API started", slog.String("address", ln.Addr().String()), slog.Int("workers", s.workers))

	g, gctx := errgroup.WithContext(ctx)
	for i := range s.workers {
		id := i + 1
		g.Go(func() error { return s.supervise(gctx, id, d, handler) })
	}
	serveErr := g.Wait()
	d.close()

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	hookErr := runHooks(shutdownCtx, log, s.reg.hooks())

	if err := errors.Join(serveErr, hookErr); err != nil {
		log.Error("shutdown completed with errors", slog.Any("error", err))
		return err
	}
	log.Info("closed out remaining connections")
	return nil
}

func (s *Server) supervise(ctx context.Context, id int, d *dispatcher, handler http.Handler) error {
	log := s.reg.Logger().With(slog.Int("worker", id))
	restarts := 0

	for {
		srv := s.newHTTPServer(ctx, handler)
		started := time.Now()
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(d.listener()) }()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			err := srv.Shutdown(shutdownCtx)
			cancel()
			<-errCh
			if err != nil {
				return fmt.Errorf("worker %d: %w", id, err)
			}
			return nil

		case err := <-errCh:
			if ctx.Err() != nil || errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			_ = srv.Close()

			if time.Since(started) >= s.stableAfter {
				restarts = 0
			}
			restarts++
			if restarts > s.maxRestarts {
				return fmt.Errorf("%w: worker %d: %w", ErrWorkerCrashLoop, id, err)
			}

			log.Error(fmt.Sprintf("worker %d died, spinning up another", id),
				slog.Any("error", err),
				slog.Int("restarts", restarts),
			)
			if waitFor(ctx, time.Duration(restarts)*s.restartBackoff) != nil {
				return nil
			}
		}
	}
}

func (s *Server) newHTTPServer(ctx context.Context, handler http.Handler) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Handler:           handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(s.reg.HTTPLogger().Handler(), slog.LevelWarn),
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

// runHooks runs every hook in order and joins their errors.
func runHooks(ctx context.Context, log *slog.Logger, hooks []func(context.Context) error) error {
	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}
	return errors.Join(errs...)
}

func waitFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// accepted is the outcome of one Accept on the shared listener.
type accepted struct {
	conn net.Conn
	err  error
}

// dispatcher owns the shared listener and hands accepted connections to
// whichever worker asks first.
type dispatcher struct {
	ln    net.Listener
	conns chan accepted
	done  chan struct{}
	once  sync.Once
}

func newDispatcher(ln net.Listener) *dispatcher {
	return &dispatcher{
		ln:    ln,
		conns: make(chan accepted),
		done:  make(chan struct{}),
	}
}

func (d *dispatcher) run() {
	for {
		conn, err := d.ln.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}
		select {
		case d.conns <- accepted{conn: conn, err: err}:
		case <-d.done:
			if conn != nil {
				_ = conn.Close()
			}
			return
		}
	}
}

func (d *dispatcher) close() {
	d.once.Do(func() {
		close(d.done)
		_ = d.ln.Close()
	})
}

// listener returns a listener for one worker's http.Server. Closing it
// detaches the worker without closing the shared listener.
func (d *dispatcher) listener() net.Listener {
	return &workerListener{d: d, done: make(chan struct{})}
}

type workerListener struct {
	d    *dispatcher
	done chan struct{}
	once sync.Once
}

func (l *workerListener) Accept() (net.Conn, error) {
	select {
	case a := <-l.d.conns:
		return a.conn, a.err
	case <-l.done:
		return nil, net.ErrClosed
	case <-l.d.done:
		return nil, net.ErrClosed
	}
}

func (l *workerListener) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

func (l *workerListener) Addr() net.Addr { return l.d.ln.Addr() }
