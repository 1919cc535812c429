package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/ducks/internal/config"
	"github.com/vango-dev/ducks/internal/errors"
	"github.com/vango-dev/ducks/internal/mockapi"
	"github.com/vango-dev/ducks/pkg/devtools"
	"github.com/vango-dev/ducks/pkg/middleware"
	"github.com/vango-dev/ducks/pkg/resource"
	"github.com/vango-dev/ducks/pkg/store"
)

// DevtoolsPath is where the devtools socket is served.
const DevtoolsPath = "/_ducks/devtools"

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr    string
		noQuery bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development backend",
		Long: `Run an in-memory REST backend for every http resource in ducks.json.

Each collection is seeded from the resource's seed data and served at the
path of its url. When enabled, Prometheus metrics are served at /metrics
and a devtools socket at /_ducks/devtools streams every action dispatched
to the store that mirrors the configured resources.

Examples:
  ducks serve
  ducks serve --addr=127.0.0.1:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cfg, flags.verbose, cmd.ErrOrStderr())
			return runServe(ctx, cfg, logger, cmd.OutOrStdout(), !noQuery)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from ducks.json)")
	cmd.Flags().BoolVar(&noQuery, "no-query", false, "Skip the initial $QUERY of each resource")

	return cmd
}

// devServer is the assembled development backend.
type devServer struct {
	handler   http.Handler
	store     *store.Store
	resources []*resource.Resource
	devtools  *devtools.Server
	logger    *slog.Logger
}

// newDevServer wires the mock API, metrics, store and devtools for cfg.
func newDevServer(cfg *config.Config, logger *slog.Logger) (*devServer, error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	var metrics *middleware.Metrics
	if cfg.Server.Metrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = middleware.NewMetrics(middleware.WithRegistry(registry))
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	}

	st := store.New(store.WithLogger(logger.With("component", "store")))
	b := newBinder(cfg, logger, metrics)
	srv := &devServer{store: st, logger: logger}

	api := mockapi.New(mockapi.WithLogger(logger.With("component", "mockapi")))
	for _, rc := range cfg.Resources {
		if rc.Transport == config.TransportHTTP {
			api.Add(rc.Path(), rc.Seed)
		}

		res, err := b.bind(rc)
		if err != nil {
			return nil, err
		}
		res.Configure(b.dispatcher(st))
		st.Register(sliceKey(rc.Name), res.Reducer(), res.InitialState())
		srv.resources = append(srv.resources, res)
	}

	if cfg.Server.Devtools {
		srv.devtools = devtools.New(devtools.WithLogger(logger.With("component", "devtools")))
		srv.devtools.Attach(st)
		r.Get(DevtoolsPath, srv.devtools.HandleWebSocket)
	}

	r.Mount("/", api.Handler())
	srv.handler = r
	return srv, nil
}

// query dispatches $QUERY for every resource and waits for the results.
func (s *devServer) query(ctx context.Context) {
	for _, res := range s.resources {
		f, err := res.DispatchAsync(ctx, resource.ActionQuery, nil)
		if err != nil {
			s.logger.Warn("initial query not dispatched", "resource", res.Name(), "error", err)
			continue
		}
		if err := f.Wait(ctx); err != nil {
			s.logger.Warn("initial query abandoned", "resource", res.Name(), "error", err)
		}
	}
}

func (s *devServer) close() {
	if s.devtools != nil {
		s.devtools.Close()
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, query bool) error {
	srv, err := newDevServer(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.close()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.New("D150").
			WithField("server.addr").
			WithDetail(fmt.Sprintf("Could not listen on %s", cfg.Server.Addr)).
			WithSuggestion("Pick a free address with --addr").
			Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner(out)
	success(out, "Serving on http://%s", ln.Addr())
	for _, rc := range cfg.Resources {
		info(out, "%-12s %-5s %s", rc.Name, rc.Transport, rc.URL)
	}
	if cfg.Server.Metrics {
		info(out, "metrics      /metrics")
	}
	if cfg.Server.Devtools {
		info(out, "devtools     %s", DevtoolsPath)
	}
	fmt.Fprintln(out)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	if query {
		go srv.query(ctx)
	}

	select {
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("D150").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	info(out, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
