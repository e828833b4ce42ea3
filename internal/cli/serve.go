package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcore/pkg/buildinfo"
	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/input"
)

type serveOptions struct {
	scene string
	addr  string
	watch bool
}

// serveCommand creates the serve command exposing a scene store over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a scene store over HTTP",
		Long: `Serve a scene store over HTTP.

Routes:
  POST /events            feed a JSON array of input events
  POST /tick              run one animation frame
  POST /fit               fit the view ({"nodes": [...], "padding": 0.1, "durationMs": 200})
  GET  /snapshot          current state
  GET  /edges/{id}/path   routed geometry of one edge
  GET  /healthz           build information

With --watch the --config file is reloaded on change; the store is rebuilt
from its current state with the new configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scene, "scene", "s", "", "scene file (required)")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload --config on change")
	_ = cmd.MarkFlagRequired("scene")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := readScene(opts.scene)
	if err != nil {
		return err
	}
	srv, err := newServer(sc, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.watch {
		if c.configPath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "--watch needs --config")
		}
		printInfo("Watching %s", c.configPath)
		go func() {
			err := config.Watch(ctx, c.configPath, logger, func(cfg config.Config, err error) {
				if err == nil {
					srv.reload(cfg)
				}
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("config watch stopped", "err", err)
			}
		}()
	}

	hs := &http.Server{Addr: opts.addr, Handler: srv.routes(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	printSuccess("Serving %s on %s", opts.scene, StyleHighlight.Render(opts.addr))
	if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(errors.ErrCodeInternal, err, "listen %s", opts.addr)
	}
	return ctx.Err()
}

// server serializes HTTP requests onto one owner.
type server struct {
	mu     sync.Mutex
	o      *owner
	logger *log.Logger
}

func newServer(sc Scene, cfg config.Config, logger *log.Logger) (*server, error) {
	o, err := newOwner(sc, cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	return &server{o: o, logger: logger}, nil
}

// reload rebuilds the owner from the current state with cfg.
func (s *server) reload(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := newOwner(sceneOf(s.o.s.Snapshot()), cfg, s.logger, nil)
	if err != nil {
		s.logger.Warn("config rejected", "err", err)
		return
	}
	s.o.close()
	s.o = o
}

func (s *server) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.o.close()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, buildinfo.Get())
	})
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/edges/{id}/path", s.handleEdgePath)
	r.Post("/events", s.handleEvents)
	r.Post("/tick", s.handleTick)
	r.Post("/fit", s.handleFit)
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"id", middleware.GetReqID(r.Context()),
			"took", time.Since(start).Round(time.Microsecond))
	})
}

type eventsResponse struct {
	Gesture  string     `json:"gesture"`
	Active   int        `json:"active"`
	Stats    ownerStats `json:"stats"`
	Selected []string   `json:"selected"`
}

func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var evs []input.Event
	if err := json.NewDecoder(r.Body).Decode(&evs); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode events"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range evs {
		s.o.handle(ev)
	}
	active := s.o.advance(time.Now())
	writeJSONResponse(w, http.StatusOK, eventsResponse{
		Gesture:  s.o.s.Gesture().String(),
		Active:   active,
		Stats:    s.o.stats,
		Selected: s.o.s.SelectedNodes(),
	})
}

func (s *server) handleTick(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.o.advance(time.Now())
	writeJSONResponse(w, http.StatusOK, map[string]any{"active": active, "viewport": s.o.s.Viewport()})
}

type fitRequest struct {
	Nodes      []string `json:"nodes"`
	Padding    *float64 `json:"padding"`
	DurationMS int      `json:"durationMs"`
}

func (s *server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req fitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode fit request"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	opts := s.o.s.DefaultFitView()
	opts.Nodes = req.Nodes
	if req.Padding != nil {
		opts.Padding = *req.Padding
	}
	opts.Duration = time.Duration(req.DurationMS) * time.Millisecond
	if !s.o.s.FitView(opts) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "no measured nodes to fit"))
		return
	}
	if opts.Duration > 0 {
		s.o.advance(time.Now())
	}
	writeJSONResponse(w, http.StatusOK, s.o.s.Viewport())
}

func (s *server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.o.s.Snapshot()
	s.mu.Unlock()
	writeJSONResponse(w, http.StatusOK, snap)
}

func (s *server) handleEdgePath(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, err := s.o.s.EdgePath(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, p)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidViewport, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeMissingHandle, errors.ErrCodeInvalidParent, errors.ErrCodeDuplicateID, errors.ErrCodeOutOfExtent:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSONResponse(w, statusFor(code), errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
