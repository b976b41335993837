package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChicagoDave/bubblepoint/internal/metrics"
	"github.com/ChicagoDave/bubblepoint/pkg/analytics"
	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
	"github.com/ChicagoDave/bubblepoint/pkg/curve"
	"github.com/ChicagoDave/bubblepoint/pkg/spec"
	"github.com/ChicagoDave/bubblepoint/pkg/validation"
)

// Server is the local development server. The project file is re-read on
// every request so edits to system.yaml show up without a restart.
type Server struct {
	projectPath string
	addr        string
	log         *slog.Logger
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
}

// New creates a server for the given project directory. Metrics are
// registered on reg and exposed from gatherer at /metrics.
func New(projectPath, addr string, log *slog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Server {
	return &Server{
		projectPath: projectPath,
		addr:        addr,
		log:         log,
		metrics:     metrics.New(reg),
		gatherer:    gatherer,
	}
}

// Router builds the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/spec", s.handleSpec)
		r.Get("/validation", s.handleValidation)
		r.Get("/curve", s.handleCurve)
		r.Get("/point", s.handlePoint)
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info("bubblepoint server starting", "addr", s.addr, "project", s.projectPath)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("bubblepoint server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>bubblepoint</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>bubblepoint</h1>
<p>T-x-y data: <a style="color:#8cf" href="/api/curve">/api/curve</a> &middot; <a style="color:#8cf" href="/api/validation">/api/validation</a></p>
</div>
</body></html>`)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSpec(w http.ResponseWriter, _ *http.Request) {
	ps, ok := s.load(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	ps, ok := s.load(w)
	if !ok {
		return
	}
	report := validation.ValidateSchema(ps)
	if report.Valid {
		start := time.Now()
		params, analytical := analytics.Resolve(ps)
		if params != nil {
			s.metrics.ObserveCurve(start, params.Curve)
		}
		report.Merge(analytical)
	}
	writeJSON(w, http.StatusOK, report)
}

type curveResponse struct {
	RunID         string       `json:"run_id"`
	Name          string       `json:"name,omitempty"`
	PressureMMHg  float64      `json:"pressure_mmhg"`
	BoilingPoints [2]float64   `json:"boiling_points"`
	Curve         *curve.Curve `json:"curve"`
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	ps, ok := s.load(w)
	if !ok {
		return
	}
	if raw := r.URL.Query().Get("points"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("points: %v", err))
			return
		}
		ps.Sweep.Points = n
		ps.Sweep.Fractions = nil
	}

	sys, err := ps.BuildSystem()
	if err != nil {
		writeSolverError(w, err)
		return
	}
	t1, t2, err := sys.BoilingPoints()
	if err != nil {
		writeSolverError(w, err)
		return
	}
	xs, err := ps.Fractions()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	opts, err := ps.CurveOptions()
	if err != nil {
		writeSolverError(w, err)
		return
	}

	runID := uuid.NewString()
	start := time.Now()
	c, err := curve.GenerateContext(r.Context(), xs, sys, opts...)
	s.metrics.ObserveCurve(start, c)
	if err != nil {
		s.log.Warn("curve failed", "run_id", runID, "error", err)
		writeSolverError(w, err)
		return
	}
	s.log.Info("curve generated",
		"run_id", runID,
		"points", len(c.Entries),
		"flagged", c.Flagged(),
		"iterations", c.Iterations(),
		"duration", time.Since(start),
	)

	writeJSON(w, http.StatusOK, curveResponse{
		RunID:         runID,
		Name:          ps.System.Name,
		PressureMMHg:  sys.Pressure,
		BoilingPoints: [2]float64{t1, t2},
		Curve:         c,
	})
}

func (s *Server) handlePoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, err := strconv.ParseFloat(q.Get("x"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "query parameter x must be a number")
		return
	}

	ps, ok := s.load(w)
	if !ok {
		return
	}
	sys, err := ps.BuildSystem()
	if err != nil {
		writeSolverError(w, err)
		return
	}

	var guess float64
	switch {
	case q.Get("guess") != "":
		guess, err = strconv.ParseFloat(q.Get("guess"), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "query parameter guess must be a number")
			return
		}
	case ps.Sweep.InitialGuess != nil:
		guess = *ps.Sweep.InitialGuess
	default:
		guess, err = sys.InterpolatedGuess(x)
		if err != nil {
			writeSolverError(w, err)
			return
		}
	}

	p, err := ps.SolverSettings().Solve(x, sys, guess)
	s.metrics.ObserveSolve(p, err)
	if err != nil {
		writeSolverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) load(w http.ResponseWriter) (*spec.ProjectSpec, bool) {
	ps, err := spec.LoadProject(s.projectPath)
	if err != nil {
		s.log.Error("loading project", "project", s.projectPath, "error", err)
		writeError(w, http.StatusInternalServerError, "project_error", err.Error())
		return nil, false
	}
	return ps, true
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeSolverError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bubble.ErrInvalidComposition):
		writeError(w, http.StatusBadRequest, "invalid_composition", err.Error())
	case errors.Is(err, bubble.ErrConvergenceFailure):
		writeError(w, http.StatusUnprocessableEntity, "convergence_failure", err.Error())
	case errors.Is(err, bubble.ErrInvalidCoefficients):
		writeError(w, http.StatusUnprocessableEntity, "invalid_coefficients", err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, "unprocessable", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
