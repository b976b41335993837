package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
)

const referenceProject = "../../examples/acetylene-heptane"

type ServerSuite struct {
	suite.Suite
	handler http.Handler
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.handler = newTestServer(referenceProject).Router()
}

func newTestServer(project string) *Server {
	reg := prometheus.NewRegistry()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(project, ":0", log, reg, reg)
}

func (s *ServerSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) TestHealth() {
	rec := s.get("/healthz")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *ServerSuite) TestIndex() {
	rec := s.get("/")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "/api/curve")
}

func (s *ServerSuite) TestSpec() {
	rec := s.get("/api/spec")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		System struct {
			Pressure   float64 `json:"pressure"`
			Components []struct {
				Name string `json:"name"`
			} `json:"components"`
		} `json:"system"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(760.0, body.System.Pressure)
	s.Require().Len(body.System.Components, 2)
	s.Equal("acetylene", body.System.Components[0].Name)
}

func (s *ServerSuite) TestCurve() {
	rec := s.get("/api/curve")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		RunID         string     `json:"run_id"`
		PressureMMHg  float64    `json:"pressure_mmhg"`
		BoilingPoints [2]float64 `json:"boiling_points"`
		Curve         struct {
			Points []bubble.Point `json:"points"`
		} `json:"curve"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))

	_, err := uuid.Parse(body.RunID)
	s.NoError(err, "run_id should be a uuid")
	s.Equal(760.0, body.PressureMMHg)
	s.InDelta(-95.86, body.BoilingPoints[0], 0.01)
	s.InDelta(98.04, body.BoilingPoints[1], 0.01)
	s.Require().Len(body.Curve.Points, 21)

	first, last := body.Curve.Points[0], body.Curve.Points[20]
	s.Equal(0.0, first.Y)
	s.Equal(1.0, last.Y)
	s.InDelta(body.BoilingPoints[1], first.T, 1e-4)
	s.InDelta(body.BoilingPoints[0], last.T, 1e-4)
}

func (s *ServerSuite) TestCurvePointsOverride() {
	rec := s.get("/api/curve?points=5")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Curve struct {
			Points []bubble.Point `json:"points"`
		} `json:"curve"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Len(body.Curve.Points, 5)
	s.Equal(0.25, body.Curve.Points[1].X)
}

func (s *ServerSuite) TestCurveBadPoints() {
	s.Equal(http.StatusBadRequest, s.get("/api/curve?points=many").Code)
	s.Equal(http.StatusBadRequest, s.get("/api/curve?points=1").Code)
}

func (s *ServerSuite) TestRunIDsAreUnique() {
	decode := func() string {
		var body struct {
			RunID string `json:"run_id"`
		}
		s.Require().NoError(json.Unmarshal(s.get("/api/curve?points=3").Body.Bytes(), &body))
		return body.RunID
	}
	s.NotEqual(decode(), decode())
}

func (s *ServerSuite) TestPoint() {
	rec := s.get("/api/point?x=0.5")
	s.Require().Equal(http.StatusOK, rec.Code)

	var p bubble.Point
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &p))
	s.Equal(0.5, p.X)
	s.Greater(p.T, -95.86)
	s.Less(p.T, 98.04)
	s.Greater(p.Y, p.X)
	s.LessOrEqual(p.Residual, 1e-6)
	s.GreaterOrEqual(p.Residual, -1e-6)
}

func (s *ServerSuite) TestPointErrors() {
	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/point", http.StatusBadRequest, "bad_request"},
		{"/api/point?x=half", http.StatusBadRequest, "bad_request"},
		{"/api/point?x=1.5", http.StatusBadRequest, "invalid_composition"},
		{"/api/point?x=-0.1", http.StatusBadRequest, "invalid_composition"},
		{"/api/point?x=0.5&guess=warm", http.StatusBadRequest, "bad_request"},
		{"/api/point?x=0.5&guess=-230", http.StatusUnprocessableEntity, "invalid_coefficients"},
	}
	for _, tt := range tests {
		rec := s.get(tt.path)
		s.Equal(tt.status, rec.Code, tt.path)

		var body errorBody
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), tt.path)
		s.Equal(tt.code, body.Error.Code, tt.path)
		s.NotEmpty(body.Error.Message, tt.path)
	}
}

func (s *ServerSuite) TestValidation() {
	rec := s.get("/api/validation")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Valid bool `json:"valid"`
		Info  []struct {
			Message string `json:"message"`
		} `json:"info"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.True(body.Valid)
	s.NotEmpty(body.Info)
}

func (s *ServerSuite) TestMetrics() {
	s.get("/api/point?x=0.5")
	s.get("/api/point?x=2")

	rec := s.get("/metrics")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `bubblepoint_solves_total{outcome="converged"} 1`)
	s.Contains(rec.Body.String(), `bubblepoint_solves_total{outcome="invalid_composition"} 1`)
}

func TestMissingProject(t *testing.T) {
	h := newTestServer(filepath.Join(t.TempDir(), "nope")).Router()
	for _, path := range []string{"/api/spec", "/api/curve", "/api/validation", "/api/point?x=0.5"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "project_error", path)
	}
}

func TestCurveConvergenceFailure(t *testing.T) {
	dir := t.TempDir()
	yaml := `spec_version: "0.1.0"
system:
  pressure: 760
  components:
    - ref: benzene
    - ref: toluene
sweep:
  points: 5
  initial_guess: 20
  guess_mode: fixed
  failure_policy: abort
solver:
  max_iterations: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.yaml"), []byte(yaml), 0o644))

	h := newTestServer(dir).Router()
	req := httptest.NewRequest(http.MethodGet, "/api/curve", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "convergence_failure", body.Error.Code)
}

func TestInvalidProjectValidationReport(t *testing.T) {
	dir := t.TempDir()
	yaml := `spec_version: "0.1.0"
system:
  pressure: -5
  components:
    - ref: benzene
    - ref: toluene
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.yaml"), []byte(yaml), 0o644))

	h := newTestServer(dir).Router()
	req := httptest.NewRequest(http.MethodGet, "/api/validation", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			SpecPath string `json:"spec_path"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Valid)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "system.pressure", body.Errors[0].SpecPath)
}
