package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/conf"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
	"github.com/lk2023060901/prospect-finder/internal/prospect/service"
)

type stubProcessor struct{}

func (stubProcessor) Process(ctx context.Context, location, postcode string) (*biz.ProcessResult, error) {
	return &biz.ProcessResult{
		Records: []*biz.BusinessRecord{{ID: "1", BusinessName: "Little Kickers " + location, Postcode: postcode}},
	}, nil
}

func newTestServer(t *testing.T, metricsEnabled bool) *HTTPServer {
	t.Helper()
	cfg := &conf.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Server.Port = 0
	cfg.Metrics.Enabled = metricsEnabled
	cfg.Metrics.Path = "/metrics"

	return NewHTTPServer(cfg, logger.Nop(), service.NewProspectService(stubProcessor{}, zap.NewNop()))
}

func serve(s *HTTPServer, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHTTPServer_Routes(t *testing.T) {
	s := newTestServer(t, true)

	w := serve(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(logger.RequestIDHeader))

	w = serve(s, http.MethodPost, "/process-location", `{"location":"Perth","postcode":"6000"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Little Kickers Perth")

	w = serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prospect_requests_total")
}

func TestHTTPServer_MetricsDisabled(t *testing.T) {
	s := newTestServer(t, false)

	w := serve(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTPServer_StopBeforeStart(t *testing.T) {
	s := newTestServer(t, false)
	assert.NoError(t, s.Stop(context.Background()))
}
