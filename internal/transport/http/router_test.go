package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"roster/internal/platform/metrics"
	"roster/internal/platform/middleware"
	"roster/pkg/requestcontext"
	"roster/pkg/testutil"
)

type probe struct {
	requestID string
	utcTime   bool
}

func (p *probe) Register(r chi.Router) {
	r.Get("/probe", func(w http.ResponseWriter, r *http.Request) {
		p.requestID = requestcontext.RequestID(r.Context())
		p.utcTime = requestcontext.Now(r.Context()).Location() == time.UTC
		w.WriteHeader(http.StatusNoContent)
	})
}

func newTestRouter(checks []Checker, features ...Registrar) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(RouterConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:  metrics.NewWithRegisterer(reg),
		Gatherer: reg,
		Checks:   checks,
	}, features...)
}

func TestHealthz(t *testing.T) {
	healthy := Checker{Name: "store", Check: func(context.Context) error { return nil }}
	broken := Checker{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	t.Run("all checks pass", func(t *testing.T) {
		rr := testutil.DoRequest(newTestRouter([]Checker{healthy}), testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"status":"ok","checks":{"store":"ok"}}`, rr.Body.String())
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		rr := testutil.DoRequest(newTestRouter([]Checker{healthy, broken}), testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		assert.Contains(t, rr.Body.String(), "connection refused")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	rr := testutil.DoRequest(newTestRouter(nil), testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestSharedMiddlewareApplies(t *testing.T) {
	p := &probe{}
	req := testutil.NewRequest(t, http.MethodGet, "/probe")
	req.Header.Set(middleware.HeaderRequestID, "req-9")

	rr := testutil.DoRequest(newTestRouter(nil, p), req)

	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.Equal(t, "req-9", p.requestID)
	assert.True(t, p.utcTime)
}
