package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/interfaces/http/handlers"
	"github.com/turtacn/chemsafe/internal/interfaces/http/middleware"
	"github.com/turtacn/chemsafe/internal/testutil"
	"github.com/turtacn/chemsafe/internal/testutil/lookupmock"
)

func newTestRouter(svc lookup.Service) http.Handler {
	logger := testutil.NewMockLogger()
	return NewRouter(RouterConfig{
		ChemicalHandler: handlers.NewChemicalHandler(svc, logger),
		AdminHandler:    handlers.NewAdminHandler(svc, logger),
		HealthHandler:   handlers.NewHealthHandler("test"),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
		MetricsPath: "/internal/metrics",
		Logger:      logger,
		Logging:     middleware.DefaultLoggingConfig(),
	})
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNewRouter_HealthEndpoints(t *testing.T) {
	router := newTestRouter(new(lookupmock.MockService))

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/readyz").Code)
}

func TestNewRouter_MetricsPath(t *testing.T) {
	router := newTestRouter(new(lookupmock.MockService))

	rec := do(router, http.MethodGet, "/internal/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/metrics").Code)
}

func TestNewRouter_ChemicalRoutes(t *testing.T) {
	svc := new(lookupmock.MockService)
	report := &lookup.ChemicalReport{MainName: "Acetone"}
	svc.On("Lookup", mock.Anything, lookup.Query{Name: "acetone"}).Return(report, nil)
	svc.On("Lookup", mock.Anything, lookup.Query{Name: "acetone", EmergencyType: "Fire"}).Return(report, nil)
	svc.On("GetMainName", "acetone").Return("acetone")
	svc.On("GetAllPossibleNames", "acetone").Return([]string{"acetone"})
	router := newTestRouter(svc)

	for _, target := range []string{
		"/api/v1/chemicals/acetone",
		"/api/v1/chemicals/acetone/sections",
		"/api/v1/chemicals/acetone/procedures?type=Fire",
		"/api/v1/aliases/acetone",
	} {
		rec := do(router, http.MethodGet, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
	svc.AssertExpectations(t)
}

func TestNewRouter_AdminRoutes(t *testing.T) {
	svc := new(lookupmock.MockService)
	svc.On("Reload", mock.Anything).Return(nil).Once()
	svc.On("Status").Return(lookup.Status{InstanceID: "i-1"})
	router := newTestRouter(svc)

	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/api/v1/admin/reload").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(router, http.MethodGet, "/api/v1/admin/reload").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/status").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/admin/status").Code)
	svc.AssertExpectations(t)
}

func TestNewRouter_NilHandlers_NoPanic(t *testing.T) {
	router := NewRouter(RouterConfig{})

	assert.NotPanics(t, func() {
		rec := do(router, http.MethodGet, "/api/v1/chemicals/acetone")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	svc := new(lookupmock.MockService)
	svc.On("Status").Run(func(mock.Arguments) { panic("boom") })
	router := newTestRouter(svc)

	rec := do(router, http.MethodGet, "/api/v1/status")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewRouter_SetsRequestID(t *testing.T) {
	svc := new(lookupmock.MockService)
	svc.On("Status").Return(lookup.Status{})
	logger := testutil.NewMockLogger()
	router := NewRouter(RouterConfig{
		AdminHandler: handlers.NewAdminHandler(svc, logger),
		Logger:       logger,
	})

	do(router, http.MethodGet, "/api/v1/status")

	id, ok := logger.Field("request completed", "request_id")
	require.True(t, ok)
	assert.NotEmpty(t, id)
}
