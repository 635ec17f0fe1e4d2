package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/config"
	"github.com/turtacn/chemsafe/internal/testutil"
	apperrors "github.com/turtacn/chemsafe/pkg/errors"
)

func fileConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chemicals.jsonld")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cfg := &config.Config{}
	cfg.Graph.Source = config.GraphSourceFile
	cfg.Graph.Path = path
	cfg.AliasStore.Driver = config.AliasDriverMemory
	cfg.AliasStore.MineGraph = true
	cfg.Metrics.Enabled = true
	config.ApplyDefaults(cfg)
	return cfg
}

func TestNew_FileSourceMemoryStore(t *testing.T) {
	app, err := New(context.Background(), fileConfig(t, testutil.SampleGraphJSON), testutil.NewMockLogger(), Options{})
	require.NoError(t, err)
	defer app.Close()

	st := app.Service.Status()
	assert.True(t, st.GraphReady)
	assert.Positive(t, st.Chemicals)
	assert.True(t, st.Aliases.Initialized)

	report, err := app.Service.Lookup(context.Background(), lookup.Query{Name: "Acetone"})
	require.NoError(t, err)
	assert.Equal(t, "id#Acetone", report.EntityID)
}

func TestNew_MissingGraphStillServesBuiltinAliases(t *testing.T) {
	app, err := New(context.Background(), fileConfig(t, ""), nil, Options{})
	require.NoError(t, err)
	defer app.Close()

	assert.False(t, app.Service.Status().GraphReady)
	assert.NotEmpty(t, app.Service.GetAllPossibleNames("acetone"))

	_, err = app.Service.Lookup(context.Background(), lookup.Query{Name: "Acetone"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeChemicalNotFound))
}

func TestApp_Router(t *testing.T) {
	app, err := New(context.Background(), fileConfig(t, testutil.SampleGraphJSON), nil, Options{})
	require.NoError(t, err)
	defer app.Close()

	router := app.Router("test")
	for target, code := range map[string]int{
		"/healthz":                   http.StatusOK,
		"/readyz":                    http.StatusOK,
		"/metrics":                   http.StatusOK,
		"/api/v1/chemicals/Acetone":  http.StatusOK,
		"/api/v1/chemicals/Kryptite": http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, code, rec.Code, target)
	}
}

func TestApp_ReadinessFailsWithoutGraph(t *testing.T) {
	app, err := New(context.Background(), fileConfig(t, ""), nil, Options{})
	require.NoError(t, err)
	defer app.Close()

	rec := httptest.NewRecorder()
	app.Router("test").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApp_RunReloadsOnFileChange(t *testing.T) {
	cfg := fileConfig(t, testutil.SampleGraphJSON)
	cfg.Graph.Watch = true
	cfg.Graph.WatchDebounce = 20 * time.Millisecond

	app, err := New(context.Background(), cfg, nil, Options{})
	require.NoError(t, err)
	defer app.Close()
	before := app.Service.Status().SnapshotVersion

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	// Give the watcher a moment to register.
	time.Sleep(50 * time.Millisecond)
	updated := `[{"@id": "id#Toluene", "@type": "Chemical", "name": "Toluene"}]`
	require.NoError(t, os.WriteFile(cfg.Graph.Path, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		_, err := app.Service.Lookup(context.Background(), lookup.Query{Name: "Toluene"})
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Greater(t, app.Service.Status().SnapshotVersion, before)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_ServeUntilCancelled(t *testing.T) {
	app, err := New(context.Background(), fileConfig(t, testutil.SampleGraphJSON), nil, Options{})
	require.NoError(t, err)
	defer app.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln, "test") }()

	url := fmt.Sprintf("http://%s/api/v1/chemicals/Acetone", ln.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestApp_OpsRouterHasNoAPI(t *testing.T) {
	app, err := New(context.Background(), fileConfig(t, testutil.SampleGraphJSON), nil, Options{})
	require.NoError(t, err)
	defer app.Close()

	router := app.OpsRouter("test")
	for target, code := range map[string]int{
		"/healthz":                  http.StatusOK,
		"/readyz":                   http.StatusOK,
		"/metrics":                  http.StatusOK,
		"/api/v1/chemicals/Acetone": http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, code, rec.Code, target)
	}
}

func TestApp_ReloadEvery(t *testing.T) {
	app, err := New(context.Background(), fileConfig(t, testutil.SampleGraphJSON), nil, Options{})
	require.NoError(t, err)
	defer app.Close()
	before := app.Service.Status().SnapshotVersion

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.ReloadEvery(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return app.Service.Status().SnapshotVersion >= before+2
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	// A non-positive interval returns at once.
	app.ReloadEvery(context.Background(), 0)
}

func TestApp_CloseIsIdempotent(t *testing.T) {
	app, err := New(context.Background(), fileConfig(t, testutil.SampleGraphJSON), nil, Options{})
	require.NoError(t, err)

	assert.NoError(t, app.Close())
	assert.NoError(t, app.Close())
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx2, cancel2 := WithTimeout(context.Background(), time.Minute)
	defer cancel2()
	_, ok = ctx2.Deadline()
	assert.True(t, ok)
}
