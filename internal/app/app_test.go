package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/gamestore/internal/config"
	"github.com/simp-lee/gamestore/internal/middleware"
	"github.com/simp-lee/gamestore/internal/pkg"
)

type fakeHTTPServer struct {
	listenErr      error
	listenStarted  chan struct{}
	shutdownCalled bool
	stopCh         chan struct{}
	mu             sync.Mutex
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenStarted != nil {
		close(f.listenStarted)
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.stopCh != nil {
		<-f.stopCh
	}
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.mu.Lock()
	f.shutdownCalled = true
	f.mu.Unlock()
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}

func (f *fakeHTTPServer) wasShutdownCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdownCalled
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, Mode: gin.TestMode},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			AutoMigrate: true,
			SQLite:      config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "gamestore.db")},
			Pool:        config.PoolConfig{MaxOpenConns: 1},
		},
		Log:   config.LogConfig{Level: "error", Format: "text"},
		Query: config.QueryConfig{DefaultPageSize: 2, MaxPageSize: 10, LocaleDateLayout: "2/1/2006"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		closeDatabase(a.db, a.logger.Logger)
		_ = a.logger.Close()
	})
	return a
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestResolveCORSConfig(t *testing.T) {
	tests := []struct {
		name            string
		mode            string
		corsCfg         *config.CORSConfig
		wantOrigins     []string
		wantMethods     []string
		wantHeaders     []string
		wantCredentials bool
		wantMaxAge      time.Duration
	}{
		{
			name:        "debug mode uses permissive default when not configured",
			mode:        gin.DebugMode,
			corsCfg:     &config.CORSConfig{},
			wantOrigins: []string{"*"},
		},
		{
			name:        "release mode denies cross-origin when not configured",
			mode:        gin.ReleaseMode,
			corsCfg:     &config.CORSConfig{},
			wantOrigins: []string{},
		},
		{
			name:        "release mode uses explicit allowlist",
			mode:        gin.ReleaseMode,
			corsCfg:     &config.CORSConfig{AllowOrigins: []string{"https://admin.example.com"}},
			wantOrigins: []string{"https://admin.example.com"},
		},
		{
			name: "explicit methods and headers",
			mode: gin.DebugMode,
			corsCfg: &config.CORSConfig{
				AllowMethods: []string{"GET", "POST"},
				AllowHeaders: []string{"Authorization", "Content-Type"},
			},
			wantOrigins: []string{"*"},
			wantMethods: []string{"GET", "POST"},
			wantHeaders: []string{"Authorization", "Content-Type"},
		},
		{
			name: "credentials and max age",
			mode: gin.ReleaseMode,
			corsCfg: &config.CORSConfig{
				AllowOrigins:     []string{"https://example.com"},
				AllowCredentials: true,
				MaxAge:           "1h",
			},
			wantOrigins:     []string{"https://example.com"},
			wantCredentials: true,
			wantMaxAge:      time.Hour,
		},
	}

	defaults := func() (methods, headers []string) {
		d := middleware.DefaultCORSConfig()
		return d.AllowMethods, d.AllowHeaders
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveCORSConfig(tt.mode, tt.corsCfg)
			if err != nil {
				t.Fatalf("resolveCORSConfig() error = %v", err)
			}

			wantMethods, wantHeaders := defaults()
			if tt.wantMethods != nil {
				wantMethods = tt.wantMethods
			}
			if tt.wantHeaders != nil {
				wantHeaders = tt.wantHeaders
			}
			wantMaxAge := middleware.DefaultCORSConfig().MaxAge
			if tt.wantMaxAge != 0 {
				wantMaxAge = tt.wantMaxAge
			}

			if diff := cmp.Diff(tt.wantOrigins, got.AllowOrigins); diff != "" {
				t.Errorf("AllowOrigins mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantMethods, got.AllowMethods); diff != "" {
				t.Errorf("AllowMethods mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantHeaders, got.AllowHeaders); diff != "" {
				t.Errorf("AllowHeaders mismatch (-want +got):\n%s", diff)
			}
			if got.AllowCredentials != tt.wantCredentials {
				t.Errorf("AllowCredentials = %v, want %v", got.AllowCredentials, tt.wantCredentials)
			}
			if got.MaxAge != wantMaxAge {
				t.Errorf("MaxAge = %v, want %v", got.MaxAge, wantMaxAge)
			}
		})
	}

	if _, err := resolveCORSConfig(gin.DebugMode, &config.CORSConfig{MaxAge: "later"}); err == nil {
		t.Error("expected error for malformed max_age")
	}
}

func TestValidateGinMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{name: "debug mode", mode: gin.DebugMode},
		{name: "release mode", mode: gin.ReleaseMode},
		{name: "test mode", mode: gin.TestMode},
		{name: "invalid mode", mode: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGinMode(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateGinMode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) error = nil, want error")
	}
}

func TestNew_ReturnsError_WhenDatabaseSetupFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "unsupported"

	a, err := New(cfg)
	if err == nil {
		t.Fatalf("New() error = nil, want error")
	}
	if a != nil {
		t.Fatalf("New() app = %#v, want nil", a)
	}
	if !strings.Contains(err.Error(), "setup database") {
		t.Fatalf("New() error = %q, want contains %q", err.Error(), "setup database")
	}
}

func TestNew_RejectsMalformedTimeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Timeout = "forever"

	if _, err := New(cfg); err == nil || !strings.Contains(err.Error(), "server.timeout") {
		t.Fatalf("New() error = %v, want server.timeout error", err)
	}
}

func TestNew_AutoMigrateCreatesCatalogTables(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	for _, table := range []string{"users", "games", "purchases", "reviews"} {
		if !a.db.Migrator().HasTable(table) {
			t.Errorf("expected table %q to exist", table)
		}
	}
}

func TestNew_SkipsAutoMigrateWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.AutoMigrate = false
	a := newTestApp(t, cfg)

	if a.db.Migrator().HasTable("games") {
		t.Error("expected no tables without auto_migrate")
	}
}

func TestNew_ServesCatalogEndToEnd(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	h := a.engine

	for _, g := range []map[string]any{
		{"title": "Hollow Knight", "list_price": "14.99", "genre": "Metroidvania"},
		{"title": "Celeste", "list_price": "19.99", "genre": "Platformer"},
		{"title": "Elden Ring", "list_price": "59.99", "genre": "RPG"},
	} {
		if w := doJSON(t, h, http.MethodPost, "/api/v1/games", g); w.Code != http.StatusCreated {
			t.Fatalf("create %v: status = %d, body = %s", g["title"], w.Code, w.Body.String())
		}
	}

	q := url.Values{"filter": {"PrezzoListino < 30"}, "order_by": {"Titolo"}}
	w := doJSON(t, h, http.MethodGet, "/api/v1/games?"+q.Encode(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Items []struct {
				Title string `json:"title"`
			} `json:"items"`
			TotalItems int64 `json:"total_items"`
			PageSize   int   `json:"page_size"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.TotalItems != 2 || resp.Data.PageSize != 2 {
		t.Fatalf("total = %d, page size = %d; want 2 and the configured default 2", resp.Data.TotalItems, resp.Data.PageSize)
	}
	titles := []string{resp.Data.Items[0].Title, resp.Data.Items[1].Title}
	if diff := cmp.Diff([]string{"Celeste", "Hollow Knight"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/games?page_size=11", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"page_size":10`) {
		t.Errorf("page_size above max: status = %d, body = %s; want clamped to 10", w.Code, w.Body.String())
	}
	if w := doJSON(t, h, http.MethodGet, "/api/v1/games?page_size=-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("negative page_size: status = %d, want 400", w.Code)
	}
	if w := doJSON(t, h, http.MethodGet, "/api/v1/games?"+url.Values{"filter": {"Password == 'x'"}}.Encode(), nil); w.Code != http.StatusBadRequest {
		t.Errorf("disallowed field: status = %d, want 400", w.Code)
	}
}

func TestNew_RequestCarriesID(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	w := doJSON(t, a.engine, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestNew_UnknownRouteReturnsEnvelope(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	w := doJSON(t, a.engine, http.MethodGet, "/api/v1/consoles", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", resp.Code)
	}
}

func TestNewHTTPServer_WriteTimeoutCoversRequestTimeout(t *testing.T) {
	srv, ok := newHTTPServer("127.0.0.1:0", http.NotFoundHandler(), 2*time.Minute).(*http.Server)
	if !ok {
		t.Fatal("expected *http.Server")
	}
	if srv.WriteTimeout <= 2*time.Minute {
		t.Errorf("WriteTimeout = %v, want above the request timeout", srv.WriteTimeout)
	}

	srv = newHTTPServer("127.0.0.1:0", http.NotFoundHandler(), 0).(*http.Server)
	if srv.WriteTimeout != 60*time.Second {
		t.Errorf("WriteTimeout = %v, want default 60s", srv.WriteTimeout)
	}
}

func TestRun_ReturnsError_WhenListenFails(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	listenErr := errors.New("listen failed")
	server := &fakeHTTPServer{listenErr: listenErr}
	newHTTPServer = func(string, http.Handler, time.Duration) httpServer {
		return server
	}
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	}

	a := &App{
		engine: gin.New(),
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080}},
	}

	err := a.Run()
	if err == nil {
		t.Fatalf("Run() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "server error") {
		t.Fatalf("Run() error = %q, want contains %q", err.Error(), "server error")
	}
	if !errors.Is(err, listenErr) {
		t.Fatalf("Run() error = %v, want wraps %v", err, listenErr)
	}
}

func TestRun_ShutdownSignal_ClosesDatabase(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "run.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}

	server := &fakeHTTPServer{listenStarted: make(chan struct{}), stopCh: make(chan struct{})}
	newHTTPServer = func(string, http.Handler, time.Duration) httpServer {
		return server
	}

	ctx, cancel := context.WithCancel(context.Background())
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return ctx, cancel
	}

	a := &App{
		engine: gin.New(),
		db:     db,
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, Timeout: "30s"}},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case <-server.listenStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening in time")
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return in time after shutdown signal")
	}

	if !server.wasShutdownCalled() {
		t.Fatal("expected server Shutdown() to be called")
	}
	if pingErr := sqlDB.Ping(); pingErr == nil {
		t.Fatal("expected database connection to be closed, but Ping() succeeded")
	}
}

func TestRun_NilReceiver(t *testing.T) {
	var a *App
	if err := a.Run(); err == nil {
		t.Fatal("expected error for nil app")
	}
	if err := (&App{}).Run(); err == nil {
		t.Fatal("expected error for app without config")
	}
}
