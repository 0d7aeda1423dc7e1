package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tasktracker/internal/config"
	"tasktracker/internal/storage"

	_ "tasktracker/docs"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
)

func newTestApp(t *testing.T, env map[string]string) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("STORAGE_BACKEND", config.BackendFile)
	t.Setenv("STORAGE_DIR", t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type taskBody struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func registerAndLogin(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "p1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	reg := decode[map[string]any](t, w)
	if reg["token"] == "" || reg["message"] == "" {
		t.Fatalf("register response: %v", reg)
	}
	user, _ := reg["user"].(map[string]any)
	if _, leaked := user["password_hash"]; leaked || user["email"] != "a@x.com" {
		t.Fatalf("unexpected user body: %v", user)
	}

	w = do(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "a@x.com", "password": "p1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	token := decode[map[string]string](t, w)["token"]
	if token == "" {
		t.Fatalf("login returned no token")
	}
	return token
}

func TestEndToEnd_TaskLifecycle(t *testing.T) {
	h := newTestApp(t, nil).Router()
	token := registerAndLogin(t, h)
	bearer := "Bearer " + token

	w := do(t, h, http.MethodPost, "/api/v1/tasks", bearer, map[string]string{"title": "t1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	created := decode[taskBody](t, w)
	if created.ID == "" || created.Title != "t1" {
		t.Fatalf("created: %+v", created)
	}

	w = do(t, h, http.MethodGet, "/api/v1/tasks", bearer, nil)
	list := decode[[]taskBody](t, w)
	if w.Code != http.StatusOK || len(list) != 1 || list[0] != created {
		t.Fatalf("list: %d %+v", w.Code, list)
	}

	w = do(t, h, http.MethodPut, "/api/v1/tasks/"+created.ID, token, map[string]string{"title": "t1b", "description": "d"})
	if w.Code != http.StatusOK {
		t.Fatalf("update (raw token): %d %s", w.Code, w.Body.String())
	}
	if got := decode[taskBody](t, w); got.ID != created.ID || got.Title != "t1b" || got.Description != "d" {
		t.Fatalf("updated: %+v", got)
	}

	w = do(t, h, http.MethodGet, "/api/v1/tasks/"+created.ID, bearer, nil)
	if w.Code != http.StatusOK || decode[taskBody](t, w).Title != "t1b" {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodDelete, "/api/v1/tasks/"+created.ID, bearer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if del := decode[map[string]string](t, w); del["deleted_id"] != created.ID || del["message"] == "" {
		t.Fatalf("delete body: %v", del)
	}

	w = do(t, h, http.MethodGet, "/api/v1/tasks", bearer, nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %d %s", w.Code, w.Body.String())
	}

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodGet} {
		w = do(t, h, method, "/api/v1/tasks/"+created.ID, bearer, map[string]string{"title": "x"})
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s missing task: expected 404, got %d", method, w.Code)
		}
	}
}

func TestEndToEnd_AccessGate(t *testing.T) {
	h := newTestApp(t, nil).Router()
	token := registerAndLogin(t, h)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer garbage", want: http.StatusForbidden},
		{name: "wrong scheme", header: "Token " + token, want: http.StatusForbidden},
		{name: "bearer", header: "Bearer " + token, want: http.StatusOK},
		{name: "raw", header: token, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, path := range []string{"/api/v1/tasks", "/api/v1/users"} {
				w := do(t, h, http.MethodGet, path, tc.header, nil)
				if w.Code != tc.want {
					t.Fatalf("%s: expected %d, got %d", path, tc.want, w.Code)
				}
			}
		})
	}

	w := do(t, h, http.MethodGet, "/api/v1/tasks", "", nil)
	if body := decode[map[string]string](t, w); body["error"] != "access denied" {
		t.Fatalf("unexpected 401 body: %v", body)
	}
	w = do(t, h, http.MethodGet, "/api/v1/tasks", "Bearer garbage", nil)
	if body := decode[map[string]string](t, w); body["error"] != "invalid or expired token" {
		t.Fatalf("unexpected 403 body: %v", body)
	}
}

func TestEndToEnd_ValidationAndConflicts(t *testing.T) {
	h := newTestApp(t, nil).Router()
	token := "Bearer " + registerAndLogin(t, h)

	w := do(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{
		"name": "B", "email": "a@x.com", "password": "p2",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email: expected 400, got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{"name": "B", "email": "b@x.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: expected 400, got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{
		"name": "C", "email": "c@x.com", "password": strings.Repeat("p", 73),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("73-byte password: expected 400, got %d %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "a@x.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("login missing field: expected 400, got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "a@x.com", "password": "bad"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "nobody@x.com", "password": "p1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/api/v1/tasks", token, map[string]string{"title": "", "description": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty title: expected 400, got %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/api/v1/tasks", token, nil)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("rejected create must not mutate, got %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/v1/users", token, nil)
	users := decode[[]map[string]any](t, w)
	if w.Code != http.StatusOK || len(users) != 1 {
		t.Fatalf("users: %d %v", w.Code, users)
	}
	if _, leaked := users[0]["password_hash"]; leaked {
		t.Fatalf("password hash leaked: %v", users[0])
	}
}

func TestEndToEnd_ConcurrentCreates(t *testing.T) {
	h := newTestApp(t, nil).Router()
	token := "Bearer " + registerAndLogin(t, h)
	const n = 20

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = do(t, h, http.MethodPost, "/api/v1/tasks", token, map[string]string{"title": "c"}).Code
		}(i)
	}
	wg.Wait()
	for i, code := range codes {
		if code != http.StatusCreated {
			t.Fatalf("create %d: %d", i, code)
		}
	}

	w := do(t, h, http.MethodGet, "/api/v1/tasks", token, nil)
	list := decode[[]taskBody](t, w)
	if len(list) != n {
		t.Fatalf("expected %d tasks, got %d", n, len(list))
	}
	seen := map[string]bool{}
	for _, task := range list {
		if seen[task.ID] {
			t.Fatalf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestEndToEnd_RedisBackendWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	h := newTestApp(t, map[string]string{
		"STORAGE_BACKEND": config.BackendRedis,
		"REDIS_ADDR":      mr.Addr(),
		"CACHE_ENABLED":   "true",
	}).Router()
	token := "Bearer " + registerAndLogin(t, h)

	w := do(t, h, http.MethodPost, "/api/v1/tasks", token, map[string]string{"title": "cached"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	if len(decode[[]taskBody](t, do(t, h, http.MethodGet, "/api/v1/tasks", token, nil))) != 1 {
		t.Fatalf("expected one task")
	}
	if !mr.Exists("tasktracker:cache:tasks:list") {
		t.Fatalf("expected list to be cached")
	}
	if !mr.Exists("tasktracker:collection:tasks") {
		t.Fatalf("expected tasks collection in redis")
	}

	created := decode[taskBody](t, do(t, h, http.MethodPost, "/api/v1/tasks", token, map[string]string{"title": "second"}))
	if mr.Exists("tasktracker:cache:tasks:list") {
		t.Fatalf("create must invalidate the cached list")
	}
	list := decode[[]taskBody](t, do(t, h, http.MethodGet, "/api/v1/tasks", token, nil))
	if len(list) != 2 || list[1].ID != created.ID {
		t.Fatalf("stale list: %+v", list)
	}
}

func TestServiceRoutes(t *testing.T) {
	h := newTestApp(t, nil).Router()

	for _, path := range []string{"/", "/health", "/version", "/swagger-doc.json"} {
		w := do(t, h, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, w.Code, w.Body.String())
		}
	}

	do(t, h, http.MethodGet, "/api/v1/tasks", "", nil)
	w := do(t, h, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
	for _, name := range []string{"tasktracker_http_requests_total", "tasktracker_auth_denied_total"} {
		if !strings.Contains(w.Body.String(), name) {
			t.Fatalf("metrics output lacks %s", name)
		}
	}
}

type stuckBackend struct{ release chan struct{} }

func (stuckBackend) Load(context.Context, string) ([]byte, error) { return nil, nil }
func (stuckBackend) Save(context.Context, string, []byte) error   { return nil }
func (stuckBackend) Ping(context.Context) error                   { return nil }
func (b stuckBackend) Close() error                               { <-b.release; return nil }

func TestApp_CloseHonoursContext(t *testing.T) {
	b := stuckBackend{release: make(chan struct{})}
	defer close(b.release)
	a := &App{logger: slog.New(slog.NewTextHandler(io.Discard, nil)), db: storage.NewDB(b)}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := a.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("close ignored the context")
	}
}

func TestApp_CloseReturnsBackendResult(t *testing.T) {
	b := stuckBackend{release: make(chan struct{})}
	close(b.release)
	a := &App{logger: slog.New(slog.NewTextHandler(io.Discard, nil)), db: storage.NewDB(b)}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}
