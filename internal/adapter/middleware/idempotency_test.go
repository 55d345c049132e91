package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const settleKey = "0195b3c2-7e1a-7d4e-9f00-3a1b2c3d4e5f"

// settleAPI mounts a settlement route behind the middleware and counts
// how often the handler really runs.
type settleAPI struct {
	e      *echo.Echo
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	calls  int
	status int
}

func newSettleAPI(t *testing.T) *settleAPI {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	api := &settleAPI{mr: mr, rdb: redis.NewClient(&redis.Options{Addr: mr.Addr()}), status: http.StatusOK}
	api.e = echo.New()
	api.e.Use(Idempotency(api.rdb, 5*time.Minute))
	settle := func(c echo.Context) error {
		api.calls++
		if api.status >= http.StatusInternalServerError {
			return echo.NewHTTPError(api.status, "ledger unavailable")
		}
		return c.JSON(api.status, map[string]any{"note": c.Param("id"), "status": "settled", "call": api.calls})
	}
	api.e.POST("/notes/:id/settle", settle)
	api.e.GET("/notes/:id", func(c echo.Context) error {
		api.calls++
		return c.JSON(http.StatusOK, map[string]string{"note": c.Param("id")})
	})
	return api
}

func (a *settleAPI) do(method, path, body, operator, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if operator != "" {
		req.Header.Set(HeaderUserID, operator)
	}
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

const settleBody = `{"amount":"101208.33","settlement_date":"2025-06-30"}`

func TestIdempotency_ReadsPassThrough(t *testing.T) {
	api := newSettleAPI(t)
	if rec := api.do(http.MethodGet, "/notes/N1", "", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("GET without headers = %d", rec.Code)
	}
	if len(api.mr.Keys()) != 0 {
		t.Fatalf("reads must not touch the store: %v", api.mr.Keys())
	}
}

func TestIdempotency_RejectsBadHeaders(t *testing.T) {
	api := newSettleAPI(t)
	tests := []struct {
		name, operator, key, want string
	}{
		{"no key", "ops-alice", "", HeaderIdempotencyKey},
		{"no operator", "", settleKey, HeaderUserID},
		{"short key", "ops-alice", "abc", HeaderIdempotencyKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/notes/N1/settle", settleBody, tt.operator, tt.key)
			if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), tt.want) {
				t.Fatalf("got %d %s", rec.Code, rec.Body.String())
			}
		})
	}
	if api.calls != 0 {
		t.Fatalf("handler ran %d times on rejected calls", api.calls)
	}
}

func TestIdempotency_RetryReplaysFirstSettlement(t *testing.T) {
	api := newSettleAPI(t)

	first := api.do(http.MethodPost, "/notes/N1/settle", settleBody, "ops-alice", settleKey)
	if first.Code != http.StatusOK || first.Header().Get(HeaderReplayed) != "" {
		t.Fatalf("first = %d replayed=%q", first.Code, first.Header().Get(HeaderReplayed))
	}
	retry := api.do(http.MethodPost, "/notes/N1/settle", settleBody, "ops-alice", settleKey)
	if retry.Code != http.StatusOK || retry.Header().Get(HeaderReplayed) != "true" {
		t.Fatalf("retry = %d replayed=%q", retry.Code, retry.Header().Get(HeaderReplayed))
	}
	if retry.Body.String() != first.Body.String() {
		t.Fatalf("replayed body %q, want %q", retry.Body.String(), first.Body.String())
	}
	if !strings.HasPrefix(retry.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		t.Fatalf("content type = %q", retry.Header().Get(echo.HeaderContentType))
	}
	if api.calls != 1 {
		t.Fatalf("settle ran %d times, want 1", api.calls)
	}
}

func TestIdempotency_ClientErrorsAreReplayed(t *testing.T) {
	api := newSettleAPI(t)
	api.status = http.StatusConflict
	api.do(http.MethodPost, "/notes/N1/settle", settleBody, "ops-alice", settleKey)
	api.status = http.StatusOK
	if rec := api.do(http.MethodPost, "/notes/N1/settle", settleBody, "ops-alice", settleKey); rec.Code != http.StatusConflict {
		t.Fatalf("retry of a 409 = %d, want the stored 409", rec.Code)
	}
	if api.calls != 1 {
		t.Fatalf("calls = %d", api.calls)
	}
}

func TestIdempotency_KeysAreScopedPerOperatorAndNote(t *testing.T) {
	api := newSettleAPI(t)
	for _, tc := range []struct{ path, operator string }{
		{"/notes/N1/settle", "ops-alice"},
		{"/notes/N1/settle", "ops.bob@example.com"},
		{"/notes/N2/settle", "ops-alice"},
	} {
		rec := api.do(http.MethodPost, tc.path, settleBody, tc.operator, settleKey)
		if rec.Header().Get(HeaderReplayed) != "" {
			t.Fatalf("%s on %s was replayed", tc.operator, tc.path)
		}
	}
	if api.calls != 3 {
		t.Fatalf("calls = %d, want 3", api.calls)
	}
}

func TestIdempotency_KeyReuseWithDifferentBody(t *testing.T) {
	api := newSettleAPI(t)
	api.do(http.MethodPost, "/notes/N1/settle", settleBody, "ops-alice", settleKey)
	rec := api.do(http.MethodPost, "/notes/N1/settle", `{"amount":"1","settlement_date":"2025-06-30"}`, "ops-alice", settleKey)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "idempotency_key_reused") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if api.calls != 1 {
		t.Fatalf("calls = %d", api.calls)
	}
}

func TestIdempotency_InFlightCallConflicts(t *testing.T) {
	api := newSettleAPI(t)
	key := storeKey("ops-alice", http.MethodPost, "/notes/N1/settle", settleKey)
	store := replayStore{rdb: api.rdb, ttl: time.Minute}
	if won, err := store.reserve(context.Background(), key, storedResponse{Pending: true, Fingerprint: fingerprint([]byte(settleBody))}); err != nil || !won {
		t.Fatalf("reserve: %v %v", won, err)
	}
	rec := api.do(http.MethodPost, "/notes/N1/settle", settleBody, "ops-alice", settleKey)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "request_in_progress") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if api.calls != 0 {
		t.Fatalf("handler ran while another call held the key")
	}
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	api := newSettleAPI(t)
	api.status = http.StatusServiceUnavailable
	if rec := api.do(http.MethodPost, "/notes/N1/settle", settleBody, "ops-alice", settleKey); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("first = %d", rec.Code)
	}
	if n := len(api.mr.Keys()); n != 0 {
		t.Fatalf("5xx left %d keys behind", n)
	}
	api.status = http.StatusOK
	rec := api.do(http.MethodPost, "/notes/N1/settle", settleBody, "ops-alice", settleKey)
	if rec.Code != http.StatusOK || rec.Header().Get(HeaderReplayed) != "" {
		t.Fatalf("retry = %d replayed=%q", rec.Code, rec.Header().Get(HeaderReplayed))
	}
	if api.calls != 2 {
		t.Fatalf("calls = %d, want 2", api.calls)
	}
}

func TestIdempotency_StoreDown(t *testing.T) {
	e := echo.New()
	e.Use(Idempotency(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), time.Minute))
	e.POST("/disbursements", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/disbursements", strings.NewReader(`{}`))
	req.Header.Set(HeaderUserID, "ops-alice")
	req.Header.Set(HeaderIdempotencyKey, settleKey)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "idempotency_unavailable") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}
