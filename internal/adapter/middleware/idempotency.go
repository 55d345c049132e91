package middleware

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const storeTimeout = 2 * time.Second

var clock = func() time.Time { return time.Now().UTC() }

// bodyCapture tees the response body so it can be stored for replay.
type bodyCapture struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency makes a retried operator call (same Idempotency-Key, same
// operator, same path, same body) return the first response instead of
// running twice. Reads pass through untouched. A 5xx is not stored so the
// operator may retry it.
func Idempotency(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := replayStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			call, err := parseOperatorCall(req.Header, clock())
			if err != nil {
				return reject(c, http.StatusBadRequest, "bad_request", err.Error())
			}
			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return reject(c, http.StatusBadRequest, "bad_request", "unreadable body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			fp := fingerprint(body)

			key := storeKey(call.operator, req.Method, req.URL.Path, call.key)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			won, err := store.reserve(ctx, key, storedResponse{
				Pending:     true,
				Fingerprint: fp,
				RequestedAt: call.at,
				StoredAt:    clock(),
			})
			if err != nil {
				log.Printf("idempotency: reserve %s: %v", key, err)
				return reject(c, http.StatusServiceUnavailable, "idempotency_unavailable", "idempotency store unavailable")
			}
			if !won {
				return replay(ctx, c, store, key, fp)
			}

			capture := &bodyCapture{ResponseWriter: c.Response().Writer}
			c.Response().Writer = capture
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be done
			bg, done := context.WithTimeout(context.Background(), storeTimeout)
			defer done()
			res := c.Response()
			if res.Status >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Printf("idempotency: release %s: %v", key, err)
				}
				return nil
			}
			if err := store.complete(bg, key, storedResponse{
				Status:      res.Status,
				ContentType: res.Header().Get(echo.HeaderContentType),
				Body:        capture.buf.Bytes(),
				Fingerprint: fp,
				RequestedAt: call.at,
				StoredAt:    clock(),
			}); err != nil {
				log.Printf("idempotency: save %s: %v", key, err)
			}
			return nil
		}
	}
}

// replay answers a call whose key is already taken.
func replay(ctx context.Context, c echo.Context, store replayStore, key, fp string) error {
	prev, found, err := store.get(ctx, key)
	switch {
	case err != nil:
		log.Printf("idempotency: load %s: %v", key, err)
		return reject(c, http.StatusServiceUnavailable, "idempotency_unavailable", "idempotency store unavailable")
	case !found:
		// released by a failed first attempt between our reserve and get
		return reject(c, http.StatusConflict, "request_in_progress", "request is being retried, try again")
	case prev.Fingerprint != fp:
		return reject(c, http.StatusUnprocessableEntity, "idempotency_key_reused", HeaderIdempotencyKey+" was already used with a different body")
	case prev.Pending:
		return reject(c, http.StatusConflict, "request_in_progress", "request is already in progress")
	}
	ct := prev.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSON
	}
	c.Response().Header().Set(HeaderReplayed, "true")
	return c.Blob(prev.Status, ct, prev.Body)
}

func reject(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, map[string]string{"error": msg, "code": code})
}
