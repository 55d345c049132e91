package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderUserID         = "X-User-Id"
	// optional; the server clock is used when absent
	HeaderRequestTime = "X-Request-Time"
	// set on responses served from the replay store
	HeaderReplayed = "Idempotent-Replayed"

	maxClockSkew = 10 * time.Minute
)

var (
	// UUIDs, 32-hex ids and ULIDs all fit.
	reIdempotencyKey = regexp.MustCompile(`^[A-Za-z0-9_-]{16,64}$`)
	// operator ids come from the SSO gateway: usernames or emails
	reOperator = regexp.MustCompile(`^[A-Za-z0-9._@+-]{1,64}$`)
)

// operatorCall identifies one retryable call by a back-office operator.
type operatorCall struct {
	key      string
	operator string
	at       time.Time
}

func parseOperatorCall(h http.Header, now time.Time) (operatorCall, error) {
	var c operatorCall

	c.key = strings.TrimSpace(h.Get(HeaderIdempotencyKey))
	switch {
	case c.key == "":
		return c, errors.New("missing " + HeaderIdempotencyKey)
	case !reIdempotencyKey.MatchString(c.key):
		return c, fmt.Errorf("%s must be 16-64 characters of letters, digits, '-' or '_'", HeaderIdempotencyKey)
	}

	c.operator = strings.TrimSpace(h.Get(HeaderUserID))
	switch {
	case c.operator == "":
		return c, errors.New("missing " + HeaderUserID)
	case !reOperator.MatchString(c.operator):
		return c, errors.New("invalid " + HeaderUserID)
	}

	at, err := parseRequestTime(h.Get(HeaderRequestTime), now)
	if err != nil {
		return c, err
	}
	c.at = at
	return c, nil
}

// parseRequestTime reads an RFC 3339 timestamp that carries an explicit
// offset. Epoch numbers and zone-less times are rejected, as is anything
// further than maxClockSkew from now.
func parseRequestTime(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC 3339 timestamp with an offset", HeaderRequestTime)
	}
	t = t.UTC()
	if d := now.Sub(t); d > maxClockSkew || d < -maxClockSkew {
		return time.Time{}, fmt.Errorf("%s is more than %s away from server time", HeaderRequestTime, maxClockSkew)
	}
	return t, nil
}
