package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ParseDurationEnv parses an env value as time.Duration:
// - "10s", "5m" etc. (time.ParseDuration)
// - bare number "10" = seconds (10s)
func ParseDurationEnv(s string) (time.Duration, error) {
	s = unquote(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}
	return d, nil
}

// RedisTarget is what a redis:// URL resolves to.
type RedisTarget struct {
	Addr     string
	Password string
	DB       int
}

// ParseRedisURL extracts host:port, password and DB from redis:// or rediss:// URL.
func ParseRedisURL(s string) (RedisTarget, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return RedisTarget{}, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return RedisTarget{}, fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}
	t := RedisTarget{Addr: u.Host}
	if t.Addr == "" {
		return RedisTarget{}, fmt.Errorf("missing host in Redis URL")
	}
	if u.User != nil {
		t.Password, _ = u.User.Password()
	}
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		db, err := strconv.Atoi(p)
		if err != nil || db < 0 {
			return RedisTarget{}, fmt.Errorf("invalid Redis DB %q", p)
		}
		t.DB = db
	}
	return t, nil
}

// strip optional surrounding quotes: "10s" or '10s'
func unquote(s string) string {
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		return s[1 : len(s)-1]
	}
	return s
}
