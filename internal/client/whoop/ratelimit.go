package whoop

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header keys in canonical form. WHOOP documents them at
// https://developer.whoop.com/docs/developing/rate-limiting/
const (
	limitHeaderKey     = "X-Ratelimit-Limit"
	remainingHeaderKey = "X-Ratelimit-Remaining"
	resetHeaderKey     = "X-Ratelimit-Reset"
)

// Window is one advertised quota, e.g. 100 requests per 60s.
type Window struct {
	Limit  int
	Period time.Duration
}

// RateLimitInfo is the quota state reported with a WHOOP response.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	Reset     time.Duration
	// Windows lists every quota in the limit header, e.g. per minute and
	// per day. Empty when the header carries a bare number.
	Windows []Window
	// At is when the response was received; Reset counts from it.
	At time.Time
}

// ParseRateLimitHeaders returns nil, nil when any of the three headers is
// missing.
func ParseRateLimitHeaders(headers http.Header, at time.Time) (*RateLimitInfo, error) {
	var (
		limitStr     = headers.Get(limitHeaderKey)
		remainingStr = headers.Get(remainingHeaderKey)
		resetStr     = headers.Get(resetHeaderKey)
	)
	if limitStr == "" || remainingStr == "" || resetStr == "" {
		return nil, nil
	}

	limit, windows, err := parsePolicy(limitStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", limitHeaderKey, err)
	}
	remaining, _, err := parsePolicy(remainingStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", remainingHeaderKey, err)
	}
	resetSeconds, err := strconv.ParseInt(strings.TrimSpace(resetStr), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resetHeaderKey, err)
	}

	return &RateLimitInfo{
		Limit:     limit,
		Remaining: remaining,
		Reset:     time.Duration(resetSeconds) * time.Second,
		Windows:   windows,
		At:        at,
	}, nil
}

// parsePolicy reads a header such as "100, 100;window=60, 10000;window=86400".
// The leading entry is the value that applies now; entries with a window
// attribute describe the quotas behind it.
func parsePolicy(s string) (current int, windows []Window, err error) {
	for i, entry := range strings.Split(s, ",") {
		value, attrs, _ := strings.Cut(strings.TrimSpace(entry), ";")
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, nil, err
		}
		if i == 0 {
			current = n
		}
		for attr := range strings.SplitSeq(attrs, ";") {
			key, seconds, ok := strings.Cut(strings.TrimSpace(attr), "=")
			if !ok || key != "window" {
				continue
			}
			secs, err := strconv.Atoi(seconds)
			if err != nil {
				return 0, nil, fmt.Errorf("window %q: %w", seconds, err)
			}
			windows = append(windows, Window{Limit: n, Period: time.Duration(secs) * time.Second})
		}
	}
	return current, windows, nil
}

// Exhausted reports whether no requests remain in the current window.
func (i *RateLimitInfo) Exhausted() bool {
	return i != nil && i.Remaining <= 0
}

// ResumeAt is when the next request may be sent. It is the zero time unless
// the window is exhausted.
func (i *RateLimitInfo) ResumeAt() time.Time {
	if !i.Exhausted() {
		return time.Time{}
	}
	return i.At.Add(i.Reset)
}

// waitForQuota blocks until info's window resets or ctx ends.
func waitForQuota(ctx context.Context, info *RateLimitInfo, now time.Time) error {
	resume := info.ResumeAt()
	if resume.IsZero() || !resume.After(now) {
		return nil
	}
	timer := time.NewTimer(resume.Sub(now))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for whoop rate limit reset: %w", ctx.Err())
	}
}
