// Package callback routes URLs handed to pulse by the operating system, such
// as the custom-scheme redirect that ends an authorization.
package callback

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/garrettladley/pulse/internal/xslog"
)

const (
	oauthHost    = "oauth"
	callbackPath = "/callback"
)

type Handler interface {
	HandleCallback(ctx context.Context, query url.Values) error
}

type Syncer interface {
	PerformSmartSync(ctx context.Context) error
}

type Receiver struct {
	scheme   string
	loopback *url.URL
	handler  Handler
	syncer   Syncer
	logger   *slog.Logger
}

// NewReceiver accepts callbacks on scheme://oauth/callback and, when
// redirectURL is an http URL, on that URL's path.
func NewReceiver(scheme string, redirectURL string, handler Handler, syncer Syncer, logger *slog.Logger) *Receiver {
	r := &Receiver{
		scheme:  strings.ToLower(scheme),
		handler: handler,
		syncer:  syncer,
		logger:  logger,
	}
	if u, err := url.Parse(redirectURL); err == nil && u.Scheme == "http" {
		r.loopback = u
	}
	return r
}

// Handle reports whether rawURL was an authorization callback this receiver
// owns. A completed authorization is followed by a smart sync.
func (r *Receiver) Handle(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("failed to parse url: %w", err)
	}
	if !r.matches(u) {
		r.logger.DebugContext(ctx, "ignoring url", xslog.Scheme(u.Scheme))
		return false, nil
	}

	if err := r.handler.HandleCallback(ctx, u.Query()); err != nil {
		r.logger.ErrorContext(ctx, "authorization callback failed", xslog.Error(err))
		return true, fmt.Errorf("failed to complete authorization: %w", err)
	}
	r.logger.InfoContext(ctx, "authorization completed", xslog.Authorized(true))

	if err := r.syncer.PerformSmartSync(ctx); err != nil {
		r.logger.ErrorContext(ctx, "sync after authorization failed", xslog.Error(err))
		return true, fmt.Errorf("failed to sync after authorization: %w", err)
	}
	return true, nil
}

func (r *Receiver) matches(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme != "" && scheme == r.scheme:
		// pulse://oauth/callback parses with "oauth" as the host
		return strings.EqualFold(u.Host, oauthHost) && strings.TrimSuffix(u.Path, "/") == callbackPath
	case r.loopback != nil && scheme == r.loopback.Scheme:
		path := r.loopback.Path
		if path == "" {
			path = callbackPath
		}
		return u.Host == r.loopback.Host && u.Path == path
	default:
		return false
	}
}
