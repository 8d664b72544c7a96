package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/garrettladley/pulse/internal/repository"
	"github.com/garrettladley/pulse/internal/xhttp"
	"github.com/garrettladley/pulse/internal/xslog"
)

const (
	defaultCallbackPath = "/callback"
	shutdownTime        = 5 * time.Second
	defaultPollInterval = time.Second
	stateLength         = 32

	// keyPendingState lets a second process, launched by the OS for a
	// custom-scheme callback, finish an authorization started here.
	keyPendingState = "oauth_pending_state"
)

type pending struct {
	state string
	done  chan error
	once  sync.Once
}

func (p *pending) finish(err error) {
	p.once.Do(func() { p.done <- err })
}

// Authorizer runs the WHOOP authorization code flow. The redirect either
// lands on a loopback listener or arrives through HandleCallback.
type Authorizer struct {
	config   *oauth2.Config
	tokens   repository.TokenRepository
	settings repository.SettingsRepository
	source   *DBTokenSource
	open     func(url string) error
	out      io.Writer
	logger   *slog.Logger
	poll     time.Duration

	mu      sync.Mutex
	pending *pending
}

type AuthorizerOption func(*Authorizer)

func WithOpener(open func(url string) error) AuthorizerOption {
	return func(a *Authorizer) { a.open = open }
}

func WithOutput(w io.Writer) AuthorizerOption {
	return func(a *Authorizer) { a.out = w }
}

func WithLogger(logger *slog.Logger) AuthorizerOption {
	return func(a *Authorizer) { a.logger = logger }
}

// WithTokenSource makes a fresh authorization evict the source's cached token.
func WithTokenSource(source *DBTokenSource) AuthorizerOption {
	return func(a *Authorizer) { a.source = source }
}

func WithPollInterval(d time.Duration) AuthorizerOption {
	return func(a *Authorizer) { a.poll = d }
}

func NewAuthorizer(config *oauth2.Config, repo *repository.Repository, opts ...AuthorizerOption) *Authorizer {
	a := &Authorizer{
		config:   config,
		tokens:   repo.Tokens,
		settings: repo.Settings,
		open:     openBrowser,
		out:      os.Stdout,
		logger:   xslog.Discard(),
		poll:     defaultPollInterval,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RequestAuthorization blocks until the user completes or abandons the
// browser flow. It reports whether a new token was stored.
func (a *Authorizer) RequestAuthorization(ctx context.Context) (bool, error) {
	p, err := a.begin(ctx)
	if err != nil {
		return false, err
	}
	defer a.end(p)

	if addr, path, ok := loopbackAddr(a.config.RedirectURL); ok {
		server, err := a.serve(addr, path)
		if err != nil {
			return false, fmt.Errorf("failed to start callback server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTime)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	authURL := a.config.AuthCodeURL(p.state, oauth2.AccessTypeOffline)
	_, _ = fmt.Fprintf(a.out, "Opening browser for authorization...\nIf the browser doesn't open, visit:\n%s\n\n", authURL)
	if err := a.open(authURL); err != nil {
		a.logger.WarnContext(ctx, "failed to open browser", xslog.Error(err))
	}

	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()

	for {
		select {
		case err := <-p.done:
			if err != nil {
				return false, err
			}
			return true, nil
		case <-ticker.C:
			if a.completedElsewhere(ctx, p) {
				return true, nil
			}
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// HandleCallback completes a pending authorization from the redirect's query
// parameters. The pending state may belong to another process.
func (a *Authorizer) HandleCallback(ctx context.Context, query url.Values) error {
	a.mu.Lock()
	p := a.pending
	a.mu.Unlock()

	var expected string
	if p != nil {
		expected = p.state
	} else {
		state, err := a.settings.GetValue(ctx, keyPendingState)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoPendingAuthorization
		}
		if err != nil {
			return fmt.Errorf("failed to load pending state: %w", err)
		}
		expected = state
	}

	err := a.exchange(ctx, expected, query)
	if p != nil {
		p.finish(err)
		return err
	}
	if err == nil {
		if derr := a.settings.DeleteValue(ctx, keyPendingState); derr != nil {
			a.logger.WarnContext(ctx, "failed to clear pending state", xslog.Error(derr))
		}
	}
	return err
}

func (a *Authorizer) exchange(ctx context.Context, expected string, query url.Values) error {
	if !validateState(expected, query.Get(paramState)) {
		return ErrStateMismatch
	}
	if errParam := query.Get(paramError); errParam != "" {
		return fmt.Errorf("oauth error: %s - %s", errParam, query.Get(paramErrorDescription))
	}
	code := query.Get(paramCode)
	if code == "" {
		return ErrMissingCode
	}

	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}
	if err := a.tokens.Upsert(ctx, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if a.source != nil {
		a.source.Forget()
	}
	a.logger.InfoContext(ctx, "stored new token")
	return nil
}

func (a *Authorizer) begin(ctx context.Context) (*pending, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != nil {
		return nil, ErrAuthorizationInFlight
	}

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	if err := a.settings.SetValue(ctx, keyPendingState, state); err != nil {
		return nil, fmt.Errorf("failed to save pending state: %w", err)
	}

	a.pending = &pending{state: state, done: make(chan error, 1)}
	return a.pending, nil
}

func (a *Authorizer) end(p *pending) {
	a.mu.Lock()
	if a.pending == p {
		a.pending = nil
	}
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTime)
	defer cancel()
	if err := a.settings.DeleteValue(ctx, keyPendingState); err != nil {
		a.logger.WarnContext(ctx, "failed to clear pending state", xslog.Error(err))
	}
}

// completedElsewhere reports whether another process consumed our pending
// state and stored a token.
func (a *Authorizer) completedElsewhere(ctx context.Context, p *pending) bool {
	state, err := a.settings.GetValue(ctx, keyPendingState)
	if err == nil && state == p.state {
		return false
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false
	}
	_, err = a.tokens.Get(ctx)
	return err == nil
}

func (a *Authorizer) serve(addr, path string) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if err := a.HandleCallback(r.Context(), r.URL.Query()); err != nil {
			http.Error(w, "Authorization failed: "+err.Error(), http.StatusBadRequest)
			return
		}
		writeSuccessHTML(w)
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start listener: %w", err)
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("callback server stopped", xslog.Error(err))
		}
	}()
	return server, nil
}

// loopbackAddr extracts the listen address from an http redirect pointing at
// this machine.
func loopbackAddr(redirect string) (addr, path string, ok bool) {
	u, err := url.Parse(redirect)
	if err != nil || u.Scheme != "http" || u.Port() == "" {
		return "", "", false
	}
	switch u.Hostname() {
	case "127.0.0.1", "localhost", "::1":
	default:
		return "", "", false
	}
	path = u.Path
	if path == "" {
		path = defaultCallbackPath
	}
	return u.Host, path, true
}

func generateState() (string, error) {
	b := make([]byte, stateLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func validateState(expected string, received string) bool {
	return expected != "" && expected == received
}

func writeSuccessHTML(w http.ResponseWriter) {
	xhttp.SetHeaderContentTypeTextHTML(w)
	_, _ = fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>pulse is connected</title></head>
<body>
<h1>Authorization Successful</h1>
<p>You can close this window and return to pulse.</p>
</body>
</html>`)
}
