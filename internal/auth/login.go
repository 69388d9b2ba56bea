package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jask/spotifydaily/internal/browser"
)

const loginOrigin browser.Origin = "login"

type callbackResult struct {
	token Token
	err   error
}

// callbackHandler serves /callback for one login attempt identified by state
// and reports the exchanged token on results.
func callbackHandler(cfg Config, state string, results chan<- callbackResult, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "authorization denied: "+e, http.StatusForbidden)
			report(results, callbackResult{err: fmt.Errorf("authorization denied: %s", e)})
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		tok, err := cfg.Exchange(req.Context(), code)
		if err != nil {
			logger.Error("exchange code", "error", err)
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			report(results, callbackResult{err: err})
			return
		}
		_, _ = w.Write([]byte("spotifydaily is authorized. You can close this tab.\n"))
		report(results, callbackResult{token: tok})
	})
	return r
}

func report(results chan<- callbackResult, res callbackResult) {
	select {
	case results <- res:
	default:
	}
}

// Login runs the authorization-code flow: it serves the callback on addr,
// presents the authorize URL and waits for the browser to come back.
func Login(ctx context.Context, cfg Config, addr string, links browser.Presenter, logger *slog.Logger) (Token, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ClientID == "" {
		return Token{}, fmt.Errorf("login: spotify.client_id is not configured")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Token{}, fmt.Errorf("listen %s: %w", addr, err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(cfg, state, results, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(results, callbackResult{err: fmt.Errorf("callback server: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthorizeURL(state)
	logger.Info("login started", "redirect_uri", cfg.RedirectURI)
	links.Present(loginOrigin, authURL)

	select {
	case res := <-results:
		return res.token, res.err
	case <-ctx.Done():
		return Token{}, ctx.Err()
	}
}
