package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/spotifydaily/internal/browser"
	"github.com/jask/spotifydaily/internal/secrets"
)

// tokenServer fakes the accounts service token endpoint.
func tokenServer(t *testing.T, handle func(form url.Values) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.NoError(t, r.ParseForm())
		status, body := handle(r.PostForm)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(accounts string) Config {
	return Config{ClientID: "client", ClientSecret: "secret", AccountsURL: accounts, RedirectURI: "http://127.0.0.1:8888/callback"}
}

func TestAuthorizeURL(t *testing.T) {
	u, err := url.Parse(testConfig("https://accounts.spotify.com/").AuthorizeURL("st4te"))
	require.NoError(t, err)
	require.Equal(t, "/authorize", u.Path)
	q := u.Query()
	require.Equal(t, "client", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "st4te", q.Get("state"))
	require.Equal(t, "user-top-read user-read-recently-played", q.Get("scope"))
}

func TestExchange(t *testing.T) {
	srv := tokenServer(t, func(form url.Values) (int, string) {
		require.Equal(t, "authorization_code", form.Get("grant_type"))
		require.Equal(t, "the-code", form.Get("code"))
		return http.StatusOK, `{"access_token":"acc","token_type":"Bearer","expires_in":3600,"refresh_token":"ref"}`
	})

	tok, err := testConfig(srv.URL).Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, "acc", tok.AccessToken)
	require.Equal(t, "ref", tok.RefreshToken)
	require.WithinDuration(t, time.Now().Add(time.Hour), tok.Expiry, 5*time.Second)
}

func TestExchangeFailure(t *testing.T) {
	srv := tokenServer(t, func(url.Values) (int, string) {
		return http.StatusBadRequest, `{"error":"invalid_grant"}`
	})
	_, err := testConfig(srv.URL).Exchange(context.Background(), "bad")
	require.ErrorContains(t, err, "invalid_grant")
}

func TestRefreshKeepsOldRefreshToken(t *testing.T) {
	srv := tokenServer(t, func(form url.Values) (int, string) {
		require.Equal(t, "refresh_token", form.Get("grant_type"))
		return http.StatusOK, `{"access_token":"acc2","expires_in":3600}`
	})
	tok, err := testConfig(srv.URL).Refresh(context.Background(), "ref")
	require.NoError(t, err)
	require.Equal(t, "acc2", tok.AccessToken)
	require.Equal(t, "ref", tok.RefreshToken)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	require.False(t, Token{}.Expired(now, time.Minute))
	require.True(t, Token{Expiry: now.Add(10 * time.Second)}.Expired(now, 30*time.Second))
	require.False(t, Token{Expiry: now.Add(time.Hour)}.Expired(now, 30*time.Second))
}

func TestSourceWithoutLogin(t *testing.T) {
	src := NewSource(testConfig("http://unused"), secrets.NewStore(t.TempDir()), nil)
	_, err := src.Token(context.Background())
	require.ErrorIs(t, err, ErrNoToken)
}

func TestSourceRefreshesExpiredToken(t *testing.T) {
	refreshes := 0
	srv := tokenServer(t, func(url.Values) (int, string) {
		refreshes++
		return http.StatusOK, fmt.Sprintf(`{"access_token":"fresh-%d","expires_in":3600}`, refreshes)
	})
	store := secrets.NewStore(t.TempDir())
	require.NoError(t, SaveToken(store, Token{AccessToken: "stale", RefreshToken: "ref", Expiry: time.Now().Add(-time.Minute)}))

	src := NewSource(testConfig(srv.URL), store, nil)
	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh-1", tok)

	tok, err = src.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh-1", tok)
	require.Equal(t, 1, refreshes)

	var saved Token
	require.NoError(t, store.Load(secretName, &saved))
	require.Equal(t, "fresh-1", saved.AccessToken)
	require.Equal(t, "ref", saved.RefreshToken)
}

func TestCallbackRejectsWrongState(t *testing.T) {
	results := make(chan callbackResult, 1)
	h := callbackHandler(testConfig("http://unused"), "expected", results, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=x", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, results)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=expected&error=access_denied", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	res := <-results
	require.ErrorContains(t, res.err, "access_denied")
}

// callbackPresenter plays the browser: it follows the authorize URL straight
// to the redirect URI with a code.
type callbackPresenter struct {
	addr string
	wg   sync.WaitGroup
	t    *testing.T
}

func (p *callbackPresenter) Present(_ browser.Origin, rawURL string) {
	u, err := url.Parse(rawURL)
	require.NoError(p.t, err)
	state := u.Query().Get("state")
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		resp, err := http.Get(fmt.Sprintf("http://%s/callback?code=the-code&state=%s", p.addr, url.QueryEscape(state)))
		if err == nil {
			resp.Body.Close()
		}
	}()
}

func TestLoginEndToEnd(t *testing.T) {
	srv := tokenServer(t, func(form url.Values) (int, string) {
		return http.StatusOK, `{"access_token":"acc","expires_in":3600,"refresh_token":"ref"}`
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := &callbackPresenter{addr: addr, t: t}
	tok, err := Login(ctx, testConfig(srv.URL), addr, p, nil)
	p.wg.Wait()
	require.NoError(t, err)
	require.Equal(t, "acc", tok.AccessToken)
	require.Equal(t, "ref", tok.RefreshToken)
}

func TestLoginRequiresClientID(t *testing.T) {
	_, err := Login(context.Background(), Config{}, "127.0.0.1:0", &browser.Recorder{}, nil)
	require.Error(t, err)
}
