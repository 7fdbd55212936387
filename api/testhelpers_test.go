package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"clipper-mock/config"
	"clipper-mock/core/bootstrap"
	"clipper-mock/core/browsing"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

type testEnv struct {
	srv *Server
	ts  *httptest.Server
	st  *store.Store
	cfg *config.AppConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	st := store.New()
	logger := utils.NewTestLogger()
	if err := bootstrap.EnsureDefaultFixtures(context.Background(), st, cfg, logger); err != nil {
		t.Fatalf("seed fixtures: %v", err)
	}
	srv := NewServer(cfg, st, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	// The SPA callback route does not exist on the mock backend; the
	// browsing client just lands on a 404 page whose URL carries the
	// authorization response.
	cfg.Auth.RedirectURI = ts.URL + "/auth/callback"
	return &testEnv{srv: srv, ts: ts, st: st, cfg: cfg}
}

func newBrowser(t *testing.T, env *testEnv) *browsing.Context {
	t.Helper()
	bc, err := browsing.NewContext(browsing.WithBaseURL(env.ts.URL))
	if err != nil {
		t.Fatalf("browsing context: %v", err)
	}
	return bc
}

// authorize drives the provider leg of the flow for the given persona and
// returns the code and state delivered to the callback page.
func authorize(t *testing.T, bc *browsing.Context, login, state string, extra url.Values) (code, gotState string) {
	t.Helper()
	q := url.Values{}
	q.Set("login", login)
	q.Set("state", state)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	page := bc.NewPage()
	resp, err := page.Get(context.Background(), "/api/v1/auth/twitch?"+q.Encode())
	if err != nil {
		t.Fatalf("login entry: %v", err)
	}
	defer resp.Body.Close()
	landed := resp.Request.URL.Query()
	return landed.Get("code"), landed.Get("state")
}

func mustRequest(t *testing.T, method, rawURL, body string) *http.Request {
	t.Helper()
	var r *strings.Reader
	if body == "" {
		r = strings.NewReader("")
	} else {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, rawURL, r)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// loginAs runs the whole OAuth exchange for a seeded persona, leaving the
// session cookies in the browsing context's jar.
func loginAs(t *testing.T, env *testEnv, bc *browsing.Context, login string) {
	t.Helper()
	code, state := authorize(t, bc, login, "state-"+login, nil)
	if code == "" {
		t.Fatalf("authorize returned no code for %s", login)
	}
	page := bc.NewPage()
	resp, err := page.PostJSON(context.Background(), "/api/v1/auth/twitch/callback", map[string]string{
		"code":  code,
		"state": state,
	})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("callback for %s: status %d", login, resp.StatusCode)
	}
}
