package intercept

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestClient(router *Router) *http.Client {
	return &http.Client{Transport: NewTransport(router), Timeout: 5 * time.Second}
}

func TestFulfillSynthesizesResponse(t *testing.T) {
	router := NewRouter()
	err := router.Fulfill("**/auth/me", "GET", Response{
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        []byte(`{"id":"u1","username":"alice"}`),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	client := newTestClient(router)
	resp, err := client.Get("http://mock.local/api/v1/auth/me")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"id":"u1","username":"alice"}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if got := router.Hits("**/auth/me"); got != 1 {
		t.Fatalf("expected 1 hit, got %d", got)
	}
}

func TestOverlapRejectedBothOrders(t *testing.T) {
	for _, pair := range [][2]string{
		{"**/auth/me", "http://mock.local/api/v1/auth/me"},
		{"http://mock.local/api/v1/auth/me", "**/auth/me"},
		{"http://mock.local/a*/b", "http://mock.local/*c/b"},
		{"http://mock.local/*c/b", "http://mock.local/a*/b"},
	} {
		router := NewRouter()
		if err := router.Abort(pair[0], "GET"); err != nil {
			t.Fatalf("first register: %v", err)
		}
		err := router.Abort(pair[1], "GET")
		if !errors.Is(err, ErrPatternOverlap) {
			t.Fatalf("expected ErrPatternOverlap for %q after %q, got %v", pair[1], pair[0], err)
		}
	}
}

func TestOverlapAllowedAcrossMethods(t *testing.T) {
	router := NewRouter()
	if err := router.Fulfill("**/chat/bans", "GET", Response{Status: 200}); err != nil {
		t.Fatalf("GET register: %v", err)
	}
	if err := router.Fulfill("**/chat/bans", "POST", Response{Status: 201}); err != nil {
		t.Fatalf("POST register: %v", err)
	}
}

func TestWildcardMethodCollides(t *testing.T) {
	router := NewRouter()
	if err := router.Abort("**/mfa/verify", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := router.Abort("**/mfa/verify", "POST"); !errors.Is(err, ErrPatternOverlap) {
		t.Fatalf("expected ErrPatternOverlap, got %v", err)
	}
}

func TestAbortSurfacesAsURLError(t *testing.T) {
	router := NewRouter()
	if err := router.Abort("**/auth/twitch", "GET"); err != nil {
		t.Fatalf("register: %v", err)
	}
	client := newTestClient(router)
	_, err := client.Get("http://mock.local/auth/twitch")
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *url.Error, got %T %v", err, err)
	}
	if !errors.Is(err, ErrRouteAborted) {
		t.Fatalf("expected ErrRouteAborted in chain, got %v", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	router := NewRouter()
	if err := router.Abort("**/auth/me", "GET"); err != nil {
		t.Fatalf("register: %v", err)
	}
	router.Clear("**/auth/me")
	if router.Len() != 0 {
		t.Fatalf("expected no rules after clear")
	}
	router.Clear("**/auth/me")
	router.Clear("**/never-registered")
	if router.Len() != 0 {
		t.Fatalf("clear must stay a no-op")
	}
	// The slot is free again.
	if err := router.Abort("**/auth/me", "GET"); err != nil {
		t.Fatalf("re-register after clear: %v", err)
	}
}

func TestPassthroughAndUnmatchedHitBase(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer backend.Close()

	router := NewRouter()
	if err := router.Passthrough(backend.URL+"/real", "GET"); err != nil {
		t.Fatalf("register: %v", err)
	}
	client := newTestClient(router)

	resp, err := client.Get(backend.URL + "/real")
	if err != nil {
		t.Fatalf("passthrough: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("expected passthrough status, got %d", resp.StatusCode)
	}
	if got := router.Hits(backend.URL + "/real"); got != 1 {
		t.Fatalf("passthrough should count hits, got %d", got)
	}

	resp, err = client.Get(backend.URL + "/unmatched")
	if err != nil {
		t.Fatalf("unmatched: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("unmatched request should reach the base transport")
	}
}

func TestFulfilledRedirectDrivesNavigation(t *testing.T) {
	router := NewRouter()
	err := router.Fulfill("**/auth/twitch/authorize**", "GET", Response{
		Status: http.StatusFound,
		Header: http.Header{"Location": {"http://mock.local/auth/callback?code=abc&state=xyz"}},
	})
	if err != nil {
		t.Fatalf("register authorize: %v", err)
	}
	err = router.Fulfill("**/auth/callback**", "GET", Response{
		Status:      http.StatusOK,
		ContentType: "text/html",
		Body:        []byte("signed in"),
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	client := newTestClient(router)
	resp, err := client.Get("http://mock.local/auth/twitch/authorize?client_id=x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", resp.StatusCode)
	}
	if got := resp.Request.URL.Query().Get("code"); got != "abc" {
		t.Fatalf("expected navigation to callback with code, got url %s", resp.Request.URL)
	}
	if router.Hits("**/auth/callback**") != 1 {
		t.Fatalf("callback should have been intercepted once")
	}
}

func TestAbortAfterDelayRespectsContext(t *testing.T) {
	router := NewRouter()
	if err := router.AbortAfter("**/slow", "GET", 5*time.Second); err != nil {
		t.Fatalf("register: %v", err)
	}
	client := &http.Client{Transport: NewTransport(router), Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := client.Get("http://mock.local/slow")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("client timeout should cancel the simulated delay")
	}
}

func TestHandlerDecidesPerRequest(t *testing.T) {
	router := NewRouter()
	calls := 0
	err := router.Handle("**/mfa/verify", "POST", func(r *http.Request) Outcome {
		calls++
		if calls == 1 {
			return FulfillOutcome{Response: Response{Status: http.StatusUnauthorized}}
		}
		return FulfillOutcome{Response: Response{Status: http.StatusOK}}
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	client := newTestClient(router)
	for i, want := range []int{http.StatusUnauthorized, http.StatusOK} {
		resp, err := client.Post("http://mock.local/mfa/verify", "application/json", nil)
		if err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("call %d: expected %d, got %d", i, want, resp.StatusCode)
		}
	}
}
