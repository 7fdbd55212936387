package browsing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Page is one tab within a Context. It carries no state of its own beyond
// the context reference; session visibility is entirely a context concern.
type Page struct {
	ctx *Context
}

func (p *Page) Get(ctx context.Context, pathOrURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ctx.resolve(pathOrURL), nil)
	if err != nil {
		return nil, err
	}
	return p.ctx.client.Do(req)
}

func (p *Page) Post(ctx context.Context, pathOrURL, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.ctx.resolve(pathOrURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return p.ctx.client.Do(req)
}

// PostJSON marshals v and posts it as application/json.
func (p *Page) PostJSON(ctx context.Context, pathOrURL string, v any) (*http.Response, error) {
	var buf bytes.Buffer
	if v != nil {
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
	}
	return p.Post(ctx, pathOrURL, "application/json", &buf)
}

// Do sends an arbitrary request through the page's context, so its
// cookies ride along.
func (p *Page) Do(req *http.Request) (*http.Response, error) {
	return p.ctx.client.Do(req)
}

// DecodeJSON drains and closes the response body into out.
func DecodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
