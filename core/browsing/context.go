// Package browsing models the isolation semantics of browser contexts for
// in-process tests: one Context is one simulated device with its own
// cookie jar; pages opened within a context share that jar, so two pages
// of one context always observe the same session tokens while two
// contexts never do.
package browsing

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

type options struct {
	transport http.RoundTripper
	baseURL   string
	timeout   time.Duration
}

type Option func(*options)

// WithTransport installs a custom RoundTripper, typically an
// intercept.Transport fronting a mock backend.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithBaseURL resolves relative request paths against base.
func WithBaseURL(base string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(strings.TrimSpace(base), "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Context is one isolated browsing session. Cookie and storage state is
// scoped to the context, never shared with another.
type Context struct {
	jar     *cookiejar.Jar
	client  *http.Client
	baseURL string
}

func NewContext(opts ...Option) (*Context, error) {
	o := &options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Context{
		jar: jar,
		client: &http.Client{
			Jar:       jar,
			Transport: o.transport,
			Timeout:   o.timeout,
		},
		baseURL: o.baseURL,
	}, nil
}

// NewPage opens a page in this context. All pages share the context's
// client and jar, mirroring how tabs share per-context storage.
func (c *Context) NewPage() *Page {
	return &Page{ctx: c}
}

// Client exposes the underlying client for callers that drive requests
// directly.
func (c *Context) Client() *http.Client {
	return c.client
}

// Cookies returns the jar's cookies for the given URL, for assertions on
// session state.
func (c *Context) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(c.resolve(rawURL))
	if err != nil {
		return nil
	}
	return c.jar.Cookies(u)
}

// Cookie returns the named cookie's value, or false when absent.
func (c *Context) Cookie(rawURL, name string) (string, bool) {
	for _, ck := range c.Cookies(rawURL) {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}

// SetCookies seeds the jar directly, e.g. to restore a prior session.
func (c *Context) SetCookies(rawURL string, cookies []*http.Cookie) error {
	u, err := url.Parse(c.resolve(rawURL))
	if err != nil {
		return err
	}
	c.jar.SetCookies(u, cookies)
	return nil
}

func (c *Context) resolve(pathOrURL string) string {
	if c.baseURL == "" || strings.Contains(pathOrURL, "://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return c.baseURL + pathOrURL
}
