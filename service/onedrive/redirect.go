package onedrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotResolved means the chain ended without reaching onedrive.live.com.
	ErrNotResolved = errors.New("onedrive: short link did not resolve to onedrive.live.com")
	// ErrTooManyRedirects means the hop budget ran out.
	ErrTooManyRedirects = errors.New("onedrive: too many redirects")
	// ErrRedirectLoop means a URL was visited twice.
	ErrRedirectLoop = errors.New("onedrive: redirect loop")
)

// NewClient returns an HTTP client that never follows redirects, so each
// hop's Location header can be inspected.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:       timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

// manual returns a copy of c that does not follow redirects.
func manual(c *http.Client) *http.Client {
	if c == nil {
		return NewClient(10 * time.Second)
	}
	cp := *c
	cp.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &cp
}

// hop requests current without following redirects. For a 3xx it returns the
// absolute Location target and redirected=true; otherwise it returns the
// final URL of the response.
func hop(ctx context.Context, client *http.Client, current string) (next *url.URL, redirected bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("onedrive new request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("onedrive request: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := strings.TrimSpace(resp.Header.Get("Location"))
		if location == "" {
			return nil, false, ErrNotResolved
		}
		target, err := resp.Request.URL.Parse(location)
		if err != nil {
			return nil, false, ErrNotResolved
		}
		return target, true, nil
	}
	return resp.Request.URL, false, nil
}

// Follower chases 1drv.ms redirects server-side, one manual hop at a time.
type Follower struct {
	client  *http.Client
	maxHops int
}

// NewFollower wraps client (redirect following is disabled on a copy).
func NewFollower(client *http.Client) *Follower {
	return &Follower{client: manual(client), maxHops: MaxRedirectHops}
}

// Follow returns the first onedrive.live.com URL reached from shortURL. The
// chase stops on a repeated URL, on a hop leaving the 1drv.ms family, or
// after MaxRedirectHops hops.
func (f *Follower) Follow(ctx context.Context, shortURL string) (string, error) {
	current := shortURL
	visited := make(map[string]bool, f.maxHops)

	for attempt := 0; attempt < f.maxHops; attempt++ {
		if visited[current] {
			return "", ErrRedirectLoop
		}
		visited[current] = true

		next, redirected, err := hop(ctx, f.client, current)
		if err != nil {
			return "", err
		}
		host := next.Hostname()
		if IsLiveHost(host) {
			return next.String(), nil
		}
		if !redirected || !IsShortHost(host) {
			return "", ErrNotResolved
		}
		current = next.String()
	}
	return "", ErrTooManyRedirects
}
