package onedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalog.GO/core/logger"
	"catalog.GO/core/metrics"
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// EndpointURL is a remote /api/onedrive/resolve endpoint. When empty only
	// the direct strategy is used.
	EndpointURL string
	Client      *http.Client
	Timeout     time.Duration
	Logger      logger.Logger
}

// Resolver turns OneDrive links into direct download URLs, best effort.
type Resolver struct {
	endpoint string
	client   *http.Client
	direct   *http.Client
	log      logger.Logger
	maxHops  int
}

func NewResolver(opts ResolverOptions) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Resolver{
		endpoint: strings.TrimSpace(opts.EndpointURL),
		client:   client,
		direct:   manual(client),
		log:      opts.Logger,
		maxHops:  MaxRedirectHops,
	}
}

// Resolve canonicalizes onedrive.live.com links to their download form and
// walks 1drv.ms short links (resolver endpoint first, then a manual request
// reading Location) until a onedrive.live.com URL is reached. Anything else,
// and any failure, yields raw unchanged.
func (r *Resolver) Resolve(ctx context.Context, raw string) string {
	current := strings.TrimSpace(raw)
	if current == "" {
		return raw
	}
	short := false
	visited := make(map[string]bool, r.maxHops)

	for attempt := 0; attempt < r.maxHops; attempt++ {
		if visited[current] {
			break
		}
		visited[current] = true

		u, err := url.Parse(current)
		if err != nil || u.Host == "" {
			break
		}
		host := u.Hostname()

		if IsLiveHost(host) {
			if short {
				metrics.OneDriveResolutions.WithLabelValues("resolved").Inc()
			}
			if canonical, ok := CanonicalDownloadURL(u); ok {
				return canonical
			}
			return current
		}
		if !IsShortHost(host) {
			break
		}

		short = true
		next := r.lookup(ctx, current)
		if next == "" {
			break
		}
		current = next
	}

	if short {
		metrics.OneDriveResolutions.WithLabelValues("unresolved").Inc()
		r.log.Warn("OneDrive link left unresolved", logger.String("url", raw))
	}
	return raw
}

// lookup performs one resolution step for a short link.
func (r *Resolver) lookup(ctx context.Context, shortURL string) string {
	if r.endpoint != "" {
		resolved, err := r.viaEndpoint(ctx, shortURL)
		if err == nil && resolved != "" {
			return resolved
		}
		r.log.Debug("OneDrive resolver endpoint failed, falling back to direct request",
			logger.String("url", shortURL), logger.Error(err))
	}

	next, redirected, err := hop(ctx, r.direct, shortURL)
	if err != nil {
		r.log.Debug("OneDrive direct resolution failed", logger.String("url", shortURL), logger.Error(err))
		return ""
	}
	if !redirected && !IsLiveHost(next.Hostname()) {
		return ""
	}
	return next.String()
}

type resolveBody struct {
	URL string `json:"url"`
}

func (r *Resolver) viaEndpoint(ctx context.Context, shortURL string) (string, error) {
	payload, err := json.Marshal(resolveBody{URL: shortURL})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("resolver endpoint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolver endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("resolver endpoint status %d", resp.StatusCode)
	}
	var body resolveBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode resolver response: %w", err)
	}
	return strings.TrimSpace(body.URL), nil
}
