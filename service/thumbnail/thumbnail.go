// Package thumbnail downloads catalog images and re-encodes them as small
// WebP thumbnails.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"catalog.GO/core/cache"
	"catalog.GO/service/imageurl"
)

const (
	DefaultWidth = 320
	MaxWidth     = 1600
	// MaxSourceBytes bounds a downloaded original.
	MaxSourceBytes = 15 << 20
	// DefaultMaxPixels bounds the decoded size of an original.
	DefaultMaxPixels = 40_000_000
	// DefaultMaxCacheEntries bounds the number of cached thumbnails.
	DefaultMaxCacheEntries = 512
)

var (
	ErrInvalidURL       = errors.New("thumbnail: url must be an absolute http(s) URL")
	ErrInvalidWidth     = errors.New("thumbnail: width out of range")
	ErrForbiddenAddress = errors.New("thumbnail: address not publicly routable")
	ErrImageTooLarge    = errors.New("thumbnail: image dimensions too large")
)

// UpstreamError means the original image could not be downloaded or decoded.
type UpstreamError struct {
	URL string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("thumbnail %s: %v", e.URL, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

type Options struct {
	Images *imageurl.Chain
	// Client defaults to NewClient, which refuses non-public addresses.
	Client          *http.Client
	Cache           *cache.Cache
	TTL             int64
	Quality         float32
	MaxPixels       int
	MaxCacheEntries int
}

type Service struct {
	images     *imageurl.Chain
	client     *http.Client
	cache      *cache.Cache
	ttl        int64
	quality    float32
	maxPixels  int
	maxEntries int
}

func NewService(opts Options) *Service {
	s := &Service{
		images:     opts.Images,
		client:     opts.Client,
		cache:      opts.Cache,
		ttl:        opts.TTL,
		quality:    opts.Quality,
		maxPixels:  opts.MaxPixels,
		maxEntries: opts.MaxCacheEntries,
	}
	if s.images == nil {
		s.images = imageurl.DefaultChain()
	}
	if s.client == nil {
		s.client = NewClient(20 * time.Second)
	}
	if s.maxPixels <= 0 {
		s.maxPixels = DefaultMaxPixels
	}
	if s.maxEntries <= 0 {
		s.maxEntries = DefaultMaxCacheEntries
	}
	if s.cache == nil {
		s.cache = cache.NewCache()
	}
	if s.ttl == 0 {
		s.ttl = 3600
	}
	if s.quality <= 0 {
		s.quality = 80
	}
	return s
}

// Thumbnail normalizes rawURL through the image chain, downloads it and
// returns a WebP no wider than width. Images are never upscaled.
func (s *Service) Thumbnail(ctx context.Context, rawURL string, width int) ([]byte, error) {
	if width <= 0 || width > MaxWidth {
		return nil, ErrInvalidWidth
	}
	target := s.images.Normalize(ctx, rawURL)
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	if v, ok := s.cache.GetN("thumbnail", target, width); ok {
		return v.([]byte), nil
	}

	src, err := s.download(ctx, target)
	if err != nil {
		return nil, &UpstreamError{URL: target, Err: err}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, &UpstreamError{URL: target, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > s.maxPixels/cfg.Height {
		return nil, &UpstreamError{URL: target, Err: ErrImageTooLarge}
	}
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &UpstreamError{URL: target, Err: err}
	}
	thumb := imaging.Fit(img, width, img.Bounds().Dy(), imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, thumb, &webp.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	out := buf.Bytes()
	if s.cachedEntries() < s.maxEntries {
		s.cache.SetN([]interface{}{"thumbnail", target, width}, out, s.ttl, []string{"thumbnail"})
	}
	return out, nil
}

// cachedEntries counts live thumbnails, evicting expired ones on the way.
func (s *Service) cachedEntries() int {
	n := 0
	for _, key := range s.cache.GetKeysByTag("thumbnail") {
		if _, ok := s.cache.Get(key); ok {
			n++
		}
	}
	return n
}

// NewClient returns a client that only connects to publicly routable
// addresses. The check runs at dial time, so it covers redirects and DNS
// answers pointing inside the network.
func NewClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: publicOnly}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func publicOnly(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, address)
	}
	if !IsPublicAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, ap.Addr())
	}
	return nil
}

// IsPublicAddr reports whether addr is a globally routable unicast address.
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast() &&
		!sharedAddressSpace.Contains(addr)
}

// 100.64.0.0/10, carrier-grade NAT.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func (s *Service) download(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && strings.HasPrefix(ct, "text/") {
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxSourceBytes {
		return nil, errors.New("image too large")
	}
	return body, nil
}
