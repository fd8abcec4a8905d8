package onedrive

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routedClient sends every request, whatever its host, to srv.
func routedClient(srv *httptest.Server) *http.Client {
	addr := srv.Listener.Addr().String()
	return &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, network, addr)
		},
	}}
}

func TestHosts(t *testing.T) {
	assert.True(t, IsShortHost("1drv.ms"))
	assert.True(t, IsShortHost("x.1DRV.ms"))
	assert.False(t, IsShortHost("not1drv.ms"))
	assert.True(t, IsLiveHost("onedrive.live.com"))
	assert.True(t, IsLiveHost("photos.onedrive.live.com"))
	assert.False(t, IsLiveHost("api.onedrive.com"))
	assert.True(t, IsSharePointHost("contoso-my.sharepoint.com"))
	assert.False(t, IsSharePointHost("sharepoint.com"))
	assert.True(t, IsAPIHost("API.onedrive.com"))
}

func TestShareContentURL(t *testing.T) {
	in := "https://1drv.ms/i/c/abc123/EXYZ?e=xyz"
	out, ok := ShareContentURL(in)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(out, "https://api.onedrive.com/v1.0/shares/u!"))
	require.True(t, strings.HasSuffix(out, "/root/content"))

	token := strings.TrimSuffix(strings.TrimPrefix(out, "https://api.onedrive.com/v1.0/shares/u!"), "/root/content")
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	decoded, err := DecodeShareToken(token)
	require.NoError(t, err)
	assert.Equal(t, in, decoded)

	again, ok := ShareContentURL(out)
	assert.False(t, ok, "api.onedrive.com passes through")
	assert.Equal(t, out, again)
}

func TestShareContentURL_Hosts(t *testing.T) {
	for _, in := range []string{
		"https://onedrive.live.com/?cid=1&resid=2",
		"https://contoso.sharepoint.com/:i:/g/personal/x",
		"1drv.ms/i/s!abc",
	} {
		_, ok := ShareContentURL(in)
		assert.True(t, ok, in)
	}
	for _, in := range []string{"https://example.com/a.jpg", "images/a.jpg", ""} {
		out, ok := ShareContentURL(in)
		assert.False(t, ok, in)
		assert.Equal(t, in, out)
	}
}

func TestCanonicalDownloadURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://onedrive.live.com/redir?CID=abc&RESID=abc!101&AuthKey=k1&other=x", "https://onedrive.live.com/download?cid=abc&resid=abc%21101&authkey=k1"},
		{"https://onedrive.live.com/?id=abc!5&cid=abc", "https://onedrive.live.com/download?cid=abc&resid=abc%215"},
		{"https://onedrive.live.com/embed#cid=c1&resid=r1&authkey=a1", "https://onedrive.live.com/download?cid=c1&resid=r1&authkey=a1"},
	}
	for _, c := range cases {
		u, err := url.Parse(c.in)
		require.NoError(t, err)
		got, ok := CanonicalDownloadURL(u)
		assert.True(t, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	u, _ := url.Parse("https://onedrive.live.com/?redeem=xyz")
	_, ok := CanonicalDownloadURL(u)
	assert.False(t, ok)
}

func TestFollower_Follow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Host == "1drv.ms" && r.URL.Path == "/i/s!start":
			http.Redirect(w, r, "http://x.1drv.ms/hop", http.StatusMovedPermanently)
		case r.Host == "x.1drv.ms":
			http.Redirect(w, r, "https://onedrive.live.com/redir?cid=c&resid=r&authkey=k", http.StatusFound)
		default:
			t.Errorf("unexpected request to %s%s", r.Host, r.URL.Path)
		}
	}))
	defer srv.Close()

	got, err := NewFollower(routedClient(srv)).Follow(context.Background(), "http://1drv.ms/i/s!start")
	require.NoError(t, err)
	assert.Equal(t, "https://onedrive.live.com/redir?cid=c&resid=r&authkey=k", got)
}

func TestFollower_Loop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/a" {
			http.Redirect(w, r, "http://1drv.ms/b", http.StatusFound)
			return
		}
		http.Redirect(w, r, "http://1drv.ms/a", http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewFollower(routedClient(srv)).Follow(context.Background(), "http://1drv.ms/a")
	assert.ErrorIs(t, err, ErrRedirectLoop)
}

func TestFollower_HopBudget(t *testing.T) {
	n := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		http.Redirect(w, r, "http://1drv.ms/next"+strings.Repeat("x", n), http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewFollower(routedClient(srv)).Follow(context.Background(), "http://1drv.ms/start")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
	assert.Equal(t, MaxRedirectHops, n)
}

func TestFollower_LeavesOneDrive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "1drv.ms" {
			http.Redirect(w, r, "http://login.example.com/", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewFollower(routedClient(srv)).Follow(context.Background(), "http://1drv.ms/x")
	assert.ErrorIs(t, err, ErrNotResolved)
}

func TestResolver_LiveCanonicalization(t *testing.T) {
	r := NewResolver(ResolverOptions{})
	got := r.Resolve(context.Background(), "https://onedrive.live.com/?cid=C&resid=R&authkey=K&v=photos")
	assert.Equal(t, "https://onedrive.live.com/download?cid=C&resid=R&authkey=K", got)

	assert.Equal(t, "https://example.com/a.jpg", r.Resolve(context.Background(), "https://example.com/a.jpg"))
	assert.Equal(t, "not a url", r.Resolve(context.Background(), "not a url"))
}

func TestResolver_Direct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://onedrive.live.com/redir?cid=c1&resid=r1&authkey=k1", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	r := NewResolver(ResolverOptions{Client: routedClient(srv)})
	got := r.Resolve(context.Background(), "http://1drv.ms/i/s!abc")
	assert.Equal(t, "https://onedrive.live.com/download?cid=c1&resid=r1&authkey=k1", got)
}

func TestResolver_EndpointThenCanonical(t *testing.T) {
	var posted string
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URL string `json:"url"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		posted = body.URL
		json.NewEncoder(w).Encode(map[string]string{"url": "https://onedrive.live.com/redir?resid=R2&cid=C2"})
	}))
	defer endpoint.Close()

	r := NewResolver(ResolverOptions{EndpointURL: endpoint.URL})
	got := r.Resolve(context.Background(), "https://1drv.ms/u/s!xyz")
	assert.Equal(t, "https://1drv.ms/u/s!xyz", posted)
	assert.Equal(t, "https://onedrive.live.com/download?cid=C2&resid=R2", got)
}

func TestResolver_EndpointFailureFallsBackToDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		http.Redirect(w, r, "https://onedrive.live.com/redir?cid=c&resid=r", http.StatusFound)
	}))
	defer srv.Close()

	r := NewResolver(ResolverOptions{EndpointURL: "http://resolver.local/api/onedrive/resolve", Client: routedClient(srv)})
	got := r.Resolve(context.Background(), "http://1drv.ms/i/s!abc")
	assert.Equal(t, "https://onedrive.live.com/download?cid=c&resid=r", got)
}

func TestResolver_UnresolvedReturnsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver(ResolverOptions{Client: routedClient(srv)})
	in := "  http://1drv.ms/i/s!gone "
	assert.Equal(t, in, r.Resolve(context.Background(), in))
}

func TestResolver_LoopReturnsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://1drv.ms/same", http.StatusFound)
	}))
	defer srv.Close()

	r := NewResolver(ResolverOptions{Client: routedClient(srv)})
	assert.Equal(t, "http://1drv.ms/same", r.Resolve(context.Background(), "http://1drv.ms/same"))
}
