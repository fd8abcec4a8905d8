package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultFileName is the catalog file joined onto a base path.
const DefaultFileName = "products.csv"

// Source describes where the catalog lives when no URL is passed explicitly.
type Source struct {
	// URL is an absolute source override (CATALOG_SOURCE_URL).
	URL string
	// SheetsURL is a Google Sheets link in any form (GOOGLE_SHEETS_URL).
	SheetsURL string
	// BasePath is joined with FileName when no absolute URL is configured.
	BasePath string
	FileName string
}

var absoluteURLRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\d+\-.]*://`)

func isAbsoluteURL(v string) bool { return absoluteURLRe.MatchString(v) }

// ResolveProductsURL returns the catalog location. An explicit baseURL is
// joined with the file name. Otherwise the first absolute configured URL
// wins, with Sheets editor and viewer links rewritten to the CSV export, and
// the configured base path is the last resort.
func (s Source) ResolveProductsURL(baseURL string) string {
	fileName := strings.TrimSpace(s.FileName)
	if fileName == "" {
		fileName = DefaultFileName
	}
	if base := strings.TrimSpace(baseURL); base != "" {
		return JoinBase(base, fileName)
	}
	for _, candidate := range []string{s.URL, s.SheetsURL} {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && isAbsoluteURL(candidate) {
			return SheetsCSVURL(candidate)
		}
	}
	return JoinBase(s.BasePath, fileName)
}

// JoinBase joins base and fileName with exactly one slash. Relative bases
// are made root-relative; blank means "/".
func JoinBase(base, fileName string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "/"
	}
	fileName = strings.TrimLeft(fileName, "/")
	if isAbsoluteURL(base) {
		u, err := url.Parse(strings.TrimRight(base, "/") + "/")
		if err != nil {
			return strings.TrimRight(base, "/") + "/" + fileName
		}
		return u.ResolveReference(&url.URL{Path: fileName}).String()
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimRight(base, "/") + "/" + fileName
}

var (
	sheetsPublishedRe = regexp.MustCompile(`^/spreadsheets/d/e/([^/]+)`)
	sheetsDocRe       = regexp.MustCompile(`^/spreadsheets/d/([^/]+)`)
)

// SheetsCSVURL rewrites a Google Sheets editor, viewer or published-HTML
// link to its CSV export, keeping the gid from the query or hash. Export
// endpoints and other URLs are returned unchanged.
func SheetsCSVURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Hostname(), "docs.google.com") {
		return raw
	}
	path := u.Path
	q := u.Query()
	switch {
	case strings.HasSuffix(path, "/export"),
		strings.Contains(path, "/gviz/"),
		strings.HasSuffix(path, "/pub") && strings.EqualFold(q.Get("output"), "csv"):
		return raw
	}

	gid := q.Get("gid")
	if gid == "" && u.Fragment != "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			gid = frag.Get("gid")
		}
	}

	var out string
	if m := sheetsPublishedRe.FindStringSubmatch(path); m != nil {
		out = "https://docs.google.com/spreadsheets/d/e/" + m[1] + "/pub?output=csv"
	} else if m := sheetsDocRe.FindStringSubmatch(path); m != nil {
		out = "https://docs.google.com/spreadsheets/d/" + m[1] + "/export?format=csv"
	} else {
		return raw
	}
	if gid != "" {
		out += "&gid=" + url.QueryEscape(gid)
	}
	return out
}

// load reads the payload at location: http(s) URLs over the network, file
// URLs from disk, relative references against the origin when one is set
// and from the local directory otherwise.
func (p *Pipeline) load(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, &FetchError{URL: location, Err: err}
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return p.get(ctx, u.String())
	case "file":
		return p.readFile(location, filepath.FromSlash(u.Path))
	case "":
		if p.origin != nil {
			return p.get(ctx, p.origin.ResolveReference(u).String())
		}
		name := filepath.Join(p.localDir, filepath.FromSlash(strings.TrimLeft(u.Path, "/")))
		return p.readFile(location, name)
	default:
		return nil, &FetchError{URL: location, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
}

func (p *Pipeline) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	return body, nil
}

func (p *Pipeline) readFile(location, name string) ([]byte, error) {
	body, err := os.ReadFile(name)
	if err != nil {
		return nil, &FetchError{URL: location, Err: err}
	}
	return body, nil
}
