package imageurl

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"catalog.GO/service/onedrive"
)

const driveViewURL = "https://drive.google.com/uc?export=view&id="

var (
	driveFilePath = regexp.MustCompile(`/file/d/([^/?#]+)`)
	driveBareID   = regexp.MustCompile(`[A-Za-z0-9_-]{10,}`)
)

// DriveViewURL is the direct-view endpoint for a Drive file id.
func DriveViewURL(id string) string {
	return driveViewURL + url.QueryEscape(id)
}

// DriveFileID extracts a file id from a Google Drive link: a /file/d/{id}
// segment, then an id query parameter, then (scheme-less values only) the
// first bare token of ten or more id characters.
func DriveFileID(raw string) (string, bool) {
	if !strings.Contains(strings.ToLower(raw), "google.com") {
		return "", false
	}
	if m := driveFilePath.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}

	candidate := raw
	if !onedrive.HasScheme(candidate) {
		candidate = "https://" + strings.TrimPrefix(candidate, "//")
	}
	if u, err := url.Parse(candidate); err == nil {
		if id := strings.TrimSpace(u.Query().Get("id")); id != "" {
			return id, true
		}
	}

	if !onedrive.HasScheme(raw) {
		for _, token := range driveBareID.FindAllString(raw, -1) {
			if !strings.Contains(strings.ToLower(token), "google") {
				return token, true
			}
		}
	}
	return "", false
}

// DriveRule rewrites Google Drive share links to the direct-view endpoint.
type DriveRule struct{}

func (DriveRule) Name() string { return "google-drive" }

func (DriveRule) Rewrite(_ context.Context, raw string) (string, bool) {
	id, ok := DriveFileID(raw)
	if !ok {
		return "", false
	}
	return DriveViewURL(id), true
}

// OneDriveShareRule rewrites OneDrive and SharePoint share links to the
// api.onedrive.com shares content endpoint. api.onedrive.com links are
// claimed and returned unchanged.
type OneDriveShareRule struct{}

func (OneDriveShareRule) Name() string { return "onedrive-share" }

func (OneDriveShareRule) Rewrite(_ context.Context, raw string) (string, bool) {
	if out, ok := onedrive.ShareContentURL(raw); ok {
		return out, true
	}
	if u, err := url.Parse(raw); err == nil && onedrive.IsAPIHost(u.Hostname()) {
		return raw, true
	}
	return "", false
}

// OneDriveRedirectRule resolves 1drv.ms short links and canonicalizes
// onedrive.live.com links through a Resolver. It replaces OneDriveShareRule
// when redirect resolution is enabled.
type OneDriveRedirectRule struct {
	Resolver *onedrive.Resolver
}

func (OneDriveRedirectRule) Name() string { return "onedrive-redirect" }

func (r OneDriveRedirectRule) Rewrite(ctx context.Context, raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := u.Hostname()
	if !onedrive.IsShortHost(host) && !onedrive.IsLiveHost(host) {
		return "", false
	}
	return r.Resolver.Resolve(ctx, raw), true
}

// FolderRule maps bare file names ("sofa-01.jpg") to Drive view URLs using a
// DriveFolder listing.
type FolderRule struct {
	Folder *DriveFolder
}

func (FolderRule) Name() string { return "drive-folder" }

func (r FolderRule) Rewrite(ctx context.Context, raw string) (string, bool) {
	if r.Folder == nil || !IsBareName(raw) {
		return "", false
	}
	return r.Folder.Resolve(ctx, raw), true
}

// IsBareName reports values with no scheme and no path separator.
func IsBareName(raw string) bool {
	return raw != "" && !onedrive.HasScheme(raw) && !strings.ContainsAny(raw, `/\`)
}
