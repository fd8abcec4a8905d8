package onedrive

import (
	"encoding/base64"
	"strings"
)

const shareAPIPrefix = "https://api.onedrive.com/v1.0/shares/u!"
const shareAPISuffix = "/root/content"

// IsShareLink reports whether raw is a OneDrive or SharePoint share link that
// ShareContentURL would rewrite.
func IsShareLink(raw string) bool {
	u, ok := parseLoose(strings.TrimSpace(raw))
	if !ok {
		return false
	}
	host := u.Hostname()
	if IsAPIHost(host) {
		return false
	}
	return IsShortHost(host) || IsLiveHost(host) || IsSharePointHost(host)
}

// EncodeShareToken base64url-encodes a share URL without padding, as the
// OneDrive shares API expects after the "u!" prefix.
func EncodeShareToken(shareURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(shareURL))
}

// DecodeShareToken reverses EncodeShareToken.
func DecodeShareToken(token string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ShareContentURL rewrites a share link to the shares API content endpoint.
// Anything that is not a share link is returned unchanged.
func ShareContentURL(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !IsShareLink(trimmed) {
		return raw, false
	}
	return shareAPIPrefix + EncodeShareToken(trimmed) + shareAPISuffix, true
}
