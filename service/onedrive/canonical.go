package onedrive

import (
	"net/url"
	"strings"
)

var canonicalParams = []string{"cid", "resid", "authkey"}

// CanonicalDownloadURL rebuilds an onedrive.live.com link as
// https://onedrive.live.com/download carrying only cid, resid and authkey.
// Parameter names are matched case-insensitively in the query and then in
// the fragment; "id" stands in for a missing resid. It reports false when
// none of the parameters are present.
func CanonicalDownloadURL(u *url.URL) (string, bool) {
	found := map[string]string{}
	collect := func(values url.Values) {
		for key, vals := range values {
			name := strings.ToLower(key)
			if name == "id" {
				name = "resid:fallback"
			}
			if _, seen := found[name]; seen || len(vals) == 0 || vals[0] == "" {
				continue
			}
			found[name] = vals[0]
		}
	}
	collect(u.Query())
	if frag := strings.TrimPrefix(u.Fragment, "?"); frag != "" {
		if values, err := url.ParseQuery(frag); err == nil {
			collect(values)
		}
	}
	if _, ok := found["resid"]; !ok {
		if v, ok := found["resid:fallback"]; ok {
			found["resid"] = v
		}
	}

	var parts []string
	for _, name := range canonicalParams {
		if v, ok := found[name]; ok {
			parts = append(parts, name+"="+url.QueryEscape(v))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return "https://onedrive.live.com/download?" + strings.Join(parts, "&"), true
}
