package postcode

import (
	"net/url"
	"strings"
)

// IsEmpty reports whether params contributes nothing to a query string.
// A field counts as soon as it is set, whatever its value, so a Widesearch
// of false is not empty.
func IsEmpty(params Params) bool {
	if params == nil {
		return true
	}
	return len(params.QueryParams()) == 0
}

// BuildQueryString form-encodes the set fields of params as key=value pairs
// joined by "&", in field declaration order. It returns "" for nil params.
// url.Values is not used because its Encode sorts by key.
func BuildQueryString(params Params) string {
	if params == nil {
		return ""
	}
	var sb strings.Builder
	for i, p := range params.QueryParams() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// escapePath escapes a postcode for use as a path segment the way
// encodeURI does for the common cases: spaces become %20 and slashes are
// kept.
func escapePath(s string) string {
	return (&url.URL{Path: s}).EscapedPath()
}
