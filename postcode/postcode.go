// Package postcode provides a client for the postcodes.io API.
// Free, no API key required. Docs: https://postcodes.io
//
// Every Client method maps to one endpoint and issues exactly one request
// through a Transport. The client does no validation, caching or retrying;
// API errors come back as *ResponseError.
package postcode

import "strings"

// Normalise strips spaces and uppercases a postcode.
// The Client never normalises input; this is for callers keying results.
func Normalise(pc string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(pc), " ", ""))
}
