package hintlet

import "strings"

// compressionEncodings is the fixed set of Content-Encoding tokens
// treated as transfer compression. Matching is case-insensitive.
//
// The set mirrors what browsers have historically advertised; "identity"
// and chunked transfer codings are deliberately absent because they do
// not reduce transfer size.
var compressionEncodings = map[string]bool{
	"gzip":         true,
	"x-gzip":       true,
	"compress":     true,
	"x-compress":   true,
	"deflate":      true,
	"sdch":         true,
	"bzip2":        true,
	"pack200-gzip": true,
}

// LookupHeader finds a header value using case-insensitive key
// matching.
//
// The boolean distinguishes an absent header from one that is present
// with an empty value: (_, false) when the key is absent, ("", true)
// when the key is present but carries no value, and (value, true)
// otherwise.
func LookupHeader(headers map[string]string, key string) (string, bool) {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// HasHeader reports whether the header is present, regardless of value.
func HasHeader(headers map[string]string, key string) bool {
	_, ok := LookupHeader(headers, key)
	return ok
}

// HeaderContains reports whether the header is present and its value
// contains the given substring, matched case-insensitively.
// An absent header never matches.
func HeaderContains(headers map[string]string, key, substring string) bool {
	value, ok := LookupHeader(headers, key)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(substring))
}

// IsCompressed reports whether the Content-Encoding header names one of
// the known compression encodings. Multi-token values ("gzip, sdch")
// count as compressed when any token is in the set.
func IsCompressed(headers map[string]string) bool {
	value, ok := LookupHeader(headers, "Content-Encoding")
	if !ok {
		return false
	}

	for _, token := range strings.Split(value, ",") {
		if compressionEncodings[strings.ToLower(strings.TrimSpace(token))] {
			return true
		}
	}
	return false
}
