package model

import "strings"

// ResourceType classifies a network resource by what the browser does
// with it. The numeric values are part of the trace wire format.
type ResourceType int

// Resource type codes.
const (
	// ResourceDocument is a top-level or frame HTML document.
	ResourceDocument ResourceType = 0

	// ResourceStylesheet is a CSS resource.
	ResourceStylesheet ResourceType = 1

	// ResourceScript is a JavaScript resource.
	ResourceScript ResourceType = 2

	// ResourceImage is a displayed image.
	ResourceImage ResourceType = 3

	// ResourceFavicon is a site icon.
	ResourceFavicon ResourceType = 4

	// ResourceFont is a web font.
	ResourceFont ResourceType = 5

	// ResourceMedia is an audio or video resource.
	ResourceMedia ResourceType = 6

	// ResourceOther is anything that doesn't match the table,
	// including responses with no Content-Type header.
	ResourceOther ResourceType = 7
)

// String returns the resource type name used in logs and reports.
func (t ResourceType) String() string {
	switch t {
	case ResourceDocument:
		return "document"
	case ResourceStylesheet:
		return "stylesheet"
	case ResourceScript:
		return "script"
	case ResourceImage:
		return "image"
	case ResourceFavicon:
		return "favicon"
	case ResourceFont:
		return "font"
	case ResourceMedia:
		return "media"
	case ResourceOther:
		return "other"
	default:
		return "other"
	}
}

// mimePrefixTable maps MIME type prefixes to resource types.
// Entries are matched in order, so more specific prefixes must come
// before broader ones (the favicon types before the image/ catch-all).
//
// Design decision: An ordered slice rather than a map because prefix
// matching is inherently ordered and the table is small enough that
// a linear scan is effectively free.
var mimePrefixTable = []struct {
	prefix string
	rtype  ResourceType
}{
	{"text/html", ResourceDocument},
	{"application/xhtml+xml", ResourceDocument},
	{"text/css", ResourceStylesheet},
	{"text/javascript", ResourceScript},
	{"application/javascript", ResourceScript},
	{"application/x-javascript", ResourceScript},
	{"application/ecmascript", ResourceScript},
	{"image/x-icon", ResourceFavicon},
	{"image/vnd.microsoft.icon", ResourceFavicon},
	{"image/", ResourceImage},
	{"font/", ResourceFont},
	{"application/font", ResourceFont},
	{"application/x-font", ResourceFont},
	{"audio/", ResourceMedia},
	{"video/", ResourceMedia},
}

// ClassifyResourceType determines the resource type of a network record
// from its Content-Type response header.
//
// The match is a case-insensitive prefix match against a fixed table;
// any parameters on the header value (";charset=utf-8") are ignored.
// Unmatched or absent Content-Type yields ResourceOther. The function
// is deterministic and has no failure mode.
func ClassifyResourceType(r *Record) ResourceType {
	ct := r.ResponseHeader("Content-Type")
	return ClassifyMIMEType(ct)
}

// ClassifyMIMEType classifies a raw Content-Type header value.
// Exposed separately so rules that carry a MIME string without a full
// record (e.g. parsed from HTML attributes) can reuse the table.
func ClassifyMIMEType(contentType string) ResourceType {
	if contentType == "" {
		return ResourceOther
	}

	// Strip parameters and normalize case.
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	for _, entry := range mimePrefixTable {
		if strings.HasPrefix(contentType, entry.prefix) {
			return entry.rtype
		}
	}
	return ResourceOther
}

// IsStaticResource reports whether the resource type is a static asset
// that benefits from long-lived caching.
func (t ResourceType) IsStaticResource() bool {
	switch t {
	case ResourceStylesheet, ResourceScript, ResourceImage, ResourceFavicon, ResourceFont:
		return true
	default:
		return false
	}
}

// IsCompressible reports whether the resource type is text-based and
// benefits from transfer compression.
func (t ResourceType) IsCompressible() bool {
	switch t {
	case ResourceDocument, ResourceStylesheet, ResourceScript, ResourceOther:
		// ResourceOther covers XHR/JSON responses, which are text
		// often enough that the uncompressed rule checks them too.
		return true
	default:
		return false
	}
}
