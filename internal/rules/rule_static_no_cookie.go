package rules

import (
	"context"
	"fmt"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// StaticNoCookieRule flags static resources requested with a Cookie
// header. Cookies on static assets inflate every request and defeat
// cookie-free CDN domains.
//
// Request headers travel on the start record while the resource type
// is only known once the response headers arrive, so the rule tracks
// pending requests by URL and decides at response time. Pending state
// resets on page transitions.
type StaticNoCookieRule struct {
	// pendingCookies maps request URL to whether the request carried
	// a Cookie header. Dispatch is single-goroutine, no lock needed.
	pendingCookies map[string]bool
}

// NewStaticNoCookieRule creates the static_no_cookie rule.
func NewStaticNoCookieRule() *StaticNoCookieRule {
	return &StaticNoCookieRule{
		pendingCookies: make(map[string]bool),
	}
}

// Name returns the rule name.
func (r *StaticNoCookieRule) Name() string {
	return "static_no_cookie"
}

// Concerns returns the record types the rule inspects.
func (r *StaticNoCookieRule) Concerns() []model.EventType {
	return []model.EventType{
		model.EventNetworkResourceStart,
		model.EventNetworkResourceResponse,
		model.EventPageTransition,
	}
}

// OnRecord tracks request cookies and flags cookied static responses.
func (r *StaticNoCookieRule) OnRecord(ctx context.Context, record *model.Record, emitter *hintlet.Emitter) error {
	switch record.Type {
	case model.EventPageTransition:
		r.pendingCookies = make(map[string]bool)
		return nil

	case model.EventNetworkResourceStart:
		r.pendingCookies[record.Data.URL] = hintlet.HasHeader(record.Data.Headers, "Cookie")
		return nil

	case model.EventNetworkResourceResponse:
		hadCookie, ok := r.pendingCookies[record.Data.URL]
		if !ok {
			// Response without a tracked start record; the trace may
			// have begun mid-load.
			return nil
		}
		delete(r.pendingCookies, record.Data.URL)

		if !hadCookie {
			return nil
		}
		if !model.ClassifyResourceType(record).IsStaticResource() {
			return nil
		}

		description := fmt.Sprintf(
			"Static resource %s was requested with a Cookie header; serve static assets from a cookie-free domain",
			record.Data.URL)
		return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityWarning)

	default:
		return nil
	}
}
