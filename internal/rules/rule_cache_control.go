package rules

import (
	"context"
	"fmt"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// CacheControlRule flags static resources served without usable
// caching headers. A static asset with neither Cache-Control nor
// Expires is re-fetched (or at best revalidated) on every repeat view.
type CacheControlRule struct{}

// NewCacheControlRule creates the cache_control rule.
func NewCacheControlRule() *CacheControlRule {
	return &CacheControlRule{}
}

// Name returns the rule name.
func (r *CacheControlRule) Name() string {
	return "cache_control"
}

// Concerns returns the record types the rule inspects.
func (r *CacheControlRule) Concerns() []model.EventType {
	return []model.EventType{model.EventNetworkResourceResponse}
}

// OnRecord checks the caching headers of a static resource response.
func (r *CacheControlRule) OnRecord(ctx context.Context, record *model.Record, emitter *hintlet.Emitter) error {
	// Only successful responses are cacheable at all.
	if record.Data.Status != 200 {
		return nil
	}
	if !model.ClassifyResourceType(record).IsStaticResource() {
		return nil
	}

	headers := record.Data.ResponseHeaders
	cacheControl, hasCacheControl := hintlet.LookupHeader(headers, "Cache-Control")
	hasExpires := hintlet.HasHeader(headers, "Expires")

	if !hasCacheControl && !hasExpires {
		description := fmt.Sprintf(
			"Static resource %s has no Cache-Control or Expires header and will be re-fetched on every visit",
			record.Data.URL)
		return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityWarning)
	}

	if hintlet.HeaderContains(headers, "Cache-Control", "no-cache") ||
		hintlet.HeaderContains(headers, "Cache-Control", "no-store") ||
		hintlet.HeaderContains(headers, "Cache-Control", "max-age=0") {
		description := fmt.Sprintf(
			"Static resource %s is explicitly marked non-cacheable (Cache-Control: %s)",
			record.Data.URL, cacheControl)
		return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityInfo)
	}

	return nil
}
