package rules

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/hintscan/hintscan/internal/hintlet"
	"github.com/hintscan/hintscan/internal/model"
)

// DefaultMaxResourceHosts is the number of distinct external hostnames
// a document may reference before the rule flags it. Each extra host
// costs a DNS lookup and a fresh connection ramp-up.
const DefaultMaxResourceHosts = 4

// DomainSpreadRule flags documents that spread their subresources over
// too many hostnames. It parses captured document bodies and collects
// the hosts referenced by img, script, link, and iframe elements.
//
// The rule only sees documents whose body was captured in the trace;
// header-only traces produce no hints from it.
type DomainSpreadRule struct {
	maxHosts int
}

// DomainSpreadOption configures a DomainSpreadRule.
type DomainSpreadOption func(*DomainSpreadRule)

// WithMaxResourceHosts overrides the external host threshold.
func WithMaxResourceHosts(n int) DomainSpreadOption {
	return func(r *DomainSpreadRule) {
		if n > 0 {
			r.maxHosts = n
		}
	}
}

// NewDomainSpreadRule creates the domain_spread rule.
func NewDomainSpreadRule(opts ...DomainSpreadOption) *DomainSpreadRule {
	r := &DomainSpreadRule{maxHosts: DefaultMaxResourceHosts}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the rule name.
func (r *DomainSpreadRule) Name() string {
	return "domain_spread"
}

// Concerns returns the record types the rule inspects.
func (r *DomainSpreadRule) Concerns() []model.EventType {
	return []model.EventType{model.EventNetworkResourceResponse}
}

// OnRecord parses a captured document body and flags hostname spread.
func (r *DomainSpreadRule) OnRecord(ctx context.Context, record *model.Record, emitter *hintlet.Emitter) error {
	if model.ClassifyResourceType(record) != model.ResourceDocument {
		return nil
	}
	if len(record.Data.Body) == 0 {
		return nil
	}

	docHost := hostOf(record.Data.URL)
	hosts, err := externalResourceHosts(record.Data.Body, docHost)
	if err != nil {
		return fmt.Errorf("failed to parse document %s: %w", record.Data.URL, err)
	}

	if len(hosts) <= r.maxHosts {
		return nil
	}

	description := fmt.Sprintf(
		"Document %s references resources on %d external hosts (%s); consolidating hosts saves DNS lookups and connections",
		record.Data.URL, len(hosts), strings.Join(hosts, ", "))
	return emitter.AddHint(ctx, r.Name(), record.Time, description, record.Sequence, model.SeverityWarning)
}

// resourceAttrs maps element names to the attribute that references a
// subresource.
var resourceAttrs = map[string]string{
	"img":    "src",
	"script": "src",
	"iframe": "src",
	"link":   "href",
}

// externalResourceHosts parses an HTML document and returns the sorted
// set of hostnames referenced by subresource elements, excluding the
// document's own host and relative references.
func externalResourceHosts(body []byte, docHost string) ([]string, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := resourceAttrs[n.Data]; ok {
				if h := hostOf(attrValue(n, attr)); h != "" && !strings.EqualFold(h, docHost) {
					seen[strings.ToLower(h)] = struct{}{}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	hosts := make([]string, 0, len(seen))
	for h := range seen {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts, nil
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// hostOf returns the hostname of an absolute URL, or "" for relative
// references and unparseable values.
func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
