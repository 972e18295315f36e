package model

// EventType identifies the kind of event a trace record describes.
// The numeric values are part of the trace wire format and must not
// be renumbered.
type EventType int

// Engine event type codes.
// These cover the record kinds the built-in rules care about plus the
// bookkeeping events needed to delimit page loads.
const (
	// EventDomEvent is a DOM event dispatch (click, load, ...).
	EventDomEvent EventType = 0

	// EventLayout is a synchronous page layout pass.
	EventLayout EventType = 1

	// EventRecalcStyle is a style recalculation pass.
	EventRecalcStyle EventType = 2

	// EventPaint is a repaint of a region of the page.
	EventPaint EventType = 3

	// EventParseHTML is a chunk of HTML parsing work.
	EventParseHTML EventType = 4

	// EventTimerInstalled records a setTimeout/setInterval registration.
	EventTimerInstalled EventType = 5

	// EventTimerCleared records a clearTimeout/clearInterval call.
	EventTimerCleared EventType = 6

	// EventTimerFired is the execution of a timer callback.
	EventTimerFired EventType = 7

	// EventXHRReadyStateChange is an XMLHttpRequest state transition.
	EventXHRReadyStateChange EventType = 8

	// EventLogMessage is a console message recorded by the browser.
	EventLogMessage EventType = 9

	// EventNetworkResourceStart marks an outgoing resource request.
	// Data carries the request URL and request headers.
	EventNetworkResourceStart EventType = 10

	// EventNetworkResourceResponse marks the arrival of response
	// headers. Data carries status, response headers, and MIME type.
	EventNetworkResourceResponse EventType = 11

	// EventNetworkResourceFinish marks the end of a resource load.
	// Data carries the total content length.
	EventNetworkResourceFinish EventType = 12

	// EventJavaScriptCallback is the execution of a script callback.
	// Records of this type usually carry a stack trace.
	EventJavaScriptCallback EventType = 13

	// EventGarbageCollect is a JavaScript garbage collection pause.
	EventGarbageCollect EventType = 14

	// EventEvalScript is the evaluation of a script resource.
	EventEvalScript EventType = 15

	// EventPageTransition marks a top-level navigation. Rules that
	// accumulate per-page state reset when they see this record.
	EventPageTransition EventType = 16
)

// String returns the event type name used in logs and reports.
func (t EventType) String() string {
	switch t {
	case EventDomEvent:
		return "dom_event"
	case EventLayout:
		return "layout"
	case EventRecalcStyle:
		return "recalc_style"
	case EventPaint:
		return "paint"
	case EventParseHTML:
		return "parse_html"
	case EventTimerInstalled:
		return "timer_installed"
	case EventTimerCleared:
		return "timer_cleared"
	case EventTimerFired:
		return "timer_fired"
	case EventXHRReadyStateChange:
		return "xhr_ready_state_change"
	case EventLogMessage:
		return "log_message"
	case EventNetworkResourceStart:
		return "network_resource_start"
	case EventNetworkResourceResponse:
		return "network_resource_response"
	case EventNetworkResourceFinish:
		return "network_resource_finish"
	case EventJavaScriptCallback:
		return "javascript_callback"
	case EventGarbageCollect:
		return "garbage_collect"
	case EventEvalScript:
		return "eval_script"
	case EventPageTransition:
		return "page_transition"
	default:
		return "unknown"
	}
}

// browserTypeTable translates browser timeline record codes into engine
// event types. Browsers number their timeline records differently from
// the engine wire format; traces captured directly from a browser
// timeline pass through this table during ingest.
//
// Design decision: We keep this as an explicit table rather than
// arithmetic on the codes because the two numbering schemes diverged
// independently and any formula would be a coincidence waiting to break.
var browserTypeTable = map[int]EventType{
	0:  EventDomEvent,
	1:  EventLayout,
	2:  EventRecalcStyle,
	3:  EventPaint,
	4:  EventParseHTML,
	5:  EventTimerInstalled,
	6:  EventTimerCleared,
	7:  EventTimerFired,
	8:  EventXHRReadyStateChange,
	11: EventLogMessage,
	12: EventNetworkResourceStart,
	13: EventNetworkResourceResponse,
	14: EventNetworkResourceFinish,
	16: EventJavaScriptCallback,
	17: EventGarbageCollect,
	18: EventEvalScript,
	22: EventPageTransition,
}

// TranslateBrowserType maps a browser timeline record code to the
// corresponding engine event type. The second return value is false
// when the browser code has no engine counterpart; such records are
// skipped during ingest rather than treated as an error.
func TranslateBrowserType(code int) (EventType, bool) {
	t, ok := browserTypeTable[code]
	return t, ok
}

// Record is a single browser-emitted trace event.
// Records are read-only inputs to the analysis engine; rules never
// mutate them.
type Record struct {
	// Sequence is the record's position in the trace, starting at 0.
	// Hints reference records by sequence number.
	Sequence int `json:"sequence"`

	// Type is the engine event type code.
	Type EventType `json:"type"`

	// Time is the event start time in milliseconds since the start
	// of the trace.
	Time float64 `json:"time"`

	// Duration is the event duration in milliseconds.
	// Zero for instantaneous records (e.g. network start markers).
	Duration float64 `json:"duration,omitempty"`

	// Data carries the type-specific payload.
	Data RecordData `json:"data"`

	// Children contains nested records for compound events
	// (e.g. a timer callback that triggered layouts).
	Children []*Record `json:"children,omitempty"`

	// Stack is the JavaScript stack trace captured at the event,
	// outermost frame last. Empty for most record types.
	Stack []StackFrame `json:"stackTrace,omitempty"`
}

// RecordData is the type-specific payload of a trace record.
// Fields are populated depending on the record type; consumers must
// treat absent fields as unknown rather than zero.
type RecordData struct {
	// URL is the resource or page URL for network and navigation records.
	URL string `json:"url,omitempty"`

	// Message is the text of log message records.
	Message string `json:"message,omitempty"`

	// Status is the HTTP response status code for response records.
	Status int `json:"status,omitempty"`

	// Headers contains the request headers for network start records.
	// Keys preserve the capitalization seen on the wire; lookups must
	// be case-insensitive (see the hintlet package helpers).
	Headers map[string]string `json:"headers,omitempty"`

	// ResponseHeaders contains the response headers for response records.
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`

	// ContentLength is the resource body size in bytes for finish records.
	// -1 when the browser did not report a length.
	ContentLength int64 `json:"contentLength,omitempty"`

	// Body is the raw response body when the trace includes content.
	// Decoded from base64 during ingest. Only populated for traces
	// captured with body recording enabled; most rules ignore it.
	Body []byte `json:"-"`

	// EncodedBody is the base64 wire form of Body.
	EncodedBody string `json:"body,omitempty"`
}

// ResponseHeader returns the value of a response header using
// case-insensitive matching. Returns "" when absent; callers that need
// to distinguish absent from empty use hintlet.LookupHeader.
func (r *Record) ResponseHeader(name string) string {
	for k, v := range r.Data.ResponseHeaders {
		if equalFold(k, name) {
			return v
		}
	}
	return ""
}

// IsNetworkRecord reports whether the record describes part of a
// resource load.
func (r *Record) IsNetworkRecord() bool {
	switch r.Type {
	case EventNetworkResourceStart, EventNetworkResourceResponse, EventNetworkResourceFinish:
		return true
	default:
		return false
	}
}

// SelfDuration returns the event duration minus the duration of all
// child records. This is the time attributable to the record itself.
func (r *Record) SelfDuration() float64 {
	d := r.Duration
	for _, c := range r.Children {
		d -= c.Duration
	}
	if d < 0 {
		return 0
	}
	return d
}

// equalFold is a small ASCII-only case-insensitive comparison.
// HTTP header names are ASCII, so we avoid pulling in strings.EqualFold's
// Unicode machinery on this hot path.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
