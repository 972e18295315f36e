package symbol

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hintscan/hintscan/internal/model"
)

// ErrNoSymbolMap is returned when a symbol map path does not exist.
var ErrNoSymbolMap = errors.New("symbol map file not found")

// Source is the source-level identity of one obfuscated symbol.
type Source struct {
	// Name is the original function name.
	Name string `json:"name"`

	// Resource is the original source file.
	Resource string `json:"resource,omitempty"`

	// Line is the 1-based line in the original source.
	Line int `json:"line,omitempty"`

	// Column is the 1-based column in the original source.
	Column int `json:"column,omitempty"`
}

// Map holds the obfuscated-to-source symbol mapping for one build.
//
// Design decision: The whole map is loaded eagerly rather than lazily
// queried from disk. Symbol maps for even large applications are a few
// megabytes of JSON, and analysis touches them on every stack frame.
type Map struct {
	// symbols maps obfuscated symbol names to their source identity.
	symbols map[string]Source
}

// mapFile is the on-disk JSON layout of a symbol map.
type mapFile struct {
	Symbols map[string]Source `json:"symbols"`
}

// Load reads a symbol map from a JSON file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided map path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSymbolMap
		}
		return nil, fmt.Errorf("failed to read symbol map: %w", err)
	}

	var mf mapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse symbol map: %w", err)
	}
	if mf.Symbols == nil {
		mf.Symbols = make(map[string]Source)
	}

	return &Map{symbols: mf.Symbols}, nil
}

// NewMap creates a symbol map from an in-memory mapping.
// Used by tests and by hosts that ship the map embedded.
func NewMap(symbols map[string]Source) *Map {
	if symbols == nil {
		symbols = make(map[string]Source)
	}
	return &Map{symbols: symbols}
}

// Len returns the number of mapped symbols.
func (m *Map) Len() int {
	return len(m.symbols)
}

// Lookup returns the source identity for an obfuscated symbol name.
func (m *Map) Lookup(symbolName string) (Source, bool) {
	src, ok := m.symbols[symbolName]
	return src, ok
}

// Resolve returns a copy of the frame with the symbol, resource, and
// position replaced by their source-level values. The second return
// value is false when the frame's symbol is not in the map; the frame
// is returned unchanged in that case.
//
// A nil map resolves nothing, so callers can thread an optional map
// through without nil checks.
func (m *Map) Resolve(frame model.StackFrame) (model.StackFrame, bool) {
	if m == nil {
		return frame, false
	}

	src, ok := m.symbols[frame.SymbolName]
	if !ok {
		return frame, false
	}

	resolved := frame
	resolved.SymbolName = src.Name
	if src.Resource != "" {
		resolved.ResourceName = src.Resource
	}
	if src.Line > 0 {
		resolved.LineNumber = src.Line
	}
	if src.Column > 0 {
		resolved.ColumnNumber = src.Column
	}
	return resolved, true
}

// FormatFrame renders a frame, preferring the resymbolized form when
// the map knows the symbol. Falls back to the raw frame text otherwise.
func (m *Map) FormatFrame(frame model.StackFrame) string {
	if resolved, ok := m.Resolve(frame); ok {
		return resolved.Format()
	}
	return frame.Format()
}
