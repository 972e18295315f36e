package model

import "fmt"

// StackFrame is one frame of a JavaScript stack trace attached to a
// trace record. Frames are consumed, never mutated; resymbolization
// produces a copy.
type StackFrame struct {
	// ResourceName is the script file name (e.g. "app.js").
	ResourceName string `json:"resourceName,omitempty"`

	// ResourceBase is the base URL of the script, used for display
	// when ResourceName is empty.
	ResourceBase string `json:"resourceBase,omitempty"`

	// SymbolName is the function name at this frame. Often an
	// obfuscated short name in minified code; empty for anonymous
	// functions.
	SymbolName string `json:"symbolName,omitempty"`

	// LineNumber is the 1-based source line.
	LineNumber int `json:"lineNumber"`

	// ColumnNumber is the 1-based source column.
	ColumnNumber int `json:"columnNumber"`
}

// UnknownSymbol is displayed for frames with no symbol name.
const UnknownSymbol = "[unknown]"

// Format renders the frame as a single line of text:
//
//	app.js::render() Line 120 Col 4
//
// When the resource name is empty the resource base is used instead,
// and an empty symbol name renders as [unknown] without parentheses.
func (f StackFrame) Format() string {
	resource := f.ResourceName
	if resource == "" {
		resource = f.ResourceBase
	}

	symbol := UnknownSymbol
	if f.SymbolName != "" {
		symbol = f.SymbolName + "()"
	}

	return fmt.Sprintf("%s::%s Line %d Col %d", resource, symbol, f.LineNumber, f.ColumnNumber)
}

// TopFrame returns the innermost frame of the record's stack, or false
// when the record carries no stack trace.
func (r *Record) TopFrame() (StackFrame, bool) {
	if len(r.Stack) == 0 {
		return StackFrame{}, false
	}
	return r.Stack[0], true
}
