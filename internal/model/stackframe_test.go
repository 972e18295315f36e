package model

import "testing"

// TestStackFrameFormat tests the text rendering of stack frames.
func TestStackFrameFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		frame    StackFrame
		expected string
	}{
		{
			name: "full frame",
			frame: StackFrame{
				ResourceName: "app.js",
				SymbolName:   "render",
				LineNumber:   120,
				ColumnNumber: 4,
			},
			expected: "app.js::render() Line 120 Col 4",
		},
		{
			name: "empty symbol renders unknown",
			frame: StackFrame{
				ResourceName: "app.js",
				LineNumber:   7,
				ColumnNumber: 1,
			},
			expected: "app.js::[unknown] Line 7 Col 1",
		},
		{
			name: "empty resource falls back to base",
			frame: StackFrame{
				ResourceBase: "http://example.com/static/",
				SymbolName:   "init",
				LineNumber:   1,
				ColumnNumber: 1,
			},
			expected: "http://example.com/static/::init() Line 1 Col 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.frame.Format(); got != tc.expected {
				t.Errorf("Format() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestTopFrame tests innermost frame extraction.
func TestTopFrame(t *testing.T) {
	t.Parallel()

	t.Run("no stack", func(t *testing.T) {
		t.Parallel()

		r := &Record{}
		if _, ok := r.TopFrame(); ok {
			t.Error("expected no top frame for empty stack")
		}
	})

	t.Run("innermost frame is first", func(t *testing.T) {
		t.Parallel()

		r := &Record{
			Stack: []StackFrame{
				{SymbolName: "inner"},
				{SymbolName: "outer"},
			},
		}
		frame, ok := r.TopFrame()
		if !ok {
			t.Fatal("expected a top frame")
		}
		if frame.SymbolName != "inner" {
			t.Errorf("TopFrame() symbol = %q, expected %q", frame.SymbolName, "inner")
		}
	})
}
