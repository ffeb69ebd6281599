package gen

import (
	"bytes"
	"io"
	"testing"
)

// TestCtx is a noop closer, which wraps an io.Writer
// and only meant to be used for tests.
//
type TestCtx struct {
	io.Writer
}

// Open returns the underlying io.Writer.
func (ctx TestCtx) Open(filename string) (io.WriteCloser, error) { return ctx, nil }

// Close always returns nil.
func (ctx TestCtx) Close() error { return nil }

// CompareBytes compares expected and received generator output,
// reporting the first line where they differ.
func CompareBytes(t *testing.T, ex, out []byte) {
	t.Helper()

	if bytes.Equal(ex, out) {
		return
	}

	exLines := bytes.Split(ex, []byte{'\n'})
	outLines := bytes.Split(out, []byte{'\n'})
	for i, exLine := range exLines {
		if i >= len(outLines) {
			t.Fatalf("expected line %d: %s, but output ended", i+1, exLine)
		}
		if !bytes.Equal(exLine, outLines[i]) {
			t.Fatalf("line %d:\nexpected: %s\ngot:      %s", i+1, exLine, outLines[i])
		}
	}
	t.Fatalf("output has %d extra line(s), starting with: %s", len(outLines)-len(exLines), outLines[len(exLines)])
}
