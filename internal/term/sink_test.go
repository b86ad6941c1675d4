// SPDX-License-Identifier: MIT
package term

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"nowplaying/internal/vis"
)

// countingWriter records each Write it receives.
type countingWriter struct {
	writes [][]byte
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes = append(c.writes, append([]byte(nil), p...))
	return len(p), nil
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("mock write error")
}

func testFrame() *vis.Frame {
	return &vis.Frame{
		Cells: [][]int{
			{vis.Blank, 160},
			{22, 22},
		},
		Status: "└ Elapsed: 0.10s / 1.00s",
		Meta:   []string{"Metadata:", "  title: Test"},
	}
}

func TestFlushEncoding(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)

	if err := s.Flush(testFrame()); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	want := "\x1b[H" +
		"│  \x1b[38;5;160m██\x1b[0m\n" +
		"│\x1b[38;5;22m██\x1b[38;5;22m██\x1b[0m\n" +
		"└ Elapsed: 0.10s / 1.00s\n" +
		"Metadata:\n" +
		"  title: Test\n"
	if got := buf.String(); got != want {
		t.Errorf("encoded frame mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestFlushDeterministic(t *testing.T) {
	var first, second bytes.Buffer

	if err := NewSink(&first).Flush(testFrame()); err != nil {
		t.Fatal(err)
	}
	if err := NewSink(&second).Flush(testFrame()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("identical frames encoded to different bytes")
	}

	// Repeated flushes through one sink match too.
	var again bytes.Buffer
	s := NewSink(&again)
	if err := s.Flush(testFrame()); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(testFrame()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again.Bytes()[:again.Len()/2], again.Bytes()[again.Len()/2:]) {
		t.Error("repeated flushes of one frame differ")
	}
}

func TestFlushSingleWrite(t *testing.T) {
	w := &countingWriter{}
	s := NewSink(w)

	if err := s.Flush(testFrame()); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if len(w.writes) != 1 {
		t.Errorf("frame flushed in %d writes, want 1", len(w.writes))
	}
}

func TestFlushWriteError(t *testing.T) {
	s := NewSink(failingWriter{})

	err := s.Flush(testFrame())
	if err == nil || !strings.Contains(err.Error(), "mock write error") {
		t.Errorf("expected wrapped write error, got %v", err)
	}
}

func TestScreenControls(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := s.HideCursor(); err != nil {
		t.Fatal(err)
	}
	if err := s.ShowCursor(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\x1b[H\x1b[J\x1b[?25l\x1b[?25h" {
		t.Errorf("control sequences = %q", got)
	}
}

func TestFlushBlankOutOfRangeCell(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)

	frame := &vis.Frame{Cells: [][]int{{-7, 300}}, Status: "s"}
	if err := s.Flush(frame); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\x1b[H│    \x1b[0m\ns\n" {
		t.Errorf("encoded frame = %q, want out-of-range cells blank", got)
	}
}

func BenchmarkFlush(b *testing.B) {
	cells := make([][]int, 18)
	for i := range cells {
		cells[i] = make([]int, 60)
		for j := range cells[i] {
			if (i+j)%3 == 0 {
				cells[i][j] = vis.Blank
			} else {
				cells[i][j] = 22 + (i+j)%100
			}
		}
	}
	frame := &vis.Frame{Cells: cells, Status: "└ Elapsed: 1.00s / 2.00s"}

	var buf bytes.Buffer
	s := NewSink(&buf)

	b.ReportAllocs()

	for b.Loop() {
		buf.Reset()
		s.Flush(frame)
	}
}
