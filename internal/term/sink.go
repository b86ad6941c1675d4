// SPDX-License-Identifier: MIT

// Package term encodes composed frames into ANSI escape sequences and
// writes them to the terminal. Each frame goes out in a single Write so
// a partially drawn frame is never observable.
package term

import (
	"bytes"
	"fmt"
	"io"

	"nowplaying/internal/vis"
)

// ANSI escape sequences for screen control.
const (
	escHome       = "\x1b[H"
	escClear      = "\x1b[H\x1b[J"
	escReset      = "\x1b[0m"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
)

// blankCell is two columns wide, same as the filled cell "██", so
// filled and blank positions line up.
const blankCell = "  "

// Sink writes frames to a terminal writer. Flush repositions the cursor
// to the home position and redraws the whole frame in place, which is
// what keeps the bars animating instead of scrolling.
type Sink struct {
	w        io.Writer
	buf      bytes.Buffer
	colorSeq [256]string // Per-color escape prefix + filled cell.
}

// NewSink creates a sink over w.
func NewSink(w io.Writer) *Sink {
	s := &Sink{w: w}
	for i := range s.colorSeq {
		s.colorSeq[i] = fmt.Sprintf("\x1b[38;5;%dm██", i)
	}
	return s
}

// Clear erases the screen and homes the cursor.
func (s *Sink) Clear() error {
	_, err := io.WriteString(s.w, escClear)
	return err
}

// HideCursor hides the terminal cursor for the duration of playback.
func (s *Sink) HideCursor() error {
	_, err := io.WriteString(s.w, escHideCursor)
	return err
}

// ShowCursor restores the terminal cursor.
func (s *Sink) ShowCursor() error {
	_, err := io.WriteString(s.w, escShowCursor)
	return err
}

// Flush encodes the frame and writes it with one Write call.
func (s *Sink) Flush(frame *vis.Frame) error {
	s.buf.Reset()
	s.encode(frame)
	if _, err := s.w.Write(s.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// encode appends the frame's byte representation to the buffer. The
// encoding is deterministic: identical frames produce identical bytes.
func (s *Sink) encode(frame *vis.Frame) {
	s.buf.WriteString(escHome)
	for _, row := range frame.Cells {
		s.buf.WriteString("│")
		for _, cell := range row {
			if cell >= 0 && cell < len(s.colorSeq) {
				s.buf.WriteString(s.colorSeq[cell])
			} else {
				s.buf.WriteString(blankCell)
			}
		}
		s.buf.WriteString(escReset)
		s.buf.WriteByte('\n')
	}
	s.buf.WriteString(frame.Status)
	s.buf.WriteByte('\n')
	for _, line := range frame.Meta {
		s.buf.WriteString(line)
		s.buf.WriteByte('\n')
	}
}
