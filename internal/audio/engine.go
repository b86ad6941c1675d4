// SPDX-License-Identifier: MIT
/*
Package audio implements real-time playback of a decoded waveform with:
- Lock-free output streaming using PortAudio
- An atomic playback cursor shared with the render loop
- Device enumeration and output format negotiation

Thread Safety:
- Uses atomic operations for all state shared with the callback
- The callback only reads the immutable buffer and writes the cursor
- Locks OS thread during audio processing
*/
package audio

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"nowplaying/internal/config"
	"nowplaying/internal/decode"
)

// Stream entry points behind func vars for tests.
var (
	paLibOpenStream        = portaudio.OpenStream
	paLibIsFormatSupported = portaudio.IsFormatSupported
)

// Engine streams a decoded buffer to an output device. The PortAudio
// callback pulls blocks straight out of the buffer; everything the
// render loop needs to know travels through the cursor and the done
// flag.
type Engine struct {
	// Immutable after construction.
	buffer        *decode.Buffer
	blockSize     int
	outputDevice  *portaudio.DeviceInfo
	outputLatency time.Duration

	outputStream *portaudio.Stream

	// State shared with the callback.
	cursor    Cursor
	done      atomic.Bool
	isPlaying int32 // Atomic flag for thread-safe state
}

// NewEngine resolves the output device and prepares an engine for the
// given buffer. No stream is opened yet.
func NewEngine(buffer *decode.Buffer, cfg *config.PlaybackConfig) (*Engine, error) {
	outputDevice, err := OutputDevice(cfg.OutputDevice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	engine := &Engine{
		buffer:       buffer,
		blockSize:    cfg.BlockSize,
		outputDevice: outputDevice,
	}

	if cfg.LowLatency {
		engine.outputLatency = outputDevice.DefaultLowOutputLatency
	} else {
		engine.outputLatency = outputDevice.DefaultHighOutputLatency
	}

	return engine, nil
}

// streamParameters builds the mono output parameter block for rate.
func (e *Engine) streamParameters(rate float64) portaudio.StreamParameters {
	return portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 0, // No input device
			Device:   nil,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   e.outputDevice,
			Latency:  e.outputLatency,
		},
		FramesPerBuffer: e.blockSize,
		SampleRate:      rate,
	}
}

// CheckFormat asks the device whether it accepts the buffer's sample
// rate at the configured block size. The wrapped ErrUnsupportedFormat
// tells the caller a standard-rate retry is worth attempting.
func (e *Engine) CheckFormat() error {
	params := e.streamParameters(float64(e.buffer.Rate))
	if err := paLibIsFormatSupported(params, e.fill); err != nil {
		return fmt.Errorf("%w: %.0f Hz x %d frames: %v",
			ErrUnsupportedFormat, params.SampleRate, e.blockSize, err)
	}
	return nil
}

// StartOutputStream opens the output stream at the buffer's rate and
// starts the callback.
func (e *Engine) StartOutputStream() error {
	params := e.streamParameters(float64(e.buffer.Rate))

	stream, err := paLibOpenStream(params, e.fill)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrDeviceUnavailable, err)
	}
	e.outputStream = stream

	if err := e.outputStream.Start(); err != nil {
		e.outputStream.Close()
		e.outputStream = nil
		return fmt.Errorf("%w: start: %v", ErrDeviceUnavailable, err)
	}

	atomic.StoreInt32(&e.isPlaying, 1)
	return nil
}

// StopOutputStream stops and closes the stream. Safe to call on an
// engine that never started.
func (e *Engine) StopOutputStream() error {
	atomic.StoreInt32(&e.isPlaying, 0)

	if e.outputStream != nil {
		if err := e.outputStream.Stop(); err != nil {
			return err
		}

		if err := e.outputStream.Close(); err != nil {
			return err
		}

		e.outputStream = nil
	}

	return nil
}

// Close releases the stream. Every session exit path runs through
// here.
func (e *Engine) Close() error {
	return e.StopOutputStream()
}

// Cursor exposes the playback position for render-side readers.
func (e *Engine) Cursor() *Cursor {
	return &e.cursor
}

// Done reports whether the callback has consumed the whole buffer.
func (e *Engine) Done() bool {
	return e.done.Load()
}

// Playing reports whether a stream is currently running.
func (e *Engine) Playing() bool {
	return atomic.LoadInt32(&e.isPlaying) == 1
}

// fill is the output callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Reads the immutable buffer, writes only the cursor and done flag
// - No allocations, locks or blocking calls in the hot path
func (e *Engine) fill(out []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	samples := e.buffer.Samples
	pos := e.cursor.Load()
	remain := len(samples) - pos
	if remain <= 0 {
		for i := range out {
			out[i] = 0
		}
		e.done.Store(true)
		return
	}

	n := len(out)
	if n > remain {
		n = remain
	}
	for i := 0; i < n; i++ {
		out[i] = float32(samples[pos+i])
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	if n < len(out) {
		e.done.Store(true)
	}

	e.cursor.advance(n)
}
