// SPDX-License-Identifier: MIT

// Package session runs one playback: decode the file, negotiate an
// output stream, then drive the analyzer, composer and terminal sink
// from the frame clock until the buffer runs out or the context is
// canceled. The audio callback and the render loop share nothing but
// the immutable buffer.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"nowplaying/internal/analysis"
	"nowplaying/internal/audio"
	"nowplaying/internal/clock"
	"nowplaying/internal/config"
	"nowplaying/internal/decode"
	"nowplaying/internal/log"
	"nowplaying/internal/meta"
	"nowplaying/internal/term"
	"nowplaying/internal/vis"
)

// ErrNothingToPlay is returned when decoding produced no samples.
var ErrNothingToPlay = errors.New("nothing to play")

// engine is the slice of audio.Engine the session drives. Close must
// be safe on an engine that never started.
type engine interface {
	CheckFormat() error
	StartOutputStream() error
	Close() error
}

// Session plays a single file and renders its visualization.
type Session struct {
	cfg *config.Config
	out io.Writer

	loadFunc  func(ctx context.Context, path string, rate int) *decode.Buffer
	newEngine func(buffer *decode.Buffer, cfg *config.PlaybackConfig) (engine, error)
}

// New returns a session writing frames and messages to out.
func New(cfg *config.Config, out io.Writer) *Session {
	return &Session{
		cfg:      cfg,
		out:      out,
		loadFunc: decode.Load,
		newEngine: func(buffer *decode.Buffer, cfg *config.PlaybackConfig) (engine, error) {
			return audio.NewEngine(buffer, cfg)
		},
	}
}

// Run plays path to completion. A canceled context is a clean stop:
// the screen is cleared and no error is returned.
func (s *Session) Run(ctx context.Context, path string) error {
	buffer := s.loadFunc(ctx, path, int(s.cfg.Playback.SampleRate))
	if buffer.Empty() {
		fmt.Fprintln(s.out, "Failed to load audio.")
		return fmt.Errorf("%w: %s", ErrNothingToPlay, path)
	}

	if dump := s.cfg.Playback.DumpWAV; dump != "" {
		if err := decode.WriteWAV(buffer, dump); err != nil {
			log.Warnf("session: wav export to %s failed: %v", dump, err)
		} else {
			log.Infof("session: wrote decoded buffer to %s", dump)
		}
	}

	eng, buffer, err := s.negotiate(ctx, path, buffer)
	if err != nil {
		return err
	}
	defer eng.Close()

	metaLines := meta.Read(path).Lines()
	for _, line := range metaLines {
		fmt.Fprintln(s.out, line)
	}
	duration := buffer.Duration()
	fmt.Fprintf(s.out, "Duration: %.2f seconds\n\n", duration)

	analyzer, err := s.newAnalyzer(buffer)
	if err != nil {
		return err
	}
	ramp, err := vis.NewRamp(s.cfg.Render.Colors)
	if err != nil {
		return err
	}
	composer, err := vis.NewComposer(s.cfg.Render.Width, s.cfg.Render.Height, ramp, metaLines)
	if err != nil {
		return err
	}
	clk, err := clock.New(s.cfg.FPS())
	if err != nil {
		return err
	}
	sink := term.NewSink(s.out)

	if err := eng.StartOutputStream(); err != nil {
		return err
	}
	log.Debugf("session: playing %s at %d Hz, %d samples", path, buffer.Rate, len(buffer.Samples))

	if err := sink.Clear(); err != nil {
		return err
	}
	if err := sink.HideCursor(); err != nil {
		return err
	}
	defer sink.ShowCursor()

	total := len(buffer.Samples)
	hop := int(s.cfg.Analysis.WindowSeconds * float64(buffer.Rate))
	if hop < 1 {
		hop = 1
	}

	var flushErr error
	runErr := clk.Run(ctx, func(elapsed time.Duration) bool {
		idx := int(elapsed.Seconds() * float64(buffer.Rate))
		if idx >= total {
			return false
		}
		end := idx + hop
		if end > total {
			end = total
		}
		levels := analyzer.Analyze(buffer.Samples[idx:end])
		if err := sink.Flush(composer.Compose(levels, elapsed.Seconds(), duration)); err != nil {
			flushErr = err
			return false
		}
		return true
	})

	if errors.Is(runErr, context.Canceled) {
		_ = sink.Clear()
		return nil
	}
	if flushErr != nil {
		return flushErr
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintln(s.out, "\nPlayback finished.")
	return nil
}

// negotiate builds an engine for the buffer and probes the output
// format. A rejected sample rate is retried exactly once: the file is
// reloaded at the standard rate and the engine rebuilt around the new
// buffer. Any second rejection is fatal.
func (s *Session) negotiate(ctx context.Context, path string, buffer *decode.Buffer) (engine, *decode.Buffer, error) {
	eng, err := s.newEngine(buffer, &s.cfg.Playback)
	if err != nil {
		return nil, nil, err
	}

	ferr := eng.CheckFormat()
	if ferr == nil {
		return eng, buffer, nil
	}
	if !errors.Is(ferr, audio.ErrUnsupportedFormat) {
		return nil, nil, ferr
	}

	fmt.Fprintf(s.out, "Warning: Sample rate %d not supported. Falling back to %d Hz.\n",
		buffer.Rate, config.FallbackSampleRate)
	log.Debugf("session: format check: %v", ferr)

	buffer = s.loadFunc(ctx, path, config.FallbackSampleRate)
	if buffer.Empty() {
		return nil, nil, fmt.Errorf("reload at %d Hz: %w", config.FallbackSampleRate, ErrNothingToPlay)
	}
	eng, err = s.newEngine(buffer, &s.cfg.Playback)
	if err != nil {
		return nil, nil, err
	}
	if err := eng.CheckFormat(); err != nil {
		return nil, nil, fmt.Errorf("fallback rate rejected: %w", err)
	}
	return eng, buffer, nil
}

// newAnalyzer picks the analyzer for the configured render mode. The
// spectral reference magnitude is computed from the whole buffer here,
// once, before playback starts.
func (s *Session) newAnalyzer(buffer *decode.Buffer) (analysis.Analyzer, error) {
	if s.cfg.Render.Mode == "waveform" {
		return analysis.NewWaveform(s.cfg.Render.Width, s.cfg.Render.Height)
	}

	windowType, err := analysis.ParseWindowFunc(s.cfg.Analysis.Window)
	if err != nil {
		log.Warnf("session: %v", err)
	}
	ref := analysis.ReferenceMagnitude(buffer.Samples, analysis.ReferenceQuantile)
	log.Debugf("session: reference magnitude %g", ref)
	return analysis.NewSpectral(s.cfg.Render.Width, s.cfg.Render.Height,
		float64(buffer.Rate), s.cfg.Analysis.FloorDb, s.cfg.Analysis.FMin, ref, windowType)
}
