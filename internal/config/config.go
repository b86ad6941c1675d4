package config

import (
	"fmt"
	"strconv"

	"nowplaying/pkg/bitint"
)

// Core configuration constants that define the boundaries and defaults
// for playback and rendering.
const (
	// Default values for the playback configuration
	DefaultOutputDevice = MinDeviceID // System default output device
	DefaultSampleRate   = 0           // 0 keeps the file's native rate
	DefaultBlockSize    = 1024        // Frames per output callback

	// Default values for the render configuration
	DefaultMode   = "spectrum"
	DefaultRate   = "normal"
	DefaultWidth  = 60
	DefaultHeight = 18

	// Default values for the analysis configuration
	DefaultWindowSeconds = 0.1    // Samples fed to the analyzer per frame
	DefaultFloorDb       = -60.0  // Silence floor for the dB scale
	DefaultFMin          = 20.0   // Lowest band edge in Hz
	DefaultWindow        = "hann" // Window function for the spectrum mode

	// Hardware and processing limits
	MinDeviceID    = -1     // -1 represents system default device
	MinSampleRate  = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate  = 192000 // Maximum supported sample rate (Hz)
	MaxBlockFrames = 8192   // Maximum frames per callback (power of 2)

	// FallbackSampleRate is retried once when the device rejects the
	// file's native rate.
	FallbackSampleRate = 44100
)

// Frame rates for the named render rate classes.
const (
	SlowFPS   = 10
	NormalFPS = 30
	FastFPS   = 60
)

// Config holds all runtime configuration options. It is constructed
// from built-in defaults, an optional YAML file, environment
// variables and command line flags, in that precedence order.
type Config struct {
	Debug    bool           `yaml:"debug"`     // Enable debug mode (verbose logging).
	LogLevel string         `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Playback PlaybackConfig `yaml:"playback"`  // Audio output settings.
	Render   RenderConfig   `yaml:"render"`    // Terminal visualization settings.
	Analysis AnalysisConfig `yaml:"analysis"`  // Spectral analysis settings.

	fps float64 // Resolved from Render.Rate by Validate.
}

// PlaybackConfig holds settings related to the audio output stream.
type PlaybackConfig struct {
	OutputDevice int     `yaml:"output_device"` // PortAudio device index for audio output (-1 for default).
	SampleRate   float64 `yaml:"sample_rate"`   // Decode/playback rate in Hz (0 keeps the file's native rate).
	BlockSize    int     `yaml:"block_size"`    // Frames per output callback (power of two).
	LowLatency   bool    `yaml:"low_latency"`   // Request low latency settings from the output device.
	DumpWAV      string  `yaml:"dump_wav"`      // Optional path to export the decoded buffer as 16-bit WAV.
}

// RenderConfig holds settings for the terminal visualization.
type RenderConfig struct {
	Mode   string `yaml:"mode"`   // "spectrum" or "waveform".
	Rate   string `yaml:"rate"`   // "slow", "normal", "fast" or a numeric fps.
	Width  int    `yaml:"width"`  // Bars across the terminal.
	Height int    `yaml:"height"` // Rows per bar column.
	Colors []int  `yaml:"colors"` // ANSI-256 codes bottom to top; empty uses the built-in ramp.
}

// AnalysisConfig holds settings for the per-frame analysis window.
type AnalysisConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"` // Length of the analysis slice in seconds.
	FloorDb       float64 `yaml:"floor_db"`       // dB value mapped to an empty bar.
	FMin          float64 `yaml:"fmin"`           // Lowest spectrum band edge in Hz.
	Window        string  `yaml:"window"`         // Window function name for the spectrum analyzer.
}

// NewConfig creates a new Config instance with default values. This is
// the base configuration before applying a config file, environment
// variables or command line flags.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Playback: PlaybackConfig{
			OutputDevice: DefaultOutputDevice,
			SampleRate:   DefaultSampleRate,
			BlockSize:    DefaultBlockSize,
		},
		Render: RenderConfig{
			Mode:   DefaultMode,
			Rate:   DefaultRate,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Analysis: AnalysisConfig{
			WindowSeconds: DefaultWindowSeconds,
			FloorDb:       DefaultFloorDb,
			FMin:          DefaultFMin,
			Window:        DefaultWindow,
		},
	}
}

// Validate checks the configuration for self-consistency and resolves
// the render rate. It must run before FPS is read.
func (c *Config) Validate() error {
	if c.Playback.OutputDevice < MinDeviceID {
		return fmt.Errorf("playback.output_device %d is invalid", c.Playback.OutputDevice)
	}
	if sr := c.Playback.SampleRate; sr != 0 && (sr < MinSampleRate || sr > MaxSampleRate) {
		return fmt.Errorf("playback.sample_rate %g outside [%d, %d]", sr, MinSampleRate, MaxSampleRate)
	}
	if bs := c.Playback.BlockSize; !bitint.IsPowerOfTwo(bs) || bs > MaxBlockFrames {
		return fmt.Errorf("playback.block_size %d must be a power of two <= %d", bs, MaxBlockFrames)
	}

	switch c.Render.Mode {
	case "spectrum", "waveform":
	default:
		return fmt.Errorf("render.mode %q must be \"spectrum\" or \"waveform\"", c.Render.Mode)
	}
	fps, err := resolveRate(c.Render.Rate)
	if err != nil {
		return err
	}
	c.fps = fps
	if c.Render.Width < 1 {
		return fmt.Errorf("render.width %d must be at least 1", c.Render.Width)
	}
	if c.Render.Height < 1 {
		return fmt.Errorf("render.height %d must be at least 1", c.Render.Height)
	}
	if n := len(c.Render.Colors); n == 1 {
		return fmt.Errorf("render.colors needs at least 2 colors, got %d", n)
	}
	for _, code := range c.Render.Colors {
		if code < 0 || code > 255 {
			return fmt.Errorf("render.colors entry %d outside ANSI-256 range [0, 255]", code)
		}
	}

	if c.Analysis.WindowSeconds <= 0 {
		return fmt.Errorf("analysis.window_seconds %g must be positive", c.Analysis.WindowSeconds)
	}
	if c.Analysis.FloorDb >= 0 {
		return fmt.Errorf("analysis.floor_db %g must be negative", c.Analysis.FloorDb)
	}
	if c.Analysis.FMin <= 0 {
		return fmt.Errorf("analysis.fmin %g must be positive", c.Analysis.FMin)
	}

	return nil
}

// FPS returns the frame rate resolved by Validate.
func (c *Config) FPS() float64 {
	return c.fps
}

// resolveRate maps a rate class name or numeric string to frames per
// second.
func resolveRate(rate string) (float64, error) {
	switch rate {
	case "slow":
		return SlowFPS, nil
	case "normal":
		return NormalFPS, nil
	case "fast":
		return FastFPS, nil
	}
	fps, err := strconv.ParseFloat(rate, 64)
	if err != nil || fps <= 0 {
		return 0, fmt.Errorf("render.rate %q must be slow, normal, fast or a positive fps", rate)
	}
	return fps, nil
}
