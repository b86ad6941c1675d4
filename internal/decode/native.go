package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

type decodeFunc func(r io.ReadSeeker) (*Buffer, error)

// nativeDecoders maps file extensions to the pure-Go fallback chain.
var nativeDecoders = map[string]decodeFunc{
	".wav":  decodeWAV,
	".wave": decodeWAV,
	".aif":  decodeAIFF,
	".aiff": decodeAIFF,
	".mp3":  decodeMP3,
	".ogg":  decodeOgg,
	".oga":  decodeOgg,
}

// nativeDecode opens path with the decoder registered for its
// extension. The result keeps the file's native sample rate.
func nativeDecode(path string) (*Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	dec, ok := nativeDecoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoDecoder, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return dec(f)
}

func decodeWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wav decode: invalid file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav pcm read: %w", err)
	}
	return fromIntBuffer(pcm, int(dec.BitDepth))
}

func decodeAIFF(r io.ReadSeeker) (*Buffer, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("aiff decode: invalid file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("aiff pcm read: %w", err)
	}
	return fromIntBuffer(pcm, int(dec.BitDepth))
}

func decodeMP3(r io.ReadSeeker) (*Buffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 pcm read: %w", err)
	}

	// go-mp3 emits 16-bit little-endian stereo regardless of the
	// source channel layout.
	frames := len(raw) / 4
	samples := make([]float64, frames)
	for f := 0; f < frames; f++ {
		left := int16(binary.LittleEndian.Uint16(raw[4*f:]))
		right := int16(binary.LittleEndian.Uint16(raw[4*f+2:]))
		samples[f] = (float64(left) + float64(right)) / 2 / 32768
	}
	return &Buffer{Samples: samples, Rate: dec.SampleRate()}, nil
}

func decodeOgg(r io.ReadSeeker) (*Buffer, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ogg decode: %w", err)
	}
	return fromInterleaved(data, format.Channels, format.SampleRate), nil
}

// fromIntBuffer downmixes an interleaved go-audio PCM buffer to mono
// float64, scaling by the source bit depth.
func fromIntBuffer(pcm *goaudio.IntBuffer, bitDepth int) (*Buffer, error) {
	if pcm == nil || pcm.Format == nil {
		return nil, errors.New("empty pcm buffer")
	}
	channels := pcm.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	if bitDepth == 0 {
		bitDepth = pcm.SourceBitDepth
	}
	scale := pcmScale(bitDepth)

	frames := len(pcm.Data) / channels
	samples := make([]float64, frames)
	for f := 0; f < frames; f++ {
		sum := 0.0
		base := f * channels
		for c := 0; c < channels; c++ {
			sum += float64(pcm.Data[base+c])
		}
		samples[f] = sum / float64(channels) / scale
	}
	return &Buffer{Samples: samples, Rate: pcm.Format.SampleRate}, nil
}

// fromInterleaved downmixes interleaved float32 frames by averaging
// across channels.
func fromInterleaved(data []float32, channels, rate int) *Buffer {
	if channels < 1 {
		channels = 1
	}
	frames := len(data) / channels
	samples := make([]float64, frames)
	for f := 0; f < frames; f++ {
		sum := 0.0
		base := f * channels
		for c := 0; c < channels; c++ {
			sum += float64(data[base+c])
		}
		samples[f] = sum / float64(channels)
	}
	return &Buffer{Samples: samples, Rate: rate}
}

// pcmScale returns the full-scale divisor for a PCM bit depth.
func pcmScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128
	case 16:
		return 32768
	case 24:
		return 8388608
	case 32:
		return 2147483648
	default:
		return 32768
	}
}
