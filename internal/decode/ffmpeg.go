package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"nowplaying/internal/log"
)

// runCmdFunc executes a decoder subprocess and returns its stdout.
// Tests replace it to feed canned probe and stream output.
var runCmdFunc = runCmd

func runCmd(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %s: %w", name, lastLine(msg), err)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// lastLine trims an ffmpeg stderr dump down to its final line, which
// is where the actual failure reason lands.
func lastLine(msg string) string {
	lines := strings.Split(msg, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// ffmpegLoad probes the file for its native layout, then decodes a
// mono f32le stream at the target rate.
func ffmpegLoad(ctx context.Context, path string, rate int) (*Buffer, error) {
	channels, nativeRate, err := probeStream(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Debugf("decode: %s has %d channel(s) at %d Hz", path, channels, nativeRate)

	target := rate
	if target == 0 {
		target = nativeRate
	}
	return ffmpegDecode(ctx, path, target)
}

// probeStream returns the channel count and native sample rate of the
// first audio stream in the file.
func probeStream(ctx context.Context, path string) (channels, rate int, err error) {
	out, err := runCmdFunc(ctx, "ffprobe",
		"-v", "error", "-select_streams", "a:0",
		"-show_entries", "stream=channels,sample_rate",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", path, err)
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("probe %s: %w", path, ErrNoAudioStream)
	}
	channels, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: bad channel count %q", path, fields[0])
	}
	rate, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: bad sample rate %q", path, fields[1])
	}
	return channels, rate, nil
}

// ffmpegDecode shells out for the mono float32 stream and converts it
// to the buffer's float64 samples.
func ffmpegDecode(ctx context.Context, path string, rate int) (*Buffer, error) {
	out, err := runCmdFunc(ctx, "ffmpeg",
		"-i", path, "-f", "f32le", "-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(rate), "-ac", "1", "-")
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	samples := make([]float64, len(out)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(out[4*i:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return &Buffer{Samples: samples, Rate: rate}, nil
}
