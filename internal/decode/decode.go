package decode

import (
	"context"
	"os/exec"

	"nowplaying/internal/log"
)

// lookPathFunc locates the ffmpeg binaries. Tests replace it to force
// the native fallback path.
var lookPathFunc = exec.LookPath

// Load reads path into a mono buffer. rate 0 keeps the file's native
// sample rate; any other value decodes (or resamples) to that rate.
// A decode that fails entirely logs a warning and returns an empty
// buffer, leaving the caller to report that there is nothing to play.
func Load(ctx context.Context, path string, rate int) *Buffer {
	buf, err := load(ctx, path, rate)
	if err != nil {
		log.Warnf("decode: %v", err)
		log.Warnf("decode: continuing with an empty buffer")
		return &Buffer{}
	}
	return buf
}

func load(ctx context.Context, path string, rate int) (*Buffer, error) {
	if _, err := lookPathFunc("ffmpeg"); err == nil {
		return ffmpegLoad(ctx, path, rate)
	}

	log.Debugf("decode: ffmpeg not found, trying native decoders")
	buf, err := nativeDecode(path)
	if err != nil {
		return nil, err
	}
	if rate != 0 && buf.Rate != rate {
		buf = Resample(buf, rate)
	}
	return buf, nil
}
