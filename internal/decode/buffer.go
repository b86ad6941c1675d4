// Package decode loads audio files into mono sample buffers. The
// primary decoder shells out to ffmpeg for format coverage; a native
// fallback chain (wav, aiff, mp3, ogg) takes over when ffmpeg is not
// installed. A decode that fails entirely degrades to an empty buffer
// so the caller can report the failure without special casing.
package decode

// Buffer holds a decoded mono waveform. Samples are normalized to
// [-1, 1]. A Buffer is never mutated after it is returned by Load;
// the playback callback and the render loop read it concurrently.
type Buffer struct {
	Samples []float64
	Rate    int // samples per second
}

// Duration returns the playable length in seconds. An empty or
// rate-less buffer has duration zero.
func (b *Buffer) Duration() float64 {
	if b == nil || b.Rate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.Rate)
}

// Empty reports whether there is nothing to play.
func (b *Buffer) Empty() bool {
	return b == nil || len(b.Samples) == 0
}
