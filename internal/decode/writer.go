// SPDX-License-Identifier: MIT
package decode

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV exports the buffer as a 16-bit mono PCM WAV file at path.
func WriteWAV(b *Buffer, path string) error {
	if b.Empty() {
		return fmt.Errorf("write %s: nothing to export", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	enc := wav.NewEncoder(file, b.Rate, 16, 1, 1)
	pcm := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: b.Rate},
		SourceBitDepth: 16,
		Data:           make([]int, len(b.Samples)),
	}
	for i, s := range b.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		pcm.Data[i] = int(s * 32767)
	}

	if err := enc.Write(pcm); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
