// SPDX-License-Identifier: MIT
package decode

import "errors"

var (
	// ErrNoDecoder means no native decoder claims the file extension.
	ErrNoDecoder = errors.New("no decoder for file format")

	// ErrNoAudioStream means the probe found nothing to decode.
	ErrNoAudioStream = errors.New("no audio stream in file")
)
