// SPDX-License-Identifier: MIT
package audio

import "errors"

var (
	// ErrUnsupportedFormat means the output device rejected the
	// requested sample rate and block size. Callers retry once at the
	// standard fallback rate before giving up.
	ErrUnsupportedFormat = errors.New("device does not support the requested format")

	// ErrDeviceUnavailable means the output stream could not be
	// opened or started. Not recoverable.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
)
