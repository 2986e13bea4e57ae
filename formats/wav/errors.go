// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile            = errors.New("not a WAV file")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrMissingFormatChunk    = errors.New("data chunk before fmt chunk")
	ErrMalformedFormatChunk  = errors.New("malformed fmt chunk")
	ErrInvalidChannels       = errors.New("invalid channel count")
)
