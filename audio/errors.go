// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrUnknownFormat is returned when no decoder matches a format key or
	// media type.
	ErrUnknownFormat = errors.New("unknown audio format")
)
