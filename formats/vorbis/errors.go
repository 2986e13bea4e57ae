// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

// ErrInvalidStream is returned when the Ogg or Vorbis headers are unreadable.
var ErrInvalidStream = errors.New("vorbis: invalid stream")
