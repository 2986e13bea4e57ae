// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

// ErrInvalidStream is returned when the first frame header cannot be parsed.
var ErrInvalidStream = errors.New("mp3: invalid stream")
