// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the input has no FORM/AIFF header.
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedBitDepth is returned for sample sizes other than 8, 16, 24 or 32 bits.
	ErrUnsupportedBitDepth = errors.New("unsupported AIFF bit depth")

	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")

	// ErrTooLarge is returned when a non-seekable stream exceeds MaxBufferedSize.
	ErrTooLarge = errors.New("AIFF stream too large to buffer")
)
