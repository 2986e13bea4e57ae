// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF streams using github.com/go-audio/aiff.
//
// The underlying decoder seeks between chunks. When the input is not an
// io.ReadSeeker (a network response, for instance) it is read fully into
// memory first, up to MaxBufferedSize bytes.
//
// Samples are big-endian integers of 8, 16, 24 or 32 bits, normalized to
// float32 in [-1.0, 1.0].
package aiff
