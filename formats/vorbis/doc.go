// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// Decoding needs nothing but forward reads, so a network byte source can be
// passed directly:
//
//	src, err := vorbis.Decoder{}.Decode(struct{ io.Reader }{byteSource})
//	if err != nil {
//	    return err
//	}
//
// # Output Format
//
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels: as declared in the identification header
//   - Sample rate: as declared in the identification header
//
// ReadSamples only fills whole frames. A destination shorter than one frame
// yields (0, nil).
package vorbis
