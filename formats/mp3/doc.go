// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams with github.com/hajimehoshi/go-mp3.
//
// The decoder reads forward only. Hand it a plain io.Reader, for example a
// stream.Source wrapped so it does not expose io.Seeker:
//
//	src, err := mp3.Decoder{}.Decode(struct{ io.Reader }{byteSource})
//	if err != nil {
//	    return err
//	}
//
//	buf := make([]float32, src.BufSize())
//	n, err := src.ReadSamples(buf)
//
// Output is always two interleaved channels of float32 samples in
// [-1.0, 1.0] at the sample rate of the first frame.
package mp3
