// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes 16-bit PCM WAV streams.
//
// # Decoding
//
// Decoder walks the RIFF chunks forward without seeking, skipping anything
// that is not "fmt " or "data" (LIST, fact, cue and so on). It accepts plain
// PCM and WAVE_FORMAT_EXTENSIBLE with a PCM sub-format, any channel count
// and any sample rate:
//
//	src, err := wav.Decoder{}.Decode(resp.Body)
//	if err != nil {
//	    return err
//	}
//
// A data chunk with a size of 0 or 0xFFFFFFFF is treated as open ended and
// read until the input is exhausted, as streaming servers commonly send.
//
// # Encoding
//
// Writer is backed by github.com/go-audio/wav and streams samples to any
// io.WriteSeeker:
//
//	f, _ := os.Create("out.wav")
//	w := wav.NewWriter(f, src.SampleRate(), src.Channels())
//	defer w.Close()
//
//	err := w.WriteSamples(buf[:n])
//
// Only whole frames are written; a trailing partial frame is dropped.
package wav
