// SPDX-License-Identifier: EPL-2.0

// Package audio defines the decoded side of an audio stream.
//
// # Source Interface
//
// A Source yields interleaved PCM samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are float32 values in [-1.0, 1.0]. ReadSamples returns io.EOF once
// the stream is finished:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // process buf[:n]
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
//
// # Decoders
//
// A Decoder turns a byte stream into a Source. The formats subpackages
// provide decoders for MP3, Ogg Vorbis, WAV and AIFF. They only read forward,
// so they can be fed straight from a network response.
//
// # Format Registry
//
// The registry picks a decoder by format key or by the media type a server
// announced:
//
//	registry := audio.NewRegistry()
//	registry.Register("mp3", mp3.Decoder{})
//	registry.Alias("audio/mpeg", "mp3")
//
//	format, decoder, ok := registry.Lookup(resp.Header.Get("Content-Type"))
//
// Keys are case insensitive and media type parameters are ignored.
package audio
