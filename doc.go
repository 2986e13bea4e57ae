// SPDX-License-Identifier: EPL-2.0

// Package audpost decodes audio that a server returns in reply to an HTTP
// POST, such as a text to speech response.
//
// The request body is sent once and the response is consumed while it is
// still arriving. The decoder is picked from the registry by the configured
// format or, failing that, by the response Content-Type.
//
//	st, err := audpost.Open(ctx, audpost.Request{
//	    Endpoint: "https://tts.example.com/v1/speak",
//	    Body:     []byte(`{"text":"hello"}`),
//	    Timeout:  5 * time.Second,
//	    Headers:  []string{"Content-Type: application/json"},
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	f, _ := os.Create("hello.wav")
//	defer f.Close()
//	_, err = audpost.WriteWAV(f, st.Source(), 0)
//
// # Supported Formats
//
//   - WAV (PCM 16-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//
// # Packages
//
// The byte level work lives in the stream package and the HTTP exchange in
// transport. Both can be used without this package.
package audpost
