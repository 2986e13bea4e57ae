// SPDX-License-Identifier: EPL-2.0

// Package stream provides a pull based byte source over the body of an
// HTTP POST response.
//
// A Source sends a request once, then hands the response body out to a
// consumer that polls it, usually an audio decoder. The consumer never sees
// the network: it asks for bytes and gets what has arrived.
//
//	src, err := stream.Dial(ctx, "https://tts.example.com/speak",
//	    []byte(`{"text":"hello"}`), 5*time.Second,
//	    []string{"Content-Type: application/json"})
//	if err != nil {
//	    // src.LastHTTPCode() tells what the server answered
//	}
//	defer src.Close()
//
//	buf := make([]byte, 4096)
//	for {
//	    n, err := src.Read(buf)
//	    if err == io.EOF {
//	        break
//	    }
//	    // use buf[:n]
//	}
//
// # Reading
//
// Read waits up to WaitWindow for the requested amount of data and returns
// whatever arrived. When nothing arrived at all the stream is considered
// stalled: the request is sent again, the bytes already delivered are
// skipped and the read is retried once. ReadNonBlock instead polls until at
// least one byte is ready, NonBlockAttempts times at most.
//
// Both calls return (0, io.EOF) when the server closed the connection, when
// the advertised content length was consumed, or when no data showed up.
// The exchange is torn down in each of these cases, so IsOpen reports false
// afterwards.
//
// Reads never cross the advertised content length. Pos only grows and, for
// a response of known size, never exceeds Size.
//
// # Seeking
//
// Seek always fails with ErrSeekUnsupported. Because a Source still has a
// Seek method, pass it to libraries that probe for io.Seeker wrapped in a
// plain io.Reader.
//
// # Transports
//
// A Source drives a transport.Transport. When none is given with
// WithTransport it creates a transport.HTTP and owns it, releasing its idle
// connections on Close. A transport given by the caller is only borrowed.
//
// # Status notifications
//
// WithStatusFunc registers a callback told about failed requests,
// disconnects, reconnect attempts and exhausted polling.
package stream
