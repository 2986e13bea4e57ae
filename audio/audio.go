// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"mime"
	"slices"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
//
// Decoders read r strictly forward; r may be a live network stream.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps format keys (e.g., "mp3", "ogg") to decoders. Media types
// such as "audio/mpeg" can be registered as aliases of a format key.
type Registry struct {
	codecs  map[string]Decoder
	aliases map[string]string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs:  make(map[string]Decoder),
		aliases: make(map[string]string),
		mtx:     &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[normalize(format)] = d
}

// Alias makes lookups of name resolve to format. name is usually a media
// type; parameters such as "; charset=binary" are ignored.
func (r *Registry) Alias(name, format string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.aliases[mediaType(name)] = normalize(format)
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[normalize(format)]
	return d, ok
}

// Lookup resolves key as a format key first and as an alias second. It
// returns the canonical format key together with its decoder.
func (r *Registry) Lookup(key string) (string, Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	format := normalize(key)
	if d, ok := r.codecs[format]; ok {
		return format, d, true
	}

	format, ok := r.aliases[mediaType(key)]
	if !ok {
		return "", nil, false
	}

	d, ok := r.codecs[format]
	return format, d, ok
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	formats := make([]string, 0, len(r.codecs))
	for f := range r.codecs {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	return formats
}

func normalize(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

func mediaType(name string) string {
	if mt, _, err := mime.ParseMediaType(name); err == nil {
		return mt
	}

	return normalize(name)
}
