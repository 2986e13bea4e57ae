// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ik5/audpost/formats/vorbis"
)

func ExampleDecoder_Decode_errorHandling() {
	_, err := vorbis.Decoder{}.Decode(strings.NewReader("not an ogg stream"))
	if errors.Is(err, vorbis.ErrInvalidStream) {
		fmt.Println("rejected")
	}

	// Output:
	// rejected
}
