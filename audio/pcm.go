// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"
)

// DecodePCM16LE converts little-endian 16-bit samples from src into dst and
// returns how many samples were written. A trailing odd byte is ignored.
func DecodePCM16LE(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/2)
	for i := range n {
		v := int16(binary.LittleEndian.Uint16(src[2*i:]))
		dst[i] = float32(v) / 32768.0
	}

	return n
}

// Float32ToInt16 clamps x to [-1, 1] and scales it to a 16-bit sample.
// NaN maps to silence.
func Float32ToInt16(x float32) int16 {
	if math.IsNaN(float64(x)) {
		return 0
	}

	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	if x < 0 {
		return int16(x * 32768.0)
	}

	return int16(x * 32767.0)
}
