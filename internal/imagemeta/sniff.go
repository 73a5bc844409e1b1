// Package imagemeta derives pixel dimensions from raw image bytes by parsing
// format headers, without pulling in a decoder. Best effort only: anything
// malformed, truncated or unsupported yields "no dimensions", never an error.
package imagemeta

import (
	"bytes"
	"encoding/binary"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Dimensions returns the pixel width and height of the image when they can be
// read from the header for the declared mime type. ok is false for any input
// it cannot parse.
func Dimensions(data []byte, mime string) (width, height int, ok bool) {
	switch mime {
	case "image/png":
		return pngDimensions(data)
	case "image/jpeg":
		return jpegDimensions(data)
	default:
		return 0, 0, false
	}
}

// pngDimensions reads the IHDR fields at their fixed offsets: the 8-byte
// signature, then width and height as big-endian uint32 at offsets 16 and 20.
func pngDimensions(data []byte) (int, int, bool) {
	if len(data) < 24 {
		return 0, 0, false
	}
	if !bytes.Equal(data[:8], pngSignature) {
		return 0, 0, false
	}
	w := binary.BigEndian.Uint32(data[16:20])
	h := binary.BigEndian.Uint32(data[20:24])
	if w == 0 || h == 0 {
		return 0, 0, false
	}
	return int(w), int(h), true
}

// jpegDimensions walks the marker segments after the SOI marker until it hits
// a start-of-frame segment, which carries the dimensions. Each segment is
// 0xFF, a type byte, then a big-endian length that counts itself.
func jpegDimensions(data []byte) (int, int, bool) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0, false
	}

	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return 0, 0, false
		}
		marker := data[i+1]
		if isFrameStart(marker) {
			// [0xFF][marker][len:2][precision:1][height:2][width:2]
			if i+9 > len(data) {
				return 0, 0, false
			}
			h := int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			w := int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			if w == 0 || h == 0 {
				return 0, 0, false
			}
			return w, h, true
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 {
			return 0, 0, false
		}
		i += 2 + segLen
	}
	return 0, 0, false
}

// isFrameStart reports whether the marker is a SOF type. DHT (0xC4),
// JPG (0xC8) and DAC (0xCC) share the range but carry no dimensions.
func isFrameStart(marker byte) bool {
	if marker < 0xC0 || marker > 0xCF {
		return false
	}
	switch marker {
	case 0xC4, 0xC8, 0xCC:
		return false
	}
	return true
}
