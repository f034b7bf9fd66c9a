package images

import (
	"crypto/md5"
	"encoding/hex"

	"gocv.io/x/gocv"
)

// Checksum hashes the pixel bytes of a continuous 8-bit Mat. Two Mats with
// the same type, size and pixels produce the same checksum, which makes it a
// cheap equality check for rendered output.
//
// Arguments:
//   - m: The Mat to hash.
//
// Returns:
//   - string: Hex-encoded MD5 of the pixel data, "empty" for an empty Mat.
//
// @example
// if images.Checksum(rendered) == images.Checksum(expected) { ... }
func Checksum(m gocv.Mat) string {
	if m.Empty() {
		return "empty"
	}

	data, err := m.DataPtrUint8()
	if err != nil {
		return "unreadable"
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
