package codec

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum returns the lowercase hex SHA-256 digest of data. Envelopes carry
// the digest of the uncompressed encoded payload.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
