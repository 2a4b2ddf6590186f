// Package hasher computes the content hashes recorded for every encoded
// output and used for content-addressed file names.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen. 0 or anything past 16 returns all 16 chars.
func ContentHash(data []byte, hexLen int) string {
	h := xxhash.Sum64(data)
	return truncate(hex.EncodeToString(binary.BigEndian.AppendUint64(nil, h)), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncate(hex.EncodeToString(binary.BigEndian.AppendUint64(nil, h.Sum64())), hexLen), nil
}

func truncate(full string, n int) string {
	if n > 0 && n < len(full) {
		return full[:n]
	}
	return full
}
