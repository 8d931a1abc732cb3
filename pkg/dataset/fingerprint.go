// pkg/dataset/fingerprint.go
package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint returns a hash of the table's full content: column
// definitions plus every cell value, length-prefixed so that adjacent
// values cannot collide by concatenation. Two tables with equal
// fingerprints are treated as having identical observable content.
//
// The whole table is hashed on every call. The convergence loop calls
// this once per iteration, which keeps cycle detection O(size) per
// pass; cheap enough for the datasets this engine targets.
func (t *Table) Fingerprint() string {
	h := sha256.New()
	var lenBuf [8]byte

	writeString := func(s string) {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}

	for _, col := range t.columns {
		writeString(col.Name)
		writeString(col.Type.String())
	}
	for _, row := range t.rows {
		for _, value := range row {
			writeString(value)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
