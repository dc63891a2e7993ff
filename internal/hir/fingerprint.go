package hir

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("decy-own.hir.fingerprint.v1.key!")

// Fingerprint identifies a function by the content of its printed form.
type Fingerprint uint64

// Hex renders the fingerprint as 16 hex digits.
func (f Fingerprint) Hex() string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(f))
	return hex.EncodeToString(buf[:])
}

// FingerprintOf hashes the printed form of fn with HighwayHash-64.
func FingerprintOf(fn *Func) (Fingerprint, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0, err
	}
	Dump(h, fn)
	return Fingerprint(h.Sum64()), nil
}
