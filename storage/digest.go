package storage

import (
	//nolint:gosec // md5 is an integrity column mirrored to the index, not auth
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digests holds the three content-integrity digests recorded for every
// upload, hex-encoded.
type Digests struct {
	MD5       string
	SHA256    string
	Blake2256 string
}

// Sum computes the upload digests for the given content.
func Sum(content []byte) Digests {
	md5Sum := md5.Sum(content) //nolint:gosec
	sha256Sum := sha256.Sum256(content)
	blake2Sum := blake2b.Sum256(content)

	return Digests{
		MD5:       hex.EncodeToString(md5Sum[:]),
		SHA256:    hex.EncodeToString(sha256Sum[:]),
		Blake2256: hex.EncodeToString(blake2Sum[:]),
	}
}
