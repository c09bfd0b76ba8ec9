package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	t.Parallel()

	// Known digests of "abc" for all three algorithms.
	digests := Sum([]byte("abc"))

	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", digests.MD5)
	assert.Equal(
		t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		digests.SHA256,
	)
	assert.Equal(
		t,
		"bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319",
		digests.Blake2256,
	)
}

func TestSumEmptyContent(t *testing.T) {
	t.Parallel()

	digests := Sum(nil)

	assert.Len(t, digests.MD5, 32)
	assert.Len(t, digests.SHA256, 64)
	assert.Len(t, digests.Blake2256, 64)
}
