// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the double SHA-256 hash type used to identify
// transactions and the digests consumed by the signature-check opcodes.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkt-cash/txvm/er"
)

// HashSize is the number of bytes in a hash.
const HashSize = 32

// Hash is a 32-byte double sha256 hash, stored in the byte order the hash
// function produced. Only its String form is byte-reversed, as a
// block/transaction id is displayed.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching the convention used for transaction and block ids.
func (h Hash) String() string {
	for i := 0; i < HashSize/2; i++ {
		h[i], h[HashSize-1-i] = h[HashSize-1-i], h[i]
	}
	return hex.EncodeToString(h[:])
}

// CloneBytes returns a newly allocated copy of the hash's bytes.
func (h *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. Errs if the number of
// bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) er.R {
	if len(newHash) != HashSize {
		return er.Errorf("invalid hash length of %d, want %d", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, er.R) {
	var h Hash
	if err := h.SetBytes(newHash); err != nil {
		return nil, err
	}
	return &h, nil
}

// IsEqual returns true if target is the same as the hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// HashB calculates the hash of the given byte slice.
func HashB(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// HashH calculates the hash of the given byte slice, returning a Hash.
func HashH(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// DoubleHashB calculates the double sha256 hash of the given byte slice.
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH calculates the double sha256 hash of the given byte slice,
// returning a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}
