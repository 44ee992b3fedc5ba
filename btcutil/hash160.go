// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcutil holds small standalone helpers shared by the script engine
// that don't belong in the wire or txscript packages themselves.
package btcutil

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Ripemd160 calculates the ripemd160 hash of the passed byte slice.
func Ripemd160(b []byte) []byte {
	hasher := ripemd160.New()
	hasher.Write(b)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(sha256(b)), the digest scheme used
// throughout the protocol to compress public keys and scripts down to a
// 20-byte commitment.
func Hash160(b []byte) []byte {
	h := sha256.Sum256(b)
	return Ripemd160(h[:])
}
