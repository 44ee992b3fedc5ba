// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"

	"github.com/pkt-cash/txvm/er"
	"github.com/pkt-cash/txvm/txscript/params"
	"github.com/pkt-cash/txvm/txscript/txscripterr"
)

// halfOrder is used to tame ECDSA malleability (see BIP0062, rule 5).
var halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// checkHashTypeEncoding returns whether or not the passed hashtype is one of
// the recognized modes, ignoring the ANYONECANPAY and FORKID bits which
// modify rather than select a mode.
func (vm *Engine) checkHashTypeEncoding(hashType params.SigHashType) er.R {
	if !vm.hasFlag(params.ScriptVerifyStrictEncoding) {
		return nil
	}

	sigHashType := hashType &^ params.SigHashAnyOneCanPay &^ params.SigHashForkID
	if sigHashType < params.SigHashAll || sigHashType > params.SigHashSingle {
		str := fmt.Sprintf("invalid hash type 0x%x", hashType)
		return txscripterr.ScriptError(txscripterr.ErrInvalidSigHashType, str)
	}
	return nil
}

// isStrictPubKeyEncoding returns whether or not the passed public key adheres
// to the strict encoding requirements.
func isStrictPubKeyEncoding(pubKey []byte) bool {
	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		// Compressed
		return true
	}
	if len(pubKey) == 65 {
		switch pubKey[0] {
		case 0x04:
			// Uncompressed
			return true
		case 0x06, 0x07:
			// Hybrid
			return true
		}
	}
	return false
}

// checkPubKeyEncoding returns an error if the passed public key does not
// adhere to the strict encoding requirements when they are active.
func (vm *Engine) checkPubKeyEncoding(pubKey []byte) er.R {
	if !vm.hasFlag(params.ScriptVerifyStrictEncoding) {
		return nil
	}

	if len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03) {
		// Compressed
		return nil
	}
	if len(pubKey) == 65 && pubKey[0] == 0x04 {
		// Uncompressed
		return nil
	}

	return txscripterr.ScriptError(txscripterr.ErrPubKeyType, "unsupported public key type")
}

// The format of a DER encoded signature is as follows:
//
// 0x30 <total length> 0x02 <length of R> <R> 0x02 <length of S> <S>
//   - 0x30 is the ASN.1 identifier for a sequence
//   - Total length is 1 byte and specifies length of all remaining data
//   - 0x02 is the ASN.1 identifier that specifies an integer follows
//   - Length of R is 1 byte and specifies how many bytes R occupies
//   - R is the arbitrary length big-endian encoded number which represents
//     the R value of the signature. DER encoding dictates that the value
//     must be encoded using the minimum possible number of bytes. This
//     implies the first byte can only be null if the highest bit of the
//     next byte is set, to avoid it being interpreted as a negative number.
//   - 0x02 is once again the ASN.1 integer identifier
//   - Length of S is 1 byte and specifies how many bytes S occupies
//   - S is the arbitrary length big-endian encoded number which represents
//     the S value of the signature, with the identical encoding rules as R.
const (
	asn1SequenceID = 0x30
	asn1IntegerID  = 0x02

	// minSigLen is the minimum length of a DER encoded signature and is
	// when both R and S are 1 byte each.
	//
	// 0x30 + <1-byte> + 0x02 + 0x01 + <byte> + 0x2 + 0x01 + <byte>
	minSigLen = 8

	// maxSigLen is the maximum length of a DER encoded signature and is
	// when both R and S are 33 bytes each. It is 33 bytes because a
	// 256-bit integer requires 32 bytes and an additional leading null
	// byte might be required if the high bit is set in the value.
	//
	// 0x30 + <1-byte> + 0x02 + 0x21 + <33 bytes> + 0x2 + 0x21 + <33 bytes>
	maxSigLen = 72

	sequenceOffset = 0
	dataLenOffset  = 1
	rTypeOffset    = 2
	rLenOffset     = 3
	rOffset        = 4
)

// checkSignatureEncoding returns an error if the passed raw signature,
// excluding the trailing hash type byte, does not adhere to the DER/low-S
// canonicality requirements the active flags demand.
func (vm *Engine) checkSignatureEncoding(sig []byte) er.R {
	if !vm.hasFlag(params.ScriptVerifyDERSignatures) &&
		!vm.hasFlag(params.ScriptVerifyLowS) &&
		!vm.hasFlag(params.ScriptVerifyStrictEncoding) {

		return nil
	}

	sigLen := len(sig)
	if sigLen < minSigLen {
		str := fmt.Sprintf("malformed signature: too short: %d < %d", sigLen, minSigLen)
		return txscripterr.ScriptError(txscripterr.ErrSigTooShort, str)
	}
	if sigLen > maxSigLen {
		str := fmt.Sprintf("malformed signature: too long: %d > %d", sigLen, maxSigLen)
		return txscripterr.ScriptError(txscripterr.ErrSigTooLong, str)
	}
	if sig[sequenceOffset] != asn1SequenceID {
		str := fmt.Sprintf("malformed signature: format has wrong type: %#x", sig[sequenceOffset])
		return txscripterr.ScriptError(txscripterr.ErrSigInvalidSeqID, str)
	}
	if int(sig[dataLenOffset]) != sigLen-2 {
		str := fmt.Sprintf("malformed signature: bad length: %d != %d", sig[dataLenOffset], sigLen-2)
		return txscripterr.ScriptError(txscripterr.ErrSigInvalidDataLen, str)
	}

	rLen := int(sig[rLenOffset])
	sTypeOffset := rOffset + rLen
	sLenOffset := sTypeOffset + 1
	if sTypeOffset >= sigLen {
		return txscripterr.ScriptError(txscripterr.ErrSigMissingSTypeID,
			"malformed signature: S type indicator missing")
	}
	if sLenOffset >= sigLen {
		return txscripterr.ScriptError(txscripterr.ErrSigMissingSLen,
			"malformed signature: S length missing")
	}

	sOffset := sLenOffset + 1
	sLen := int(sig[sLenOffset])
	if sOffset+sLen != sigLen {
		return txscripterr.ScriptError(txscripterr.ErrSigInvalidSLen,
			"malformed signature: invalid S length")
	}

	if sig[rTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: R integer marker: %#x != %#x",
			sig[rTypeOffset], asn1IntegerID)
		return txscripterr.ScriptError(txscripterr.ErrSigInvalidRIntID, str)
	}
	if rLen == 0 {
		return txscripterr.ScriptError(txscripterr.ErrSigZeroRLen,
			"malformed signature: R length is zero")
	}
	if sig[rOffset]&0x80 != 0 {
		return txscripterr.ScriptError(txscripterr.ErrSigNegativeR,
			"malformed signature: R is negative")
	}
	if rLen > 1 && sig[rOffset] == 0x00 && sig[rOffset+1]&0x80 == 0 {
		return txscripterr.ScriptError(txscripterr.ErrSigTooMuchRPadding,
			"malformed signature: R value has too much padding")
	}

	if sig[sTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: S integer marker: %#x != %#x",
			sig[sTypeOffset], asn1IntegerID)
		return txscripterr.ScriptError(txscripterr.ErrSigInvalidSIntID, str)
	}
	if sLen == 0 {
		return txscripterr.ScriptError(txscripterr.ErrSigZeroSLen,
			"malformed signature: S length is zero")
	}
	if sig[sOffset]&0x80 != 0 {
		return txscripterr.ScriptError(txscripterr.ErrSigNegativeS,
			"malformed signature: S is negative")
	}
	if sLen > 1 && sig[sOffset] == 0x00 && sig[sOffset+1]&0x80 == 0 {
		return txscripterr.ScriptError(txscripterr.ErrSigTooMuchSPadding,
			"malformed signature: S value has too much padding")
	}

	// Verify the S value is <= half the order of the curve. This is done
	// because when it is higher, the complement modulo the order is a
	// shorter, equally valid encoding, which is a source of malleability.
	if vm.hasFlag(params.ScriptVerifyLowS) {
		sValue := new(big.Int).SetBytes(sig[sOffset : sOffset+sLen])
		if sValue.Cmp(halfOrder) > 0 {
			return txscripterr.ScriptError(txscripterr.ErrSigHighS,
				"signature is not canonical due to unnecessarily high S value")
		}
	}

	return nil
}

// rawSigAndHashType splits the raw bytes popped from the stack into the DER
// signature body and the trailing sighash type byte. An empty slice yields a
// zero hash type and a nil signature, which every caller treats as an
// automatic verification failure rather than a decode error.
func rawSigAndHashType(full []byte) ([]byte, params.SigHashType) {
	if len(full) == 0 {
		return nil, 0
	}
	return full[:len(full)-1], params.SigHashType(full[len(full)-1])
}

// parseSignature decodes a DER signature (without its trailing hash type
// byte) into an (R, S) pair usable with btcec, returning an error for any
// structurally invalid encoding. Canonicality per the active flags has
// already been checked by checkSignatureEncoding by the time this is called.
func parseSignature(sig []byte) (*btcec.Signature, er.R) {
	parsed, err := btcec.ParseDERSignature(sig, btcec.S256())
	if err != nil {
		return nil, er.E(err)
	}
	return parsed, nil
}

// parsePubKey decodes a serialized compressed, uncompressed, or hybrid
// public key into a curve point usable with btcec.
func parsePubKey(serialized []byte) (*btcec.PublicKey, er.R) {
	parsed, err := btcec.ParsePubKey(serialized, btcec.S256())
	if err != nil {
		return nil, er.E(err)
	}
	return parsed, nil
}
