// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/pkt-cash/txvm/chainhash"
	"github.com/pkt-cash/txvm/er"
	"github.com/pkt-cash/txvm/txscript/opcode"
	"github.com/pkt-cash/txvm/txscript/params"
	"github.com/pkt-cash/txvm/txscript/parsescript"
	"github.com/pkt-cash/txvm/wire"
)

// shallowCopyTx creates a shallow copy of the transaction for use when
// calculating the legacy signature hash. It is used over Copy since that is
// a deep copy and therefore allocates much more than needed here.
func shallowCopyTx(tx *wire.MsgTx) wire.MsgTx {
	txCopy := wire.MsgTx{
		Version:  tx.Version,
		TxIn:     make([]*wire.TxIn, len(tx.TxIn)),
		TxOut:    make([]*wire.TxOut, len(tx.TxOut)),
		LockTime: tx.LockTime,
	}
	txIns := make([]wire.TxIn, len(tx.TxIn))
	for i, oldTxIn := range tx.TxIn {
		txIns[i] = *oldTxIn
		txCopy.TxIn[i] = &txIns[i]
	}
	txOuts := make([]wire.TxOut, len(tx.TxOut))
	for i, oldTxOut := range tx.TxOut {
		txOuts[i] = *oldTxOut
		txCopy.TxOut[i] = &txOuts[i]
	}
	return txCopy
}

// unparseScript reassembles a parsed opcode stream back into raw script
// bytes. Used to rebuild the connected script after code-separator and
// signature removal.
func unparseScript(pops []parsescript.ParsedOpcode) ([]byte, er.R) {
	script := make([]byte, 0, len(pops))
	for _, pop := range pops {
		b, err := popBytes(&pop)
		if err != nil {
			return nil, err
		}
		script = append(script, b...)
	}
	return script, nil
}

// calcLegacySignatureHash computes the pre-FORKID signature hash digest: the
// modified-transaction-copy scheme from the original design, in which the
// signature script of every other input is blanked, outputs are pruned or
// zeroed according to the SIGHASH mode, and the whole thing (plus the hash
// type) is double hashed.
//
// script is the connected script (the redeemed scriptPubKey, or the P2SH
// redeem script) with OP_CODESEPARATOR and the signature's own push already
// removed by the caller (calcSignatureHash and its callers).
func calcLegacySignatureHash(script []parsescript.ParsedOpcode, hashType params.SigHashType, tx *wire.MsgTx, idx int) ([]byte, er.R) {
	// A historical quirk: requesting SigHashSingle for an input with no
	// corresponding output yields a hash of 1, not an error. This bug is
	// now part of consensus.
	if hashType&params.SigHashMask == params.SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:], nil
	}

	txCopy := shallowCopyTx(tx)
	sigScript, err := unparseScript(script)
	if err != nil {
		return nil, err
	}
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = sigScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & params.SigHashMask {
	case params.SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	case params.SigHashSingle:
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	case params.SigHashOld, params.SigHashAll:
		// Consensus treats undefined hash types like SigHashAll.
	default:
	}
	if hashType&params.SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var wbuf bytes.Buffer
	if err := txCopy.Serialize(&wbuf); err != nil {
		return nil, err
	}
	var hashTypeBuf [4]byte
	binary.LittleEndian.PutUint32(hashTypeBuf[:], uint32(hashType))
	wbuf.Write(hashTypeBuf[:])
	return chainhash.DoubleHashB(wbuf.Bytes()), nil
}

// calcHashPrevOuts computes a single hash of all the (txid, index) pairs
// referenced by the transaction's inputs, one of the three reusable digest
// fragments of the replay-protected preimage.
func calcHashPrevOuts(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		b.Write(in.PreviousOutPoint.Hash[:])
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], in.PreviousOutPoint.Index)
		b.Write(buf[:])
	}
	return chainhash.DoubleHashH(b.Bytes())
}

// calcHashSequence computes a single hash of every input's sequence number.
func calcHashSequence(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], in.Sequence)
		b.Write(buf[:])
	}
	return chainhash.DoubleHashH(b.Bytes())
}

// calcHashOutputs computes a single hash of every output, wire-encoded.
func calcHashOutputs(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, out := range tx.TxOut {
		wire.WriteTxOut(&b, out)
	}
	return chainhash.DoubleHashH(b.Bytes())
}

// calcForkIDSignatureHash computes the replay-protected (FORKID) signature
// hash digest, structured the same way as BIP0143's segwit preimage: fixed
// width fields so verification cost no longer grows quadratically with the
// transaction's input count, and the spent amount is committed directly
// rather than recovered from context.
//
// script is the connected script exactly as it would be for the legacy
// digest (OP_CODESEPARATOR and the signature's own push already removed).
func calcForkIDSignatureHash(script []parsescript.ParsedOpcode, hashType params.SigHashType, tx *wire.MsgTx, idx int, amount int64) ([]byte, er.R) {
	if idx > len(tx.TxIn)-1 {
		return nil, er.Errorf("calcForkIDSignatureHash: idx %d but %d txins", idx, len(tx.TxIn))
	}

	var zeroHash chainhash.Hash
	var sigHash bytes.Buffer

	var bVersion [4]byte
	binary.LittleEndian.PutUint32(bVersion[:], uint32(tx.Version))
	sigHash.Write(bVersion[:])

	if hashType&params.SigHashAnyOneCanPay == 0 {
		hp := calcHashPrevOuts(tx)
		sigHash.Write(hp[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	if hashType&params.SigHashAnyOneCanPay == 0 &&
		hashType&params.SigHashMask != params.SigHashSingle &&
		hashType&params.SigHashMask != params.SigHashNone {
		hs := calcHashSequence(tx)
		sigHash.Write(hs[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	txIn := tx.TxIn[idx]
	sigHash.Write(txIn.PreviousOutPoint.Hash[:])
	var bIndex [4]byte
	binary.LittleEndian.PutUint32(bIndex[:], txIn.PreviousOutPoint.Index)
	sigHash.Write(bIndex[:])

	rawScript, err := unparseScript(script)
	if err != nil {
		return nil, err
	}
	if err := wire.WriteVarBytes(&sigHash, rawScript); err != nil {
		return nil, err
	}

	var bAmount [8]byte
	binary.LittleEndian.PutUint64(bAmount[:], uint64(amount))
	sigHash.Write(bAmount[:])
	var bSequence [4]byte
	binary.LittleEndian.PutUint32(bSequence[:], txIn.Sequence)
	sigHash.Write(bSequence[:])

	if hashType&params.SigHashMask != params.SigHashSingle &&
		hashType&params.SigHashMask != params.SigHashNone {
		ho := calcHashOutputs(tx)
		sigHash.Write(ho[:])
	} else if hashType&params.SigHashMask == params.SigHashSingle && idx < len(tx.TxOut) {
		var b bytes.Buffer
		wire.WriteTxOut(&b, tx.TxOut[idx])
		sigHash.Write(chainhash.DoubleHashB(b.Bytes()))
	} else {
		sigHash.Write(zeroHash[:])
	}

	var bLockTime [4]byte
	binary.LittleEndian.PutUint32(bLockTime[:], tx.LockTime)
	sigHash.Write(bLockTime[:])
	var bHashType [4]byte
	binary.LittleEndian.PutUint32(bHashType[:], uint32(hashType))
	sigHash.Write(bHashType[:])

	return chainhash.DoubleHashB(sigHash.Bytes()), nil
}

// calcSignatureHash dispatches between the legacy and FORKID digest
// constructions based on the hash type byte and whether the engine's flags
// have FORKID support active at all. Any OP_CODESEPARATOR left in script is
// removed here; the caller removes the signature's own push.
func (vm *Engine) calcSignatureHash(script []parsescript.ParsedOpcode, hashType params.SigHashType, idx int) ([]byte, er.R) {
	script = removeOpcode(script, opcode.OP_CODESEPARATOR)
	if vm.hasFlag(params.ScriptEnableSigHashForkID) && hashType&params.SigHashForkID != 0 {
		return calcForkIDSignatureHash(script, hashType, &vm.tx, idx, vm.inputAmount)
	}
	return calcLegacySignatureHash(script, hashType, &vm.tx, idx)
}
