// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/pkt-cash/txvm/er"
	"github.com/pkt-cash/txvm/txscript/params"
	"github.com/pkt-cash/txvm/txscript/txscripterr"
	"github.com/pkt-cash/txvm/wire"
)

// cloneTx takes a defensive copy of tx by round-tripping it through the wire
// encoding, so that signature hashing can never observe a mutation the
// caller makes to its own copy mid-evaluation.
func cloneTx(tx *wire.MsgTx) (*wire.MsgTx, er.R) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}
	clone := &wire.MsgTx{}
	if err := clone.Deserialize(&buf); err != nil {
		return nil, err
	}
	return clone, nil
}

// VerifySignature decides whether a transaction input correctly authorizes
// spending the referenced output: it runs the unlocking script (scriptSig)
// followed by the locking script (scriptPubKey) against a shared stack,
// performing the pay-to-script-hash re-evaluation when the scripts call for
// it and the P2SH flag is set. inputIndex identifies which input of tx is
// being validated and inputAmount is the value, in satoshis, committed to
// the spent output -- required to build the FORKID signature digest.
//
// A nil return means the input is valid. Script failures are reported with
// the script-error codes in package txscripterr, with two exceptions: a
// numeric operand that is too long or not minimally encoded is reported
// with scriptnum's ErrNumTooBig or ErrMinimalData, and a failure of the
// defensive copy of tx is returned as the wire package's error.
func VerifySignature(scriptSig []byte, scriptPubKey []byte, tx *wire.MsgTx, inputIndex int, flags params.ScriptFlags, inputAmount int64) er.R {
	if len(scriptSig) > params.MaxScriptSize || len(scriptPubKey) > params.MaxScriptSize {
		return txscripterr.ScriptError(txscripterr.ErrScriptTooBig, "script is too big")
	}

	txClone, err := cloneTx(tx)
	if err != nil {
		return err
	}

	vm, err := NewEngine(scriptPubKey, txClone, inputIndex, flags, scriptSig, inputAmount)
	if err != nil {
		return err
	}
	return vm.Execute()
}
