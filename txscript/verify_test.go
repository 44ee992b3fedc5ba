// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/btcsuite/btcd/btcec"

	"github.com/pkt-cash/txvm/btcutil"
	"github.com/pkt-cash/txvm/chainhash"
	"github.com/pkt-cash/txvm/pktlog/log"
	"github.com/pkt-cash/txvm/txscript/opcode"
	"github.com/pkt-cash/txvm/txscript/params"
	"github.com/pkt-cash/txvm/txscript/parsescript"
	"github.com/pkt-cash/txvm/txscript/txscripterr"
	"github.com/pkt-cash/txvm/wire"
)

// dataPush returns the opcode sequence for pushing data using the smallest
// direct-push encoding, which is all these tests ever need (every payload
// here is well under 76 bytes).
func dataPush(data []byte) []byte {
	if len(data) > 75 {
		panic("dataPush: payload too large for a direct push")
	}
	out := make([]byte, 0, len(data)+1)
	out = append(out, byte(len(data)))
	out = append(out, data...)
	return out
}

func newSpendingTx(prevHash chainhash.Hash, prevIndex uint32, sigScript []byte, locktime uint32, sequence uint32) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.LockTime = locktime
	tx.TxIn = []*wire.TxIn{{
		PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: prevIndex},
		SignatureScript:  sigScript,
		Sequence:         sequence,
	}}
	tx.TxOut = []*wire.TxOut{{
		Value:    1000,
		PkScript: []byte{opcode.OP_TRUE},
	}}
	return tx
}

// scenario 1 & 2: P2PKH spend, correct key and a substituted wrong key.
func TestSeedScenario1And2_P2PKH(t *testing.T) {
	privKey, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	pubKeyBytes := privKey.PubKey().SerializeCompressed()
	h160 := btcutil.Hash160(pubKeyBytes)

	scriptPubKey := append([]byte{opcode.OP_DUP, opcode.OP_HASH160}, dataPush(h160)...)
	scriptPubKey = append(scriptPubKey, opcode.OP_EQUALVERIFY, opcode.OP_CHECKSIG)

	tx := newSpendingTx(chainhash.Hash{}, 0, nil, 0, 0)
	flags := params.ScriptBip16 | params.ScriptVerifyStrictEncoding | params.ScriptVerifyDERSignatures

	hash, err := calcLegacySignatureHash(mustParse(t, scriptPubKey), params.SigHashAll, tx, 0)
	if err != nil {
		t.Fatalf("calcLegacySignatureHash: %v", err)
	}
	sig, err := privKey.Sign(hash)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	sigBytes := append(sig.Serialize(), byte(params.SigHashAll))

	scriptSig := append(dataPush(sigBytes), dataPush(pubKeyBytes)...)
	tx.TxIn[0].SignatureScript = scriptSig

	if err := VerifySignature(scriptSig, scriptPubKey, tx, 0, flags, 1000); err != nil {
		log.Debugf("scenario 1 (valid P2PKH spend) failed: %v", err)
		t.Fatalf("scenario 1: expected success, got %v", err)
	}
	log.Debugf("scenario 1 (valid P2PKH spend): ok")

	// Scenario 2: substitute an unrelated pubkey for the one in scriptSig.
	otherKey, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	wrongScriptSig := append(dataPush(sigBytes), dataPush(otherKey.PubKey().SerializeCompressed())...)
	txWrong := newSpendingTx(chainhash.Hash{}, 0, wrongScriptSig, 0, 0)
	err = VerifySignature(wrongScriptSig, scriptPubKey, txWrong, 0, flags, 1000)
	if err == nil {
		t.Fatal("scenario 2: expected failure with mismatched pubkey")
	}
	if !txscripterr.ErrEqualVerify.Is(err) {
		t.Errorf("scenario 2: expected ErrEqualVerify (HASH160 mismatch caught by OP_EQUALVERIFY), got %v", err)
	}
	log.Debugf("scenario 2 (flipped pubkey): correctly rejected with %v", err)
}

// scenario 3: OP_RETURN aborts immediately.
func TestSeedScenario3_OpReturn(t *testing.T) {
	scriptPubKey := []byte{opcode.OP_RETURN}
	tx := newSpendingTx(chainhash.Hash{}, 0, nil, 0, 0)
	err := VerifySignature(nil, scriptPubKey, tx, 0, 0, 0)
	if err == nil {
		t.Fatal("expected SCRIPT_ERR_OP_RETURN")
	}
	if !txscripterr.ErrEarlyReturn.Is(err) {
		t.Errorf("expected ErrEarlyReturn, got %v", err)
	}
	log.Debugf("scenario 3 (OP_RETURN): correctly rejected with %v", err)
}

// scenario 4: unbalanced conditional.
func TestSeedScenario4_UnbalancedConditional(t *testing.T) {
	scriptPubKey := []byte{opcode.OP_IF}
	scriptSig := []byte{opcode.OP_1}
	tx := newSpendingTx(chainhash.Hash{}, 0, scriptSig, 0, 0)
	err := VerifySignature(scriptSig, scriptPubKey, tx, 0, 0, 0)
	if err == nil {
		t.Fatal("expected SCRIPT_ERR_UNBALANCED_CONDITIONAL")
	}
	if !txscripterr.ErrUnbalancedConditional.Is(err) {
		t.Errorf("expected ErrUnbalancedConditional, got %v", err)
	}
	log.Debugf("scenario 4 (unbalanced conditional): correctly rejected with %v", err)
}

// scenario 5: disabled opcode reached only inside a dead branch still fails.
func TestSeedScenario5_DisabledOpcodeInDeadBranch(t *testing.T) {
	scriptPubKey := []byte{opcode.OP_0, opcode.OP_IF, opcode.OP_MUL, opcode.OP_ENDIF}
	tx := newSpendingTx(chainhash.Hash{}, 0, nil, 0, 0)
	err := VerifySignature(nil, scriptPubKey, tx, 0, 0, 0)
	if err == nil {
		t.Fatal("expected SCRIPT_ERR_DISABLED_OPCODE")
	}
	if !txscripterr.ErrDisabledOpcode.Is(err) {
		t.Errorf("expected ErrDisabledOpcode, got %v", err)
	}
	log.Debugf("scenario 5 (disabled opcode in dead branch): correctly rejected with %v", err)
}

// scenario 6: P2SH happy path with a trivial OP_1 redeem script.
func TestSeedScenario6_P2SHHappyPath(t *testing.T) {
	redeemScript := []byte{opcode.OP_1}
	h160 := btcutil.Hash160(redeemScript)

	scriptPubKey := append([]byte{opcode.OP_HASH160}, dataPush(h160)...)
	scriptPubKey = append(scriptPubKey, opcode.OP_EQUAL)

	scriptSig := dataPush(redeemScript)

	tx := newSpendingTx(chainhash.Hash{}, 0, scriptSig, 0, 0)
	flags := params.ScriptBip16

	if err := VerifySignature(scriptSig, scriptPubKey, tx, 0, flags, 0); err != nil {
		t.Fatalf("scenario 6: expected success, got %v", err)
	}
	log.Debugf("scenario 6 (P2SH happy path): ok")
}

// scenario 6b: P2SH with a redeem script that does not hash to the
// committed value must fail, even though the supplied redeem script itself
// would evaluate to true on its own.
func TestSeedScenario6b_P2SHWrongRedeemScript(t *testing.T) {
	redeemScript := []byte{opcode.OP_1}
	h160 := btcutil.Hash160(redeemScript)

	scriptPubKey := append([]byte{opcode.OP_HASH160}, dataPush(h160)...)
	scriptPubKey = append(scriptPubKey, opcode.OP_EQUAL)

	wrongRedeemScript := []byte{opcode.OP_1, opcode.OP_1, opcode.OP_ADD}
	scriptSig := dataPush(wrongRedeemScript)

	tx := newSpendingTx(chainhash.Hash{}, 0, scriptSig, 0, 0)
	flags := params.ScriptBip16

	err := VerifySignature(scriptSig, scriptPubKey, tx, 0, flags, 0)
	if err == nil {
		t.Fatal("scenario 6b: expected failure, redeem script hash does not match committed hash")
	}
	if !txscripterr.ErrEvalFalse.Is(err) {
		t.Errorf("scenario 6b: expected ErrEvalFalse, got %v", err)
	}
	log.Debugf("scenario 6b (P2SH wrong redeem script): correctly rejected with %v", err)
}

// scenario 7: CLTV unsatisfied.
func TestSeedScenario7_CLTVUnsatisfied(t *testing.T) {
	scriptPubKey := append(dataPush([]byte{0xf4, 0x01}), opcode.OP_CHECKLOCKTIMEVERIFY, opcode.OP_DROP)
	tx := newSpendingTx(chainhash.Hash{}, 0, nil, 100, 0)
	flags := params.ScriptVerifyCheckLockTimeVerify

	err := VerifySignature(nil, scriptPubKey, tx, 0, flags, 0)
	if err == nil {
		t.Fatal("expected SCRIPT_ERR_UNSATISFIED_LOCKTIME")
	}
	if !txscripterr.ErrUnsatisfiedLockTime.Is(err) {
		t.Errorf("expected ErrUnsatisfiedLockTime, got %v", err)
	}
	log.Debugf("scenario 7 (CLTV unsatisfied): correctly rejected with %v", err)
}

func mustParse(t *testing.T, script []byte) []parsescript.ParsedOpcode {
	t.Helper()
	pops, err := checkScriptParses(script)
	if err != nil {
		t.Fatalf("parsing script: %v", err)
	}
	return pops
}
