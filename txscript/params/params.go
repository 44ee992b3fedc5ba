// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package params holds the resource limits and feature-flag bitmask shared
// by the parser and the interpreter. Nothing here depends on the rest of
// txscript, so both sides can import it without a cycle.
package params

const (
	// LockTimeThreshold is the number below which a lock time is
	// interpreted to be a block number, and above which it is a unix
	// timestamp. Since an average of one block is generated per 10
	// minutes, this allows blocks for about 9,512 years.
	// consensus critical
	LockTimeThreshold = 5e8 // Tue Nov 5 00:53:20 1985 UTC
)

// These are the constants specified for maximums and limits in script
// evaluation. They are consensus critical.
const (
	// MaxStackSize is the maximum combined height of stack and alt stack
	// during execution.
	MaxStackSize = 1000

	// MaxScriptSize is the maximum allowed length of a raw script.
	MaxScriptSize = 10000

	// MaxOpsPerScript is the max number of non-push operations.
	MaxOpsPerScript = 201

	// MaxPubKeysPerMultiSig is the most pubkeys OP_CHECKMULTISIG can
	// accept.
	MaxPubKeysPerMultiSig = 20

	// MaxScriptElementSize is the max bytes pushable to the stack.
	MaxScriptElementSize = 520

	// MaxCLTVScriptNumLen is the maximum encoded length of the operand
	// consumed by OP_CHECKLOCKTIMEVERIFY. Every other numeric opcode is
	// limited to DefaultScriptNumLen.
	MaxCLTVScriptNumLen = 5

	// DefaultScriptNumLen is the maximum encoded length accepted by every
	// numeric opcode other than OP_CHECKLOCKTIMEVERIFY.
	DefaultScriptNumLen = 4
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// SigHashForkID marks a digest built under the replay-protected
	// preimage (preimage v2) rather than the legacy preimage. It is only
	// meaningful when the ScriptEnableSigHashForkID flag is active.
	SigHashForkID SigHashType = 0x40

	// SigHashMask defines the number of bits of the hash type which is
	// used to identify which outputs are signed.
	SigHashMask = 0x1f
)

// ScriptFlags is a bitmask defining additional operations or tests that
// will be done when executing a script pair.
type ScriptFlags uint32

const (
	// ScriptBip16 defines whether the P2SH evaluation rules are active:
	// the second-phase re-evaluation of the redeem script and the
	// push-only restriction on the signature script that feeds it.
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptVerifyStrictEncoding defines that signatures and public keys
	// must follow the strict DER/compressed-or-uncompressed encoding
	// requirements.
	ScriptVerifyStrictEncoding

	// ScriptVerifyDERSignatures defines that signatures are required to
	// comply with the DER format.
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS defines that signatures are required to comply
	// with the DER format and have an S value which is <= order / 2.
	// This is rule 5 of BIP0062.
	ScriptVerifyLowS

	// ScriptVerifyMinimalData defines that pushes must use the smallest
	// possible push opcode and that numeric operands must be minimally
	// encoded. This is rules 3 and 4 of BIP0062.
	ScriptVerifyMinimalData

	// ScriptBip62NullDummy defines that the leading dummy stack item
	// consumed by OP_CHECKMULTISIG must be the empty byte array.
	ScriptBip62NullDummy

	// ScriptDiscourageUpgradableNops defines whether to treat execution
	// of the unallocated NOP opcodes (OP_NOP1, OP_NOP3..OP_NOP10) as an
	// error. This flag is only meant for stricter-than-consensus relay
	// policy, never for block validation.
	ScriptDiscourageUpgradableNops

	// ScriptVerifyCheckLockTimeVerify defines whether OP_CHECKLOCKTIMEVERIFY
	// is active; when it is not set the opcode behaves exactly like an
	// unallocated NOP. This is BIP0065.
	ScriptVerifyCheckLockTimeVerify

	// ScriptEnableMonolithOpcodes re-enables the opcodes OP_CAT,
	// OP_SPLIT, OP_AND, OP_OR, OP_XOR, OP_DIV, OP_MOD, OP_NUM2BIN and
	// OP_BIN2NUM, which are otherwise disabled opcodes.
	ScriptEnableMonolithOpcodes

	// ScriptEnableSigHashForkID makes OP_CHECKSIG and OP_CHECKMULTISIG
	// honor the FORKID bit of the sighash type byte, building the
	// replay-protected preimage instead of the legacy one when it is
	// set.
	ScriptEnableSigHashForkID
)
