// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec"

	"github.com/pkt-cash/txvm/btcutil"
	"github.com/pkt-cash/txvm/chainhash"
	"github.com/pkt-cash/txvm/er"
	"github.com/pkt-cash/txvm/txscript/opcode"
	"github.com/pkt-cash/txvm/txscript/params"
	"github.com/pkt-cash/txvm/txscript/parsescript"
	"github.com/pkt-cash/txvm/txscript/scriptnum"
	"github.com/pkt-cash/txvm/txscript/txscripterr"
	"github.com/pkt-cash/txvm/wire"
)

// Conditional execution constants.
const (
	OpCondFalse = 0
	OpCondTrue  = 1
	OpCondSkip  = 2
)

// isMonolithOpcode returns whether the opcode is one of the nine opcodes
// that are disabled unless ScriptEnableMonolithOpcodes is set.
func isMonolithOpcode(value byte) bool {
	switch value {
	case opcode.OP_CAT, opcode.OP_SPLIT, opcode.OP_AND, opcode.OP_OR,
		opcode.OP_XOR, opcode.OP_DIV, opcode.OP_MOD, opcode.OP_NUM2BIN,
		opcode.OP_BIN2NUM:
		return true
	default:
		return false
	}
}

// isOpcodeDisabled returns whether or not the opcode is always illegal to
// execute, even when it appears in a branch that is not executing. The
// monolith opcodes are handled separately since they are only conditionally
// disabled, depending on ScriptEnableMonolithOpcodes.
func isOpcodeDisabled(value byte) bool {
	switch value {
	case opcode.OP_INVERT, opcode.OP_2MUL, opcode.OP_2DIV, opcode.OP_MUL,
		opcode.OP_LSHIFT, opcode.OP_RSHIFT:
		return true
	default:
		return false
	}
}

func executeOp(po *parsescript.ParsedOpcode, e *Engine) er.R {
	value := po.Opcode.Value

	if isMonolithOpcode(value) && !e.hasFlag(params.ScriptEnableMonolithOpcodes) {
		str := fmt.Sprintf("attempt to execute disabled opcode %s",
			opcode.OpcodeName(value))
		return txscripterr.ScriptError(txscripterr.ErrDisabledOpcode, str)
	}

	if value >= opcode.OP_DATA_1 && value <= opcode.OP_PUSHDATA4 {
		return opcodePushData(po, e)
	}

	switch value {
	case opcode.OP_0:
		return opcodeFalse(po, e)
	case opcode.OP_1NEGATE:
		return opcode1Negate(po, e)
	case opcode.OP_1, opcode.OP_2, opcode.OP_3, opcode.OP_4, opcode.OP_5,
		opcode.OP_6, opcode.OP_7, opcode.OP_8, opcode.OP_9, opcode.OP_10,
		opcode.OP_11, opcode.OP_12, opcode.OP_13, opcode.OP_14, opcode.OP_15,
		opcode.OP_16:
		return opcodeN(po, e)

	case opcode.OP_NOP:
		return opcodeNop(po, e)
	case opcode.OP_VER:
		return opcodeReserved(po, e)
	case opcode.OP_IF:
		return opcodeIf(po, e)
	case opcode.OP_NOTIF:
		return opcodeNotIf(po, e)
	case opcode.OP_VERIF:
		return opcodeReserved(po, e)
	case opcode.OP_VERNOTIF:
		return opcodeReserved(po, e)
	case opcode.OP_ELSE:
		return opcodeElse(po, e)
	case opcode.OP_ENDIF:
		return opcodeEndif(po, e)
	case opcode.OP_VERIFY:
		return opcodeVerify(po, e)
	case opcode.OP_RETURN:
		return opcodeReturn(po, e)

	case opcode.OP_TOALTSTACK:
		return opcodeToAltStack(po, e)
	case opcode.OP_FROMALTSTACK:
		return opcodeFromAltStack(po, e)
	case opcode.OP_2DROP:
		return opcode2Drop(po, e)
	case opcode.OP_2DUP:
		return opcode2Dup(po, e)
	case opcode.OP_3DUP:
		return opcode3Dup(po, e)
	case opcode.OP_2OVER:
		return opcode2Over(po, e)
	case opcode.OP_2ROT:
		return opcode2Rot(po, e)
	case opcode.OP_2SWAP:
		return opcode2Swap(po, e)
	case opcode.OP_IFDUP:
		return opcodeIfDup(po, e)
	case opcode.OP_DEPTH:
		return opcodeDepth(po, e)
	case opcode.OP_DROP:
		return opcodeDrop(po, e)
	case opcode.OP_DUP:
		return opcodeDup(po, e)
	case opcode.OP_NIP:
		return opcodeNip(po, e)
	case opcode.OP_OVER:
		return opcodeOver(po, e)
	case opcode.OP_PICK:
		return opcodePick(po, e)
	case opcode.OP_ROLL:
		return opcodeRoll(po, e)
	case opcode.OP_ROT:
		return opcodeRot(po, e)
	case opcode.OP_SWAP:
		return opcodeSwap(po, e)
	case opcode.OP_TUCK:
		return opcodeTuck(po, e)

	case opcode.OP_CAT:
		return opcodeCat(po, e)
	case opcode.OP_SPLIT:
		return opcodeSplit(po, e)
	case opcode.OP_NUM2BIN:
		return opcodeNum2Bin(po, e)
	case opcode.OP_BIN2NUM:
		return opcodeBin2Num(po, e)
	case opcode.OP_SIZE:
		return opcodeSize(po, e)

	case opcode.OP_INVERT, opcode.OP_2MUL, opcode.OP_2DIV, opcode.OP_MUL,
		opcode.OP_LSHIFT, opcode.OP_RSHIFT:
		return opcodeDisabled(po, e)

	case opcode.OP_AND:
		return opcodeAnd(po, e)
	case opcode.OP_OR:
		return opcodeOr(po, e)
	case opcode.OP_XOR:
		return opcodeXor(po, e)
	case opcode.OP_EQUAL:
		return opcodeEqual(po, e)
	case opcode.OP_EQUALVERIFY:
		return opcodeEqualVerify(po, e)
	case opcode.OP_RESERVED1:
		return opcodeReserved(po, e)
	case opcode.OP_RESERVED2:
		return opcodeReserved(po, e)

	case opcode.OP_1ADD:
		return opcode1Add(po, e)
	case opcode.OP_1SUB:
		return opcode1Sub(po, e)
	case opcode.OP_NEGATE:
		return opcodeNegate(po, e)
	case opcode.OP_ABS:
		return opcodeAbs(po, e)
	case opcode.OP_NOT:
		return opcodeNot(po, e)
	case opcode.OP_0NOTEQUAL:
		return opcode0NotEqual(po, e)
	case opcode.OP_ADD:
		return opcodeAdd(po, e)
	case opcode.OP_SUB:
		return opcodeSub(po, e)
	case opcode.OP_DIV:
		return opcodeDiv(po, e)
	case opcode.OP_MOD:
		return opcodeMod(po, e)
	case opcode.OP_BOOLAND:
		return opcodeBoolAnd(po, e)
	case opcode.OP_BOOLOR:
		return opcodeBoolOr(po, e)
	case opcode.OP_NUMEQUAL:
		return opcodeNumEqual(po, e)
	case opcode.OP_NUMEQUALVERIFY:
		return opcodeNumEqualVerify(po, e)
	case opcode.OP_NUMNOTEQUAL:
		return opcodeNumNotEqual(po, e)
	case opcode.OP_LESSTHAN:
		return opcodeLessThan(po, e)
	case opcode.OP_GREATERTHAN:
		return opcodeGreaterThan(po, e)
	case opcode.OP_LESSTHANOREQUAL:
		return opcodeLessThanOrEqual(po, e)
	case opcode.OP_GREATERTHANOREQUAL:
		return opcodeGreaterThanOrEqual(po, e)
	case opcode.OP_MIN:
		return opcodeMin(po, e)
	case opcode.OP_MAX:
		return opcodeMax(po, e)
	case opcode.OP_WITHIN:
		return opcodeWithin(po, e)

	case opcode.OP_RIPEMD160:
		return opcodeRipemd160(po, e)
	case opcode.OP_SHA1:
		return opcodeSha1(po, e)
	case opcode.OP_SHA256:
		return opcodeSha256(po, e)
	case opcode.OP_HASH160:
		return opcodeHash160(po, e)
	case opcode.OP_HASH256:
		return opcodeHash256(po, e)
	case opcode.OP_CODESEPARATOR:
		return opcodeCodeSeparator(po, e)
	case opcode.OP_CHECKSIG:
		return opcodeCheckSig(po, e)
	case opcode.OP_CHECKSIGVERIFY:
		return opcodeCheckSigVerify(po, e)
	case opcode.OP_CHECKMULTISIG:
		return opcodeCheckMultiSig(po, e)
	case opcode.OP_CHECKMULTISIGVERIFY:
		return opcodeCheckMultiSigVerify(po, e)

	case opcode.OP_NOP1:
		return opcodeNop(po, e)
	case opcode.OP_CHECKLOCKTIMEVERIFY:
		return opcodeCheckLockTimeVerify(po, e)
	case opcode.OP_NOP3, opcode.OP_NOP4, opcode.OP_NOP5, opcode.OP_NOP6,
		opcode.OP_NOP7, opcode.OP_NOP8, opcode.OP_NOP9, opcode.OP_NOP10:
		return opcodeNop(po, e)

	case opcode.OP_RESERVED:
		return opcodeReserved(po, e)
	}

	return opcodeInvalid(po, e)
}

// opcodeDisabled is a common handler for permanently disabled opcodes.
func opcodeDisabled(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	str := fmt.Sprintf("attempt to execute disabled opcode %s",
		opcode.OpcodeName(op.Opcode.Value))
	return txscripterr.ScriptError(txscripterr.ErrDisabledOpcode, str)
}

// opcodeReserved is a common handler for all reserved opcodes.
func opcodeReserved(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	str := fmt.Sprintf("attempt to execute reserved opcode %s",
		opcode.OpcodeName(op.Opcode.Value))
	return txscripterr.ScriptError(txscripterr.ErrReservedOpcode, str)
}

// opcodeInvalid is a common handler for all invalid opcodes.
func opcodeInvalid(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	str := fmt.Sprintf("attempt to execute invalid opcode %s",
		opcode.OpcodeName(op.Opcode.Value))
	return txscripterr.ScriptError(txscripterr.ErrBadOpcode, str)
}

// opcodeFalse pushes an empty array to the data stack to represent false.
func opcodeFalse(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	vm.dstack.PushByteArray(nil)
	return nil
}

// opcodePushData is a common handler for opcodes that push raw data to the
// data stack.
func opcodePushData(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	vm.dstack.PushByteArray(op.Data)
	return nil
}

// opcode1Negate pushes -1, encoded as a number, to the data stack.
func opcode1Negate(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	vm.dstack.PushInt(scriptnum.ScriptNum(-1))
	return nil
}

// opcodeN is a common handler for the small integer data push opcodes.
func opcodeN(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	vm.dstack.PushInt(scriptnum.ScriptNum(op.Opcode.Value - (opcode.OP_1 - 1)))
	return nil
}

// opcodeNop is a common handler for the NOP family of opcodes.
func opcodeNop(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	switch op.Opcode.Value {
	case opcode.OP_NOP1, opcode.OP_NOP3, opcode.OP_NOP4, opcode.OP_NOP5,
		opcode.OP_NOP6, opcode.OP_NOP7, opcode.OP_NOP8, opcode.OP_NOP9,
		opcode.OP_NOP10:
		if vm.hasFlag(params.ScriptDiscourageUpgradableNops) {
			str := fmt.Sprintf("%s reserved for soft-fork upgrades",
				opcode.OpcodeName(op.Opcode.Value))
			return txscripterr.ScriptError(txscripterr.ErrDiscourageUpgradableNOPs, str)
		}
	}
	return nil
}

// opcodeIf treats the top item on the data stack as a boolean and removes it.
//
// <expression> if [statements] [else [statements]] endif
//
// Unlike non-conditional opcodes, this executes even on a non-executing
// branch, to keep the conditional stack properly nested.
//
// Data stack transformation: [... bool] -> [...]
// Conditional stack transformation: [...] -> [... OpCondValue]
func opcodeIf(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	condVal := OpCondFalse
	if vm.isBranchExecuting() {
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if ok {
			condVal = OpCondTrue
		}
	} else {
		condVal = OpCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeNotIf is opcodeIf's inverse.
//
// Data stack transformation: [... bool] -> [...]
// Conditional stack transformation: [...] -> [... OpCondValue]
func opcodeNotIf(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	condVal := OpCondFalse
	if vm.isBranchExecuting() {
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			condVal = OpCondTrue
		}
	} else {
		condVal = OpCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// opcodeElse inverts conditional execution for the other half of
// if/else/endif.
//
// Conditional stack transformation: [... OpCondValue] -> [... !OpCondValue]
func opcodeElse(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", opcode.OpcodeName(op.Opcode.Value))
		return txscripterr.ScriptError(txscripterr.ErrUnbalancedConditional, str)
	}

	conditionalIdx := len(vm.condStack) - 1
	switch vm.condStack[conditionalIdx] {
	case OpCondTrue:
		vm.condStack[conditionalIdx] = OpCondFalse
	case OpCondFalse:
		vm.condStack[conditionalIdx] = OpCondTrue
	case OpCondSkip:
		// Value doesn't change in skip since it indicates this opcode
		// is nested in a non-executed branch.
	}
	return nil
}

// opcodeEndif terminates a conditional block, removing the value from the
// conditional execution stack.
//
// Conditional stack transformation: [... OpCondValue] -> [...]
func opcodeEndif(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	if len(vm.condStack) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", opcode.OpcodeName(op.Opcode.Value))
		return txscripterr.ScriptError(txscripterr.ErrUnbalancedConditional, str)
	}

	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

// abstractVerify examines the top item on the data stack as a boolean value
// and verifies it evaluates to true, using c as the error code on failure.
func abstractVerify(op *parsescript.ParsedOpcode, vm *Engine, c *er.ErrorCode) er.R {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}

	if !verified {
		str := fmt.Sprintf("%s failed", opcode.OpcodeName(op.Opcode.Value))
		return txscripterr.ScriptError(c, str)
	}
	return nil
}

// opcodeVerify examines the top item on the data stack as a boolean value
// and verifies it evaluates to true.
func opcodeVerify(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return abstractVerify(op, vm, txscripterr.ErrVerify)
}

// opcodeReturn returns an appropriate error since it is always an error to
// return early from a script.
func opcodeReturn(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return txscripterr.ScriptError(txscripterr.ErrEarlyReturn, "script returned early")
}

// verifyLockTime is a helper function used to validate locktimes.
func verifyLockTime(txLockTime, threshold, lockTime int64) er.R {
	if !((txLockTime < threshold && lockTime < threshold) ||
		(txLockTime >= threshold && lockTime >= threshold)) {
		str := fmt.Sprintf("mismatched locktime types -- tx locktime "+
			"%d, stack locktime %d", txLockTime, lockTime)
		return txscripterr.ScriptError(txscripterr.ErrUnsatisfiedLockTime, str)
	}

	if lockTime > txLockTime {
		str := fmt.Sprintf("locktime requirement not satisfied -- "+
			"locktime is greater than the transaction locktime: "+
			"%d > %d", lockTime, txLockTime)
		return txscripterr.ScriptError(txscripterr.ErrUnsatisfiedLockTime, str)
	}

	return nil
}

// opcodeCheckLockTimeVerify compares the top item on the data stack to the
// LockTime field of the transaction containing the script signature,
// validating whether the transaction outputs are spendable yet. If
// ScriptVerifyCheckLockTimeVerify is not set, the opcode behaves as a NOP.
func opcodeCheckLockTimeVerify(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	if !vm.hasFlag(params.ScriptVerifyCheckLockTimeVerify) {
		if vm.hasFlag(params.ScriptDiscourageUpgradableNops) {
			return txscripterr.ScriptError(txscripterr.ErrDiscourageUpgradableNOPs,
				"OP_NOP2 reserved for soft-fork upgrades")
		}
		return nil
	}

	// A 5-byte scriptNum is used here instead of the default 4 since the
	// transaction locktime is an unsigned 32-bit value and a signed 4-byte
	// scriptNum would clamp it to the year 2038.
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	lockTime, err := scriptnum.MakeScriptNum(so, vm.dstack.verifyMinimalData, params.MaxCLTVScriptNumLen)
	if err != nil {
		return err
	}

	if lockTime < 0 {
		str := fmt.Sprintf("negative lock time: %d", lockTime)
		return txscripterr.ScriptError(txscripterr.ErrNegativeLockTime, str)
	}

	if err := verifyLockTime(int64(vm.tx.LockTime), params.LockTimeThreshold,
		int64(lockTime)); err != nil {
		return err
	}

	// The lock time feature can be bypassed by finalizing every input's
	// sequence number; reject that here for the input actually being
	// validated so OP_CHECKLOCKTIMEVERIFY cannot be rendered moot.
	if vm.tx.TxIn[vm.txIdx].Sequence == wire.MaxTxInSequenceNum {
		return txscripterr.ScriptError(txscripterr.ErrUnsatisfiedLockTime,
			"transaction input is finalized")
	}

	return nil
}

// opcodeToAltStack removes the top item from the main data stack and pushes
// it onto the alternate data stack.
//
// Main data stack transformation: [... x1 x2 x3] -> [... x1 x2]
// Alt data stack transformation:  [... y1 y2 y3] -> [... y1 y2 y3 x3]
func opcodeToAltStack(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)
	return nil
}

// opcodeFromAltStack removes the top item from the alternate data stack and
// pushes it onto the main data stack.
//
// Main data stack transformation: [... x1 x2 x3] -> [... x1 x2 x3 y3]
// Alt data stack transformation:  [... y1 y2 y3] -> [... y1 y2]
func opcodeFromAltStack(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	if vm.astack.Depth() == 0 {
		return txscripterr.ScriptError(txscripterr.ErrInvalidAltStackOperation,
			"attempt to pop from an empty alt stack")
	}
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(so)
	return nil
}

// opcode2Drop removes the top 2 items from the data stack.
func opcode2Drop(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.DropN(2)
}

// opcode2Dup duplicates the top 2 items on the data stack.
func opcode2Dup(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.DupN(2)
}

// opcode3Dup duplicates the top 3 items on the data stack.
func opcode3Dup(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.DupN(3)
}

// opcode2Over duplicates the 2 items before the top 2 items on the data
// stack.
func opcode2Over(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.OverN(2)
}

// opcode2Rot rotates the top 6 items on the data stack to the left twice.
func opcode2Rot(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.RotN(2)
}

// opcode2Swap swaps the top 2 items on the data stack with the 2 that come
// before them.
func opcode2Swap(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.SwapN(2)
}

// opcodeIfDup duplicates the top item of the stack if it is not zero.
func opcodeIfDup(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}
	return nil
}

// opcodeDepth pushes the depth of the data stack, prior to executing this
// opcode, encoded as a number, onto the data stack.
func opcodeDepth(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	vm.dstack.PushInt(scriptnum.ScriptNum(vm.dstack.Depth()))
	return nil
}

// opcodeDrop removes the top item from the data stack.
func opcodeDrop(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.DropN(1)
}

// opcodeDup duplicates the top item on the data stack.
func opcodeDup(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.DupN(1)
}

// opcodeNip removes the item before the top item on the data stack.
func opcodeNip(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.NipN(1)
}

// opcodeOver duplicates the item before the top item on the data stack.
func opcodeOver(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.OverN(1)
}

// opcodePick treats the top item on the data stack as an integer and
// duplicates the item that number of items back to the top.
func opcodePick(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	return vm.dstack.PickN(val.Int32())
}

// opcodeRoll treats the top item on the data stack as an integer and moves
// the item that number of items back to the top.
func opcodeRoll(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	return vm.dstack.RollN(val.Int32())
}

// opcodeRot rotates the top 3 items on the data stack to the left.
func opcodeRot(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.RotN(1)
}

// opcodeSwap swaps the top two items on the stack.
func opcodeSwap(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.SwapN(1)
}

// opcodeTuck inserts a duplicate of the top item of the data stack before
// the second-to-top item.
func opcodeTuck(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return vm.dstack.Tuck()
}

// opcodeCat concatenates the top two items of the data stack and replaces
// them with the result. The monolith opcode set's only byte-string
// constructor; the combined length is still subject to the ordinary
// push-size limit once it lands back on the stack.
func opcodeCat(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(a)+len(b) > params.MaxScriptElementSize {
		str := fmt.Sprintf("concatenated size %d exceeds max allowed size %d",
			len(a)+len(b), params.MaxScriptElementSize)
		return txscripterr.ScriptError(txscripterr.ErrElementTooBig, str)
	}

	r := make([]byte, 0, len(a)+len(b))
	r = append(r, a...)
	r = append(r, b...)
	vm.dstack.PushByteArray(r)
	return nil
}

// opcodeSplit splits the second-to-top stack item at the index given by the
// top item, pushing both halves back in order. The split index must fall
// within [0, len] inclusive.
func opcodeSplit(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	data, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	pos := n.Int32()
	if pos < 0 || int(pos) > len(data) {
		str := fmt.Sprintf("split position %d out of range for %d byte value", pos, len(data))
		return txscripterr.ScriptError(txscripterr.ErrUnknownError, str)
	}

	front := make([]byte, pos)
	copy(front, data[:pos])
	back := make([]byte, len(data)-int(pos))
	copy(back, data[pos:])
	vm.dstack.PushByteArray(front)
	vm.dstack.PushByteArray(back)
	return nil
}

// opcodeNum2Bin re-encodes the second-to-top stack item, interpreted as a
// script number, into a fixed-width sign-magnitude byte string of the length
// given by the top item.
func opcodeNum2Bin(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	size, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	data, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	sz := int(size.Int32())
	if sz < 0 || sz > params.MaxScriptElementSize {
		str := fmt.Sprintf("invalid num2bin size %d", sz)
		return txscripterr.ScriptError(txscripterr.ErrElementTooBig, str)
	}

	n, err := scriptnum.MakeScriptNum(data, false, len(data))
	if err != nil {
		return err
	}

	raw := n.Bytes()
	if len(raw) > sz {
		return txscripterr.ScriptError(txscripterr.ErrNumberTooBig,
			"cannot resize number down to a smaller size")
	}
	if len(raw) == sz {
		vm.dstack.PushByteArray(raw)
		return nil
	}

	var sign byte
	if len(raw) > 0 {
		sign = raw[len(raw)-1] & 0x80
		raw[len(raw)-1] &^= 0x80
	}

	out := make([]byte, sz)
	copy(out, raw)
	if sign != 0 {
		out[sz-1] = sign
	}
	vm.dstack.PushByteArray(out)
	return nil
}

// opcodeBin2Num reduces the top stack item to its minimally encoded script
// number form, rejecting the result if it exceeds the default numeric
// operand length.
func opcodeBin2Num(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	data, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	n, err := scriptnum.MakeScriptNum(data, false, len(data)+1)
	if err != nil {
		return err
	}

	raw := n.Bytes()
	if len(raw) > params.DefaultScriptNumLen {
		return txscripterr.ScriptError(txscripterr.ErrNumberTooBig,
			"bin2num result exceeds the maximum numeric operand size")
	}
	vm.dstack.PushByteArray(raw)
	return nil
}

// opcodeSize pushes the size of the top item of the data stack onto the
// data stack.
func opcodeSize(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}

	vm.dstack.PushInt(scriptnum.ScriptNum(len(so)))
	return nil
}

// bitwiseOp applies f byte-by-byte across a and b, which must be of equal
// length, as required by the monolith bitwise opcodes.
func bitwiseOp(vm *Engine, f func(x, y byte) byte) er.R {
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if len(a) != len(b) {
		str := fmt.Sprintf("bitwise operands have different lengths: %d != %d", len(a), len(b))
		return txscripterr.ScriptError(txscripterr.ErrUnknownError, str)
	}

	r := make([]byte, len(a))
	for i := range a {
		r[i] = f(a[i], b[i])
	}
	vm.dstack.PushByteArray(r)
	return nil
}

// opcodeAnd performs a bitwise AND of the top two, equal length, stack
// items.
func opcodeAnd(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return bitwiseOp(vm, func(x, y byte) byte { return x & y })
}

// opcodeOr performs a bitwise OR of the top two, equal length, stack items.
func opcodeOr(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return bitwiseOp(vm, func(x, y byte) byte { return x | y })
}

// opcodeXor performs a bitwise XOR of the top two, equal length, stack
// items.
func opcodeXor(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	return bitwiseOp(vm, func(x, y byte) byte { return x ^ y })
}

// opcodeEqual removes the top 2 items of the data stack, compares them as
// raw bytes, and pushes the result, encoded as a boolean, back to the stack.
func opcodeEqual(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

// opcodeEqualVerify is a combination of opcodeEqual and opcodeVerify.
func opcodeEqualVerify(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	err := opcodeEqual(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, txscripterr.ErrEqualVerify)
	}
	return err
}

// opcode1Add treats the top item on the data stack as an integer and
// replaces it with its incremented value.
func opcode1Add(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(m + 1)
	return nil
}

// opcode1Sub treats the top item on the data stack as an integer and
// replaces it with its decremented value.
func opcode1Sub(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(m - 1)
	return nil
}

// opcodeNegate treats the top item on the data stack as an integer and
// replaces it with its negation.
func opcodeNegate(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(-m)
	return nil
}

// opcodeAbs treats the top item on the data stack as an integer and
// replaces it with its absolute value.
func opcodeAbs(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if m < 0 {
		m = -m
	}
	vm.dstack.PushInt(m)
	return nil
}

// opcodeNot treats the top item on the data stack as an integer and
// replaces it with its "inverted" value (0 becomes 1, non-zero becomes 0).
func opcodeNot(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if m == 0 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcode0NotEqual treats the top item on the data stack as an integer and
// replaces it with either a 0 if it is zero, or a 1 otherwise.
func opcode0NotEqual(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	m, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if m != 0 {
		m = 1
	}
	vm.dstack.PushInt(m)
	return nil
}

// opcodeAdd treats the top two items on the data stack as integers and
// replaces them with their sum.
func opcodeAdd(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(v0 + v1)
	return nil
}

// opcodeSub treats the top two items on the data stack as integers and
// replaces them with the result of subtracting the top entry from the
// second-to-top entry.
func opcodeSub(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(v1 - v0)
	return nil
}

// opcodeDiv treats the top two items on the data stack as integers and
// replaces them with the result of truncated-toward-zero integer division
// of the second-to-top entry by the top entry. Every script number operand
// fits well within the int64 backing ScriptNum, so Go's native division
// carries no precision loss; division by zero is rejected.
func opcodeDiv(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	divisor, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	dividend, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if divisor == 0 {
		return txscripterr.ScriptError(txscripterr.ErrUnknownError, "division by zero")
	}
	vm.dstack.PushInt(dividend / divisor)
	return nil
}

// opcodeMod treats the top two items on the data stack as integers and
// replaces them with the remainder of the second-to-top entry divided by the
// top entry. The sign of the result follows the dividend, matching Go's
// native remainder operator.
func opcodeMod(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	divisor, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	dividend, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if divisor == 0 {
		return txscripterr.ScriptError(txscripterr.ErrUnknownError, "modulo by zero")
	}
	vm.dstack.PushInt(dividend % divisor)
	return nil
}

// opcodeBoolAnd treats the top two items on the data stack as integers. When
// both are non-zero, they are replaced with a 1, otherwise a 0.
func opcodeBoolAnd(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v0 != 0 && v1 != 0 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeBoolOr treats the top two items on the data stack as integers. When
// either is non-zero, they are replaced with a 1, otherwise a 0.
func opcodeBoolOr(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v0 != 0 || v1 != 0 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeNumEqual treats the top two items on the data stack as integers.
// When they are equal, they are replaced with a 1, otherwise a 0.
func opcodeNumEqual(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v0 == v1 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeNumEqualVerify is a combination of opcodeNumEqual and opcodeVerify.
func opcodeNumEqualVerify(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	err := opcodeNumEqual(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, txscripterr.ErrNumEqualVerify)
	}
	return err
}

// opcodeNumNotEqual treats the top two items on the data stack as integers.
// When they are not equal, they are replaced with a 1, otherwise a 0.
func opcodeNumNotEqual(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v0 != v1 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeLessThan treats the top two items on the data stack as integers.
// When the second-to-top item is less than the top item, they are replaced
// with a 1, otherwise a 0.
func opcodeLessThan(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v1 < v0 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeGreaterThan treats the top two items on the data stack as integers.
// When the second-to-top item is greater than the top item, they are
// replaced with a 1, otherwise a 0.
func opcodeGreaterThan(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v1 > v0 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeLessThanOrEqual treats the top two items on the data stack as
// integers. When the second-to-top item is less than or equal to the top
// item, they are replaced with a 1, otherwise a 0.
func opcodeLessThanOrEqual(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v1 <= v0 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeGreaterThanOrEqual treats the top two items on the data stack as
// integers. When the second-to-top item is greater than or equal to the
// top item, they are replaced with a 1, otherwise a 0.
func opcodeGreaterThanOrEqual(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v1 >= v0 {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeMin treats the top two items on the data stack as integers and
// replaces them with the minimum of the two.
func opcodeMin(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v1 < v0 {
		vm.dstack.PushInt(v1)
	} else {
		vm.dstack.PushInt(v0)
	}
	return nil
}

// opcodeMax treats the top two items on the data stack as integers and
// replaces them with the maximum of the two.
func opcodeMax(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	v0, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	v1, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if v1 > v0 {
		vm.dstack.PushInt(v1)
	} else {
		vm.dstack.PushInt(v0)
	}
	return nil
}

// opcodeWithin treats the top 3 items on the data stack as integers. When
// the value to test is within the specified range (left inclusive), they
// are replaced with a 1, otherwise a 0.
func opcodeWithin(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	maxVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	minVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	x, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if x >= minVal && x < maxVal {
		vm.dstack.PushInt(scriptnum.ScriptNum(1))
	} else {
		vm.dstack.PushInt(scriptnum.ScriptNum(0))
	}
	return nil
}

// opcodeRipemd160 treats the top item of the data stack as raw bytes and
// replaces it with ripemd160(data).
func opcodeRipemd160(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(btcutil.Ripemd160(buf))
	return nil
}

// opcodeSha1 treats the top item of the data stack as raw bytes and
// replaces it with sha1(data).
func opcodeSha1(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	hash := sha1.Sum(buf)
	vm.dstack.PushByteArray(hash[:])
	return nil
}

// opcodeSha256 treats the top item of the data stack as raw bytes and
// replaces it with sha256(data).
func opcodeSha256(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	hash := sha256.Sum256(buf)
	vm.dstack.PushByteArray(hash[:])
	return nil
}

// opcodeHash160 treats the top item of the data stack as raw bytes and
// replaces it with ripemd160(sha256(data)).
func opcodeHash160(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(btcutil.Hash160(buf))
	return nil
}

// opcodeHash256 treats the top item of the data stack as raw bytes and
// replaces it with sha256(sha256(data)).
func opcodeHash256(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	buf, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(chainhash.DoubleHashB(buf))
	return nil
}

// opcodeCodeSeparator stores the current opcode index as the most recently
// seen OP_CODESEPARATOR, which is used during signature checking.
func opcodeCodeSeparator(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	vm.lastCodeSep = vm.opcodeIdx
	return nil
}

// opcodeCheckSig treats the top 2 items on the stack as a public key and a
// signature and replaces them with a bool indicating if the signature was
// successfully verified.
//
// Stack transformation: [... signature pubkey] -> [... bool]
func opcodeCheckSig(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	fullSigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	if len(fullSigBytes) < 1 {
		vm.dstack.PushBool(false)
		return nil
	}

	sigBytes, hashType := rawSigAndHashType(fullSigBytes)
	if err := vm.checkHashTypeEncoding(hashType); err != nil {
		return err
	}
	if err := vm.checkSignatureEncoding(sigBytes); err != nil {
		return err
	}
	if err := vm.checkPubKeyEncoding(pkBytes); err != nil {
		return err
	}

	subScript := removeOpcodeByData(vm.subScript(), fullSigBytes)

	hash, err := vm.calcSignatureHash(subScript, hashType, vm.txIdx)
	if err != nil {
		return err
	}

	pubKey, perr := parsePubKey(pkBytes)
	if perr != nil {
		vm.dstack.PushBool(false)
		return nil
	}

	signature, serr := parseSignature(sigBytes)
	if serr != nil {
		vm.dstack.PushBool(false)
		return nil
	}

	vm.dstack.PushBool(signature.Verify(hash, pubKey))
	return nil
}

// opcodeCheckSigVerify is a combination of opcodeCheckSig and opcodeVerify.
func opcodeCheckSigVerify(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	err := opcodeCheckSig(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, txscripterr.ErrCheckSigVerify)
	}
	return err
}

// parsedSigInfo houses a raw signature along with its parsed form and a
// flag for whether or not it has already been parsed, so a multisig check
// never parses the same signature twice.
type parsedSigInfo struct {
	signature       []byte
	parsedSignature *btcec.Signature
	parsed          bool
}

// opcodeCheckMultiSig treats the top item on the stack as an integer number
// of public keys, followed by that many public keys, followed by an integer
// number of signatures, followed by that many signatures, followed by a
// dummy value consumed due to a historical bug. The dummy is only checked
// (it must be empty) when ScriptBip62NullDummy is set.
//
// Stack transformation:
// [... dummy [sig ...] numsigs [pubkey ...] numpubkeys] -> [... bool]
func opcodeCheckMultiSig(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	numKeys, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}

	numPubKeys := int(numKeys.Int32())
	if numPubKeys < 0 {
		str := fmt.Sprintf("number of pubkeys %d is negative", numPubKeys)
		return txscripterr.ScriptError(txscripterr.ErrInvalidPubKeyCount, str)
	}
	if numPubKeys > params.MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("too many pubkeys: %d > %d", numPubKeys, params.MaxPubKeysPerMultiSig)
		return txscripterr.ScriptError(txscripterr.ErrInvalidPubKeyCount, str)
	}
	vm.numOps += numPubKeys
	if vm.numOps > params.MaxOpsPerScript {
		str := fmt.Sprintf("exceeded max operation limit of %d", params.MaxOpsPerScript)
		return txscripterr.ScriptError(txscripterr.ErrTooManyOperations, str)
	}

	pubKeys := make([][]byte, 0, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pubKey, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys = append(pubKeys, pubKey)
	}

	numSigs, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numSignatures := int(numSigs.Int32())
	if numSignatures < 0 {
		str := fmt.Sprintf("number of signatures %d is negative", numSignatures)
		return txscripterr.ScriptError(txscripterr.ErrInvalidSignatureCount, str)
	}
	if numSignatures > numPubKeys {
		str := fmt.Sprintf("more signatures than pubkeys: %d > %d", numSignatures, numPubKeys)
		return txscripterr.ScriptError(txscripterr.ErrInvalidSignatureCount, str)
	}

	signatures := make([]*parsedSigInfo, 0, numSignatures)
	for i := 0; i < numSignatures; i++ {
		signature, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		signatures = append(signatures, &parsedSigInfo{signature: signature})
	}

	// A bug in the original implementation means one more stack value
	// than should be used must be popped; this is now part of consensus.
	dummy, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	if vm.hasFlag(params.ScriptBip62NullDummy) && len(dummy) != 0 {
		str := fmt.Sprintf("multisig dummy argument has length %d instead of 0", len(dummy))
		return txscripterr.ScriptError(txscripterr.ErrSigNullDummy, str)
	}

	script := vm.subScript()
	for _, sigInfo := range signatures {
		script = removeOpcodeByData(script, sigInfo.signature)
	}

	success := true
	numPubKeys++
	pubKeyIdx := -1
	signatureIdx := 0
	for numSignatures > 0 {
		pubKeyIdx++
		numPubKeys--
		if numSignatures > numPubKeys {
			success = false
			break
		}

		sigInfo := signatures[signatureIdx]
		pubKey := pubKeys[pubKeyIdx]

		rawSig := sigInfo.signature
		if len(rawSig) == 0 {
			continue
		}

		sig, hashType := rawSigAndHashType(rawSig)

		var parsedSig *btcec.Signature
		if !sigInfo.parsed {
			if err := vm.checkHashTypeEncoding(hashType); err != nil {
				return err
			}
			if err := vm.checkSignatureEncoding(sig); err != nil {
				return err
			}

			parsed, perr := parseSignature(sig)
			sigInfo.parsed = true
			if perr != nil {
				continue
			}
			sigInfo.parsedSignature = parsed
			parsedSig = parsed
		} else {
			if sigInfo.parsedSignature == nil {
				continue
			}
			parsedSig = sigInfo.parsedSignature
		}

		if err := vm.checkPubKeyEncoding(pubKey); err != nil {
			return err
		}

		parsedPubKey, perr := parsePubKey(pubKey)
		if perr != nil {
			continue
		}

		hash, herr := vm.calcSignatureHash(script, hashType, vm.txIdx)
		if herr != nil {
			return herr
		}

		if parsedSig.Verify(hash, parsedPubKey) {
			signatureIdx++
			numSignatures--
		}
	}

	vm.dstack.PushBool(success)
	return nil
}

// opcodeCheckMultiSigVerify is a combination of opcodeCheckMultiSig and
// opcodeVerify.
func opcodeCheckMultiSigVerify(op *parsescript.ParsedOpcode, vm *Engine) er.R {
	err := opcodeCheckMultiSig(op, vm)
	if err == nil {
		err = abstractVerify(op, vm, txscripterr.ErrCheckMultiSigVerify)
	}
	return err
}

// OpcodeByName is a map that can be used to lookup an opcode by its
// human-readable name (OP_CHECKMULTISIG, OP_CHECKSIG, etc).
var OpcodeByName = make(map[string]byte)

func init() {
	for i := 0; i < 256; i++ {
		OpcodeByName[opcode.OpcodeName(byte(i))] = byte(i)
	}
	OpcodeByName["OP_FALSE"] = opcode.OP_FALSE
	OpcodeByName["OP_TRUE"] = opcode.OP_TRUE
	OpcodeByName["OP_NOP2"] = opcode.OP_CHECKLOCKTIMEVERIFY
}
