// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/pkt-cash/txvm/er"
	"github.com/pkt-cash/txvm/txscript/opcode"
	"github.com/pkt-cash/txvm/txscript/params"
	"github.com/pkt-cash/txvm/txscript/parsescript"
	"github.com/pkt-cash/txvm/txscript/txscripterr"
	"github.com/pkt-cash/txvm/wire"
)

// Engine is the virtual machine that executes scripts.
type Engine struct {
	// flags specifies the additional flags which modify the execution
	// behavior of the engine.
	//
	// tx identifies the transaction that contains the input which in turn
	// contains the signature script being executed.
	//
	// txIdx identifies the input index within the transaction that
	// contains the signature script being executed.
	//
	// inputAmount is the value, in satoshis, of the output being spent by
	// txIdx. It is committed directly into the FORKID signature digest so
	// that verification no longer needs to trust an externally supplied
	// UTXO set at hashing time.
	//
	// bip16 specifies that the public key script is of the special
	// pay-to-script-hash form and therefore a second evaluation against
	// the redeem script is required once the first script completes.
	flags       params.ScriptFlags
	tx          wire.MsgTx
	txIdx       int
	inputAmount int64
	bip16       bool

	// scripts holds the raw parsed scripts executed by the engine in
	// order: the signature script, the public key script, and -- for a
	// pay-to-script-hash spend -- the redeem script recovered from the
	// signature script's final stack item.
	//
	// scriptIdx tracks which element of scripts is currently executing and
	// opcodeIdx tracks the position of the program counter within it.
	//
	// lastCodeSep records the position within the current script of the
	// most recent OP_CODESEPARATOR, which delimits the portion of the
	// script committed to by a signature.
	scripts     [][]parsescript.ParsedOpcode
	scriptIdx   int
	opcodeIdx   int
	lastCodeSep int

	savedFirstStack [][]byte

	dstack stack
	astack stack

	condStack []int
	numOps    int
}

// hasFlag returns whether the script engine instance has the passed flag
// set.
func (vm *Engine) hasFlag(flag params.ScriptFlags) bool {
	return vm.flags&flag == flag
}

// isBranchExecuting returns whether or not the current conditional branch is
// actively executing. For example, when the data stack has an OP_FALSE on it
// and an OP_IF is encountered, the branch is inactive until an OP_ELSE or
// OP_ENDIF is encountered. It properly handles nested conditionals.
func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == OpCondTrue
}

// subScript returns the script since the last OP_CODESEPARATOR.
func (vm *Engine) subScript() []parsescript.ParsedOpcode {
	return vm.scripts[vm.scriptIdx][vm.lastCodeSep:]
}

// checkScriptParses verifies that the given raw script both parses cleanly
// and does not exceed the maximum allowed script size.
func checkScriptParses(script []byte) ([]parsescript.ParsedOpcode, er.R) {
	if len(script) > params.MaxScriptSize {
		return nil, txscripterr.ScriptError(txscripterr.ErrScriptTooBig,
			"script is too big")
	}
	return parsescript.ParseScript(script)
}

// NewEngine returns a new script engine for the provided public key script,
// transaction, and input index. The flags modify the behavior of the script
// engine according to the description for each flag. inputAmount is the
// value of the output being redeemed and is committed to by the FORKID
// signature digest.
func NewEngine(scriptPubKey []byte, tx *wire.MsgTx, txIdx int, flags params.ScriptFlags, scriptSig []byte, inputAmount int64) (*Engine, er.R) {
	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", txIdx, len(tx.TxIn))
		return nil, txscripterr.ScriptError(txscripterr.ErrInvalidIndex, str)
	}

	sigPops, err := checkScriptParses(scriptSig)
	if err != nil {
		return nil, err
	}
	pkPops, err := checkScriptParses(scriptPubKey)
	if err != nil {
		return nil, err
	}

	vm := &Engine{
		flags:       flags,
		tx:          *tx,
		txIdx:       txIdx,
		inputAmount: inputAmount,
	}

	vm.dstack.verifyMinimalData = vm.hasFlag(params.ScriptVerifyMinimalData)
	vm.astack.verifyMinimalData = vm.dstack.verifyMinimalData
	vm.dstack.maxNumLen = params.DefaultScriptNumLen
	vm.astack.maxNumLen = params.DefaultScriptNumLen

	if vm.hasFlag(params.ScriptBip16) && isScriptHash(pkPops) {
		if !parsescript.IsPushOnly(sigPops) {
			return nil, txscripterr.ScriptError(txscripterr.ErrNotPushOnly,
				"signature script for pay-to-script-hash is not push only")
		}
		vm.bip16 = true
	}

	vm.scripts = [][]parsescript.ParsedOpcode{sigPops, pkPops}

	return vm, nil
}

// GetStack returns a copy of the contents of the primary data stack, bottom
// first.
func (vm *Engine) GetStack() [][]byte {
	return getStack(&vm.dstack)
}

// SetStack sets the contents of the primary data stack to the contents of
// the provided array, bottom first.
func (vm *Engine) SetStack(data [][]byte) {
	setStack(&vm.dstack, data)
}

func getStack(stk *stack) [][]byte {
	array := make([][]byte, len(stk.stk))
	for i := range stk.stk {
		array[i] = stk.stk[i]
	}
	return array
}

func setStack(stk *stack, data [][]byte) {
	stk.stk = nil
	stk.stk = make([][]byte, len(data))
	for i := range data {
		stk.stk[i] = data[i]
	}
}

// executeOpcode runs a single parsed opcode, enforcing the rules that apply
// regardless of which specific opcode is executed: disabled/reserved
// detection even on non-executing branches, and accounting of non-push
// operations against the per-script operation limit.
func (vm *Engine) executeOpcode(pop *parsescript.ParsedOpcode) er.R {
	// Disabled opcodes are always illegal, regardless of the current
	// conditional branch state, since the original implementation did not
	// track them during the initial parse.
	if isOpcodeDisabled(pop.Opcode.Value) {
		str := "attempt to execute disabled opcode " +
			opcode.OpcodeName(pop.Opcode.Value)
		return txscripterr.ScriptError(txscripterr.ErrDisabledOpcode, str)
	}

	// Always-illegal opcodes (OP_VERIF / OP_VERNOTIF) must fail even when
	// skipped over by an inactive conditional branch, to preserve the
	// property that well-formed conditionals can always be statically
	// identified.
	if pop.Opcode.Value == opcode.OP_VERIF || pop.Opcode.Value == opcode.OP_VERNOTIF {
		str := "attempt to execute reserved opcode " +
			opcode.OpcodeName(pop.Opcode.Value)
		return txscripterr.ScriptError(txscripterr.ErrReservedOpcode, str)
	}

	// Note that this includes OP_RESERVED which counts as a push
	// (Length == 1) in the opcode table but carries no defined behavior;
	// it is only illegal when actually executed, handled by its own
	// handler below.
	if pop.Opcode.Value > opcode.OP_16 {
		vm.numOps++
		if vm.numOps > params.MaxOpsPerScript {
			str := fmt.Sprintf("exceeded max operation limit of %d", params.MaxOpsPerScript)
			return txscripterr.ScriptError(txscripterr.ErrTooManyOperations, str)
		}
	} else if len(pop.Data) > params.MaxScriptElementSize {
		str := fmt.Sprintf("element size %d exceeds max allowed size %d",
			len(pop.Data), params.MaxScriptElementSize)
		return txscripterr.ScriptError(txscripterr.ErrElementTooBig, str)
	}

	if !vm.isBranchExecuting() && !isOpcodeBranchAware(pop.Opcode.Value) {
		return nil
	}

	if vm.hasFlag(params.ScriptVerifyMinimalData) && vm.isBranchExecuting() &&
		pop.Opcode.Value >= opcode.OP_0 && pop.Opcode.Value <= opcode.OP_PUSHDATA4 {
		if err := checkMinimalDataPush(pop); err != nil {
			return err
		}
	}

	return executeOp(pop, vm)
}

// isOpcodeBranchAware returns whether or not the given opcode must execute
// even when the current conditional branch is not executing, because it
// participates in conditional-branch bookkeeping itself.
func isOpcodeBranchAware(op byte) bool {
	switch op {
	case opcode.OP_IF, opcode.OP_NOTIF, opcode.OP_ELSE, opcode.OP_ENDIF:
		return true
	default:
		return false
	}
}

// checkMinimalDataPush returns an error if the given push opcode did not use
// the smallest possible opcode to push the data it carries onto the stack.
func checkMinimalDataPush(pop *parsescript.ParsedOpcode) er.R {
	if canonicalPush(*pop) {
		return nil
	}
	str := "push encoding for " + opcode.OpcodeName(pop.Opcode.Value) + " is not minimal"
	return txscripterr.ScriptError(txscripterr.ErrMinimalData, str)
}

// Step executes the next instruction and moves the program counter to the
// next opcode in the script, or the next script if the current one has been
// completed. Step returns false after executing the last opcode of the last
// script; the following call runs the end-of-script checks and returns true.
// Calling Step again after that returns ErrInvalidProgramCounter. A script
// may legally be empty (an empty scriptSig is common), so any number of
// empty scripts are skipped before the next opcode is read.
func (vm *Engine) Step() (bool, er.R) {
	if vm.scriptIdx >= len(vm.scripts) {
		return true, txscripterr.ScriptError(txscripterr.ErrInvalidProgramCounter,
			"attempt to step past the end of the last script")
	}
	for vm.opcodeIdx >= len(vm.scripts[vm.scriptIdx]) {
		done, err := vm.advanceScript()
		if done || err != nil {
			return done, err
		}
	}

	opc := &vm.scripts[vm.scriptIdx][vm.opcodeIdx]
	if err := vm.executeOpcode(opc); err != nil {
		return true, err
	}

	if vm.dstack.Depth()+vm.astack.Depth() > params.MaxStackSize {
		return false, txscripterr.ScriptError(txscripterr.ErrStackOverflow,
			"stack overflow")
	}

	vm.opcodeIdx++
	return false, nil
}

// advanceScript performs the bookkeeping required when the program counter
// reaches the end of the current script: validating that no conditional was
// left dangling, resetting per-script state, and -- for a pay-to-script-hash
// evaluation -- recovering the redeem script from the first script's final
// stack item and queuing it for evaluation. Returns true once every script
// has been consumed.
func (vm *Engine) advanceScript() (bool, er.R) {
	// Illegal to end a script with an unbalanced conditional.
	if len(vm.condStack) != 0 {
		return false, txscripterr.ScriptError(txscripterr.ErrUnbalancedConditional,
			"end of script reached in conditional execution")
	}

	// Alt stack doesn't persist between scripts.
	vm.astack.stk = nil

	vm.numOps = 0
	vm.opcodeIdx = 0
	vm.lastCodeSep = 0

	switch vm.scriptIdx {
	case 0:
		if vm.bip16 {
			vm.savedFirstStack = vm.GetStack()
		}
	case 1:
		if vm.bip16 {
			if len(vm.savedFirstStack) == 0 {
				return false, txscripterr.ScriptError(txscripterr.ErrEvalFalse,
					"signature script for pay-to-script-hash pushed no data")
			}

			// The public key script (the OP_HASH160 <hash> OP_EQUAL
			// template) must itself have evaluated successfully before the
			// redeem script is even considered; otherwise a spend with any
			// redeem script at all would pass regardless of whether its
			// hash matches the committed one. Temporarily treat scriptIdx
			// as past the end so CheckErrorCondition validates and
			// consumes that result, then restore it to recover the redeem
			// script from beneath it.
			vm.scriptIdx = len(vm.scripts)
			if err := vm.CheckErrorCondition(false); err != nil {
				return false, err
			}
			vm.scriptIdx = 1

			script := vm.savedFirstStack[len(vm.savedFirstStack)-1]
			pops, err := checkScriptParses(script)
			if err != nil {
				return false, err
			}
			vm.scripts = append(vm.scripts, pops)

			vm.SetStack(vm.savedFirstStack[:len(vm.savedFirstStack)-1])
		}
	}

	vm.scriptIdx++
	if vm.scriptIdx >= len(vm.scripts) {
		return true, nil
	}

	return false, nil
}

// Execute runs every instruction in every script associated with the engine
// and verifies the result reflects a successfully executed script.
func (vm *Engine) Execute() er.R {
	done := false
	for !done {
		var err er.R
		done, err = vm.Step()
		if err != nil {
			return err
		}
	}
	return vm.CheckErrorCondition(true)
}

// CheckErrorCondition returns nil if the running script has ended and was
// successful, with a true value on top of the stack; that value is popped
// and any items beneath it are not examined. An error otherwise, including
// if the script has not finished.
func (vm *Engine) CheckErrorCondition(finalScript bool) er.R {
	if vm.scriptIdx < len(vm.scripts) {
		return txscripterr.ScriptError(txscripterr.ErrScriptUnfinished,
			"error check when script unfinished")
	}

	if vm.dstack.Depth() < 1 {
		return txscripterr.ScriptError(txscripterr.ErrEmptyStack,
			"stack empty at end of script execution")
	}

	v, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		return txscripterr.ScriptError(txscripterr.ErrEvalFalse,
			"false stack entry at end of script execution")
	}
	return nil
}
