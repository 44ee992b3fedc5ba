// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/pkt-cash/txvm/txscript/opcode"
	"github.com/pkt-cash/txvm/txscript/params"
	"github.com/pkt-cash/txvm/txscript/parsescript"
	"github.com/pkt-cash/txvm/txscript/scriptnum"
	"github.com/pkt-cash/txvm/txscript/txscripterr"
)

// newTestEngine returns a bare Engine suitable for exercising opcode
// handlers directly, without running them through a parsed script.
func newTestEngine(flags params.ScriptFlags) *Engine {
	vm := &Engine{flags: flags}
	vm.dstack.maxNumLen = params.DefaultScriptNumLen
	vm.astack.maxNumLen = params.DefaultScriptNumLen
	return vm
}

func popOnlyStack(t *testing.T, vm *Engine) []byte {
	t.Helper()
	if vm.dstack.Depth() != 1 {
		t.Fatalf("expected exactly one stack item, got:\n%s", spew.Sdump(vm.dstack.stk))
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		t.Fatalf("unexpected error popping result: %v", err)
	}
	return b
}

func TestOpcodeDivModBoundary(t *testing.T) {
	tests := []struct {
		name         string
		dividend     int64
		divisor      int64
		wantDiv      int64
		wantMod      int64
	}{
		{"positive exact", 10, 2, 5, 0},
		{"negative dividend truncates toward zero", -7, 2, -3, -1},
		{"int32 max boundary", 1<<31 - 1, 1, 1<<31 - 1, 0},
		{"int32 min boundary", -(1<<31 - 1), 1, -(1<<31 - 1), 0},
		{"negative divisor", 7, -2, -3, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vm := newTestEngine(0)
			vm.dstack.PushInt(scriptnum.ScriptNum(tc.dividend))
			vm.dstack.PushInt(scriptnum.ScriptNum(tc.divisor))
			op := &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_DIV)}
			if err := opcodeDiv(op, vm); err != nil {
				t.Fatalf("opcodeDiv: %v", err)
			}
			got, err := scriptnum.MakeScriptNum(popOnlyStack(t, vm), false, 5)
			if err != nil {
				t.Fatalf("decoding result: %v", err)
			}
			if int64(got) != tc.wantDiv {
				t.Errorf("div %d/%d = %d, want %d", tc.dividend, tc.divisor, got, tc.wantDiv)
			}

			vm = newTestEngine(0)
			vm.dstack.PushInt(scriptnum.ScriptNum(tc.dividend))
			vm.dstack.PushInt(scriptnum.ScriptNum(tc.divisor))
			op = &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_MOD)}
			if err := opcodeMod(op, vm); err != nil {
				t.Fatalf("opcodeMod: %v", err)
			}
			got, err = scriptnum.MakeScriptNum(popOnlyStack(t, vm), false, 5)
			if err != nil {
				t.Fatalf("decoding result: %v", err)
			}
			if int64(got) != tc.wantMod {
				t.Errorf("mod %d%%%d = %d, want %d", tc.dividend, tc.divisor, got, tc.wantMod)
			}
		})
	}
}

func TestOpcodeDivModByZero(t *testing.T) {
	vm := newTestEngine(0)
	vm.dstack.PushInt(scriptnum.ScriptNum(5))
	vm.dstack.PushInt(scriptnum.ScriptNum(0))
	op := &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_DIV)}
	if err := opcodeDiv(op, vm); err == nil {
		t.Fatal("expected error dividing by zero")
	} else if !txscripterr.ErrUnknownError.Is(err) {
		t.Errorf("expected ErrUnknownError, got %v", err)
	}
}

func TestMonolithOpcodesGatedByFlag(t *testing.T) {
	vm := newTestEngine(0)
	op := &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_CAT)}
	if err := executeOp(op, vm); err == nil {
		t.Fatal("expected OP_CAT to be disabled without ScriptEnableMonolithOpcodes")
	} else if !txscripterr.ErrDisabledOpcode.Is(err) {
		t.Errorf("expected ErrDisabledOpcode, got %v", err)
	}

	vm = newTestEngine(params.ScriptEnableMonolithOpcodes)
	vm.dstack.PushByteArray([]byte("foo"))
	vm.dstack.PushByteArray([]byte("bar"))
	if err := executeOp(op, vm); err != nil {
		t.Fatalf("OP_CAT with flag set: %v", err)
	}
	got := popOnlyStack(t, vm)
	if string(got) != "foobar" {
		t.Errorf("OP_CAT = %q, want %q", got, "foobar")
	}
}

func TestOpcodeSplit(t *testing.T) {
	vm := newTestEngine(params.ScriptEnableMonolithOpcodes)
	vm.dstack.PushByteArray([]byte("helloworld"))
	vm.dstack.PushInt(scriptnum.ScriptNum(5))
	op := &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_SPLIT)}
	if err := opcodeSplit(op, vm); err != nil {
		t.Fatalf("opcodeSplit: %v", err)
	}
	back, err := vm.dstack.PopByteArray()
	if err != nil {
		t.Fatal(err)
	}
	front, err := vm.dstack.PopByteArray()
	if err != nil {
		t.Fatal(err)
	}
	if string(front) != "hello" || string(back) != "world" {
		t.Errorf("split = %q / %q", front, back)
	}
}

func TestOpcodeSplitOutOfRange(t *testing.T) {
	vm := newTestEngine(params.ScriptEnableMonolithOpcodes)
	vm.dstack.PushByteArray([]byte("abc"))
	vm.dstack.PushInt(scriptnum.ScriptNum(4))
	op := &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_SPLIT)}
	if err := opcodeSplit(op, vm); err == nil {
		t.Fatal("expected error for out-of-range split position")
	} else if !txscripterr.ErrUnknownError.Is(err) {
		t.Errorf("expected ErrUnknownError, got %v", err)
	}
}

func TestBitwiseOpsRequireEqualLength(t *testing.T) {
	vm := newTestEngine(params.ScriptEnableMonolithOpcodes)
	vm.dstack.PushByteArray([]byte{0x01, 0x02})
	vm.dstack.PushByteArray([]byte{0x01})
	op := &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_AND)}
	if err := opcodeAnd(op, vm); err == nil {
		t.Fatal("expected error for mismatched operand lengths")
	} else if !txscripterr.ErrUnknownError.Is(err) {
		t.Errorf("expected ErrUnknownError, got %v", err)
	}
}

func TestOpcodeNum2BinBin2NumRoundTrip(t *testing.T) {
	vm := newTestEngine(params.ScriptEnableMonolithOpcodes)
	vm.dstack.PushInt(scriptnum.ScriptNum(-42))
	vm.dstack.PushInt(scriptnum.ScriptNum(8))
	op := &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_NUM2BIN)}
	if err := opcodeNum2Bin(op, vm); err != nil {
		t.Fatalf("opcodeNum2Bin: %v", err)
	}
	padded, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(padded) != 8 {
		t.Fatalf("expected 8 byte result, got %d", len(padded))
	}

	op = &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_BIN2NUM)}
	if err := opcodeBin2Num(op, vm); err != nil {
		t.Fatalf("opcodeBin2Num: %v", err)
	}
	n, err := scriptnum.MakeScriptNum(popOnlyStack(t, vm), false, 4)
	if err != nil {
		t.Fatal(err)
	}
	if n != -42 {
		t.Errorf("round trip produced %d, want -42", n)
	}
}

func TestAlwaysDisabledOpcodesIgnoreMonolithFlag(t *testing.T) {
	vm := newTestEngine(params.ScriptEnableMonolithOpcodes)
	vm.dstack.PushByteArray([]byte{0x02})
	op := &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(opcode.OP_MUL)}
	if err := executeOp(op, vm); err == nil {
		t.Fatal("expected OP_MUL to remain disabled regardless of MONOLITH_OPCODES")
	} else if !txscripterr.ErrDisabledOpcode.Is(err) {
		t.Errorf("expected ErrDisabledOpcode, got %v", err)
	}
}
