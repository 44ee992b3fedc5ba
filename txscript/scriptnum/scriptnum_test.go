// Copyright (c) 2015-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scriptnum

import (
	"bytes"
	"testing"
)

func TestScriptNumBytesRoundTrip(t *testing.T) {
	tests := []int64{
		0, 1, -1, 127, 128, -128, 255, 256, -256,
		32767, 32768, -32768, 2147483647, -2147483648,
	}
	for _, v := range tests {
		n := ScriptNum(v)
		encoded := n.Bytes()
		decoded, err := MakeScriptNum(encoded, true, 5)
		if err != nil {
			t.Fatalf("%d: MakeScriptNum(Bytes()) failed: %v", v, err)
		}
		if int64(decoded) != v {
			t.Errorf("%d: round trip produced %d", v, int64(decoded))
		}
	}
}

func TestScriptNumZeroIsEmpty(t *testing.T) {
	if b := ScriptNum(0).Bytes(); b != nil {
		t.Errorf("zero should encode as nil/empty, got %x", b)
	}
	n, err := MakeScriptNum(nil, true, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestScriptNumRejectsOversize(t *testing.T) {
	v := []byte{1, 2, 3, 4, 5}
	if _, err := MakeScriptNum(v, false, 4); err == nil {
		t.Errorf("expected overflow error for 5 byte value with maxLen 4")
	}
	if _, err := MakeScriptNum(v, false, 5); err != nil {
		t.Errorf("5 byte value with maxLen 5 should be accepted: %v", err)
	}
}

func TestScriptNumMinimalEncoding(t *testing.T) {
	tests := []struct {
		name    string
		v       []byte
		wantErr bool
	}{
		{"minimal single byte", []byte{0x01}, false},
		{"non-minimal trailing zero", []byte{0x01, 0x00}, true},
		{"negative zero", []byte{0x80}, true},
		{"needs extra byte to avoid sign ambiguity", []byte{0xff, 0x00}, false},
	}
	for _, tc := range tests {
		_, err := MakeScriptNum(tc.v, true, 5)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: err = %v, wantErr = %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestScriptNumInt32Clamps(t *testing.T) {
	big := ScriptNum(1) << 40
	if got := big.Int32(); got != maxInt32 {
		t.Errorf("expected clamp to maxInt32, got %d", got)
	}
	small := -(ScriptNum(1) << 40)
	if got := small.Int32(); got != minInt32 {
		t.Errorf("expected clamp to minInt32, got %d", got)
	}
}

func TestScriptNumBytesNotMutatedByEncodeDecode(t *testing.T) {
	original := []byte{0xff, 0x00}
	n, err := MakeScriptNum(original, true, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(n.Bytes(), original) {
		t.Errorf("expected canonical re-encoding to match input, got %x want %x", n.Bytes(), original)
	}
}
