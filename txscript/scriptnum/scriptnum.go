// Copyright (c) 2015-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scriptnum implements the script number encoding used by every
// arithmetic and comparison opcode: a little-endian sign-magnitude byte
// string, minimal by construction and verified minimal on decode when the
// caller asks for it.
package scriptnum

import "github.com/pkt-cash/txvm/er"

// ScriptNum represents a numeric value used in the scripting engine with
// special handling to deal with the subtle semantics required by consensus.
//
// All numbers are stored on the data and alt stacks as an array of bytes
// which is interpreted as a little-endian sign-magnitude representation
// limited to a configurable number of bytes (4 for most opcodes, 5 for
// OP_CHECKLOCKTIMEVERIFY). ScriptNum itself is backed by an int64 so the
// interpreter can perform arithmetic using Go's native operators and then
// re-serialize the result back down to bytes.
type ScriptNum int64

const (
	// defaultScriptNumLen is the default number of bytes data being
	// interpreted as an integer may be.
	defaultScriptNumLen = 4
)

var errScriptNum = er.NewErrorType("scriptnum.ErrScriptNum")

// ErrNumTooBig is returned when the provided byte array for parsing or a
// resulting numeric value is longer than the allowed length.
var ErrNumTooBig = errScriptNum.Code("ErrNumTooBig")

// ErrMinimalData is returned when the provided byte array is not minimally
// encoded and minimal encoding was required by the caller.
var ErrMinimalData = errScriptNum.Code("ErrMinimalData")

// checkMinimalDataEncoding returns whether or not the passed byte array
// adheres to the minimal encoding rules.
func checkMinimalDataEncoding(v []byte) er.R {
	if len(v) == 0 {
		return nil
	}

	// Check that the number is encoded with the minimum possible number
	// of bytes.
	//
	// If the most-significant-byte - excluding the sign bit - is zero
	// then we're not minimal. Note how this test also rejects the
	// negative-zero encoding, [0x80].
	if v[len(v)-1]&0x7f == 0 {
		// One exception: if there's more than one byte and the most
		// significant bit of the second-to-last byte is set it would
		// conflict with the sign bit, so a single 0 byte is
		// necessary to avoid ambiguity.
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			return ErrMinimalData.New("numeric value encoded as "+
				"as non-minimally encoded script number", nil)
		}
	}

	return nil
}

// MakeScriptNum interprets the passed serialized bytes as an encoded script
// number, returning the resulting script number.
//
// Since the consensus rules dictate that serialized bytes interpreted as an
// integer must be of a specific maximum length and acceptable range, the
// caller must provide that length (scriptNumLen is 4 for every opcode other
// than OP_CHECKLOCKTIMEVERIFY, which permits 5) along with whether or not
// the rules requiring minimal encoding should be applied. This function will
// return an error if those rules are violated.
func MakeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (ScriptNum, er.R) {
	// Interpreting data requires that it is not larger than the passed
	// scriptNumLen value.
	if len(v) > scriptNumLen {
		return 0, ErrNumTooBig.New("script number overflow", nil)
	}

	// Enforce minimal encoded if requested.
	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}

	// Zero is encoded as an empty byte slice.
	if len(v) == 0 {
		return 0, nil
	}

	// Decode from little endian sign-magnitude representation.
	var result int64
	for i, b := range v {
		result |= int64(b) << uint8(8*i)
	}

	// When the most significant byte of the input bytes has the sign bit
	// set, the result is negative. So, remove the sign bit from the
	// result and make it negative.
	if v[len(v)-1]&0x80 != 0 {
		result &= ^(int64(0x80) << uint8(8*(len(v)-1)))
		return ScriptNum(-result), nil
	}

	return ScriptNum(result), nil
}

// Bytes returns the number serialized as a little endian sign-magnitude
// integer, with the encoding rules outlined in the package overview.
func (n ScriptNum) Bytes() []byte {
	// Zero encodes as an empty byte slice.
	if n == 0 {
		return nil
	}

	// Take the absolute value and keep track of whether it was originally
	// negative.
	isNegative := n < 0
	if isNegative {
		n = -n
	}

	// Encode to little endian. The maximum number of encoded bytes is
	// implicitly defined by the number of bytes needed to encode the max
	// possible value encoded as an int64, so there is no need to check
	// that the number of bytes is in the valid range.
	result := make([]byte, 0, 9)
	for n > 0 {
		result = append(result, byte(n&0xff))
		n >>= 8
	}

	// When the most significant byte already has the high bit set, an
	// additional high byte is required to indicate whether the number is
	// negative or positive. The additional byte is removed from this
	// encoding when the go-to-integer conversion is done.
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// Int32 returns the script number clamped to a valid int32. That is to say
// that if the script number is larger than the max allowed int32, the max
// int32 value is returned and vice versa for the minimum value. Note that
// this behavior is different from a simple int32 cast because that truncates
// and the consensus rules dictate proper overflow handling.
func (n ScriptNum) Int32() int32 {
	if n > int64MaxInt32 {
		return maxInt32
	}

	if n < int64MinInt32 {
		return minInt32
	}

	return int32(n)
}

const (
	maxInt32      = 1<<31 - 1
	minInt32      = -1 << 31
	int64MaxInt32 = ScriptNum(maxInt32)
	int64MinInt32 = ScriptNum(minInt32)
)
