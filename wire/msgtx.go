// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2019 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the narrow slice of Bitcoin's wire transaction
// format that the script engine needs: enough to serialize and parse a
// transaction for the legacy and FORKID signature digests, and to make a
// defensive copy of a caller-supplied transaction view before evaluating a
// script against it. It is not a general peer-to-peer wire implementation.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkt-cash/txvm/chainhash"
	"github.com/pkt-cash/txvm/er"
)

// OutPoint defines a bitcoin data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// TxIn defines a bitcoin transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// MaxTxInSequenceNum is the maximum value a sequence number may be set to,
// indicating that the input's locktime constraint (if any) has been
// finalized and OP_CHECKLOCKTIMEVERIFY must reject the script outright.
const MaxTxInSequenceNum uint32 = 0xffffffff

// TxOut defines a bitcoin transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// MsgTx represents a bitcoin transaction: its version, inputs, outputs and
// lock time.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new bitcoin transaction with the given version and no
// inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

func writeVarInt(w io.Writer, val uint64) er.R {
	var buf [9]byte
	switch {
	case val < 0xfd:
		buf[0] = byte(val)
		_, err := w.Write(buf[:1])
		return er.E(err)
	case val <= 0xffff:
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:3], uint16(val))
		_, err := w.Write(buf[:3])
		return er.E(err)
	case val <= 0xffffffff:
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:5], uint32(val))
		_, err := w.Write(buf[:5])
		return er.E(err)
	default:
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:9], val)
		_, err := w.Write(buf[:9])
		return er.E(err)
	}
}

func readVarInt(r io.Reader) (uint64, er.R) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, er.E(err)
	}
	switch prefix[0] {
	case 0xfd:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, er.E(err)
		}
		return uint64(binary.LittleEndian.Uint16(b[:])), nil
	case 0xfe:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, er.E(err)
		}
		return uint64(binary.LittleEndian.Uint32(b[:])), nil
	case 0xff:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, er.E(err)
		}
		return binary.LittleEndian.Uint64(b[:]), nil
	default:
		return uint64(prefix[0]), nil
	}
}

// WriteVarBytes writes a variable length byte array as a varint containing
// the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, b []byte) er.R {
	if err := writeVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return er.E(err)
}

func readVarBytes(r io.Reader) ([]byte, er.R) {
	l, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, l)
	if _, e := io.ReadFull(r, b); e != nil {
		return nil, er.E(e)
	}
	return b, nil
}

// WriteTxOut writes the bitcoin transaction output to w.
func WriteTxOut(w io.Writer, to *TxOut) er.R {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(to.Value))
	if _, err := w.Write(buf[:]); err != nil {
		return er.E(err)
	}
	return WriteVarBytes(w, to.PkScript)
}

func readTxOut(r io.Reader) (*TxOut, er.R) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, er.E(err)
	}
	to := &TxOut{Value: int64(binary.LittleEndian.Uint64(buf[:]))}
	script, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	to.PkScript = script
	return to, nil
}

func writeOutPoint(w io.Writer, op *OutPoint) er.R {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return er.E(err)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], op.Index)
	_, err := w.Write(buf[:])
	return er.E(err)
}

func readOutPoint(r io.Reader) (OutPoint, er.R) {
	var op OutPoint
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return op, er.E(err)
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return op, er.E(err)
	}
	op.Index = binary.LittleEndian.Uint32(buf[:])
	return op, nil
}

func writeTxIn(w io.Writer, ti *TxIn) er.R {
	if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
		return err
	}
	if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], ti.Sequence)
	_, err := w.Write(buf[:])
	return er.E(err)
}

func readTxIn(r io.Reader) (*TxIn, er.R) {
	ti := &TxIn{}
	op, err := readOutPoint(r)
	if err != nil {
		return nil, err
	}
	ti.PreviousOutPoint = op
	script, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	ti.SignatureScript = script
	var buf [4]byte
	if _, e := io.ReadFull(r, buf[:]); e != nil {
		return nil, er.E(e)
	}
	ti.Sequence = binary.LittleEndian.Uint32(buf[:])
	return ti, nil
}

// Serialize encodes the transaction to w using the legacy, segwit-
// independent wire format.
func (msg *MsgTx) Serialize(w io.Writer) er.R {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(msg.Version))
	if _, err := w.Write(buf[:]); err != nil {
		return er.E(err)
	}
	if err := writeVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}
	if err := writeVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := WriteTxOut(w, to); err != nil {
			return err
		}
	}
	binary.LittleEndian.PutUint32(buf[:], msg.LockTime)
	_, err := w.Write(buf[:])
	return er.E(err)
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (msg *MsgTx) SerializeSize() int {
	var buf bytes.Buffer
	_ = msg.Serialize(&buf)
	return buf.Len()
}

// Bytes returns the serialized transaction.
func (msg *MsgTx) Bytes() ([]byte, er.R) {
	var buf bytes.Buffer
	if err := msg.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a transaction from r in the legacy wire format.
func (msg *MsgTx) Deserialize(r io.Reader) er.R {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return er.E(err)
	}
	msg.Version = int32(binary.LittleEndian.Uint32(buf[:]))

	inCount, err := readVarInt(r)
	if err != nil {
		return err
	}
	msg.TxIn = make([]*TxIn, inCount)
	for i := range msg.TxIn {
		ti, err := readTxIn(r)
		if err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	outCount, err := readVarInt(r)
	if err != nil {
		return err
	}
	msg.TxOut = make([]*TxOut, outCount)
	for i := range msg.TxOut {
		to, err := readTxOut(r)
		if err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	if _, e := io.ReadFull(r, buf[:]); e != nil {
		return er.E(e)
	}
	msg.LockTime = binary.LittleEndian.Uint32(buf[:])
	return nil
}

// TxHash generates the Hash for the transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	b, _ := msg.Bytes()
	return chainhash.DoubleHashH(b)
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	txCopy := &MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, len(msg.TxIn)),
		TxOut:    make([]*TxOut, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}
	for i, oldTxIn := range msg.TxIn {
		ti := *oldTxIn
		ti.SignatureScript = append([]byte(nil), oldTxIn.SignatureScript...)
		txCopy.TxIn[i] = &ti
	}
	for i, oldTxOut := range msg.TxOut {
		to := *oldTxOut
		to.PkScript = append([]byte(nil), oldTxOut.PkScript...)
		txCopy.TxOut[i] = &to
	}
	return txCopy
}
