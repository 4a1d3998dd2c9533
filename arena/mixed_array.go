// Copyright 2024 The ObjectDict Authors
// This file is part of ObjectDict.
//
// ObjectDict is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ObjectDict is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with ObjectDict. If not, see <http://www.gnu.org/licenses/>.

package arena

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/holiman/uint256"
	"github.com/klauspost/compress/zstd"

	"github.com/ledgerkv/objectdict/mixed"
)

var (
	sharedEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	sharedDecoder, _ = zstd.NewReader(nil)
)

// DefaultCompressThreshold is the payload size MixedArray falls back to when
// constructed with a non-positive threshold (e.g. by a test or a caller that
// has no config.Config in hand).
const DefaultCompressThreshold = 256

// MixedArray is a tagged-union array primitive for storing mixed.Value
// slices in the arena: each entry is [kind byte][length-prefixed payload].
// String and Binary entries whose payload exceeds threshold are
// zstd-compressed before being written, cutting the durable footprint of
// large dictionary values and document blobs.
type MixedArray struct {
	a         *Arena
	ref       Ref
	entries   []mixed.Value
	threshold int
}

func NewMixedArray(a *Arena, values []mixed.Value, threshold int) (*MixedArray, error) {
	ma := &MixedArray{a: a, entries: append([]mixed.Value(nil), values...), threshold: normalizeThreshold(threshold)}
	if err := ma.flush(); err != nil {
		return nil, err
	}
	return ma, nil
}

func InitMixedArrayFromRef(a *Arena, ref Ref, n int, threshold int) (*MixedArray, error) {
	ma := &MixedArray{a: a, ref: ref, threshold: normalizeThreshold(threshold)}
	if err := ma.load(n); err != nil {
		return nil, err
	}
	return ma, nil
}

func normalizeThreshold(threshold int) int {
	if threshold <= 0 {
		return DefaultCompressThreshold
	}
	return threshold
}

func (ma *MixedArray) Ref() Ref { return ma.ref }
func (ma *MixedArray) Len() int { return len(ma.entries) }

func (ma *MixedArray) Get(i int) (mixed.Value, error) {
	if i < 0 || i >= len(ma.entries) {
		return mixed.Value{}, fmt.Errorf("arena: mixed array index %d out of range [0,%d)", i, len(ma.entries))
	}
	return ma.entries[i], nil
}

func (ma *MixedArray) Set(i int, v mixed.Value) (Ref, error) {
	if i < 0 || i >= len(ma.entries) {
		return nilRef, fmt.Errorf("arena: mixed array index %d out of range [0,%d)", i, len(ma.entries))
	}
	ma.entries[i] = v
	if err := ma.flush(); err != nil {
		return nilRef, err
	}
	return ma.ref, nil
}

func (ma *MixedArray) Append(v mixed.Value) (Ref, error) {
	ma.entries = append(ma.entries, v)
	if err := ma.flush(); err != nil {
		return nilRef, err
	}
	return ma.ref, nil
}

func (ma *MixedArray) RemoveAt(i int) (Ref, error) {
	if i < 0 || i >= len(ma.entries) {
		return nilRef, fmt.Errorf("arena: mixed array index %d out of range [0,%d)", i, len(ma.entries))
	}
	ma.entries = append(ma.entries[:i], ma.entries[i+1:]...)
	if err := ma.flush(); err != nil {
		return nilRef, err
	}
	return ma.ref, nil
}

// encodeVariable packs a String/Binary payload as [flag byte][uint64
// length][payload], compressing the payload with zstd when it exceeds
// threshold.
func encodeVariable(raw []byte, threshold int) []byte {
	flag := byte(0)
	payload := raw
	if len(raw) > threshold {
		payload = sharedEncoder.EncodeAll(raw, nil)
		flag = 1
	}
	buf := make([]byte, 1+8+len(payload))
	buf[0] = flag
	binary.LittleEndian.PutUint64(buf[1:], uint64(len(payload)))
	copy(buf[9:], payload)
	return buf
}

func decodeVariable(buf []byte) (raw []byte, consumed int, err error) {
	flag := buf[0]
	n := int(binary.LittleEndian.Uint64(buf[1:9]))
	payload := buf[9 : 9+n]
	if flag == 1 {
		raw, err = sharedDecoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("arena: decompress mixed entry: %w", err)
		}
		return raw, 9 + n, nil
	}
	out := make([]byte, n)
	copy(out, payload)
	return out, 9 + n, nil
}

func (ma *MixedArray) encode(v mixed.Value) []byte {
	switch v.Kind() {
	case mixed.KindNull:
		return []byte{byte(v.Kind())}
	case mixed.KindBool:
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		return []byte{byte(v.Kind()), b}
	case mixed.KindInt:
		buf := make([]byte, 9)
		buf[0] = byte(v.Kind())
		binary.LittleEndian.PutUint64(buf[1:], uint64(v.AsInt()))
		return buf
	case mixed.KindFloat:
		buf := make([]byte, 5)
		buf[0] = byte(v.Kind())
		binary.LittleEndian.PutUint32(buf[1:], math.Float32bits(v.AsFloat()))
		return buf
	case mixed.KindDouble:
		buf := make([]byte, 9)
		buf[0] = byte(v.Kind())
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(v.AsDouble()))
		return buf
	case mixed.KindString:
		body := encodeVariable([]byte(v.AsString()), ma.threshold)
		return append([]byte{byte(v.Kind())}, body...)
	case mixed.KindBinary:
		body := encodeVariable(v.AsBinary(), ma.threshold)
		return append([]byte{byte(v.Kind())}, body...)
	case mixed.KindTimestamp:
		buf := make([]byte, 9)
		buf[0] = byte(v.Kind())
		binary.LittleEndian.PutUint64(buf[1:], uint64(v.AsTime().UnixNano()))
		return buf
	case mixed.KindDecimal:
		d := v.AsDecimal()
		mantissa := d.Mantissa.Bytes32()
		buf := make([]byte, 1+1+32)
		buf[0] = byte(v.Kind())
		buf[1] = byte(d.Exp)
		copy(buf[2:], mantissa[:])
		return buf
	case mixed.KindObjectID:
		buf := make([]byte, 9)
		buf[0] = byte(v.Kind())
		binary.LittleEndian.PutUint64(buf[1:], v.AsObjectID())
		return buf
	case mixed.KindUUID:
		u := v.AsUUID()
		buf := make([]byte, 1+16)
		buf[0] = byte(v.Kind())
		copy(buf[1:], u[:])
		return buf
	case mixed.KindTypedLink, mixed.KindUntypedLink:
		link := v.AsLink()
		table := []byte(link.Table)
		buf := make([]byte, 1+8+8+len(table))
		buf[0] = byte(v.Kind())
		binary.LittleEndian.PutUint64(buf[1:], uint64(link.Object))
		binary.LittleEndian.PutUint64(buf[9:], uint64(len(table)))
		copy(buf[17:], table)
		return buf
	default:
		return []byte{byte(mixed.KindNull)}
	}
}

func decodeMixed(buf []byte) (mixed.Value, int, error) {
	if len(buf) == 0 {
		return mixed.Value{}, 0, fmt.Errorf("arena: empty mixed entry")
	}
	kind := mixed.Kind(buf[0])
	switch kind {
	case mixed.KindNull:
		return mixed.Null(), 1, nil
	case mixed.KindBool:
		return mixed.Bool(buf[1] == 1), 2, nil
	case mixed.KindInt:
		return mixed.Int(int64(binary.LittleEndian.Uint64(buf[1:9]))), 9, nil
	case mixed.KindFloat:
		return mixed.Float(math.Float32frombits(binary.LittleEndian.Uint32(buf[1:5]))), 5, nil
	case mixed.KindDouble:
		return mixed.Double(math.Float64frombits(binary.LittleEndian.Uint64(buf[1:9]))), 9, nil
	case mixed.KindString:
		raw, consumed, err := decodeVariable(buf[1:])
		if err != nil {
			return mixed.Value{}, 0, err
		}
		return mixed.String(string(raw)), 1 + consumed, nil
	case mixed.KindBinary:
		raw, consumed, err := decodeVariable(buf[1:])
		if err != nil {
			return mixed.Value{}, 0, err
		}
		return mixed.Binary(raw), 1 + consumed, nil
	case mixed.KindTimestamp:
		ns := int64(binary.LittleEndian.Uint64(buf[1:9]))
		return mixed.Timestamp(time.Unix(0, ns).UTC()), 9, nil
	case mixed.KindDecimal:
		exp := int8(buf[1])
		var mantissa uint256.Int
		var arr [32]byte
		copy(arr[:], buf[2:34])
		mantissa.SetBytes32(arr[:])
		return mixed.DecimalValue(mixed.Decimal{Mantissa: mantissa, Exp: exp}), 34, nil
	case mixed.KindObjectID:
		return mixed.ObjectID(binary.LittleEndian.Uint64(buf[1:9])), 9, nil
	case mixed.KindUUID:
		var u [16]byte
		copy(u[:], buf[1:17])
		return mixed.UUID(u), 17, nil
	case mixed.KindTypedLink, mixed.KindUntypedLink:
		obj := mixed.ObjectKey(binary.LittleEndian.Uint64(buf[1:9]))
		tn := int(binary.LittleEndian.Uint64(buf[9:17]))
		table := mixed.TableKey(buf[17 : 17+tn])
		n := 17 + tn
		if kind == mixed.KindTypedLink {
			return mixed.TypedLink(table, obj), n, nil
		}
		return mixed.UntypedLink(obj), n, nil
	default:
		return mixed.Value{}, 0, fmt.Errorf("arena: unknown mixed kind byte %d", buf[0])
	}
}

func (ma *MixedArray) flush() error {
	encoded := make([][]byte, len(ma.entries))
	total := 0
	for i, v := range ma.entries {
		encoded[i] = ma.encode(v)
		total += len(encoded[i])
	}
	if total == 0 {
		total = 1
	}
	newRef, err := ma.a.Alloc(total)
	if err != nil {
		return err
	}
	buf, err := ma.a.Deref(newRef, total)
	if err != nil {
		return err
	}
	off := 0
	for _, e := range encoded {
		copy(buf[off:], e)
		off += len(e)
	}
	ma.ref = newRef
	return nil
}

func (ma *MixedArray) load(n int) error {
	ma.entries = make([]mixed.Value, 0, n)
	off := 0
	for len(ma.entries) < n {
		entryLen, err := ma.peekEntryLen(off)
		if err != nil {
			return err
		}
		full, err := ma.a.Deref(ma.ref+Ref(off), entryLen)
		if err != nil {
			return err
		}
		v, consumed, err := decodeMixed(full)
		if err != nil {
			return err
		}
		ma.entries = append(ma.entries, v)
		off += consumed
	}
	return nil
}

// peekEntryLen reads only as much header as each kind needs to announce its
// own total length, so load never has to guess a window size.
func (ma *MixedArray) peekEntryLen(off int) (int, error) {
	kindByte, err := ma.a.Deref(ma.ref+Ref(off), 1)
	if err != nil {
		return 0, err
	}
	switch mixed.Kind(kindByte[0]) {
	case mixed.KindNull:
		return 1, nil
	case mixed.KindBool:
		return 2, nil
	case mixed.KindInt, mixed.KindDouble, mixed.KindTimestamp, mixed.KindObjectID:
		return 9, nil
	case mixed.KindFloat:
		return 5, nil
	case mixed.KindDecimal:
		return 34, nil
	case mixed.KindUUID:
		return 17, nil
	case mixed.KindString, mixed.KindBinary:
		// 1 kind byte + 1 flag byte + 8 length bytes, then the (possibly
		// compressed) payload itself.
		hdr, err := ma.a.Deref(ma.ref+Ref(off), 10)
		if err != nil {
			return 0, err
		}
		return 10 + int(binary.LittleEndian.Uint64(hdr[2:10])), nil
	case mixed.KindTypedLink, mixed.KindUntypedLink:
		hdr, err := ma.a.Deref(ma.ref+Ref(off), 17)
		if err != nil {
			return 0, err
		}
		return 17 + int(binary.LittleEndian.Uint64(hdr[9:17])), nil
	default:
		return 0, fmt.Errorf("arena: unknown mixed kind byte %d", kindByte[0])
	}
}
