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

// Package mixed implements the tagged-union value type that flows across
// dictionary boundaries: every scalar the column types support, plus typed
// and untyped object links.
package mixed

import (
	"math/big"
	"time"

	"github.com/holiman/uint256"
)

// Kind tags the active variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDouble
	KindString
	KindBinary
	KindTimestamp
	KindDecimal
	KindObjectID
	KindUUID
	KindTypedLink
	KindUntypedLink
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindBinary:
		return "Binary"
	case KindTimestamp:
		return "Timestamp"
	case KindDecimal:
		return "Decimal"
	case KindObjectID:
		return "ObjectID"
	case KindUUID:
		return "UUID"
	case KindTypedLink:
		return "TypedLink"
	case KindUntypedLink:
		return "UntypedLink"
	default:
		return "Unknown"
	}
}

// TableKey identifies a table in the enclosing object store.
type TableKey string

// ObjectKey identifies an object within a table. The zero value never
// denotes a live object; Unresolved marks a tombstoned target.
type ObjectKey uint64

// Unresolved is the sentinel ObjectKey meaning "the target used to exist but
// was deleted"; it is distinct from the zero ObjectKey so object key 0
// remains addressable.
const Unresolved ObjectKey = ^ObjectKey(0)

// Link is the payload shared by TypedLink and UntypedLink variants. Table is
// empty for an UntypedLink.
type Link struct {
	Table  TableKey
	Object ObjectKey
}

// Decimal represents Mantissa * 10^Exp without binary floating-point error.
// Sum over a Decimal column (NumericDecimal) accumulates the mantissa
// exactly via uint256.Int; Avg divides that exact sum into a float64, which
// is where any imprecision enters.
type Decimal struct {
	Mantissa uint256.Int
	Exp      int8
}

func NewDecimal(mantissa int64, exp int8) Decimal {
	var m uint256.Int
	if mantissa < 0 {
		m.SetUint64(uint64(-mantissa))
		m.Neg(&m)
	} else {
		m.SetUint64(uint64(mantissa))
	}
	return Decimal{Mantissa: m, Exp: exp}
}

// Float64 approximates the decimal as a float64, reading Mantissa as a
// two's-complement signed value. It is used for cross-type ordering (see
// Compare), by the float64-promoting NumericMixed accumulator, and by Avg.
func (d Decimal) Float64() float64 {
	m := d.Mantissa
	neg := m.Sign() < 0
	if neg {
		m.Neg(&m)
	}
	f := new(big.Float).SetInt(m.ToBig())
	scale := new(big.Float).SetFloat64(pow10(d.Exp))
	f.Mul(f, scale)
	out, _ := f.Float64()
	if neg {
		out = -out
	}
	return out
}

func pow10(exp int8) float64 {
	if exp == 0 {
		return 1
	}
	base := 10.0
	if exp < 0 {
		base = 0.1
		exp = -exp
	}
	result := 1.0
	for i := int8(0); i < exp; i++ {
		result *= base
	}
	return result
}

// Value is the tagged union over every scalar and link type the dictionary
// can store.
type Value struct {
	kind      Kind
	boolVal   bool
	intVal    int64
	floatVal  float32
	doubleVal float64
	strVal    string
	binVal    []byte
	timeVal   time.Time
	decVal    Decimal
	objIDVal  uint64
	uuidVal   [16]byte
	linkVal   Link
}

func Null() Value                  { return Value{kind: KindNull} }
func Bool(b bool) Value            { return Value{kind: KindBool, boolVal: b} }
func Int(i int64) Value            { return Value{kind: KindInt, intVal: i} }
func Float(f float32) Value        { return Value{kind: KindFloat, floatVal: f} }
func Double(f float64) Value       { return Value{kind: KindDouble, doubleVal: f} }
func String(s string) Value        { return Value{kind: KindString, strVal: s} }
func Binary(b []byte) Value        { return Value{kind: KindBinary, binVal: b} }
func Timestamp(t time.Time) Value  { return Value{kind: KindTimestamp, timeVal: t} }
func DecimalValue(d Decimal) Value { return Value{kind: KindDecimal, decVal: d} }
func ObjectID(id uint64) Value     { return Value{kind: KindObjectID, objIDVal: id} }
func UUID(u [16]byte) Value        { return Value{kind: KindUUID, uuidVal: u} }

func TypedLink(table TableKey, obj ObjectKey) Value {
	return Value{kind: KindTypedLink, linkVal: Link{Table: table, Object: obj}}
}

func UntypedLink(obj ObjectKey) Value {
	return Value{kind: KindUntypedLink, linkVal: Link{Object: obj}}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) AsBool() bool      { return v.boolVal }
func (v Value) AsInt() int64      { return v.intVal }
func (v Value) AsFloat() float32  { return v.floatVal }
func (v Value) AsDouble() float64 { return v.doubleVal }
func (v Value) AsString() string  { return v.strVal }
func (v Value) AsBinary() []byte  { return v.binVal }
func (v Value) AsTime() time.Time { return v.timeVal }
func (v Value) AsDecimal() Decimal { return v.decVal }
func (v Value) AsObjectID() uint64 { return v.objIDVal }
func (v Value) AsUUID() [16]byte   { return v.uuidVal }
func (v Value) AsLink() Link       { return v.linkVal }

// IsLink reports whether v carries a typed or untyped object reference.
func (v Value) IsLink() bool {
	return v.kind == KindTypedLink || v.kind == KindUntypedLink
}

// Equal implements the structural equality mixed.Value needs for aggregate
// scans (FindAny) and test assertions. Cross-kind values are never equal,
// except that Equal never matches two Nulls by identity tricks: Null == Null
// is true by definition (both carry no payload).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == o.boolVal
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat:
		return v.floatVal == o.floatVal
	case KindDouble:
		return v.doubleVal == o.doubleVal
	case KindString:
		return v.strVal == o.strVal
	case KindBinary:
		return bytesEqual(v.binVal, o.binVal)
	case KindTimestamp:
		return v.timeVal.Equal(o.timeVal)
	case KindDecimal:
		return v.decVal.Exp == o.decVal.Exp && v.decVal.Mantissa.Eq(&o.decVal.Mantissa)
	case KindObjectID:
		return v.objIDVal == o.objIDVal
	case KindUUID:
		return v.uuidVal == o.uuidVal
	case KindTypedLink, KindUntypedLink:
		return v.linkVal == o.linkVal
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
