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

package mixed

import (
	"golang.org/x/exp/constraints"

	"github.com/holiman/uint256"
)

// NumericKind selects which accumulator specialization Sum/Avg dispatch to,
// per the column's declared value type.
type NumericKind uint8

const (
	NumericInt NumericKind = iota
	NumericFloat
	NumericDouble
	NumericDecimal // Decimal columns, summed exactly via uint256.Int mantissas
	NumericMixed   // heterogeneous Mixed columns, promoted to float64
)

// Accumulator replaces four near-identical scan routines with a single
// capability: Accumulate reports whether it took the value (false for a
// non-numeric or incompatible Value, which the caller must not count as a
// participant).
type Accumulator interface {
	Accumulate(v Value) (took bool)
	Count() int
	Result() Value
}

// number constrains the scalar accumulators to the two families constraints
// has dedicated interfaces for (ints and floats); NewAccumulator picks the
// right instantiation based on NumericKind so call sites never branch on
// numeric type themselves.
type number interface {
	constraints.Integer | constraints.Float
}

type scalarAccumulator[T number] struct {
	sum   T
	count int
	wrap  func(T) Value
	pull  func(Value) (T, bool)
}

func (a *scalarAccumulator[T]) Accumulate(v Value) bool {
	n, ok := a.pull(v)
	if !ok {
		return false
	}
	a.sum += n
	a.count++
	return true
}

func (a *scalarAccumulator[T]) Count() int { return a.count }

func (a *scalarAccumulator[T]) Result() Value { return a.wrap(a.sum) }

// NewAccumulator returns the Sum/Avg accumulator specialized for kind.
func NewAccumulator(kind NumericKind) Accumulator {
	switch kind {
	case NumericInt:
		return &scalarAccumulator[int64]{
			wrap: Int,
			pull: func(v Value) (int64, bool) {
				if v.Kind() != KindInt {
					return 0, false
				}
				return v.AsInt(), true
			},
		}
	case NumericFloat:
		return &scalarAccumulator[float32]{
			wrap: Float,
			pull: func(v Value) (float32, bool) {
				if v.Kind() != KindFloat {
					return 0, false
				}
				return v.AsFloat(), true
			},
		}
	case NumericDouble:
		return &scalarAccumulator[float64]{
			wrap: Double,
			pull: func(v Value) (float64, bool) {
				if v.Kind() != KindDouble {
					return 0, false
				}
				return v.AsDouble(), true
			},
		}
	case NumericDecimal:
		return &decimalAccumulator{}
	default:
		return &mixedAccumulator{}
	}
}

// decimalAccumulator sums KindDecimal values exactly: Mantissa*10^Exp terms
// are rescaled to the smallest Exp seen so far and added as uint256.Int,
// never routing through float64.
type decimalAccumulator struct {
	sum   uint256.Int
	exp   int8
	count int
}

func (a *decimalAccumulator) Accumulate(v Value) bool {
	if v.Kind() != KindDecimal {
		return false
	}
	d := v.AsDecimal()
	switch {
	case a.count == 0:
		a.sum = d.Mantissa
		a.exp = d.Exp
	case d.Exp == a.exp:
		a.sum.Add(&a.sum, &d.Mantissa)
	case d.Exp > a.exp:
		scaled := scaleMantissa(d.Mantissa, d.Exp-a.exp)
		a.sum.Add(&a.sum, &scaled)
	default: // d.Exp < a.exp: rescale the running sum down to d.Exp
		a.sum = scaleMantissa(a.sum, a.exp-d.Exp)
		a.exp = d.Exp
		a.sum.Add(&a.sum, &d.Mantissa)
	}
	a.count++
	return true
}

func (a *decimalAccumulator) Count() int { return a.count }

func (a *decimalAccumulator) Result() Value {
	return DecimalValue(Decimal{Mantissa: a.sum, Exp: a.exp})
}

// scaleMantissa returns m * 10^places exactly, places >= 0.
func scaleMantissa(m uint256.Int, places int8) uint256.Int {
	ten := uint256.NewInt(10)
	out := m
	for i := int8(0); i < places; i++ {
		out.Mul(&out, ten)
	}
	return out
}

// mixedAccumulator sums any numeric-band Value (Int/Float/Double/Decimal)
// found in a Mixed column, promoting everything to float64, matching the
// cross-type numeric comparison rule documented in mixed/order.go.
type mixedAccumulator struct {
	sum   float64
	count int
}

func (a *mixedAccumulator) Accumulate(v Value) bool {
	switch v.Kind() {
	case KindInt, KindFloat, KindDouble, KindDecimal:
		a.sum += v.numeric()
		a.count++
		return true
	default:
		return false
	}
}

func (a *mixedAccumulator) Count() int    { return a.count }
func (a *mixedAccumulator) Result() Value { return Double(a.sum) }
