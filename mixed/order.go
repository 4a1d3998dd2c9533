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

import "bytes"

// band orders the Kind groups for cross-type comparison: Null < Bool <
// numeric (Int/Float/Double/Decimal, cross-promoted) < String < Binary <
// Timestamp < ObjectID < UUID < UntypedLink < TypedLink. This total order is
// documented here rather than left to comparator happenstance, since Sort
// and Distinct over a Mixed column must agree with every other caller.
func band(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt, KindFloat, KindDouble, KindDecimal:
		return 2
	case KindString:
		return 3
	case KindBinary:
		return 4
	case KindTimestamp:
		return 5
	case KindObjectID:
		return 6
	case KindUUID:
		return 7
	case KindUntypedLink:
		return 8
	case KindTypedLink:
		return 9
	default:
		return 10
	}
}

func (v Value) numeric() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.intVal)
	case KindFloat:
		return float64(v.floatVal)
	case KindDouble:
		return v.doubleVal
	case KindDecimal:
		return v.decVal.Float64()
	default:
		return 0
	}
}

// Compare returns -1, 0, or 1 following the total order documented on band.
// It is used by Sort/Distinct/Min/Max and never panics on mixed kinds.
func Compare(a, b Value) int {
	ba, bb := band(a.kind), band(b.kind)
	if ba != bb {
		return cmpInt(ba, bb)
	}
	switch ba {
	case 0: // Null
		return 0
	case 1: // Bool
		return cmpBool(a.boolVal, b.boolVal)
	case 2: // numeric
		return cmpFloat(a.numeric(), b.numeric())
	case 3: // String
		return cmpString(a.strVal, b.strVal)
	case 4: // Binary
		return bytes.Compare(a.binVal, b.binVal)
	case 5: // Timestamp
		if a.timeVal.Before(b.timeVal) {
			return -1
		}
		if a.timeVal.After(b.timeVal) {
			return 1
		}
		return 0
	case 6: // ObjectID
		return cmpUint(a.objIDVal, b.objIDVal)
	case 7: // UUID
		return bytes.Compare(a.uuidVal[:], b.uuidVal[:])
	case 8, 9: // links: table then object
		if a.linkVal.Table != b.linkVal.Table {
			return cmpString(string(a.linkVal.Table), string(b.linkVal.Table))
		}
		return cmpUint(uint64(a.linkVal.Object), uint64(b.linkVal.Object))
	default:
		return 0
	}
}

// Less reports whether a sorts before b under Compare's total order.
func Less(a, b Value) bool { return Compare(a, b) < 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
