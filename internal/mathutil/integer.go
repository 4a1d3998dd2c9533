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

// Package mathutil holds the small integer helpers the cluster package
// needs for split/merge threshold arithmetic and overflow-checked int64
// accumulation.
package mathutil

// CeilDiv returns ceil(x/y), or 0 if y is 0. Used to compute a leaf's split
// point so both halves end up as close to equal size as possible.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}

// SafeAddInt64 returns x+y and reports whether the addition overflowed an
// int64, used by the Sum accumulator over Int columns.
func SafeAddInt64(x, y int64) (int64, bool) {
	sum := x + y
	overflow := (y > 0 && sum < x) || (y < 0 && sum > x)
	return sum, overflow
}
