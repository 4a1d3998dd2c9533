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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompareCrossKindBandOrder(t *testing.T) {
	ordered := []Value{
		Null(),
		Bool(false),
		Int(5),
		String("a"),
		Binary([]byte{1}),
		Timestamp(time.Unix(100, 0)),
		ObjectID(1),
		UUID([16]byte{1}),
		UntypedLink(1),
		TypedLink("t", 1),
	}
	for i := 0; i < len(ordered)-1; i++ {
		require.Less(t, Compare(ordered[i], ordered[i+1]), 0, "index %d should sort before %d", i, i+1)
		require.Greater(t, Compare(ordered[i+1], ordered[i]), 0)
	}
}

func TestCompareNumericCrossPromotion(t *testing.T) {
	require.Equal(t, 0, Compare(Int(5), Double(5.0)))
	require.True(t, Less(Int(4), Float(4.5)))
	require.True(t, Less(Double(1.0), Int(2)))
}

func TestCompareEqualValuesAreZero(t *testing.T) {
	require.Equal(t, 0, Compare(String("x"), String("x")))
	require.Equal(t, 0, Compare(Null(), Null()))
}

func TestLessMatchesCompareSign(t *testing.T) {
	require.True(t, Less(Int(1), Int(2)))
	require.False(t, Less(Int(2), Int(1)))
	require.False(t, Less(Int(1), Int(1)))
}

func TestValueEqual(t *testing.T) {
	require.True(t, Int(5).Equal(Int(5)))
	require.False(t, Int(5).Equal(Int(6)))
	require.False(t, Int(5).Equal(String("5")))
	require.True(t, Binary([]byte{1, 2}).Equal(Binary([]byte{1, 2})))
	require.False(t, Binary([]byte{1, 2}).Equal(Binary([]byte{1, 3})))
	link := TypedLink("t", 1)
	require.True(t, link.Equal(TypedLink("t", 1)))
	require.False(t, link.Equal(TypedLink("other", 1)))
}

func TestDecimalFloat64Approximation(t *testing.T) {
	d := NewDecimal(1234, -2)
	require.InDelta(t, 12.34, d.Float64(), 0.0001)

	neg := NewDecimal(-500, 0)
	require.InDelta(t, -500.0, neg.Float64(), 0.0001)
}
