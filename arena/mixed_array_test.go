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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkv/objectdict/mixed"
)

func TestMixedArrayRoundTripsEveryKind(t *testing.T) {
	a := newTestArena(t)
	values := []mixed.Value{
		mixed.Null(),
		mixed.Bool(true),
		mixed.Int(-42),
		mixed.Float(1.5),
		mixed.Double(2.25),
		mixed.String("hello"),
		mixed.Binary([]byte{1, 2, 3}),
		mixed.Timestamp(time.Unix(1000, 0).UTC()),
		mixed.DecimalValue(mixed.NewDecimal(12345, -2)),
		mixed.ObjectID(7),
		mixed.UUID([16]byte{1, 2, 3, 4}),
		mixed.TypedLink("table", 9),
		mixed.UntypedLink(3),
	}

	ma, err := NewMixedArray(a, values, DefaultCompressThreshold)
	require.NoError(t, err)

	reloaded, err := InitMixedArrayFromRef(a, ma.Ref(), ma.Len(), DefaultCompressThreshold)
	require.NoError(t, err)
	require.Equal(t, len(values), reloaded.Len())
	for i, want := range values {
		got, err := reloaded.Get(i)
		require.NoError(t, err)
		require.True(t, want.Equal(got), "index %d: want %v got %v", i, want, got)
	}
}

func TestMixedArraySetReallocates(t *testing.T) {
	a := newTestArena(t)
	ma, err := NewMixedArray(a, []mixed.Value{mixed.Int(1), mixed.Int(2)}, DefaultCompressThreshold)
	require.NoError(t, err)

	newRef, err := ma.Set(1, mixed.String("now a string"))
	require.NoError(t, err)
	require.NotEqual(t, Ref(0), newRef)

	v, err := ma.Get(1)
	require.NoError(t, err)
	require.True(t, v.Equal(mixed.String("now a string")))
}

func TestMixedArrayAppendAndRemove(t *testing.T) {
	a := newTestArena(t)
	ma, err := NewMixedArray(a, []mixed.Value{mixed.Int(1)}, DefaultCompressThreshold)
	require.NoError(t, err)

	_, err = ma.Append(mixed.Int(2))
	require.NoError(t, err)
	require.Equal(t, 2, ma.Len())

	_, err = ma.RemoveAt(0)
	require.NoError(t, err)
	require.Equal(t, 1, ma.Len())
	v, err := ma.Get(0)
	require.NoError(t, err)
	require.True(t, v.Equal(mixed.Int(2)))
}

func TestMixedArrayReloadWithVariableLengthEntries(t *testing.T) {
	a := newTestArena(t)
	values := []mixed.Value{
		mixed.String("short"),
		mixed.Binary(make([]byte, 50)),
		mixed.Null(),
		mixed.TypedLink("a-much-longer-table-name", 123),
		mixed.Int(5),
	}
	ma, err := NewMixedArray(a, values, DefaultCompressThreshold)
	require.NoError(t, err)

	reloaded, err := InitMixedArrayFromRef(a, ma.Ref(), ma.Len(), DefaultCompressThreshold)
	require.NoError(t, err)
	for i, want := range values {
		got, err := reloaded.Get(i)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
	}
}

func TestMixedArrayCompressesLargeStringAndBinaryPayloads(t *testing.T) {
	a := newTestArena(t)
	bigString := strings.Repeat("z", DefaultCompressThreshold*4)
	bigBinary := make([]byte, DefaultCompressThreshold*4)
	values := []mixed.Value{mixed.String(bigString), mixed.Binary(bigBinary)}

	ma, err := NewMixedArray(a, values, DefaultCompressThreshold)
	require.NoError(t, err)

	reloaded, err := InitMixedArrayFromRef(a, ma.Ref(), ma.Len(), DefaultCompressThreshold)
	require.NoError(t, err)
	s, err := reloaded.Get(0)
	require.NoError(t, err)
	require.True(t, s.Equal(mixed.String(bigString)))
	b, err := reloaded.Get(1)
	require.NoError(t, err)
	require.True(t, b.Equal(mixed.Binary(bigBinary)))
}

func TestMixedArrayRespectsConfiguredThreshold(t *testing.T) {
	a := newTestArena(t)
	payload := strings.Repeat("x", 64)

	// threshold=8 forces compression of a 64-byte payload; threshold=4096
	// leaves it stored raw. Both must still round-trip to the same value.
	lowThreshold, err := NewMixedArray(a, []mixed.Value{mixed.String(payload)}, 8)
	require.NoError(t, err)
	reloadedLow, err := InitMixedArrayFromRef(a, lowThreshold.Ref(), lowThreshold.Len(), 8)
	require.NoError(t, err)
	v, err := reloadedLow.Get(0)
	require.NoError(t, err)
	require.True(t, v.Equal(mixed.String(payload)))

	highThreshold, err := NewMixedArray(a, []mixed.Value{mixed.String(payload)}, 4096)
	require.NoError(t, err)
	reloadedHigh, err := InitMixedArrayFromRef(a, highThreshold.Ref(), highThreshold.Len(), 4096)
	require.NoError(t, err)
	v, err = reloadedHigh.Get(0)
	require.NoError(t, err)
	require.True(t, v.Equal(mixed.String(payload)))
}
