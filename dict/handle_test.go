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

package dict

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ledgerkv/objectdict/config"
	"github.com/ledgerkv/objectdict/mixed"
	"github.com/ledgerkv/objectdict/normalize"
	"github.com/ledgerkv/objectdict/objectstore"
	"github.com/ledgerkv/objectdict/objectstore/objectstoremock"
	"github.com/ledgerkv/objectdict/slot"
	"github.com/ledgerkv/objectdict/xlog"
)

type fixture struct {
	h        *Handle
	resolver *objectstoremock.Resolver
	object   *objectstoremock.Object
	table    *objectstoremock.Table
	sink     *objectstore.SliceReplicationSink
}

func newFixture(t *testing.T, declared normalize.DeclaredType, nullable bool) *fixture {
	t.Helper()
	resolver := objectstoremock.NewResolver()
	object := objectstoremock.NewObject()
	table := objectstoremock.NewTable("other")
	sink := &objectstore.SliceReplicationSink{}

	h, err := New(Params{
		Config:      config.Default(),
		Resolver:    resolver,
		Table:       table,
		Object:      object,
		Sink:        sink,
		Parent:      objectstore.ObjectRef{Table: "people", Object: 1},
		Column:      "tags",
		Declared:    declared,
		DeclaredKey: normalize.DeclaredKeyMixed,
		Nullable:    nullable,
		Logger:      xlog.Noop(),
	}, nil)
	require.NoError(t, err)
	return &fixture{h: h, resolver: resolver, object: object, table: table, sink: sink}
}

func TestSizeIsZeroBeforeFirstWrite(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	require.Equal(t, 0, fx.h.Size())
	require.Nil(t, fx.h.Tree())
}

func TestInsertThenGet(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	ndx, inserted, err := fx.h.Insert(mixed.String("a"), mixed.Int(1))
	require.NoError(t, err)
	require.True(t, inserted)
	require.Equal(t, 0, ndx)

	v, err := fx.h.Get(mixed.String("a"))
	require.NoError(t, err)
	require.True(t, v.Equal(mixed.Int(1)))

	require.Len(t, fx.sink.Events, 1)
	require.Equal(t, objectstore.ReplicationInsert, fx.sink.Events[0].Kind)
}

func TestInsertOverwriteEmitsSetNotInsert(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	_, _, err := fx.h.Insert(mixed.String("a"), mixed.Int(1))
	require.NoError(t, err)

	ndx, inserted, err := fx.h.Insert(mixed.String("a"), mixed.Int(2))
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, 0, ndx)

	v, err := fx.h.Get(mixed.String("a"))
	require.NoError(t, err)
	require.True(t, v.Equal(mixed.Int(2)))

	require.Len(t, fx.sink.Events, 2)
	require.Equal(t, objectstore.ReplicationSet, fx.sink.Events[1].Kind)
	require.Equal(t, 1, fx.h.Size())
}

func TestGetMissingKeyFails(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	_, err := fx.h.Get(mixed.String("missing"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	v, ok, err := fx.h.TryGet(mixed.String("missing"))
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, v.Equal(mixed.Value{}))
}

func TestGetOrInsertNull(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	v, err := fx.h.GetOrInsertNull(mixed.String("a"))
	require.NoError(t, err)
	require.True(t, v.IsNull())
	require.Equal(t, 1, fx.h.Size())

	_, _, err = fx.h.Insert(mixed.String("a"), mixed.Int(5))
	require.NoError(t, err)
	v, err = fx.h.GetOrInsertNull(mixed.String("a"))
	require.NoError(t, err)
	require.True(t, v.Equal(mixed.Int(5)))
}

func TestContains(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	ok, err := fx.h.Contains(mixed.String("a"))
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = fx.h.Insert(mixed.String("a"), mixed.Int(1))
	require.NoError(t, err)
	ok, err = fx.h.Contains(mixed.String("a"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEraseRemovesEntryAndEmitsReplication(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	_, _, err := fx.h.Insert(mixed.String("a"), mixed.Int(1))
	require.NoError(t, err)

	require.NoError(t, fx.h.Erase(mixed.String("a")))
	require.Equal(t, 0, fx.h.Size())
	_, err = fx.h.Get(mixed.String("a"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.Equal(t, objectstore.ReplicationErase, fx.sink.Events[len(fx.sink.Events)-1].Kind)

	err = fx.h.Erase(mixed.String("a"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestNullifyOverwritesWithoutBacklinkWork(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	target := objectstore.ObjectRef{Table: "other", Object: 7}
	link := mixed.TypedLink(target.Table, target.Object)
	_, _, err := fx.h.Insert(mixed.String("a"), link)
	require.NoError(t, err)
	require.Equal(t, 1, fx.object.CallCount("ReplaceBacklink"))

	require.NoError(t, fx.h.Nullify(mixed.String("a")))
	v, err := fx.h.Get(mixed.String("a"))
	require.NoError(t, err)
	require.True(t, v.IsNull())
	require.Equal(t, 1, fx.object.CallCount("ReplaceBacklink"))
	require.Equal(t, 0, fx.object.CallCount("RemoveBacklink"))
}

func TestClearRemovesEverythingAndDestroysTree(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	for i := 0; i < 5; i++ {
		_, _, err := fx.h.Insert(mixed.Int(int64(i)), mixed.Int(int64(i*10)))
		require.NoError(t, err)
	}
	require.NoError(t, fx.h.Clear())
	require.Equal(t, 0, fx.h.Size())
	require.Nil(t, fx.h.Tree())

	erases := 0
	for _, e := range fx.sink.Events {
		if e.Kind == objectstore.ReplicationErase {
			erases++
		}
	}
	require.Equal(t, 5, erases)
}

func TestDetachedAccessorFailsEveryOperation(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	_, _, err := fx.h.Insert(mixed.String("a"), mixed.Int(1))
	require.NoError(t, err)
	fx.resolver.Detach()

	_, err = fx.h.Get(mixed.String("a"))
	require.ErrorIs(t, err, ErrDetachedAccessor)
	_, _, err = fx.h.Insert(mixed.String("b"), mixed.Int(2))
	require.ErrorIs(t, err, ErrDetachedAccessor)
	err = fx.h.Erase(mixed.String("a"))
	require.ErrorIs(t, err, ErrDetachedAccessor)
	err = fx.h.Clear()
	require.ErrorIs(t, err, ErrDetachedAccessor)
}

func TestCascadeRemovalOnLastBacklinkReplacement(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	target := objectstore.ObjectRef{Table: "other", Object: 9}
	scheduleOnce := true
	fx.object.ReplaceBacklinkFunc = func(col objectstore.ColumnKey, old, newV mixed.Value, cascade *objectstore.CascadeState) (bool, error) {
		if scheduleOnce {
			cascade.Schedule(target)
			scheduleOnce = false
			return true, nil
		}
		return false, nil
	}

	_, _, err := fx.h.Insert(mixed.String("a"), mixed.TypedLink(target.Table, target.Object))
	require.NoError(t, err)
	require.Equal(t, 1, fx.table.RemoveRecursiveCalls)
}

func TestEachVisitsInSlotOrder(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	for _, s := range []int64{30, 10, 20} {
		_, _, err := fx.h.Insert(mixed.Int(s), mixed.Int(s))
		require.NoError(t, err)
	}
	var got []int64
	require.NoError(t, fx.h.Each(func(key, value mixed.Value) bool {
		got = append(got, value.AsInt())
		return true
	}))
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		prev, err := slot.Derive(mixed.IntKey(got[i-1]))
		require.NoError(t, err)
		cur, err := slot.Derive(mixed.IntKey(got[i]))
		require.NoError(t, err)
		require.Less(t, prev, cur)
	}
}

func TestFindReturnsEndIteratorOnMiss(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	it, err := fx.h.Find(mixed.String("missing"))
	require.NoError(t, err)
	require.False(t, it.Valid())

	_, _, err = fx.h.Insert(mixed.String("a"), mixed.Int(1))
	require.NoError(t, err)
	it, err = fx.h.Find(mixed.String("a"))
	require.NoError(t, err)
	require.True(t, it.Valid())
	require.True(t, it.Value().Equal(mixed.Int(1)))
}

func TestFindAnyAndFindAnyKey(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredMixed, true)
	for i := 0; i < 5; i++ {
		_, _, err := fx.h.Insert(mixed.Int(int64(i)), mixed.Int(int64(i*10)))
		require.NoError(t, err)
	}
	ndx, ok, err := fx.h.FindAny(mixed.Int(20))
	require.NoError(t, err)
	require.True(t, ok)
	require.GreaterOrEqual(t, ndx, 0)

	_, ok, err = fx.h.FindAny(mixed.Int(999))
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = fx.h.FindAnyKey(mixed.Int(2))
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = fx.h.FindAnyKey(mixed.Int(999))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeclaredKeyTypeIsEnforced(t *testing.T) {
	resolver := objectstoremock.NewResolver()
	object := objectstoremock.NewObject()
	table := objectstoremock.NewTable("other")
	sink := &objectstore.SliceReplicationSink{}

	h, err := New(Params{
		Config:      config.Default(),
		Resolver:    resolver,
		Table:       table,
		Object:      object,
		Sink:        sink,
		Parent:      objectstore.ObjectRef{Table: "people", Object: 1},
		Column:      "tags",
		Declared:    normalize.DeclaredMixed,
		DeclaredKey: normalize.DeclaredKeyInt,
		Nullable:    true,
		Logger:      xlog.Noop(),
	}, nil)
	require.NoError(t, err)

	_, _, err = h.Insert(mixed.Int(1), mixed.Bool(true))
	require.NoError(t, err)

	_, _, err = h.Insert(mixed.String("not-an-int-key"), mixed.Bool(true))
	require.ErrorIs(t, err, ErrCollectionTypeMismatch)

	_, err = h.Get(mixed.String("not-an-int-key"))
	require.ErrorIs(t, err, ErrCollectionTypeMismatch)
}

func TestMinMaxSumAvg(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredInt, false)
	for _, v := range []int64{5, 1, 9, 3} {
		_, _, err := fx.h.Insert(mixed.Int(v), mixed.Int(v))
		require.NoError(t, err)
	}
	minV, ok, err := fx.h.Min()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), minV.AsInt())

	maxV, ok, err := fx.h.Max()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(9), maxV.AsInt())

	sum, count, err := fx.h.Sum(mixed.NumericInt)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.Equal(t, int64(18), sum.AsInt())

	avg, ok, err := fx.h.Avg(mixed.NumericInt)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 4.5, avg.AsDouble(), 0.0001)
}

func TestSumDecimalIsExact(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredDecimal, false)
	decimals := []mixed.Decimal{
		mixed.NewDecimal(100, -2), // 1.00
		mixed.NewDecimal(1, -3),   // 0.001
		mixed.NewDecimal(200, 0),  // 200
	}
	for i, d := range decimals {
		_, _, err := fx.h.Insert(mixed.Int(int64(i)), mixed.DecimalValue(d))
		require.NoError(t, err)
	}

	sum, count, err := fx.h.Sum(mixed.NumericDecimal)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	want := mixed.NewDecimal(201001, -3) // 1.00 + 0.001 + 200 = 201.001
	got := sum.AsDecimal()
	require.Equal(t, want.Exp, got.Exp)
	require.True(t, want.Mantissa.Eq(&got.Mantissa))
}

func TestSortAndDistinct(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredInt, false)
	values := []int64{30, 10, 20, 10, 30}
	for i, v := range values {
		_, _, err := fx.h.Insert(mixed.Int(int64(i)), mixed.Int(v))
		require.NoError(t, err)
	}

	idx := []int{0, 1, 2, 3, 4}
	require.NoError(t, fx.h.Sort(idx, true))

	var sorted []int64
	for _, i := range idx {
		entry, err := fx.h.tree.GetAt(i)
		require.NoError(t, err)
		sorted = append(sorted, entry.Value.AsInt())
	}
	require.True(t, cmp.Equal(sorted, []int64{10, 10, 20, 30, 30}))

	distinct, err := fx.h.Distinct(idx)
	require.NoError(t, err)
	require.Len(t, distinct, 3)
	for i := 1; i < len(distinct); i++ {
		require.Less(t, distinct[i-1], distinct[i])
	}
}

func TestSortKeysAndDistinctKeys(t *testing.T) {
	fx := newFixture(t, normalize.DeclaredInt, false)
	keys := []int64{30, 10, 20}
	for _, k := range keys {
		_, _, err := fx.h.Insert(mixed.Int(k), mixed.Int(k))
		require.NoError(t, err)
	}
	idx := []int{0, 1, 2}
	require.NoError(t, fx.h.SortKeys(idx, true))

	var sortedKeys []int64
	for _, i := range idx {
		entry, err := fx.h.tree.GetAt(i)
		require.NoError(t, err)
		sortedKeys = append(sortedKeys, entry.Key.Int())
	}
	require.True(t, cmp.Equal(sortedKeys, []int64{10, 20, 30}))

	out, err := fx.h.DistinctKeys(idx)
	require.NoError(t, err)
	require.Equal(t, idx, out)
}

func TestInsertEraseSizeInvariantProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fx := newFixture(t, normalize.DeclaredMixed, true)
		model := map[int64]bool{}
		n := rapid.IntRange(0, 40).Draw(rt, "ops")
		for i := 0; i < n; i++ {
			k := rapid.Int64Range(0, 20).Draw(rt, "key")
			op := rapid.IntRange(0, 1).Draw(rt, "op")
			if op == 0 {
				_, _, err := fx.h.Insert(mixed.Int(k), mixed.Int(k))
				require.NoError(rt, err)
				model[k] = true
			} else {
				err := fx.h.Erase(mixed.Int(k))
				if model[k] {
					require.NoError(rt, err)
					delete(model, k)
				} else {
					require.ErrorIs(rt, err, ErrKeyNotFound)
				}
			}
		}
		require.Equal(rt, len(model), fx.h.Size())
	})
}
