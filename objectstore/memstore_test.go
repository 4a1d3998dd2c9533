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

package objectstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkv/objectdict/mixed"
	"github.com/ledgerkv/objectdict/objectstore"
)

func TestCreateObjectIsValid(t *testing.T) {
	ms := objectstore.NewMemStore()
	table := ms.Table("people")
	key, err := table.CreateObject()
	require.NoError(t, err)
	ok, err := ms.Validate(objectstore.ObjectRef{Table: "people", Object: key})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReplaceBacklinkThenRemoveSchedulesCascade(t *testing.T) {
	ms := objectstore.NewMemStore()
	targets := ms.Table("targets")
	owner := objectstore.ObjectRef{Table: "owners", Object: 1}

	targetKey, err := targets.CreateObject()
	require.NoError(t, err)
	target := mixed.TypedLink("targets", targetKey)

	obj := ms.ObjectHandle(owner)
	cascade := &objectstore.CascadeState{}
	scheduled, err := obj.ReplaceBacklink("col", mixed.Null(), target, cascade)
	require.NoError(t, err)
	require.False(t, scheduled)
	require.Empty(t, cascade.Scheduled)

	scheduled, err = obj.ReplaceBacklink("col", target, mixed.Null(), cascade)
	require.NoError(t, err)
	require.True(t, scheduled)
	require.Len(t, cascade.Scheduled, 1)
	require.Equal(t, objectstore.ObjectRef{Table: "targets", Object: targetKey}, cascade.Scheduled[0])
}

func TestRemoveRecursiveClearsValidity(t *testing.T) {
	ms := objectstore.NewMemStore()
	table := ms.Table("t")
	key, err := table.CreateObject()
	require.NoError(t, err)

	cascade := &objectstore.CascadeState{Scheduled: []objectstore.ObjectRef{{Table: "t", Object: key}}}
	require.NoError(t, table.RemoveRecursive(cascade))

	ok, err := ms.Validate(objectstore.ObjectRef{Table: "t", Object: key})
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, cascade.Scheduled)
}

func TestOppositeTableLookup(t *testing.T) {
	ms := objectstore.NewMemStore()
	ms.SetOppositeTable("owners", "col", "targets")
	table := ms.Table("owners")
	target, err := table.OppositeTable("col")
	require.NoError(t, err)
	require.Equal(t, objectstore.TableKey("targets"), target)

	_, err = table.OppositeTable("missing")
	require.Error(t, err)
}

func TestSliceReplicationSinkRecordsOrder(t *testing.T) {
	sink := &objectstore.SliceReplicationSink{}
	dict := objectstore.DictKey{Table: "t", Object: 1, Column: "c"}
	sink.DictionaryInsert(dict, 0, mixed.IntKey(1), mixed.String("a"))
	sink.DictionarySet(dict, 0, mixed.IntKey(1), mixed.String("b"))
	sink.DictionaryErase(dict, 0, mixed.IntKey(1))

	require.Len(t, sink.Events, 3)
	require.Equal(t, objectstore.ReplicationInsert, sink.Events[0].Kind)
	require.Equal(t, objectstore.ReplicationSet, sink.Events[1].Kind)
	require.Equal(t, objectstore.ReplicationErase, sink.Events[2].Kind)
}
