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

// Package objectstore models the transactional object store that a
// dictionary column lives inside: object validation, backlink mutation,
// recursive cascade removal, and replication. It ships interfaces plus one
// in-memory reference implementation (MemStore) exercised by the dict
// package's own tests.
package objectstore

import (
	"github.com/ledgerkv/objectdict/mixed"
)

// TableKey and ObjectKey alias the mixed package's link components so the
// object store and the value type agree on identity without an import
// cycle.
type (
	TableKey  = mixed.TableKey
	ObjectKey = mixed.ObjectKey
)

// ColumnKey identifies a column within a table.
type ColumnKey string

// ObjectRef is a value-type lookup handle (table-key + object-key) rather
// than a raw pointer, so a dictionary handle cannot outlive an invalidated
// parent object without detection.
type ObjectRef struct {
	Table  TableKey
	Object ObjectKey
}

// DictKey identifies one dictionary column instance for replication
// purposes.
type DictKey struct {
	Table  TableKey
	Object ObjectKey
	Column ColumnKey
}

// CascadeState accumulates objects whose strong-referenced owners have been
// removed and which must themselves be removed recursively. It is threaded
// through ReplaceBacklink/RemoveBacklink/RemoveRecursive calls rather than
// acted on immediately, so a single dictionary mutation can report every
// cascade it triggered.
type CascadeState struct {
	Scheduled []ObjectRef
}

// Schedule records ref as needing recursive removal.
func (c *CascadeState) Schedule(ref ObjectRef) {
	c.Scheduled = append(c.Scheduled, ref)
}

// Resolver answers link validity and liveness questions for a parent
// object's enclosing store.
type Resolver interface {
	// Validate reports whether ref currently names a live object.
	Validate(ref ObjectRef) (bool, error)
	// IsLive reports whether ref's object (the dictionary's own parent) is
	// still live, i.e. has not been removed since the handle was obtained.
	IsLive(ref ObjectRef) bool
}

// Table is the column owner's table, consulted for link-column schema and
// for cascading object removal.
type Table interface {
	// OppositeTable returns the target table a Link-typed column points
	// into.
	OppositeTable(col ColumnKey) (TableKey, error)
	// TargetIsValid reports whether key is currently a valid, non-tombstoned
	// object key in this table.
	TargetIsValid(key ObjectKey) bool
	// CreateObject allocates a fresh, unlinked object in this table.
	CreateObject() (ObjectKey, error)
	// CreateLinkedObject allocates a fresh object in this table and
	// immediately records a backlink from it to (from, col).
	CreateLinkedObject(from ObjectRef, col ColumnKey) (ObjectKey, error)
	// RemoveRecursive removes every object cascade has scheduled, recursing
	// into their own backlinks.
	RemoveRecursive(cascade *CascadeState) error
}

// Object is a single row a dictionary column's link values point at or
// away from.
type Object interface {
	// ReplaceBacklink updates the reverse-reference bookkeeping when a
	// Link-typed value changes from old to new under col. scheduled reports
	// whether removing the old backlink left its target with zero owners,
	// in which case the target must be cascade-removed via the owning
	// Table's RemoveRecursive.
	ReplaceBacklink(col ColumnKey, old, new mixed.Value, cascade *CascadeState) (scheduled bool, err error)
	// RemoveBacklink clears the reverse-reference for link, used on erase
	// and clear.
	RemoveBacklink(col ColumnKey, link mixed.Value, cascade *CascadeState) error
}

// ReplicationSink receives one event per dictionary mutation, in mutation
// order.
type ReplicationSink interface {
	DictionaryInsert(dict DictKey, ndx int, key mixed.Key, value mixed.Value)
	DictionarySet(dict DictKey, ndx int, key mixed.Key, value mixed.Value)
	DictionaryErase(dict DictKey, ndx int, key mixed.Key)
}
