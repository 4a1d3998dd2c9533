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

package objectstore

import (
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/tidwall/btree"

	"github.com/ledgerkv/objectdict/mixed"
)

type backlinkEntry struct {
	Owner ObjectRef
	Col   ColumnKey
}

type record struct {
	key       ObjectKey
	backlinks []backlinkEntry
}

type tableData struct {
	records  *btree.Map[ObjectKey, *record]
	valid    *roaring.Bitmap
	nextKey  ObjectKey
	opposite map[ColumnKey]TableKey
}

func newTableData() *tableData {
	return &tableData{
		records:  btree.NewMap[ObjectKey, *record](32),
		valid:    roaring.New(),
		opposite: make(map[ColumnKey]TableKey),
	}
}

// MemStore is an in-memory reference implementation of Resolver/Table/Object
// used by this module's own tests. Object keys are truncated to 32 bits for
// the roaring bitmap's validity index, which is fine for a test double
// exercising small key ranges but would not suit a production key space.
type MemStore struct {
	mu     sync.Mutex
	tables map[TableKey]*tableData
}

// NewMemStore returns an empty store with no tables.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[TableKey]*tableData)}
}

func (ms *MemStore) table(key TableKey) *tableData {
	td, ok := ms.tables[key]
	if !ok {
		td = newTableData()
		ms.tables[key] = td
	}
	return td
}

// SetOppositeTable registers the target table a Link-typed column in table
// points into, consulted by Table.OppositeTable.
func (ms *MemStore) SetOppositeTable(table TableKey, col ColumnKey, target TableKey) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.table(table).opposite[col] = target
}

// Table returns a Table handle bound to key, creating the table on first
// use.
func (ms *MemStore) Table(key TableKey) *MemTable {
	return &MemTable{ms: ms, key: key}
}

// ObjectHandle returns an Object handle bound to ref.
func (ms *MemStore) ObjectHandle(ref ObjectRef) *MemObject {
	return &MemObject{ms: ms, ref: ref}
}

// Validate implements Resolver.
func (ms *MemStore) Validate(ref ObjectRef) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	td, ok := ms.tables[ref.Table]
	if !ok {
		return false, nil
	}
	return td.valid.Contains(uint32(ref.Object)), nil
}

// IsLive implements Resolver.
func (ms *MemStore) IsLive(ref ObjectRef) bool {
	live, _ := ms.Validate(ref)
	return live
}

// MemTable implements Table against one MemStore table.
type MemTable struct {
	ms  *MemStore
	key TableKey
}

func (t *MemTable) OppositeTable(col ColumnKey) (TableKey, error) {
	t.ms.mu.Lock()
	defer t.ms.mu.Unlock()
	target, ok := t.ms.table(t.key).opposite[col]
	if !ok {
		return "", fmt.Errorf("objectstore: column %q has no opposite table registered on %q", col, t.key)
	}
	return target, nil
}

func (t *MemTable) TargetIsValid(key ObjectKey) bool {
	ok, _ := t.ms.Validate(ObjectRef{Table: t.key, Object: key})
	return ok
}

func (t *MemTable) CreateObject() (ObjectKey, error) {
	t.ms.mu.Lock()
	defer t.ms.mu.Unlock()
	td := t.ms.table(t.key)
	key := td.nextKey
	td.nextKey++
	td.records.Set(key, &record{key: key})
	td.valid.Add(uint32(key))
	return key, nil
}

func (t *MemTable) CreateLinkedObject(from ObjectRef, col ColumnKey) (ObjectKey, error) {
	t.ms.mu.Lock()
	key := t.ms.table(t.key).nextKey
	t.ms.table(t.key).nextKey++
	rec := &record{key: key, backlinks: []backlinkEntry{{Owner: from, Col: col}}}
	t.ms.table(t.key).records.Set(key, rec)
	t.ms.table(t.key).valid.Add(uint32(key))
	t.ms.mu.Unlock()
	return key, nil
}

// RemoveRecursive removes every object cascade.Scheduled names, clearing
// their validity bit and their own backlink bookkeeping. It does not walk
// further than the one level cascade already scheduled: this store models
// enough of cascading delete for the dict package's own tests, not a
// general-purpose graph collector.
func (t *MemTable) RemoveRecursive(cascade *CascadeState) error {
	t.ms.mu.Lock()
	defer t.ms.mu.Unlock()
	for _, ref := range cascade.Scheduled {
		td, ok := t.ms.tables[ref.Table]
		if !ok {
			continue
		}
		td.valid.Remove(uint32(ref.Object))
		if rec, ok := td.records.Get(ref.Object); ok {
			rec.backlinks = nil
		}
	}
	cascade.Scheduled = nil
	return nil
}

// MemObject implements Object against one (table, key) pair in a MemStore.
type MemObject struct {
	ms  *MemStore
	ref ObjectRef
}

func linkTarget(v mixed.Value) (ObjectRef, bool) {
	if !v.IsLink() {
		return ObjectRef{}, false
	}
	link := v.AsLink()
	if link.Object == mixed.Unresolved {
		return ObjectRef{}, false
	}
	if v.Kind() == mixed.KindUntypedLink {
		return ObjectRef{}, false
	}
	return ObjectRef{Table: link.Table, Object: link.Object}, true
}

func (o *MemObject) ReplaceBacklink(col ColumnKey, old, new mixed.Value, cascade *CascadeState) (bool, error) {
	o.ms.mu.Lock()
	defer o.ms.mu.Unlock()

	scheduled := false
	if oldRef, ok := linkTarget(old); ok {
		if emptied := o.removeBacklinkLocked(oldRef, col); emptied {
			cascade.Schedule(oldRef)
			scheduled = true
		}
	}
	if newRef, ok := linkTarget(new); ok {
		td, exists := o.ms.tables[newRef.Table]
		if !exists || !td.valid.Contains(uint32(newRef.Object)) {
			return scheduled, fmt.Errorf("objectstore: target %+v is not valid", newRef)
		}
		rec, _ := td.records.Get(newRef.Object)
		rec.backlinks = append(rec.backlinks, backlinkEntry{Owner: o.ref, Col: col})
	}
	return scheduled, nil
}

func (o *MemObject) RemoveBacklink(col ColumnKey, link mixed.Value, cascade *CascadeState) error {
	o.ms.mu.Lock()
	defer o.ms.mu.Unlock()
	ref, ok := linkTarget(link)
	if !ok {
		return nil
	}
	if emptied := o.removeBacklinkLocked(ref, col); emptied {
		cascade.Schedule(ref)
	}
	return nil
}

// removeBacklinkLocked removes the (o.ref, col) backlink entry from ref's
// record and reports whether that left the record with zero backlinks.
// Callers must hold o.ms.mu.
func (o *MemObject) removeBacklinkLocked(ref ObjectRef, col ColumnKey) bool {
	td, ok := o.ms.tables[ref.Table]
	if !ok {
		return false
	}
	rec, ok := td.records.Get(ref.Object)
	if !ok {
		return false
	}
	out := rec.backlinks[:0]
	for _, bl := range rec.backlinks {
		if bl.Owner == o.ref && bl.Col == col {
			continue
		}
		out = append(out, bl)
	}
	rec.backlinks = out
	return len(rec.backlinks) == 0
}
