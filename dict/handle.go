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

// Package dict is the user-visible dictionary façade: a persistent ordered
// key-value collection backed by one cluster.Tree, integrated with the
// enclosing object store's backlink, cascade-delete and replication
// machinery.
package dict

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerkv/objectdict/arena"
	"github.com/ledgerkv/objectdict/cluster"
	"github.com/ledgerkv/objectdict/config"
	"github.com/ledgerkv/objectdict/mixed"
	"github.com/ledgerkv/objectdict/normalize"
	"github.com/ledgerkv/objectdict/objectstore"
	"github.com/ledgerkv/objectdict/slot"
	"github.com/ledgerkv/objectdict/xlog"
)

// Handle is one dictionary column instance, bound to a single parent object.
// It is cheap to construct: the underlying cluster.Tree is created lazily on
// first write.
type Handle struct {
	arena    *arena.Arena
	cfg      config.Config
	resolver objectstore.Resolver
	table    objectstore.Table
	object   objectstore.Object
	sink     objectstore.ReplicationSink
	deriver  *slot.Deriver
	log      *zap.SugaredLogger

	parent      objectstore.ObjectRef
	col         objectstore.ColumnKey
	declared    normalize.DeclaredType
	declaredKey normalize.DeclaredKeyKind
	nullable    bool

	tree    *cluster.Tree
	version int64
}

// Params bundles a Handle's wiring: everything it needs from the enclosing
// object store and none of it owned by the Handle itself.
type Params struct {
	Arena    *arena.Arena
	Config   config.Config
	Resolver objectstore.Resolver
	Table    objectstore.Table
	Object   objectstore.Object
	Sink     objectstore.ReplicationSink
	Parent      objectstore.ObjectRef
	Column      objectstore.ColumnKey
	Declared    normalize.DeclaredType
	DeclaredKey normalize.DeclaredKeyKind
	Nullable    bool
	Logger      *zap.SugaredLogger
}

// New constructs a Handle over an existing or not-yet-existing column slot.
// tree may be nil, meaning the column has never been written to.
func New(p Params, tree *cluster.Tree) (*Handle, error) {
	deriver, err := slot.New(p.Config.SlotCacheSize)
	if err != nil {
		return nil, fmt.Errorf("dict: build slot deriver: %w", err)
	}
	log := p.Logger
	if log == nil {
		log = xlog.Noop()
	}
	return &Handle{
		arena:    p.Arena,
		cfg:      p.Config,
		resolver: p.Resolver,
		table:    p.Table,
		object:   p.Object,
		sink:     p.Sink,
		deriver:  deriver,
		log:      log,
		parent:      p.Parent,
		col:         p.Column,
		declared:    p.Declared,
		declaredKey: p.DeclaredKey,
		nullable:    p.Nullable,
		tree:        tree,
	}, nil
}

// Tree exposes the underlying cluster.Tree, or nil if nothing has been
// written yet. Used by the owning object store to persist/restore the
// column's root ref.
func (h *Handle) Tree() *cluster.Tree { return h.tree }

// Version returns the monotonically increasing content-version counter,
// bumped on every mutation.
func (h *Handle) Version() int64 { return h.version }

func (h *Handle) checkLive() error {
	if !h.resolver.IsLive(h.parent) {
		return ErrDetachedAccessor
	}
	return nil
}

func (h *Handle) dictKey() objectstore.DictKey {
	return objectstore.DictKey{Table: h.parent.Table, Object: h.parent.Object, Column: h.col}
}

func (h *Handle) ensureTree() (*cluster.Tree, error) {
	if h.tree != nil {
		return h.tree, nil
	}
	h.log.Debugw("creating cluster tree", "column", h.col)
	t, err := cluster.CreateEmpty(h.arena, h.cfg)
	if err != nil {
		return nil, fmt.Errorf("dict: create cluster tree: %w", err)
	}
	h.tree = t
	return t, nil
}

func (h *Handle) deriveKey(k mixed.Value) (mixed.Key, int64, error) {
	key, err := normalize.Key(k, h.declaredKey)
	if err != nil {
		if err == normalize.ErrTypeMismatch {
			return mixed.Key{}, 0, ErrCollectionTypeMismatch
		}
		return mixed.Key{}, 0, err
	}
	id, err := h.deriver.Derive(key)
	if err != nil {
		return mixed.Key{}, 0, err
	}
	return key, id, nil
}

// Size returns 0 if the tree has never been created, else the tree's entry
// count.
func (h *Handle) Size() int {
	if h.tree == nil {
		return 0
	}
	return h.tree.Size()
}

// Contains reports whether k is present.
func (h *Handle) Contains(k mixed.Value) (bool, error) {
	if err := h.checkLive(); err != nil {
		return false, err
	}
	_, ok, err := h.tryGet(k)
	return ok, err
}

// Get returns the value stored under k, failing ErrKeyNotFound if absent.
func (h *Handle) Get(k mixed.Value) (mixed.Value, error) {
	if err := h.checkLive(); err != nil {
		return mixed.Value{}, err
	}
	v, ok, err := h.tryGet(k)
	if err != nil {
		return mixed.Value{}, err
	}
	if !ok {
		return mixed.Value{}, ErrKeyNotFound
	}
	return v, nil
}

// TryGet returns the value stored under k and whether it was present.
func (h *Handle) TryGet(k mixed.Value) (mixed.Value, bool, error) {
	if err := h.checkLive(); err != nil {
		return mixed.Value{}, false, err
	}
	return h.tryGet(k)
}

func (h *Handle) tryGet(k mixed.Value) (mixed.Value, bool, error) {
	if h.tree == nil {
		return mixed.Value{}, false, nil
	}
	_, id, err := h.deriveKey(k)
	if err != nil {
		return mixed.Value{}, false, err
	}
	entry, ok, err := h.tree.TryGet(id)
	if err != nil || !ok {
		return mixed.Value{}, false, err
	}
	return normalize.Read(h.declared, entry.Value), true, nil
}

// GetOrInsertNull implements operator[]: returns the existing value, or
// inserts (k, null) and returns null.
func (h *Handle) GetOrInsertNull(k mixed.Value) (mixed.Value, error) {
	if err := h.checkLive(); err != nil {
		return mixed.Value{}, err
	}
	v, ok, err := h.tryGet(k)
	if err != nil {
		return mixed.Value{}, err
	}
	if ok {
		return v, nil
	}
	if _, _, err := h.Insert(k, mixed.Null()); err != nil {
		return mixed.Value{}, err
	}
	return mixed.Null(), nil
}

// Insert validates and normalizes v, then inserts or overwrites the entry
// for k. It returns the absolute position of the entry and whether it was
// newly inserted (false means an existing value was overwritten).
func (h *Handle) Insert(k, v mixed.Value) (int, bool, error) {
	if err := h.checkLive(); err != nil {
		return 0, false, err
	}
	key, id, err := h.deriveKey(k)
	if err != nil {
		return 0, false, err
	}
	normalized, err := normalize.Value(h.table, h.resolver, h.col, h.declared, h.nullable, v)
	if err != nil {
		return 0, false, err
	}

	t, err := h.ensureTree()
	if err != nil {
		return 0, false, err
	}

	old := mixed.Null()
	inserted := true
	if err := t.Insert(id, key, normalized); err != nil {
		if err != cluster.ErrSlotAlreadyUsed {
			return 0, false, err
		}
		inserted = false
		old, err = t.Set(id, normalized)
		if err != nil {
			return 0, false, err
		}
	}

	if err := h.applyBacklinkDiff(old, normalized); err != nil {
		return 0, false, err
	}

	ndx, err := t.GetNdx(id)
	if err != nil {
		return 0, false, err
	}

	dk := h.dictKey()
	if inserted {
		h.sink.DictionaryInsert(dk, ndx, key, normalized)
	} else {
		h.sink.DictionarySet(dk, ndx, key, normalized)
	}
	h.version++
	return ndx, inserted, nil
}

// applyBacklinkDiff updates backlink bookkeeping when a link-typed value
// changes, cascading through the owning table's recursive remove if
// removing the old backlink left its target orphaned.
func (h *Handle) applyBacklinkDiff(old, new mixed.Value) error {
	if old.Equal(new) {
		return nil
	}
	if !old.IsLink() && !new.IsLink() {
		return nil
	}
	cascade := &objectstore.CascadeState{}
	scheduled, err := h.object.ReplaceBacklink(h.col, old, new, cascade)
	if err != nil {
		return err
	}
	if scheduled && len(cascade.Scheduled) > 0 {
		h.log.Warnw("cascade delete scheduled", "column", h.col, "removed", len(cascade.Scheduled))
		if err := h.table.RemoveRecursive(cascade); err != nil {
			return err
		}
	}
	return nil
}

// Erase removes the entry stored under k, clearing its backlink (cascading
// if it was the target's last strong owner) and emitting a replication
// erase event.
func (h *Handle) Erase(k mixed.Value) error {
	if err := h.checkLive(); err != nil {
		return err
	}
	if h.tree == nil {
		return ErrKeyNotFound
	}
	key, id, err := h.deriveKey(k)
	if err != nil {
		return err
	}
	entry, ok, err := h.tree.TryGet(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrKeyNotFound
	}

	ndx, err := h.tree.GetNdx(id)
	if err != nil {
		return err
	}

	if entry.Value.IsLink() {
		cascade := &objectstore.CascadeState{}
		if err := h.object.RemoveBacklink(h.col, entry.Value, cascade); err != nil {
			return err
		}
		if len(cascade.Scheduled) > 0 {
			h.log.Warnw("cascade delete scheduled", "column", h.col, "removed", len(cascade.Scheduled))
			if err := h.table.RemoveRecursive(cascade); err != nil {
				return err
			}
		}
	}

	h.sink.DictionaryErase(h.dictKey(), ndx, key)
	if _, err := h.tree.Erase(id); err != nil {
		return err
	}
	h.version++
	return nil
}

// Nullify overwrites the value stored under k with null in place, without
// any backlink or cascade work. Used by the object store when a referenced
// object is deleted out from under a link column.
func (h *Handle) Nullify(k mixed.Value) error {
	if err := h.checkLive(); err != nil {
		return err
	}
	if h.tree == nil {
		return ErrKeyNotFound
	}
	key, id, err := h.deriveKey(k)
	if err != nil {
		return err
	}
	if _, err := h.tree.Set(id, mixed.Null()); err != nil {
		if err == cluster.ErrSlotNotFound {
			return ErrKeyNotFound
		}
		return err
	}
	ndx, err := h.tree.GetNdx(id)
	if err != nil {
		return err
	}
	h.sink.DictionarySet(h.dictKey(), ndx, key, mixed.Null())
	h.version++
	return nil
}

// Clear removes every entry, clearing backlinks and emitting one
// replication erase event per entry, then destroys the tree entirely.
func (h *Handle) Clear() error {
	if err := h.checkLive(); err != nil {
		return err
	}
	if h.tree == nil {
		return nil
	}

	var entries []cluster.Entry
	h.tree.Traverse(func(e cluster.Entry) bool {
		entries = append(entries, e)
		return true
	})

	cascade := &objectstore.CascadeState{}
	dk := h.dictKey()
	for ndx, e := range entries {
		if e.Value.IsLink() {
			if err := h.object.RemoveBacklink(h.col, e.Value, cascade); err != nil {
				return err
			}
		}
		h.sink.DictionaryErase(dk, ndx, e.Key)
	}
	if len(cascade.Scheduled) > 0 {
		h.log.Warnw("cascade delete scheduled", "column", h.col, "removed", len(cascade.Scheduled))
		if err := h.table.RemoveRecursive(cascade); err != nil {
			return err
		}
	}

	h.tree = nil
	h.version++
	return nil
}
