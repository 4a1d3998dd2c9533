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

// Package cluster implements the slot-id-keyed clustered tree: a
// google/btree index over cluster spans, each wrapping one leaf of three
// parallel arrays (slots, user keys, values) kept sorted by slot id.
package cluster

import (
	"fmt"

	"github.com/google/btree"
	"github.com/thomaso-mirodin/intmath/intgr"

	"github.com/ledgerkv/objectdict/arena"
	"github.com/ledgerkv/objectdict/config"
	"github.com/ledgerkv/objectdict/internal/mathutil"
	"github.com/ledgerkv/objectdict/mixed"
)

// clusterSpan is the top-index entry: a (minSlot, leaf) pair ordered in the
// google/btree.BTreeG that lets Get/Insert/Erase locate the owning leaf in
// O(log(number of leaves)) instead of scanning every leaf.
type clusterSpan struct {
	minSlot int64
	leaf    *leaf
}

func spanLess(a, b *clusterSpan) bool { return a.minSlot < b.minSlot }

// Tree is the Cluster Tree: an ordered collection of clusters (leaves) plus
// indexing metadata, keyed by 63-bit slot ids.
type Tree struct {
	a     *arena.Arena
	cfg   config.Config
	index *btree.BTreeG[*clusterSpan]
	size  int
}

// CreateEmpty produces an empty tree rooted in a single empty cluster.
func CreateEmpty(a *arena.Arena, cfg config.Config) (*Tree, error) {
	t := &Tree{
		a:     a,
		cfg:   cfg,
		index: btree.NewG[*clusterSpan](32, spanLess),
	}
	root := newLeaf(a, cfg)
	if err := root.persist(); err != nil {
		return nil, err
	}
	t.index.ReplaceOrInsert(&clusterSpan{minSlot: 0, leaf: root})
	return t, nil
}

// Size returns the total entry count across all clusters.
func (t *Tree) Size() int { return t.size }

func (t *Tree) floorSpan(slotID int64) *clusterSpan {
	var found *clusterSpan
	t.index.DescendLessOrEqual(&clusterSpan{minSlot: slotID}, func(item *clusterSpan) bool {
		found = item
		return false
	})
	return found
}

// Insert adds a new entry, failing ErrSlotAlreadyUsed if slotID is already
// present.
func (t *Tree) Insert(slotID int64, key mixed.Key, value mixed.Value) error {
	span := t.floorSpan(slotID)
	if span == nil {
		return fmt.Errorf("cluster: no cluster covers slot %d", slotID)
	}
	if _, ok := span.leaf.indexOf(slotID); ok {
		return ErrSlotAlreadyUsed
	}
	span.leaf.insertSorted(slotID, key, value)
	t.size++
	if err := span.leaf.persist(); err != nil {
		return err
	}
	if len(span.leaf.slots) > t.cfg.MaxLeafSize {
		return t.splitLeaf(span)
	}
	return nil
}

func (t *Tree) splitLeaf(span *clusterSpan) error {
	mid := mathutil.CeilDiv(len(span.leaf.slots), 2)
	right := span.leaf.splitAt(mid)
	if err := span.leaf.persist(); err != nil {
		return err
	}
	if err := right.persist(); err != nil {
		return err
	}
	t.index.ReplaceOrInsert(&clusterSpan{minSlot: right.slots[0], leaf: right})
	return nil
}

// Get returns the entry stored under slotID, failing ErrSlotNotFound if
// absent.
func (t *Tree) Get(slotID int64) (Entry, error) {
	entry, ok, err := t.TryGet(slotID)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, ErrSlotNotFound
	}
	return entry, nil
}

// TryGet returns the entry stored under slotID and whether it was present.
func (t *Tree) TryGet(slotID int64) (Entry, bool, error) {
	span := t.floorSpan(slotID)
	if span == nil {
		return Entry{}, false, nil
	}
	i, ok := span.leaf.indexOf(slotID)
	if !ok {
		return Entry{}, false, nil
	}
	return span.leaf.entryAt(i), true, nil
}

// GetNdx returns the absolute 0-based position of slotID under slot-id
// traversal order.
func (t *Tree) GetNdx(slotID int64) (int, error) {
	offset := 0
	result := -1
	t.index.Ascend(func(span *clusterSpan) bool {
		if i, ok := span.leaf.indexOf(slotID); ok {
			result = offset + i
			return false
		}
		offset += len(span.leaf.slots)
		return true
	})
	if result < 0 {
		return 0, ErrSlotNotFound
	}
	return result, nil
}

// GetAt returns the entry at absolute position ndx under slot-id traversal
// order.
func (t *Tree) GetAt(ndx int) (Entry, error) {
	if ndx < 0 || ndx >= t.size {
		return Entry{}, ErrIndexOutOfRange
	}
	offset := 0
	var result Entry
	found := false
	t.index.Ascend(func(span *clusterSpan) bool {
		n := len(span.leaf.slots)
		if ndx < offset+n {
			result = span.leaf.entryAt(ndx - offset)
			found = true
			return false
		}
		offset += n
		return true
	})
	if !found {
		return Entry{}, ErrIndexOutOfRange
	}
	return result, nil
}

// Set overwrites the value stored under slotID in place, returning the
// value that was previously there. Used by the façade's update path and by
// Nullify, neither of which changes tree structure.
func (t *Tree) Set(slotID int64, value mixed.Value) (mixed.Value, error) {
	span := t.floorSpan(slotID)
	if span == nil {
		return mixed.Value{}, ErrSlotNotFound
	}
	i, ok := span.leaf.indexOf(slotID)
	if !ok {
		return mixed.Value{}, ErrSlotNotFound
	}
	old := span.leaf.values[i]
	span.leaf.values[i] = value
	if err := span.leaf.persist(); err != nil {
		return old, err
	}
	return old, nil
}

// Erase removes the entry stored under slotID, merging clusters if the
// owning leaf drops under the configured minimum size.
func (t *Tree) Erase(slotID int64) (Entry, error) {
	span := t.floorSpan(slotID)
	if span == nil {
		return Entry{}, ErrSlotNotFound
	}
	i, ok := span.leaf.indexOf(slotID)
	if !ok {
		return Entry{}, ErrSlotNotFound
	}
	removed := span.leaf.removeAt(i)
	t.size--
	if err := span.leaf.persist(); err != nil {
		return removed, err
	}
	if err := t.mergeIfNeeded(span); err != nil {
		return removed, err
	}
	return removed, nil
}

func (t *Tree) mergeIfNeeded(span *clusterSpan) error {
	if t.index.Len() <= 1 {
		return nil
	}
	if len(span.leaf.slots) >= t.cfg.MinLeafSize {
		return nil
	}
	var sibling *clusterSpan
	t.index.AscendGreaterOrEqual(&clusterSpan{minSlot: span.minSlot + 1}, func(item *clusterSpan) bool {
		sibling = item
		return false
	})
	if sibling == nil {
		return nil
	}
	combined := intgr.Max(1, len(span.leaf.slots)+len(sibling.leaf.slots))
	if combined > t.cfg.MaxLeafSize {
		return nil
	}
	span.leaf.absorb(sibling.leaf)
	if err := span.leaf.persist(); err != nil {
		return err
	}
	t.index.Delete(sibling)
	return nil
}

// Traverse invokes visit on each entry in slot-id order until visit returns
// false.
func (t *Tree) Traverse(visit func(Entry) bool) {
	stop := false
	t.index.Ascend(func(span *clusterSpan) bool {
		for i := range span.leaf.slots {
			if !visit(span.leaf.entryAt(i)) {
				stop = true
				return false
			}
		}
		return !stop
	})
}

// leaves returns every leaf in ascending slot-id order, used by the
// parallel aggregate scans.
func (t *Tree) leaves() []*leaf {
	out := make([]*leaf, 0, t.index.Len())
	t.index.Ascend(func(span *clusterSpan) bool {
		out = append(out, span.leaf)
		return true
	})
	return out
}
