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
	"github.com/ledgerkv/objectdict/cluster"
	"github.com/ledgerkv/objectdict/mixed"
	"github.com/ledgerkv/objectdict/normalize"
)

// Iterator walks (key, value) pairs in slot-id traversal order. A zero-value
// Iterator (or one past the last entry) is the end iterator: Valid reports
// false and Key/Value are meaningless.
type Iterator struct {
	h     *Handle
	ndx   int
	valid bool
}

// Find returns an Iterator positioned at k's entry, or the end iterator if
// absent.
func (h *Handle) Find(k mixed.Value) (Iterator, error) {
	if err := h.checkLive(); err != nil {
		return Iterator{}, err
	}
	if h.tree == nil {
		return Iterator{h: h}, nil
	}
	_, id, err := h.deriveKey(k)
	if err != nil {
		return Iterator{}, err
	}
	ndx, err := h.tree.GetNdx(id)
	if err != nil {
		return Iterator{h: h}, nil
	}
	return Iterator{h: h, ndx: ndx, valid: true}, nil
}

// At returns an Iterator positioned at the entry currently at absolute
// position ndx.
func (h *Handle) At(ndx int) Iterator {
	return Iterator{h: h, ndx: ndx, valid: ndx >= 0 && ndx < h.Size()}
}

// Valid reports whether it still refers to a live entry.
func (it Iterator) Valid() bool { return it.valid }

// Key returns the entry's key, widened to a mixed.Value.
func (it Iterator) Key() mixed.Value {
	if !it.valid {
		return mixed.Value{}
	}
	entry, err := it.h.tree.GetAt(it.ndx)
	if err != nil {
		return mixed.Value{}
	}
	return entry.Key.ToValue()
}

// Value returns the entry's value, filtered through the read-path rules.
func (it Iterator) Value() mixed.Value {
	if !it.valid {
		return mixed.Value{}
	}
	entry, err := it.h.tree.GetAt(it.ndx)
	if err != nil {
		return mixed.Value{}
	}
	return normalize.Read(it.h.declared, entry.Value)
}

// Next advances it to the following entry, reporting whether the result is
// still valid.
func (it *Iterator) Next() bool {
	if !it.valid {
		return false
	}
	it.ndx++
	it.valid = it.ndx < it.h.Size()
	return it.valid
}

// Each invokes visit on every (key, value) pair in traversal order, using
// callback iteration rather than a stateful cursor, for callers that don't
// need to pause mid-scan.
func (h *Handle) Each(visit func(key, value mixed.Value) bool) error {
	if err := h.checkLive(); err != nil {
		return err
	}
	if h.tree == nil {
		return nil
	}
	h.tree.Traverse(func(e cluster.Entry) bool {
		return visit(e.Key.ToValue(), normalize.Read(h.declared, e.Value))
	})
	return nil
}
