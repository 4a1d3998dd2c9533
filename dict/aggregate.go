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

// Min returns the smallest value currently stored, or found=false on an
// empty or never-created dictionary.
func (h *Handle) Min() (mixed.Value, bool, error) {
	if err := h.checkLive(); err != nil {
		return mixed.Value{}, false, err
	}
	if h.tree == nil {
		return mixed.Value{}, false, nil
	}
	v, _, ok := h.tree.Min()
	return v, ok, nil
}

// Max returns the largest value currently stored, or found=false on an
// empty or never-created dictionary.
func (h *Handle) Max() (mixed.Value, bool, error) {
	if err := h.checkLive(); err != nil {
		return mixed.Value{}, false, err
	}
	if h.tree == nil {
		return mixed.Value{}, false, nil
	}
	v, _, ok := h.tree.Max()
	return v, ok, nil
}

// Sum adds every value under the given numeric interpretation, returning
// the sum and how many values participated.
func (h *Handle) Sum(kind mixed.NumericKind) (mixed.Value, int, error) {
	if err := h.checkLive(); err != nil {
		return mixed.Value{}, 0, err
	}
	if h.tree == nil {
		return mixed.NewAccumulator(kind).Result(), 0, nil
	}
	sum, count := h.tree.Sum(kind)
	return sum, count, nil
}

// Avg returns Sum/count, or found=false if no value participated.
func (h *Handle) Avg(kind mixed.NumericKind) (mixed.Value, bool, error) {
	if err := h.checkLive(); err != nil {
		return mixed.Value{}, false, err
	}
	if h.tree == nil {
		return mixed.Value{}, false, nil
	}
	v, ok := h.tree.Avg(kind)
	return v, ok, nil
}

// FindAny linearly scans every value in traversal order, returning the
// absolute position of the first value equal to target, or found=false.
func (h *Handle) FindAny(target mixed.Value) (int, bool, error) {
	if err := h.checkLive(); err != nil {
		return 0, false, err
	}
	if h.tree == nil {
		return 0, false, nil
	}
	ndx := -1
	pos := 0
	h.tree.Traverse(func(e cluster.Entry) bool {
		if normalize.Read(h.declared, e.Value).Equal(target) {
			ndx = pos
			return false
		}
		pos++
		return true
	})
	return ndx, ndx >= 0, nil
}

// FindAnyKey derives target's slot and returns its absolute traversal
// position, or found=false if the key is absent. Internally this swallows
// cluster.ErrSlotNotFound; every other error still propagates.
func (h *Handle) FindAnyKey(target mixed.Value) (int, bool, error) {
	if err := h.checkLive(); err != nil {
		return 0, false, err
	}
	if h.tree == nil {
		return 0, false, nil
	}
	_, id, err := h.deriveKey(target)
	if err != nil {
		return 0, false, err
	}
	ndx, err := h.tree.GetNdx(id)
	if err != nil {
		if err == cluster.ErrSlotNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ndx, true, nil
}
