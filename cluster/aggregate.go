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

package cluster

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerkv/objectdict/internal/mathutil"
	"github.com/ledgerkv/objectdict/mixed"
)

type extremum struct {
	value mixed.Value
	ndx   int
	found bool
}

// leafExtremum scans one leaf's values for its local min (wantMin) or max,
// keeping the first position on ties so the caller's serial fold can
// preserve first-position-wins once it merges leaves in traversal order.
func leafExtremum(l *leaf, wantMin bool) extremum {
	var best extremum
	for i, v := range l.values {
		if !best.found {
			best = extremum{value: v, ndx: i, found: true}
			continue
		}
		cmp := mixed.Compare(v, best.value)
		if (wantMin && cmp < 0) || (!wantMin && cmp > 0) {
			best = extremum{value: v, ndx: i, found: true}
		}
	}
	return best
}

func (t *Tree) scanExtremum(wantMin bool) (mixed.Value, int, bool) {
	leaves := t.leaves()
	results := make([]extremum, len(leaves))
	offsets := make([]int, len(leaves))
	offset := 0
	for i, l := range leaves {
		offsets[i] = offset
		offset += len(l.slots)
	}

	g, _ := errgroup.WithContext(context.Background())
	for i, l := range leaves {
		i, l := i, l
		g.Go(func() error {
			results[i] = leafExtremum(l, wantMin)
			return nil
		})
	}
	_ = g.Wait() // leafExtremum never errors; Wait only for completion

	var global extremum
	for i, r := range results {
		if !r.found {
			continue
		}
		if !global.found {
			global = extremum{value: r.value, ndx: offsets[i] + r.ndx, found: true}
			continue
		}
		cmp := mixed.Compare(r.value, global.value)
		if (wantMin && cmp < 0) || (!wantMin && cmp > 0) {
			global = extremum{value: r.value, ndx: offsets[i] + r.ndx, found: true}
		}
	}
	return global.value, global.ndx, global.found
}

// Min returns the smallest value in traversal order, or found=false if the
// tree has no entries. Ties are broken by first occurrence.
func (t *Tree) Min() (mixed.Value, int, bool) { return t.scanExtremum(true) }

// Max returns the largest value in traversal order, or found=false if the
// tree has no entries. Ties are broken by first occurrence.
func (t *Tree) Max() (mixed.Value, int, bool) { return t.scanExtremum(false) }

type sumPartial struct {
	value mixed.Value
	count int
}

func leafSum(l *leaf, kind mixed.NumericKind) sumPartial {
	acc := mixed.NewAccumulator(kind)
	for _, v := range l.values {
		acc.Accumulate(v)
	}
	return sumPartial{value: acc.Result(), count: acc.Count()}
}

// Sum scans every leaf's values with the accumulator specialized for kind,
// reporting the running sum and the count of values that participated.
func (t *Tree) Sum(kind mixed.NumericKind) (mixed.Value, int) {
	leaves := t.leaves()
	partials := make([]sumPartial, len(leaves))

	g, _ := errgroup.WithContext(context.Background())
	for i, l := range leaves {
		i, l := i, l
		g.Go(func() error {
			partials[i] = leafSum(l, kind)
			return nil
		})
	}
	_ = g.Wait()

	totalCount := 0
	var totalInt int64
	var totalFloat float32
	var totalDouble float64
	// Per-leaf Decimal partials are combined through another decimal
	// accumulator so the cross-leaf reduction stays exact, never routing
	// through float64 the way NumericMixed does.
	decimalAcc := mixed.NewAccumulator(mixed.NumericDecimal)
	for _, p := range partials {
		totalCount += p.count
		switch kind {
		case mixed.NumericInt:
			totalInt, _ = mathutil.SafeAddInt64(totalInt, p.value.AsInt())
		case mixed.NumericFloat:
			totalFloat += p.value.AsFloat()
		case mixed.NumericDecimal:
			if p.count > 0 {
				decimalAcc.Accumulate(p.value)
			}
		default:
			totalDouble += p.value.AsDouble()
		}
	}

	switch kind {
	case mixed.NumericInt:
		return mixed.Int(totalInt), totalCount
	case mixed.NumericFloat:
		return mixed.Float(totalFloat), totalCount
	case mixed.NumericDecimal:
		return decimalAcc.Result(), totalCount
	default:
		return mixed.Double(totalDouble), totalCount
	}
}

// Avg returns sum/count, or found=false if count is 0.
func (t *Tree) Avg(kind mixed.NumericKind) (mixed.Value, bool) {
	sum, count := t.Sum(kind)
	if count == 0 {
		return mixed.Value{}, false
	}
	var total float64
	switch kind {
	case mixed.NumericInt:
		total = float64(sum.AsInt())
	case mixed.NumericFloat:
		total = float64(sum.AsFloat())
	case mixed.NumericDecimal:
		total = sum.AsDecimal().Float64()
	default:
		total = sum.AsDouble()
	}
	return mixed.Double(total / float64(count)), true
}
