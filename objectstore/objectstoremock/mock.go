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

// Package objectstoremock provides hand-rolled fakes of objectstore.Resolver
// and objectstore.Object, letting dict tests exercise ErrDetachedAccessor
// and cascade-removal scheduling without depending on MemStore's bitmap/btree
// internals.
package objectstoremock

import (
	"go.uber.org/mock/gomock"

	"github.com/ledgerkv/objectdict/mixed"
	"github.com/ledgerkv/objectdict/objectstore"
)

// Resolver is a call-recording fake of objectstore.Resolver. Each method's
// behavior is driven by a canned function so tests can script exactly the
// responses a scenario needs, mirroring a generated mock's controllable
// expectations without running a code generator.
type Resolver struct {
	ValidateFunc func(ref objectstore.ObjectRef) (bool, error)
	IsLiveFunc   func(ref objectstore.ObjectRef) bool

	Calls []gomock.Matcher
}

func NewResolver() *Resolver {
	return &Resolver{
		ValidateFunc: func(objectstore.ObjectRef) (bool, error) { return true, nil },
		IsLiveFunc:   func(objectstore.ObjectRef) bool { return true },
	}
}

func (r *Resolver) Validate(ref objectstore.ObjectRef) (bool, error) {
	r.Calls = append(r.Calls, gomock.Eq(ref))
	return r.ValidateFunc(ref)
}

func (r *Resolver) IsLive(ref objectstore.ObjectRef) bool {
	r.Calls = append(r.Calls, gomock.Eq(ref))
	return r.IsLiveFunc(ref)
}

// Detach makes every subsequent IsLive call report false, simulating the
// parent object having been removed out from under a live dict.Handle.
func (r *Resolver) Detach() {
	r.IsLiveFunc = func(objectstore.ObjectRef) bool { return false }
}

// recordedCall is one observed invocation of Object's interface.
type recordedCall struct {
	Method string
	Col    objectstore.ColumnKey
	Old    mixed.Value
	New    mixed.Value
}

// Object is a call-recording fake of objectstore.Object.
type Object struct {
	ReplaceBacklinkFunc func(col objectstore.ColumnKey, old, new mixed.Value, cascade *objectstore.CascadeState) (bool, error)
	RemoveBacklinkFunc  func(col objectstore.ColumnKey, link mixed.Value, cascade *objectstore.CascadeState) error

	calls []recordedCall
}

func NewObject() *Object {
	return &Object{
		ReplaceBacklinkFunc: func(objectstore.ColumnKey, mixed.Value, mixed.Value, *objectstore.CascadeState) (bool, error) {
			return false, nil
		},
		RemoveBacklinkFunc: func(objectstore.ColumnKey, mixed.Value, *objectstore.CascadeState) error {
			return nil
		},
	}
}

func (o *Object) ReplaceBacklink(col objectstore.ColumnKey, old, new mixed.Value, cascade *objectstore.CascadeState) (bool, error) {
	o.calls = append(o.calls, recordedCall{Method: "ReplaceBacklink", Col: col, Old: old, New: new})
	return o.ReplaceBacklinkFunc(col, old, new, cascade)
}

func (o *Object) RemoveBacklink(col objectstore.ColumnKey, link mixed.Value, cascade *objectstore.CascadeState) error {
	o.calls = append(o.calls, recordedCall{Method: "RemoveBacklink", Col: col, Old: link})
	return o.RemoveBacklinkFunc(col, link, cascade)
}

// CallCount returns how many times method ("ReplaceBacklink" or
// "RemoveBacklink") was invoked.
func (o *Object) CallCount(method string) int {
	n := 0
	for _, c := range o.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Table is a call-recording fake of objectstore.Table.
type Table struct {
	OppositeTableFunc      func(col objectstore.ColumnKey) (objectstore.TableKey, error)
	TargetIsValidFunc      func(key objectstore.ObjectKey) bool
	CreateObjectFunc       func() (objectstore.ObjectKey, error)
	CreateLinkedObjectFunc func(from objectstore.ObjectRef, col objectstore.ColumnKey) (objectstore.ObjectKey, error)
	RemoveRecursiveFunc    func(cascade *objectstore.CascadeState) error

	RemoveRecursiveCalls int
}

func NewTable(opposite objectstore.TableKey) *Table {
	return &Table{
		OppositeTableFunc: func(objectstore.ColumnKey) (objectstore.TableKey, error) { return opposite, nil },
		TargetIsValidFunc: func(objectstore.ObjectKey) bool { return true },
		CreateObjectFunc:  func() (objectstore.ObjectKey, error) { return 0, nil },
		CreateLinkedObjectFunc: func(objectstore.ObjectRef, objectstore.ColumnKey) (objectstore.ObjectKey, error) {
			return 0, nil
		},
		RemoveRecursiveFunc: func(*objectstore.CascadeState) error { return nil },
	}
}

func (t *Table) OppositeTable(col objectstore.ColumnKey) (objectstore.TableKey, error) {
	return t.OppositeTableFunc(col)
}

func (t *Table) TargetIsValid(key objectstore.ObjectKey) bool {
	return t.TargetIsValidFunc(key)
}

func (t *Table) CreateObject() (objectstore.ObjectKey, error) {
	return t.CreateObjectFunc()
}

func (t *Table) CreateLinkedObject(from objectstore.ObjectRef, col objectstore.ColumnKey) (objectstore.ObjectKey, error) {
	return t.CreateLinkedObjectFunc(from, col)
}

func (t *Table) RemoveRecursive(cascade *objectstore.CascadeState) error {
	t.RemoveRecursiveCalls++
	return t.RemoveRecursiveFunc(cascade)
}
