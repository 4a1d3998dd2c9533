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

// Package normalize enforces the value-side contract a dictionary column
// declares: write-path validation and rewriting, read-path filtering, and
// key validation.
package normalize

import (
	"errors"

	"github.com/ledgerkv/objectdict/mixed"
	"github.com/ledgerkv/objectdict/objectstore"
)

var (
	ErrTypeMismatch     = errors.New("normalize: value type incompatible with declared column type")
	ErrInvalidKey       = errors.New("normalize: string key begins with '$' or contains '.'")
	ErrWrongObjectType  = errors.New("normalize: typed link's table does not match the column's opposite table")
	ErrTargetOutOfRange = errors.New("normalize: link target is neither unresolved nor valid")
	ErrNotImplemented   = errors.New("normalize: key type is neither Int nor String")
)

// DeclaredType is a dictionary column's declared value type: either one of
// the concrete mixed.Kind scalars, Link, or Mixed (accept-anything).
type DeclaredType uint8

const (
	DeclaredBool DeclaredType = iota
	DeclaredInt
	DeclaredFloat
	DeclaredDouble
	DeclaredString
	DeclaredBinary
	DeclaredTimestamp
	DeclaredDecimal
	DeclaredObjectID
	DeclaredUUID
	DeclaredLink
	DeclaredMixed
)

func (d DeclaredType) concreteKind() (mixed.Kind, bool) {
	switch d {
	case DeclaredBool:
		return mixed.KindBool, true
	case DeclaredInt:
		return mixed.KindInt, true
	case DeclaredFloat:
		return mixed.KindFloat, true
	case DeclaredDouble:
		return mixed.KindDouble, true
	case DeclaredString:
		return mixed.KindString, true
	case DeclaredBinary:
		return mixed.KindBinary, true
	case DeclaredTimestamp:
		return mixed.KindTimestamp, true
	case DeclaredDecimal:
		return mixed.KindDecimal, true
	case DeclaredObjectID:
		return mixed.KindObjectID, true
	case DeclaredUUID:
		return mixed.KindUUID, true
	default:
		return 0, false
	}
}

// Value applies the four write-path normalization rules, returning the
// value to persist or an error.
func Value(table objectstore.Table, resolver objectstore.Resolver, col objectstore.ColumnKey, declared DeclaredType, nullable bool, value mixed.Value) (mixed.Value, error) {
	if value.IsNull() {
		if !nullable {
			return mixed.Value{}, ErrTypeMismatch
		}
		return value, nil
	}

	switch declared {
	case DeclaredLink:
		return normalizeLink(table, resolver, col, value)
	case DeclaredMixed:
		return normalizeMixed(resolver, value)
	default:
		kind, _ := declared.concreteKind()
		if value.Kind() != kind {
			return mixed.Value{}, ErrTypeMismatch
		}
		return value, nil
	}
}

func normalizeLink(table objectstore.Table, resolver objectstore.Resolver, col objectstore.ColumnKey, value mixed.Value) (mixed.Value, error) {
	switch value.Kind() {
	case mixed.KindTypedLink:
		opposite, err := table.OppositeTable(col)
		if err != nil {
			return mixed.Value{}, err
		}
		if value.AsLink().Table != opposite {
			return mixed.Value{}, ErrWrongObjectType
		}
		return value, nil
	case mixed.KindUntypedLink:
		opposite, err := table.OppositeTable(col)
		if err != nil {
			return mixed.Value{}, err
		}
		objKey := value.AsLink().Object
		if objKey != mixed.Unresolved {
			ok, err := resolver.Validate(objectstore.ObjectRef{Table: opposite, Object: objKey})
			if err != nil {
				return mixed.Value{}, err
			}
			if !ok {
				return mixed.Value{}, ErrTargetOutOfRange
			}
		}
		return mixed.TypedLink(opposite, objKey), nil
	default:
		return mixed.Value{}, ErrTypeMismatch
	}
}

func normalizeMixed(resolver objectstore.Resolver, value mixed.Value) (mixed.Value, error) {
	if value.Kind() != mixed.KindTypedLink {
		return value, nil
	}
	link := value.AsLink()
	if link.Object == mixed.Unresolved {
		return value, nil
	}
	ok, err := resolver.Validate(objectstore.ObjectRef{Table: link.Table, Object: link.Object})
	if err != nil {
		return mixed.Value{}, err
	}
	if !ok {
		return mixed.Value{}, ErrTargetOutOfRange
	}
	return value, nil
}

// Read applies the two read-path filtering rules.
func Read(declared DeclaredType, value mixed.Value) mixed.Value {
	if value.Kind() != mixed.KindTypedLink {
		return value
	}
	link := value.AsLink()
	if link.Object == mixed.Unresolved {
		return mixed.Null()
	}
	if declared == DeclaredLink {
		return mixed.UntypedLink(link.Object)
	}
	return value
}
