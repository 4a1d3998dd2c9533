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

package mixed

import "strconv"

// KeyKind is the narrower tag for user keys: only Int and String are valid
// declared key types.
type KeyKind uint8

const (
	KeyInt KeyKind = iota
	KeyString
)

// Key is the dictionary's user-key type: a two-shape union, never the full
// Value union. ToValue/KeyFromValue convert at the normalize boundary.
type Key struct {
	kind   KeyKind
	intKey int64
	strKey string
}

func IntKey(i int64) Key     { return Key{kind: KeyInt, intKey: i} }
func StringKey(s string) Key { return Key{kind: KeyString, strKey: s} }
func (k Key) Kind() KeyKind  { return k.kind }
func (k Key) Int() int64     { return k.intKey }
func (k Key) Str() string    { return k.strKey }

// Equal is exact equality of kind and payload. The cluster tree does not
// call it: two distinct keys that hash to the same slot are not told apart.
func (k Key) Equal(o Key) bool {
	if k.kind != o.kind {
		return false
	}
	if k.kind == KeyInt {
		return k.intKey == o.intKey
	}
	return k.strKey == o.strKey
}

// ToValue widens a Key to a Value, e.g. for Compare-based sort/distinct over
// SortKeys.
func (k Key) ToValue() Value {
	if k.kind == KeyInt {
		return Int(k.intKey)
	}
	return String(k.strKey)
}

func (k Key) String() string {
	if k.kind == KeyInt {
		return strconv.FormatInt(k.intKey, 10)
	}
	return k.strKey
}
