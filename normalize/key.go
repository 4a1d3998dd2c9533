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

package normalize

import (
	"strings"

	"github.com/ledgerkv/objectdict/mixed"
)

// DeclaredKeyKind is a dictionary column's declared key type: Int, String,
// or Mixed (either is accepted).
type DeclaredKeyKind uint8

const (
	DeclaredKeyInt DeclaredKeyKind = iota
	DeclaredKeyString
	DeclaredKeyMixed
)

// Key converts a user-supplied mixed.Value into a mixed.Key, validating it
// along the way. Only Int and String values can become keys, and the
// runtime kind must match declared unless declared is DeclaredKeyMixed.
func Key(v mixed.Value, declared DeclaredKeyKind) (mixed.Key, error) {
	switch v.Kind() {
	case mixed.KindInt:
		if declared != DeclaredKeyInt && declared != DeclaredKeyMixed {
			return mixed.Key{}, ErrTypeMismatch
		}
		return mixed.IntKey(v.AsInt()), nil
	case mixed.KindString:
		if declared != DeclaredKeyString && declared != DeclaredKeyMixed {
			return mixed.Key{}, ErrTypeMismatch
		}
		key := mixed.StringKey(v.AsString())
		if err := ValidateKeyString(v.AsString()); err != nil {
			return mixed.Key{}, err
		}
		return key, nil
	default:
		return mixed.Key{}, ErrNotImplemented
	}
}

// ValidateKeyString rejects the two reserved string-key shapes: a leading
// '$' (reserved for query syntax) and any '.' (reserved for path syntax).
func ValidateKeyString(s string) error {
	if strings.HasPrefix(s, "$") {
		return ErrInvalidKey
	}
	if strings.Contains(s, ".") {
		return ErrInvalidKey
	}
	return nil
}
