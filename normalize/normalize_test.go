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

package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkv/objectdict/mixed"
	"github.com/ledgerkv/objectdict/normalize"
	"github.com/ledgerkv/objectdict/objectstore"
)

func TestValueRejectsNullIntoNonNullableColumn(t *testing.T) {
	ms := objectstore.NewMemStore()
	table := ms.Table("t")
	_, err := normalize.Value(table, ms, "col", normalize.DeclaredInt, false, mixed.Null())
	require.ErrorIs(t, err, normalize.ErrTypeMismatch)
}

func TestValueAllowsNullIntoNullableColumn(t *testing.T) {
	ms := objectstore.NewMemStore()
	table := ms.Table("t")
	v, err := normalize.Value(table, ms, "col", normalize.DeclaredInt, true, mixed.Null())
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestValueRewritesUntypedLinkToTyped(t *testing.T) {
	ms := objectstore.NewMemStore()
	ms.SetOppositeTable("owners", "col", "targets")
	targets := ms.Table("targets")
	key, err := targets.CreateObject()
	require.NoError(t, err)

	owners := ms.Table("owners")
	v, err := normalize.Value(owners, ms, "col", normalize.DeclaredLink, false, mixed.UntypedLink(key))
	require.NoError(t, err)
	require.Equal(t, mixed.KindTypedLink, v.Kind())
	require.Equal(t, objectstore.TableKey("targets"), v.AsLink().Table)
}

func TestValueRejectsUntypedLinkToInvalidTarget(t *testing.T) {
	ms := objectstore.NewMemStore()
	ms.SetOppositeTable("owners", "col", "targets")
	owners := ms.Table("owners")
	_, err := normalize.Value(owners, ms, "col", normalize.DeclaredLink, false, mixed.UntypedLink(999))
	require.ErrorIs(t, err, normalize.ErrTargetOutOfRange)
}

func TestValueRejectsTypedLinkWithWrongTable(t *testing.T) {
	ms := objectstore.NewMemStore()
	ms.SetOppositeTable("owners", "col", "targets")
	owners := ms.Table("owners")
	_, err := normalize.Value(owners, ms, "col", normalize.DeclaredLink, false, mixed.TypedLink("other", 1))
	require.ErrorIs(t, err, normalize.ErrWrongObjectType)
}

func TestValueMixedBypassesUnresolvedLink(t *testing.T) {
	ms := objectstore.NewMemStore()
	table := ms.Table("t")
	v, err := normalize.Value(table, ms, "col", normalize.DeclaredMixed, false, mixed.TypedLink("x", mixed.Unresolved))
	require.NoError(t, err)
	require.Equal(t, mixed.KindTypedLink, v.Kind())
}

func TestValueExactKindMatch(t *testing.T) {
	ms := objectstore.NewMemStore()
	table := ms.Table("t")
	_, err := normalize.Value(table, ms, "col", normalize.DeclaredInt, false, mixed.String("nope"))
	require.ErrorIs(t, err, normalize.ErrTypeMismatch)

	v, err := normalize.Value(table, ms, "col", normalize.DeclaredInt, false, mixed.Int(5))
	require.NoError(t, err)
	require.Equal(t, int64(5), v.AsInt())
}

func TestReadFiltersUnresolvedLinkToNull(t *testing.T) {
	v := normalize.Read(normalize.DeclaredMixed, mixed.TypedLink("t", mixed.Unresolved))
	require.True(t, v.IsNull())
}

func TestReadReturnsBareObjectKeyForLinkColumn(t *testing.T) {
	v := normalize.Read(normalize.DeclaredLink, mixed.TypedLink("t", 42))
	require.Equal(t, mixed.KindUntypedLink, v.Kind())
	require.Equal(t, mixed.ObjectKey(42), v.AsLink().Object)
}

func TestKeyValidation(t *testing.T) {
	_, err := normalize.Key(mixed.String("$bad"), normalize.DeclaredKeyString)
	require.ErrorIs(t, err, normalize.ErrInvalidKey)

	_, err = normalize.Key(mixed.String("a.b"), normalize.DeclaredKeyString)
	require.ErrorIs(t, err, normalize.ErrInvalidKey)

	k, err := normalize.Key(mixed.String(""), normalize.DeclaredKeyString)
	require.NoError(t, err)
	require.Equal(t, "", k.Str())

	_, err = normalize.Key(mixed.Bool(true), normalize.DeclaredKeyMixed)
	require.ErrorIs(t, err, normalize.ErrNotImplemented)
}

func TestKeyRejectsDeclaredTypeMismatch(t *testing.T) {
	_, err := normalize.Key(mixed.Int(1), normalize.DeclaredKeyString)
	require.ErrorIs(t, err, normalize.ErrTypeMismatch)

	_, err = normalize.Key(mixed.String("a"), normalize.DeclaredKeyInt)
	require.ErrorIs(t, err, normalize.ErrTypeMismatch)

	_, err = normalize.Key(mixed.Int(1), normalize.DeclaredKeyMixed)
	require.NoError(t, err)
}
