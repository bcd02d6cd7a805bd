// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package numeric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromStringTruncatesToFourPlaces(t *testing.T) {
	a, err := FromString("1.234567")
	require.NoError(t, err)
	require.Equal(t, "1.2345", a.String())
}

func TestFromStringRejectsGarbage(t *testing.T) {
	_, err := FromString("not-a-number")
	require.Error(t, err)
}

func TestFromFloatTruncatesOnConstruction(t *testing.T) {
	a := FromFloat(1.00005)
	require.Equal(t, "1.0000", a.String())
}

func TestArithmetic(t *testing.T) {
	a := FromFloat(1.5)
	b := FromFloat(0.25)
	require.Equal(t, "1.7500", a.Add(b).String())
	require.Equal(t, "1.2500", a.Sub(b).String())
}

func TestIsNegativeAndLessThan(t *testing.T) {
	a := FromFloat(1.5)
	b := FromFloat(2.5)
	require.True(t, a.LessThan(b))
	require.False(t, a.IsNegative())
	require.True(t, a.Sub(b).IsNegative())
}
