// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package workload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoverage(t *testing.T) {
	chk := require.New(t)
	c := NewCoverage(3)
	for i := range 3 {
		c.RunTask(i, 3)
	}
	chk.Equal(3, c.Calls())
	c.RequireEach(t, 1)

	c.RunTask(7, 3)
	chk.Equal(3, c.Calls())
	chk.EqualValues(1, c.outOfRange.Load())
}

func TestMandelbrotEscape(t *testing.T) {
	chk := require.New(t)
	chk.Equal(256, escape(0, 0, 256))
	chk.Equal(256, escape(-1, 0, 256))
	chk.Less(escape(-2, -1, 256), 3)
	chk.Less(escape(0.5, 0.5, 256), 10)
}

func TestMandelbrotRows(t *testing.T) {
	chk := require.New(t)
	m := NewMandelbrot(30, 20, 64)
	for i := range m.Height {
		m.RunTask(i, m.Height)
	}
	// The middle row crosses the set along the real axis.
	chk.Contains(m.Output[10*m.Width:11*m.Width], 64)
	chk.Equal(0, m.Output[0])
}
