// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package workload

// Mandelbrot renders one image row per sub-task, storing the escape
// iteration count of each pixel. Rows near the middle of the default view
// cost far more than rows at the edges, so per-task cost is strongly skewed.
type Mandelbrot struct {
	X0, Y0, X1, Y1 float32
	Width, Height  int
	MaxIterations  int
	Output         []int
}

// NewMandelbrot returns the classic full view of the set at the given size.
// Run it with Height sub-tasks.
func NewMandelbrot(width, height, maxIterations int) *Mandelbrot {
	return &Mandelbrot{
		X0: -2, Y0: -1, X1: 1, Y1: 1,
		Width:         width,
		Height:        height,
		MaxIterations: maxIterations,
		Output:        make([]int, width*height),
	}
}

func (m *Mandelbrot) RunTask(taskID, numTotalTasks int) {
	dx := (m.X1 - m.X0) / float32(m.Width)
	dy := (m.Y1 - m.Y0) / float32(m.Height)
	y := m.Y0 + float32(taskID)*dy
	row := m.Output[taskID*m.Width : (taskID+1)*m.Width]
	for i := range row {
		row[i] = escape(m.X0+float32(i)*dx, y, m.MaxIterations)
	}
}

func escape(cRe, cIm float32, count int) int {
	zRe, zIm := cRe, cIm
	i := 0
	for ; i < count; i++ {
		if zRe*zRe+zIm*zIm > 4 {
			break
		}
		newRe := zRe*zRe - zIm*zIm
		newIm := 2 * zRe * zIm
		zRe = cRe + newRe
		zIm = cIm + newIm
	}
	return i
}
