package sim

import "github.com/pthm-cable/swarm/vec"

// neighbor holds a nearby element with precomputed data, so the steering
// accumulation does not recompute the delta and distance.
type neighbor struct {
	Idx  int32
	Diff vec.V3  // position[i] - position[j]
	Dist float32 // |Diff|
}

// uniformGrid bins element indices into cubic cells for neighbor queries.
// Distances are plain Euclidean, matching the brute-force scan exactly; the
// world wrap applies only to positions, not to the perception metric.
type uniformGrid struct {
	cellSize float32
	dims     int     // cells per axis
	origin   float32 // -worldBound
	cells    [][]int32
}

// newUniformGrid creates a grid covering [-worldBound, worldBound] per axis.
func newUniformGrid(worldBound, cellSize float32) *uniformGrid {
	dims := int(2*worldBound/cellSize) + 1
	cells := make([][]int32, dims*dims*dims)
	for i := range cells {
		cells[i] = make([]int32, 0, 8)
	}
	return &uniformGrid{
		cellSize: cellSize,
		dims:     dims,
		origin:   -worldBound,
		cells:    cells,
	}
}

// clear removes all elements from the grid.
func (g *uniformGrid) clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// insert adds an element index at the given position.
func (g *uniformGrid) insert(i int32, p vec.V3) {
	idx := g.cellIndex(p)
	g.cells[idx] = append(g.cells[idx], i)
}

// queryInto appends every element within radius of p (excluding exclude) to
// dst, with delta and distance precomputed. Reuse dst across calls to avoid
// allocations.
func (g *uniformGrid) queryInto(dst []neighbor, p vec.V3, radius float32, exclude int32, positions []vec.V3) []neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	cx := g.axisCell(p.X)
	cy := g.axisCell(p.Y)
	cz := g.axisCell(p.Z)

	x0, x1 := clampCell(cx-cellRadius, g.dims), clampCell(cx+cellRadius, g.dims)
	y0, y1 := clampCell(cy-cellRadius, g.dims), clampCell(cy+cellRadius, g.dims)
	z0, z1 := clampCell(cz-cellRadius, g.dims), clampCell(cz+cellRadius, g.dims)

	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for z := z0; z <= z1; z++ {
				idx := (x*g.dims+y)*g.dims + z
				for _, j := range g.cells[idx] {
					if j == exclude {
						continue
					}
					diff := p.Sub(positions[j])
					dist := diff.Length()
					if dist < radius {
						dst = append(dst, neighbor{Idx: j, Diff: diff, Dist: dist})
					}
				}
			}
		}
	}
	return dst
}

// cellIndex returns the flat index for a world position.
func (g *uniformGrid) cellIndex(p vec.V3) int {
	return (g.axisCell(p.X)*g.dims+g.axisCell(p.Y))*g.dims + g.axisCell(p.Z)
}

// axisCell maps one coordinate to a cell index, clamped to the grid.
func (g *uniformGrid) axisCell(v float32) int {
	return clampCell(int((v-g.origin)/g.cellSize), g.dims)
}

func clampCell(c, dims int) int {
	if c < 0 {
		return 0
	}
	if c >= dims {
		return dims - 1
	}
	return c
}
