package fem

// Boundary tags. The face at x == 1 carries the coupling interface; every
// other boundary face keeps the default tag. Corner nodes at (1, ±1) lie on
// faces of both tags and are reported for both.
const (
	BoundaryOuter     = 0
	BoundaryInterface = 1
)

// Grid is a structured quadrilateral grid on [-1,1]² produced by global
// refinement: refine levels give (2^refine+1)² nodes. DOF ids are row-major
// node indices and are stable for the grid's lifetime.
type Grid struct {
	refine int
	n      int     // nodes per side
	h      float64 // mesh width
}

// NewUnitSquare builds the grid with the given number of global refinements.
func NewUnitSquare(refine int) *Grid {
	if refine < 1 {
		refine = 1
	}
	n := (1 << refine) + 1
	return &Grid{refine: refine, n: n, h: 2.0 / float64(n-1)}
}

// NumDofs returns the total number of degrees of freedom.
func (g *Grid) NumDofs() int { return g.n * g.n }

// NodesPerSide returns the node count along one edge.
func (g *Grid) NodesPerSide() int { return g.n }

// NumCells returns the number of active cells.
func (g *Grid) NumCells() int { return (g.n - 1) * (g.n - 1) }

// MeshWidth returns the cell edge length.
func (g *Grid) MeshWidth() float64 { return g.h }

// DofCoordinate returns the (x, y) position of one DOF.
func (g *Grid) DofCoordinate(dof int) []float64 {
	i := dof % g.n
	j := dof / g.n
	return []float64{-1 + float64(i)*g.h, -1 + float64(j)*g.h}
}

// BoundaryDofs returns the DOF ids on the tagged boundary in ascending
// order. The interface tag selects the x == 1 face including its corners;
// the outer tag selects every other boundary node, again including the
// shared corners, which also sit on outer faces.
func (g *Grid) BoundaryDofs(tag int) []int {
	var dofs []int
	n := g.n
	for dof := 0; dof < n*n; dof++ {
		i := dof % n
		j := dof / n
		onInterface := i == n-1
		onOuter := i == 0 || j == 0 || j == n-1
		switch tag {
		case BoundaryInterface:
			if onInterface {
				dofs = append(dofs, dof)
			}
		case BoundaryOuter:
			if onOuter {
				dofs = append(dofs, dof)
			}
		}
	}
	return dofs
}

// CellDofs returns the four DOF ids of cell (cx, cy), counterclockwise from
// the lower-left node.
func (g *Grid) CellDofs(cx, cy int) [4]int {
	ll := cy*g.n + cx
	return [4]int{ll, ll + 1, ll + g.n + 1, ll + g.n}
}
