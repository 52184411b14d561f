package fem

import "math"

// ValueFunc evaluates a scalar field at a spatial point. Right-hand sides
// and boundary values are plain callables, not type hierarchies.
type ValueFunc func(p []float64) float64

// Element stiffness of the Laplace operator for a bilinear quad on a square
// cell, counterclockwise node order. In 2D it is independent of the cell
// size.
var quadStiffness = [4][4]float64{
	{4.0 / 6, -1.0 / 6, -2.0 / 6, -1.0 / 6},
	{-1.0 / 6, 4.0 / 6, -1.0 / 6, -2.0 / 6},
	{-2.0 / 6, -1.0 / 6, 4.0 / 6, -1.0 / 6},
	{-1.0 / 6, -2.0 / 6, -1.0 / 6, 4.0 / 6},
}

// System is one assembled linear system -Δu = f. Dirichlet elimination
// consumes the matrix, so the coupled loop reassembles every step.
type System struct {
	grid *Grid
	A    *Matrix
	RHS  []float64
}

// Assemble builds the stiffness matrix and load vector for the right-hand
// side f, using 2×2 Gauss quadrature for the cell loads.
func Assemble(g *Grid, f ValueFunc) *System {
	n := g.NumDofs()
	sys := &System{grid: g, A: NewMatrix(n), RHS: make([]float64, n)}

	// Gauss points on the reference square [-1,1]², weight 1 each.
	q := 1.0 / math.Sqrt(3)
	pts := [4][2]float64{{-q, -q}, {q, -q}, {q, q}, {-q, q}}
	jac := g.MeshWidth() * g.MeshWidth() / 4

	side := g.NodesPerSide() - 1
	for cy := 0; cy < side; cy++ {
		for cx := 0; cx < side; cx++ {
			dofs := g.CellDofs(cx, cy)

			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					sys.A.Add(dofs[i], dofs[j], quadStiffness[i][j])
				}
			}

			x0 := -1 + float64(cx)*g.MeshWidth()
			y0 := -1 + float64(cy)*g.MeshWidth()
			for _, gp := range pts {
				xi, eta := gp[0], gp[1]
				x := x0 + (xi+1)/2*g.MeshWidth()
				y := y0 + (eta+1)/2*g.MeshWidth()
				fv := f([]float64{x, y})

				shapes := [4]float64{
					(1 - xi) * (1 - eta) / 4,
					(1 + xi) * (1 - eta) / 4,
					(1 + xi) * (1 + eta) / 4,
					(1 - xi) * (1 + eta) / 4,
				}
				for i := 0; i < 4; i++ {
					sys.RHS[dofs[i]] += shapes[i] * fv * jac
				}
			}
		}
	}
	return sys
}

// Constrain applies Dirichlet values to the system.
func (s *System) Constrain(values map[int]float64) error {
	return s.A.ApplyDirichlet(values, s.RHS)
}

// Solve runs conjugate gradients and returns the solution vector indexed by
// DOF id, plus the iteration count.
func (s *System) Solve(tol float64, maxIter int) ([]float64, int, error) {
	return s.A.SolveCG(s.RHS, tol, maxIter)
}

// InterpolateBoundary evaluates g at every DOF on the tagged boundary,
// producing a Dirichlet value map.
func InterpolateBoundary(grid *Grid, tag int, g ValueFunc) map[int]float64 {
	dofs := grid.BoundaryDofs(tag)
	values := make(map[int]float64, len(dofs))
	for _, dof := range dofs {
		values[dof] = g(grid.DofCoordinate(dof))
	}
	return values
}
