package solver

// Value functions of the model problem, as plain callables.

// RightHandSide is the source term f(p) = Σᵢ 4·pᵢ⁴.
func RightHandSide(p []float64) float64 {
	v := 0.0
	for _, x := range p {
		v += 4 * x * x * x * x
	}
	return v
}

// OuterBoundaryValue is the Dirichlet value g(p) = |p|² imposed on the
// non-coupled part of the boundary.
func OuterBoundaryValue(p []float64) float64 {
	v := 0.0
	for _, x := range p {
		v += x * x
	}
	return v
}
