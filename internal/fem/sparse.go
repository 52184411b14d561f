package fem

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrNotConverged indicates the iterative solver exhausted its iteration
// budget before reaching the requested tolerance.
var ErrNotConverged = errors.New("fem: conjugate gradient did not converge")

// Matrix is a square sparse matrix assembled row-wise. Assembly order does
// not matter; entries accumulate.
type Matrix struct {
	n    int
	rows []map[int]float64
}

// NewMatrix returns an empty n×n matrix.
func NewMatrix(n int) *Matrix {
	rows := make([]map[int]float64, n)
	for i := range rows {
		rows[i] = make(map[int]float64)
	}
	return &Matrix{n: n, rows: rows}
}

// Dim returns the matrix dimension.
func (a *Matrix) Dim() int { return a.n }

// Add accumulates v into entry (i, j).
func (a *Matrix) Add(i, j int, v float64) { a.rows[i][j] += v }

// At returns entry (i, j).
func (a *Matrix) At(i, j int) float64 { return a.rows[i][j] }

// MulVec computes dst = A·x.
func (a *Matrix) MulVec(dst, x []float64) {
	for i := 0; i < a.n; i++ {
		sum := 0.0
		for j, v := range a.rows[i] {
			sum += v * x[j]
		}
		dst[i] = sum
	}
}

// ApplyDirichlet constrains the given DOFs to fixed values while keeping the
// matrix symmetric: constrained rows and columns are eliminated, column
// contributions move to the right-hand side, and the diagonal is set to one.
func (a *Matrix) ApplyDirichlet(values map[int]float64, rhs []float64) error {
	if len(rhs) != a.n {
		return fmt.Errorf("fem: rhs length %d for %d DOFs", len(rhs), a.n)
	}
	for dof := range values {
		if dof < 0 || dof >= a.n {
			return fmt.Errorf("fem: constrained DOF %d outside system of size %d", dof, a.n)
		}
	}
	for dof, v := range values {
		for j := range a.rows[dof] {
			if j == dof {
				continue
			}
			if _, constrained := values[j]; !constrained {
				rhs[j] -= a.rows[j][dof] * v
			}
			delete(a.rows[j], dof)
		}
		a.rows[dof] = map[int]float64{dof: 1}
		rhs[dof] = v
	}
	return nil
}

// SolveCG solves A·x = b with the conjugate gradient method, starting from
// zero. It returns the solution and the iteration count, or ErrNotConverged
// if the residual norm stays above tol after maxIter iterations.
func (a *Matrix) SolveCG(b []float64, tol float64, maxIter int) ([]float64, int, error) {
	n := a.n
	x := make([]float64, n)
	r := make([]float64, n)
	copy(r, b)
	p := make([]float64, n)
	copy(p, r)
	ap := make([]float64, n)

	rr := floats.Dot(r, r)
	if rr <= tol*tol {
		return x, 0, nil
	}

	for k := 1; k <= maxIter; k++ {
		a.MulVec(ap, p)
		alpha := rr / floats.Dot(p, ap)
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		rrNext := floats.Dot(r, r)
		if rrNext <= tol*tol {
			return x, k, nil
		}
		beta := rrNext / rr
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rr = rrNext
	}
	return x, maxIter, ErrNotConverged
}
