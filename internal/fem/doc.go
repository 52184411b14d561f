// Package fem implements the structured-grid finite element solver the
// coupling adapter drives: bilinear (Q1) elements on a globally refined
// square, Laplace stiffness assembly, Dirichlet constraint application and a
// conjugate gradient solve.
//
// The grid exposes the boundary access the adapter consumes: DOF ids on a
// tagged boundary in ascending order, and per-DOF coordinates.
package fem
