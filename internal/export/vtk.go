// Package export writes solution fields to legacy VTK files for external
// visualization tools.
package export

import (
	"bufio"
	"fmt"
	"os"

	"github.com/kspanier/cosolve/internal/fem"
)

// WriteVTK writes the solution as a legacy-VTK structured-points dataset.
// Point ordering follows the grid's row-major DOF numbering, which matches
// VTK's x-fastest convention.
func WriteVTK(path string, grid *fem.Grid, solution []float64) error {
	if len(solution) != grid.NumDofs() {
		return fmt.Errorf("export: solution length %d for %d DOFs", len(solution), grid.NumDofs())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	n := grid.NodesPerSide()

	fmt.Fprintln(w, "# vtk DataFile Version 3.0")
	fmt.Fprintln(w, "cosolve solution")
	fmt.Fprintln(w, "ASCII")
	fmt.Fprintln(w, "DATASET STRUCTURED_POINTS")
	fmt.Fprintf(w, "DIMENSIONS %d %d 1\n", n, n)
	fmt.Fprintln(w, "ORIGIN -1 -1 0")
	fmt.Fprintf(w, "SPACING %g %g 0\n", grid.MeshWidth(), grid.MeshWidth())
	fmt.Fprintf(w, "POINT_DATA %d\n", grid.NumDofs())
	fmt.Fprintln(w, "SCALARS solution double 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for _, v := range solution {
		fmt.Fprintf(w, "%g\n", v)
	}
	return w.Flush()
}
