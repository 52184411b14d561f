package coupling

import (
	"fmt"
	"sort"
)

// NodeIndexMap is the stable bijection between boundary DOF ids and the
// coordinator's node positions. The DOF ordering (ascending id) is fixed at
// construction and reused, unchanged, for mesh registration and for every
// subsequent marshal call. After registration the coordinator's node ids are
// bound index-for-index to the same ordering.
type NodeIndexMap struct {
	dim     int
	dofs    []int
	coords  []float64 // interleaved [x0, y0, ..., x1, y1, ...]
	nodeIDs []int     // empty until BindNodeIDs
}

// BuildNodeIndexMap collects the boundary DOFs for tag from the solver mesh,
// orders them by ascending DOF id and packs their coordinates into the flat
// interleaved layout the coordinator expects.
func BuildNodeIndexMap(mesh MeshAccess, tag, dim int) (*NodeIndexMap, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: dimension %d", ErrConfiguration, dim)
	}
	dofs := mesh.BoundaryDofs(tag)
	if len(dofs) == 0 {
		return nil, fmt.Errorf("%w: boundary tag %d selects no DOFs", ErrConfiguration, tag)
	}

	ordered := make([]int, len(dofs))
	copy(ordered, dofs)
	sort.Ints(ordered)
	for i := 1; i < len(ordered); i++ {
		if ordered[i] == ordered[i-1] {
			return nil, fmt.Errorf("%w: duplicate boundary DOF %d", ErrConfiguration, ordered[i])
		}
	}

	coords := make([]float64, len(ordered)*dim)
	for i, dof := range ordered {
		p := mesh.DofCoordinate(dof)
		if len(p) != dim {
			return nil, fmt.Errorf("%w: DOF %d has %d coordinates, want %d",
				ErrConfiguration, dof, len(p), dim)
		}
		copy(coords[i*dim:(i+1)*dim], p)
	}

	return &NodeIndexMap{dim: dim, dofs: ordered, coords: coords}, nil
}

// Size returns the number of interface nodes.
func (m *NodeIndexMap) Size() int { return len(m.dofs) }

// Dim returns the spatial dimensionality of the coordinate layout.
func (m *NodeIndexMap) Dim() int { return m.dim }

// DofAt returns the DOF id at node position i.
func (m *NodeIndexMap) DofAt(i int) int { return m.dofs[i] }

// NodeIDAt returns the coordinator node id at position i. Valid only after
// BindNodeIDs.
func (m *NodeIndexMap) NodeIDAt(i int) int { return m.nodeIDs[i] }

// Coordinates returns the flat interleaved coordinate array used for mesh
// registration. Callers must not mutate it.
func (m *NodeIndexMap) Coordinates() []float64 { return m.coords }

// NodeIDs returns the coordinator node id array, positionally aligned with
// the DOF ordering. Callers must not mutate it.
func (m *NodeIndexMap) NodeIDs() []int { return m.nodeIDs }

// BindNodeIDs stores the coordinator-issued node ids. It may be called
// exactly once, with exactly one id per mapped DOF.
func (m *NodeIndexMap) BindNodeIDs(ids []int) error {
	if m.nodeIDs != nil {
		return fmt.Errorf("%w: node ids already bound", ErrProtocolViolation)
	}
	if len(ids) != len(m.dofs) {
		return fmt.Errorf("%w: %d node ids for %d DOFs", ErrIndexRange, len(ids), len(m.dofs))
	}
	m.nodeIDs = make([]int, len(ids))
	copy(m.nodeIDs, ids)
	return nil
}
