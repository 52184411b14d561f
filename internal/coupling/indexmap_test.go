package coupling

import (
	"errors"
	"testing"
)

// stubMesh is a minimal MeshAccess with fixed boundary DOFs and coordinates.
type stubMesh struct {
	dofs   map[int][]int
	coords map[int][]float64
}

func (m *stubMesh) BoundaryDofs(tag int) []int      { return m.dofs[tag] }
func (m *stubMesh) DofCoordinate(dof int) []float64 { return m.coords[dof] }

func faceMesh() *stubMesh {
	// Five DOFs on a 2D face, deliberately listed out of order by the mesh.
	return &stubMesh{
		dofs: map[int][]int{1: {12, 3, 7, 25, 18}},
		coords: map[int][]float64{
			3:  {1.0, -1.0},
			7:  {1.0, -0.5},
			12: {1.0, 0.0},
			18: {1.0, 0.5},
			25: {1.0, 1.0},
		},
	}
}

func TestBuildNodeIndexMap(t *testing.T) {
	m, err := BuildNodeIndexMap(faceMesh(), 1, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if m.Size() != 5 {
		t.Errorf("expected 5 nodes, got %d", m.Size())
	}
	if len(m.Coordinates()) != 10 {
		t.Errorf("expected coordinate array of length 10, got %d", len(m.Coordinates()))
	}

	// Ascending DOF order, independent of the mesh's listing order.
	want := []int{3, 7, 12, 18, 25}
	for i, dof := range want {
		if m.DofAt(i) != dof {
			t.Errorf("position %d: expected DOF %d, got %d", i, dof, m.DofAt(i))
		}
	}

	// Coordinates interleave per node, aligned with the DOF order.
	if m.Coordinates()[2] != 1.0 || m.Coordinates()[3] != -0.5 {
		t.Errorf("coordinates misaligned: got (%g, %g) at node 1",
			m.Coordinates()[2], m.Coordinates()[3])
	}
}

func TestNodeIndexMapBijection(t *testing.T) {
	m, err := BuildNodeIndexMap(faceMesh(), 1, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	seen := make(map[int]bool)
	for i := 0; i < m.Size(); i++ {
		dof := m.DofAt(i)
		if seen[dof] {
			t.Errorf("DOF %d mapped twice", dof)
		}
		seen[dof] = true
	}
}

func TestNodeIndexMapOrderStable(t *testing.T) {
	m, err := BuildNodeIndexMap(faceMesh(), 1, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	first := make([]int, m.Size())
	for i := range first {
		first[i] = m.DofAt(i)
	}
	for i := range first {
		if m.DofAt(i) != first[i] {
			t.Fatalf("ordering changed between calls at position %d", i)
		}
	}
}

func TestBindNodeIDs(t *testing.T) {
	m, err := BuildNodeIndexMap(faceMesh(), 1, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if err := m.BindNodeIDs([]int{1, 2, 3}); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange for short id array, got %v", err)
	}
	if err := m.BindNodeIDs([]int{100, 101, 102, 103, 104}); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if m.NodeIDAt(2) != 102 {
		t.Errorf("expected node id 102 at position 2, got %d", m.NodeIDAt(2))
	}
	if err := m.BindNodeIDs([]int{100, 101, 102, 103, 104}); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("expected ErrProtocolViolation on rebind, got %v", err)
	}
}

func TestBuildNodeIndexMapErrors(t *testing.T) {
	empty := &stubMesh{dofs: map[int][]int{}, coords: map[int][]float64{}}
	if _, err := BuildNodeIndexMap(empty, 1, 2); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for empty boundary, got %v", err)
	}

	dup := faceMesh()
	dup.dofs[1] = append(dup.dofs[1], 7)
	if _, err := BuildNodeIndexMap(dup, 1, 2); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for duplicate DOF, got %v", err)
	}

	badDim := faceMesh()
	if _, err := BuildNodeIndexMap(badDim, 1, 3); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for coordinate/dim mismatch, got %v", err)
	}
}
