package coupling

import (
	"errors"
	"testing"
)

func testMap(t *testing.T) *NodeIndexMap {
	t.Helper()
	m, err := BuildNodeIndexMap(faceMesh(), 1, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return m
}

func TestMarshalToExternal(t *testing.T) {
	m := testMap(t)
	ms, err := NewMarshaller(m, 1)
	if err != nil {
		t.Fatalf("marshaller: %v", err)
	}

	src := make([]float64, 30)
	for i := range src {
		src[i] = float64(i) * 10
	}

	flat, err := ms.ToExternal(src)
	if err != nil {
		t.Fatalf("ToExternal failed: %v", err)
	}
	// Positions follow ascending DOF order: 3, 7, 12, 18, 25.
	want := []float64{30, 70, 120, 180, 250}
	for i, v := range want {
		if flat[i] != v {
			t.Errorf("flat[%d]: expected %g, got %g", i, v, flat[i])
		}
	}
}

func TestMarshalIdempotent(t *testing.T) {
	m := testMap(t)
	ms, _ := NewMarshaller(m, 1)

	src := make([]float64, 30)
	for i := range src {
		src[i] = float64(i * i)
	}

	first, err := ms.ToExternal(src)
	if err != nil {
		t.Fatalf("ToExternal failed: %v", err)
	}
	snapshot := append([]float64(nil), first...)

	second, err := ms.ToExternal(src)
	if err != nil {
		t.Fatalf("second ToExternal failed: %v", err)
	}
	for i := range snapshot {
		if second[i] != snapshot[i] {
			t.Errorf("position %d changed between identical calls: %g vs %g",
				i, snapshot[i], second[i])
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	m := testMap(t)
	ms, _ := NewMarshaller(m, 1)

	src := make([]float64, 30)
	for i := range src {
		src[i] = float64(i) + 0.5
	}

	flat, err := ms.ToExternal(src)
	if err != nil {
		t.Fatalf("ToExternal failed: %v", err)
	}

	values := make(BoundaryValueMap)
	if err := ms.FromExternal(flat, values); err != nil {
		t.Fatalf("FromExternal failed: %v", err)
	}

	// Identity pass-through reproduces src at every boundary DOF.
	for i := 0; i < m.Size(); i++ {
		dof := m.DofAt(i)
		if values[dof] != src[dof] {
			t.Errorf("DOF %d: expected %g, got %g", dof, src[dof], values[dof])
		}
	}
	// And touches nothing else.
	if len(values) != m.Size() {
		t.Errorf("expected %d entries, got %d", m.Size(), len(values))
	}
}

func TestFromExternalPartialUpdate(t *testing.T) {
	m := testMap(t)
	ms, _ := NewMarshaller(m, 1)

	values := BoundaryValueMap{3: 0, 7: 0, 12: 0, 18: 0, 25: 0, 99: -1}
	flat := []float64{1, 2, 3, 4, 5}
	if err := ms.FromExternal(flat, values); err != nil {
		t.Fatalf("FromExternal failed: %v", err)
	}
	if values[99] != -1 {
		t.Errorf("unmapped DOF touched: got %g", values[99])
	}
	if values[12] != 3 {
		t.Errorf("DOF 12: expected 3, got %g", values[12])
	}
}

func TestMarshalErrors(t *testing.T) {
	m := testMap(t)
	ms, _ := NewMarshaller(m, 1)

	// Source vector too short for the highest mapped DOF (25).
	if _, err := ms.ToExternal(make([]float64, 10)); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange for short source, got %v", err)
	}

	if err := ms.FromExternal(make([]float64, 4), BoundaryValueMap{}); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange for short flat array, got %v", err)
	}

	if _, err := NewMarshaller(m, 0); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for zero components, got %v", err)
	}
}

func TestMarshalVectorField(t *testing.T) {
	m := testMap(t)
	ms, err := NewMarshaller(m, 2)
	if err != nil {
		t.Fatalf("marshaller: %v", err)
	}
	if ms.Width() != 10 {
		t.Fatalf("expected width 10, got %d", ms.Width())
	}

	// src[dof*2], src[dof*2+1] are the two components of each DOF.
	src := make([]float64, 52)
	for i := range src {
		src[i] = float64(i)
	}
	flat, err := ms.ToExternal(src)
	if err != nil {
		t.Fatalf("ToExternal failed: %v", err)
	}
	// First node is DOF 3: components interleave as [v3_x, v3_y, ...].
	if flat[0] != 6 || flat[1] != 7 {
		t.Errorf("expected interleaved (6, 7) for first node, got (%g, %g)", flat[0], flat[1])
	}

	values := make(BoundaryValueMap)
	if err := ms.FromExternal(flat, values); err != nil {
		t.Fatalf("FromExternal failed: %v", err)
	}
	if values[6] != 6 || values[7] != 7 {
		t.Errorf("vector unpack misaligned: got (%g, %g)", values[6], values[7])
	}
}
