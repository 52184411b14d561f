package coupling

// BoundaryValueMap associates boundary DOF ids with the most recently
// received coupling values. It is created once with all coupling DOFs
// present (zero-valued) and repopulated in place on every successful read;
// entries are never added or removed afterwards.
type BoundaryValueMap map[int]float64

// MeshAccess is what the adapter consumes from the PDE solver.
type MeshAccess interface {
	// BoundaryDofs returns the DOF ids on the boundary identified by tag,
	// in ascending order.
	BoundaryDofs(tag int) []int

	// DofCoordinate returns the spatial coordinates of one DOF as a
	// dim-tuple.
	DofCoordinate(dof int) []float64
}

// Session is the surface one participant sees of the external co-simulation
// coordinator. The coordinator itself (session negotiation, time
// synchronization, transport) is not reimplemented here; the adapter is a
// disciplined client of whatever implements this interface.
type Session interface {
	// Dimensions reports the spatial dimensionality the session was
	// configured with.
	Dimensions() int

	// RegisterMesh passes the flat, interleaved node coordinate array for
	// the named mesh and returns the coordinator-issued node ids, one per
	// node, positionally aligned with the coordinates.
	RegisterMesh(mesh string, coords []float64) ([]int, error)

	// HasDataset reports whether a named data stream is configured on the
	// mesh for this run. Absence is not an error.
	HasDataset(mesh, name string) bool

	// ResolveDataset returns the coordinator handle for a named stream.
	ResolveDataset(mesh, name string) (int, error)

	// Start transitions the session into the active coupling window. Must
	// follow mesh registration.
	Start() error

	// InitialDataRequired reports whether the coordinator expects this
	// participant to provide data before regular stepping begins.
	InitialDataRequired() bool

	// WriteInitial transfers the initial values for a stream.
	WriteInitial(handle int, nodeIDs []int, values []float64) error

	// MarkInitialDataFulfilled acknowledges the initial-data requirement.
	MarkInitialDataFulfilled() error

	// InitializeData completes the coordinator's data-initialization step.
	// Some coordinators require this call even when no initial data was
	// written.
	InitializeData() error

	// ReadDataAvailable reports whether the peer has produced data for the
	// current exchange point.
	ReadDataAvailable() bool

	// WriteRequired reports whether a write is due for a step of length dt.
	WriteRequired(dt float64) bool

	// Write transfers values for a stream, ordered by node id position.
	Write(handle int, nodeIDs []int, values []float64) error

	// Read fills out with the peer values for a stream, ordered by node id
	// position.
	Read(handle int, nodeIDs []int, out []float64) error

	// Advance commits the current step, blocks until all participants are
	// synchronized, and reports whether the coupling window remains open.
	Advance(dt float64) (bool, error)

	// Finalize releases the session.
	Finalize() error
}

// Runtime identifies the local process within a multi-process run. It is
// created once at program start and passed to the components that need it,
// replacing any process-global initialization.
type Runtime struct {
	Rank int
	Size int
}

// SingleProcess returns the runtime handle for a serial run.
func SingleProcess() Runtime {
	return Runtime{Rank: 0, Size: 1}
}
