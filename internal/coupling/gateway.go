package coupling

import "fmt"

// gatewayState tracks the forward-only session lifecycle. Transitions never
// move backwards; a data call outside the active window is adapter misuse.
type gatewayState int

const (
	stateUninitialized gatewayState = iota
	stateMeshRegistered
	stateActive
	stateClosed // coupling window reported closed, session not yet released
	stateFinalized
)

func (s gatewayState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateMeshRegistered:
		return "mesh registered"
	case stateActive:
		return "session active"
	case stateClosed:
		return "window closed"
	case stateFinalized:
		return "finalized"
	}
	return "unknown"
}

// Gateway is a thin, stateful wrapper over one coordinator session. It owns
// the lifecycle state machine and the precondition checks the raw session
// does not guarantee: registration happens once with the configured
// dimensionality, data transfers only inside the active window and only
// through handles resolved on this gateway.
type Gateway struct {
	session  Session
	mesh     string
	state    gatewayState
	resolved map[int]bool
}

// NewGateway wraps a coordinator session for the named mesh.
func NewGateway(session Session, mesh string) *Gateway {
	return &Gateway{
		session:  session,
		mesh:     mesh,
		state:    stateUninitialized,
		resolved: make(map[int]bool),
	}
}

// RegisterMesh passes the flat coordinate array to the coordinator and
// returns the issued node ids. Called exactly once, before Start.
func (g *Gateway) RegisterMesh(coords []float64, dim int) ([]int, error) {
	if g.state != stateUninitialized {
		return nil, fmt.Errorf("%w: mesh registered twice", ErrConfiguration)
	}
	if want := g.session.Dimensions(); dim != want {
		return nil, fmt.Errorf("%w: mesh dimension %d, session configured for %d",
			ErrConfiguration, dim, want)
	}
	if len(coords)%dim != 0 {
		return nil, fmt.Errorf("%w: coordinate array length %d not divisible by dim %d",
			ErrConfiguration, len(coords), dim)
	}
	ids, err := g.session.RegisterMesh(g.mesh, coords)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	if len(ids) != len(coords)/dim {
		return nil, fmt.Errorf("%w: coordinator returned %d node ids for %d nodes",
			ErrIndexRange, len(ids), len(coords)/dim)
	}
	g.state = stateMeshRegistered
	return ids, nil
}

// HasDataset reports whether a named stream is configured for this run.
// Absence is not an error; it only disables that direction.
func (g *Gateway) HasDataset(name string) bool {
	return g.session.HasDataset(g.mesh, name)
}

// ResolveDataset looks up the coordinator handle for a named stream and
// records it as usable on this gateway.
func (g *Gateway) ResolveDataset(name string) (int, error) {
	if g.state == stateUninitialized || g.state == stateFinalized {
		return 0, fmt.Errorf("%w: ResolveDataset in state %q", ErrProtocolViolation, g.state)
	}
	h, err := g.session.ResolveDataset(g.mesh, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	g.resolved[h] = true
	return h, nil
}

// Start transitions the session into the active coupling window.
func (g *Gateway) Start() error {
	if g.state != stateMeshRegistered {
		return fmt.Errorf("%w: Start in state %q", ErrProtocolViolation, g.state)
	}
	if err := g.session.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	g.state = stateActive
	return nil
}

// InitialDataRequired reports whether the coordinator expects initial data
// from this participant.
func (g *Gateway) InitialDataRequired() bool {
	return g.state == stateActive && g.session.InitialDataRequired()
}

// WriteInitial transfers initial values and acknowledges the requirement.
func (g *Gateway) WriteInitial(handle int, nodeIDs []int, values []float64) error {
	if err := g.checkTransfer("WriteInitial", handle, nodeIDs, values); err != nil {
		return err
	}
	if err := g.session.WriteInitial(handle, nodeIDs, values); err != nil {
		return fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	if err := g.session.MarkInitialDataFulfilled(); err != nil {
		return fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	return nil
}

// InitializeData completes the coordinator's data-initialization step. The
// underlying protocol requires this call even when no initial write
// occurred.
func (g *Gateway) InitializeData() error {
	if g.state != stateActive {
		return fmt.Errorf("%w: InitializeData in state %q", ErrProtocolViolation, g.state)
	}
	if err := g.session.InitializeData(); err != nil {
		return fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	return nil
}

// ReadDataAvailable reports whether the peer has produced data for the
// current exchange point.
func (g *Gateway) ReadDataAvailable() bool {
	return g.state == stateActive && g.session.ReadDataAvailable()
}

// WriteRequired reports whether a write is due for a step of length dt.
func (g *Gateway) WriteRequired(dt float64) bool {
	return g.state == stateActive && g.session.WriteRequired(dt)
}

// WriteData transfers values for one resolved stream, positionally ordered.
func (g *Gateway) WriteData(handle int, nodeIDs []int, values []float64) error {
	if err := g.checkTransfer("WriteData", handle, nodeIDs, values); err != nil {
		return err
	}
	if err := g.session.Write(handle, nodeIDs, values); err != nil {
		return fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	return nil
}

// ReadData fills out with peer values for one resolved stream.
func (g *Gateway) ReadData(handle int, nodeIDs []int, out []float64) error {
	if err := g.checkTransfer("ReadData", handle, nodeIDs, out); err != nil {
		return err
	}
	if err := g.session.Read(handle, nodeIDs, out); err != nil {
		return fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	return nil
}

// Advance commits the current step and blocks until all participants are
// synchronized. It reports whether the coupling window remains open; once it
// returns false the gateway accepts no further data operations.
func (g *Gateway) Advance(dt float64) (bool, error) {
	if g.state != stateActive {
		return false, fmt.Errorf("%w: Advance in state %q", ErrProtocolViolation, g.state)
	}
	continuing, err := g.session.Advance(dt)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	if !continuing {
		g.state = stateClosed
	}
	return continuing, nil
}

// Finalize releases the session. Idempotent; a no-op if the session was
// never started.
func (g *Gateway) Finalize() error {
	if g.state == stateFinalized || g.state == stateUninitialized || g.state == stateMeshRegistered {
		g.state = stateFinalized
		return nil
	}
	if err := g.session.Finalize(); err != nil {
		return fmt.Errorf("%w: %v", ErrCoordinatorFailure, err)
	}
	g.state = stateFinalized
	return nil
}

func (g *Gateway) checkTransfer(op string, handle int, nodeIDs []int, values []float64) error {
	if g.state != stateActive {
		return fmt.Errorf("%w: %s in state %q", ErrProtocolViolation, op, g.state)
	}
	if !g.resolved[handle] {
		return fmt.Errorf("%w: %s with unresolved dataset handle %d", ErrProtocolViolation, op, handle)
	}
	if len(nodeIDs) == 0 || len(values)%len(nodeIDs) != 0 {
		return fmt.Errorf("%w: %s with %d values for %d nodes", ErrIndexRange, op, len(values), len(nodeIDs))
	}
	return nil
}
