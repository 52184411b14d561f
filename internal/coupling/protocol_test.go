package coupling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspanier/cosolve/internal/coordinator"
	"github.com/kspanier/cosolve/internal/coupling"
)

// lineMesh is a 5-node coupling boundary on a 2D domain.
type lineMesh struct{}

func (lineMesh) BoundaryDofs(tag int) []int {
	if tag != 1 {
		return nil
	}
	return []int{2, 5, 8, 11, 14}
}

func (lineMesh) DofCoordinate(dof int) []float64 {
	return []float64{1.0, -1.0 + float64(dof/3)*0.5}
}

func newProtocol(t *testing.T, cfg coordinator.Config, writeName, readName string) (*coupling.Protocol, *coordinator.Inproc) {
	t.Helper()
	session := coordinator.New(cfg)
	gateway := coupling.NewGateway(session, "interface-mesh")
	return coupling.NewProtocol(gateway, lineMesh{}, 2, 1, writeName, readName), session
}

func defaultCfg() coordinator.Config {
	return coordinator.Config{
		Dim:      2,
		Datasets: []string{"out", "in"},
		MaxSteps: 4,
		Peer:     coordinator.Echo,
	}
}

func TestInitializeWithoutInitialData(t *testing.T) {
	p, session := newProtocol(t, defaultCfg(), "out", "in")

	values, err := p.Initialize(1, make([]float64, 20))
	require.NoError(t, err)

	// All coupling DOFs present, zero-valued; the echo peer had nothing to
	// send before the first write.
	assert.Len(t, values, 5)
	for dof, v := range values {
		assert.Zero(t, v, "DOF %d", dof)
	}

	// The data-initialization step runs exactly once, and no initial write
	// happened since the coordinator required none.
	assert.Equal(t, 1, session.InitializeDataCalls)
	assert.Zero(t, session.WriteInitialCalls)
}

func TestInitializeWithInitialData(t *testing.T) {
	cfg := defaultCfg()
	cfg.RequireInitialData = true
	p, session := newProtocol(t, cfg, "out", "in")

	outgoing := make([]float64, 20)
	for i := range outgoing {
		outgoing[i] = float64(i)
	}
	values, err := p.Initialize(1, outgoing)
	require.NoError(t, err)

	assert.Equal(t, 1, session.WriteInitialCalls)
	assert.Equal(t, 1, session.InitializeDataCalls)

	// The echo peer reflects the initial write back at the first exchange
	// point: values hold the outgoing field at the boundary DOFs.
	for _, dof := range (lineMesh{}).BoundaryDofs(1) {
		assert.Equal(t, outgoing[dof], values[dof], "DOF %d", dof)
	}
}

func TestAdvanceRoundTrip(t *testing.T) {
	p, _ := newProtocol(t, defaultCfg(), "out", "in")

	outgoing := make([]float64, 20)
	for i := range outgoing {
		outgoing[i] = float64(i) * 1.5
	}
	values, err := p.Initialize(1, outgoing)
	require.NoError(t, err)

	continuing, err := p.Advance(outgoing, 1.0)
	require.NoError(t, err)
	assert.True(t, continuing)

	// Echo pass-through: every boundary DOF reads back its written value.
	for _, dof := range (lineMesh{}).BoundaryDofs(1) {
		assert.Equal(t, outgoing[dof], values[dof], "DOF %d", dof)
	}
}

func TestAdvanceWithoutWriteDataset(t *testing.T) {
	cfg := defaultCfg()
	cfg.Datasets = []string{"in"}
	cfg.Peer = func(step int, coords []float64, _ []float64) []float64 {
		vals := make([]float64, len(coords)/2)
		for i := range vals {
			vals[i] = 7
		}
		return vals
	}
	p, session := newProtocol(t, cfg, "out", "in")

	values, err := p.Initialize(1, make([]float64, 20))
	require.NoError(t, err)

	_, err = p.Advance(make([]float64, 20), 1.0)
	require.NoError(t, err)

	// No write stream resolved: never written, no error raised.
	assert.Zero(t, session.WriteCalls)
	assert.Zero(t, session.WriteInitialCalls)
	assert.Equal(t, 7.0, values[2])
}

func TestAdvanceWithoutReadDataset(t *testing.T) {
	cfg := defaultCfg()
	cfg.Datasets = []string{"out"}
	p, session := newProtocol(t, cfg, "out", "in")

	values, err := p.Initialize(1, make([]float64, 20))
	require.NoError(t, err)

	outgoing := make([]float64, 20)
	for i := range outgoing {
		outgoing[i] = 3
	}
	_, err = p.Advance(outgoing, 1.0)
	require.NoError(t, err)

	// No read stream resolved: the boundary map stays untouched.
	assert.Zero(t, session.ReadCalls)
	for dof, v := range values {
		assert.Zero(t, v, "DOF %d", dof)
	}
}

func TestWindowClosedOnFirstAdvance(t *testing.T) {
	cfg := defaultCfg()
	cfg.MaxSteps = 1
	p, _ := newProtocol(t, cfg, "out", "in")

	_, err := p.Initialize(1, make([]float64, 20))
	require.NoError(t, err)

	continuing, err := p.Advance(make([]float64, 20), 1.0)
	require.NoError(t, err)
	assert.False(t, continuing, "window of one step must close on the first advance")

	require.NoError(t, p.Finalize())
}

func TestCoordinatorFailureSurfaces(t *testing.T) {
	cfg := defaultCfg()
	cfg.FailAdvanceAt = 2
	p, _ := newProtocol(t, cfg, "out", "in")

	_, err := p.Initialize(1, make([]float64, 20))
	require.NoError(t, err)

	_, err = p.Advance(make([]float64, 20), 1.0)
	require.NoError(t, err)

	_, err = p.Advance(make([]float64, 20), 1.0)
	assert.ErrorIs(t, err, coupling.ErrCoordinatorFailure)
}

func TestInitializeTwice(t *testing.T) {
	p, _ := newProtocol(t, defaultCfg(), "out", "in")

	_, err := p.Initialize(1, make([]float64, 20))
	require.NoError(t, err)

	_, err = p.Initialize(1, make([]float64, 20))
	assert.ErrorIs(t, err, coupling.ErrProtocolViolation)
}

func TestAdvanceBeforeInitialize(t *testing.T) {
	p, _ := newProtocol(t, defaultCfg(), "out", "in")
	_, err := p.Advance(make([]float64, 20), 1.0)
	assert.ErrorIs(t, err, coupling.ErrProtocolViolation)
}
