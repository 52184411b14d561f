package coupling

import "fmt"

// DataSet names one directional data stream. A dataset that the coordinator
// does not configure for the run stays unresolved and every operation on it
// becomes a no-op.
type DataSet struct {
	Name     string
	handle   int
	resolved bool
}

// Resolved reports whether the coordinator issued a handle for this stream.
func (d DataSet) Resolved() bool { return d.resolved }

// Protocol drives the initialize-then-loop coupling lifecycle. The solver's
// main loop calls Initialize once, then Advance per time step until it
// reports the coupling window closed.
type Protocol struct {
	gateway    *Gateway
	mesh       MeshAccess
	dim        int
	components int

	imap       *NodeIndexMap
	marshaller *Marshaller
	values     BoundaryValueMap
	readBuf    []float64

	write DataSet
	read  DataSet

	initialized bool
}

// NewProtocol assembles a protocol over an already constructed gateway. The
// dataset names come from the run configuration; either may be empty to
// disable that direction outright. components is the number of field
// components per node (1 for scalar fields).
func NewProtocol(gateway *Gateway, mesh MeshAccess, dim, components int, writeDataset, readDataset string) *Protocol {
	return &Protocol{
		gateway:    gateway,
		mesh:       mesh,
		dim:        dim,
		components: components,
		write:      DataSet{Name: writeDataset},
		read:       DataSet{Name: readDataset},
	}
}

// Initialize builds the node index map, registers the interface mesh,
// resolves the dataset handles, starts the session and performs the
// initial-data negotiation. It returns the boundary value map that every
// later read repopulates in place; the solver applies it as constraints
// before each solve.
//
// The data-initialization step is invoked unconditionally, whether or not an
// initial write occurred: the underlying coordinator protocol needs the call
// even when it required no initial data.
func (p *Protocol) Initialize(boundaryTag int, outgoing []float64) (BoundaryValueMap, error) {
	if p.initialized {
		return nil, fmt.Errorf("%w: Initialize called twice", ErrProtocolViolation)
	}

	imap, err := BuildNodeIndexMap(p.mesh, boundaryTag, p.dim)
	if err != nil {
		return nil, err
	}
	p.imap = imap

	ids, err := p.gateway.RegisterMesh(imap.Coordinates(), p.dim)
	if err != nil {
		return nil, err
	}
	if err := imap.BindNodeIDs(ids); err != nil {
		return nil, err
	}

	p.marshaller, err = NewMarshaller(imap, p.components)
	if err != nil {
		return nil, err
	}
	p.readBuf = make([]float64, p.marshaller.Width())

	if err := p.resolveDatasets(); err != nil {
		return nil, err
	}

	if err := p.gateway.Start(); err != nil {
		return nil, err
	}

	p.values = make(BoundaryValueMap, imap.Size())
	for i := 0; i < imap.Size(); i++ {
		p.values[imap.DofAt(i)] = 0
	}

	if p.gateway.InitialDataRequired() && p.write.resolved {
		flat, err := p.marshaller.ToExternal(outgoing)
		if err != nil {
			return nil, err
		}
		if err := p.gateway.WriteInitial(p.write.handle, imap.NodeIDs(), flat); err != nil {
			return nil, err
		}
	}

	if err := p.gateway.InitializeData(); err != nil {
		return nil, err
	}

	if err := p.readAvailable(); err != nil {
		return nil, err
	}

	p.initialized = true
	return p.values, nil
}

// Advance writes the outgoing field if due, commits the step, and reads any
// data the peer produced for the next exchange point. It returns false once
// the coordinator reports the coupling window closed; the solver's step loop
// terminates on that.
func (p *Protocol) Advance(outgoing []float64, dt float64) (bool, error) {
	if !p.initialized {
		return false, fmt.Errorf("%w: Advance before Initialize", ErrProtocolViolation)
	}

	if p.write.resolved && p.gateway.WriteRequired(dt) {
		flat, err := p.marshaller.ToExternal(outgoing)
		if err != nil {
			return false, err
		}
		if err := p.gateway.WriteData(p.write.handle, p.imap.NodeIDs(), flat); err != nil {
			return false, err
		}
	}

	continuing, err := p.gateway.Advance(dt)
	if err != nil {
		return false, err
	}

	if err := p.readAvailable(); err != nil {
		return false, err
	}

	return continuing, nil
}

// Finalize releases the coordinator session.
func (p *Protocol) Finalize() error { return p.gateway.Finalize() }

// BoundaryValues returns the map populated by the most recent read.
func (p *Protocol) BoundaryValues() BoundaryValueMap { return p.values }

// IndexMap exposes the node ordering, for callers that record or display the
// interface field positionally.
func (p *Protocol) IndexMap() *NodeIndexMap { return p.imap }

func (p *Protocol) resolveDatasets() error {
	if p.write.Name != "" && p.gateway.HasDataset(p.write.Name) {
		h, err := p.gateway.ResolveDataset(p.write.Name)
		if err != nil {
			return err
		}
		p.write.handle, p.write.resolved = h, true
	}
	if p.read.Name != "" && p.gateway.HasDataset(p.read.Name) {
		h, err := p.gateway.ResolveDataset(p.read.Name)
		if err != nil {
			return err
		}
		p.read.handle, p.read.resolved = h, true
	}
	return nil
}

func (p *Protocol) readAvailable() error {
	if !p.read.resolved || !p.gateway.ReadDataAvailable() {
		return nil
	}
	if err := p.gateway.ReadData(p.read.handle, p.imap.NodeIDs(), p.readBuf); err != nil {
		return err
	}
	return p.marshaller.FromExternal(p.readBuf, p.values)
}
