// Package coordinator provides an in-process implementation of the
// coordination session, so a coupled run is executable and testable without
// an external service. It honors the same contract a real coordinator does:
// the initial-data sub-protocol, the unconditional data-initialization call,
// read availability per exchange point, and a bounded coupling window.
package coordinator

import (
	"errors"
	"fmt"

	"github.com/kspanier/cosolve/internal/coupling"
)

// PeerFunc produces the values the simulated peer writes for one exchange
// point. step counts committed advances (0 at initialization), coords is the
// registered flat coordinate array and lastWrite the values this participant
// wrote most recently (nil before the first write). Returning lastWrite
// unchanged yields an identity pass-through peer.
type PeerFunc func(step int, coords []float64, lastWrite []float64) []float64

// Echo is the identity pass-through peer: the participant reads back
// whatever it last wrote.
func Echo(_ int, _ []float64, lastWrite []float64) []float64 { return lastWrite }

// Config describes one scripted coupled run.
type Config struct {
	Dim                int
	Datasets           []string // stream names configured for the run
	MaxSteps           int      // coupling window length in committed steps
	RequireInitialData bool
	Peer               PeerFunc // nil means the peer never produces data
	FailAdvanceAt      int      // step at which Advance fails; 0 disables
}

// Inproc is a single-participant, in-process coordinator session. It records
// call counts so protocol tests can assert the exact exchange sequence.
type Inproc struct {
	cfg Config

	coords  []float64
	nodeIDs []int
	handles map[string]int
	written map[int][]float64

	registered bool
	started    bool
	finalized  bool
	fulfilled  bool
	step       int

	readValues    []float64
	readAvailable bool

	// Call counters for protocol assertions.
	InitializeDataCalls int
	WriteCalls          int
	WriteInitialCalls   int
	ReadCalls           int
	AdvanceCalls        int
}

var _ coupling.Session = (*Inproc)(nil)

// New builds a session for one scripted run.
func New(cfg Config) *Inproc {
	s := &Inproc{cfg: cfg, handles: make(map[string]int), written: make(map[int][]float64)}
	for i, name := range cfg.Datasets {
		s.handles[name] = i + 1
	}
	return s
}

func (s *Inproc) Dimensions() int { return s.cfg.Dim }

func (s *Inproc) RegisterMesh(mesh string, coords []float64) ([]int, error) {
	if s.registered {
		return nil, errors.New("mesh already registered")
	}
	if len(coords) == 0 || len(coords)%s.cfg.Dim != 0 {
		return nil, fmt.Errorf("coordinate array length %d invalid for dim %d", len(coords), s.cfg.Dim)
	}
	s.coords = append([]float64(nil), coords...)
	n := len(coords) / s.cfg.Dim
	// Node ids are opaque coordinator tokens, deliberately not 0..n-1.
	s.nodeIDs = make([]int, n)
	for i := range s.nodeIDs {
		s.nodeIDs[i] = 100 + i
	}
	s.registered = true
	ids := make([]int, n)
	copy(ids, s.nodeIDs)
	return ids, nil
}

func (s *Inproc) HasDataset(mesh, name string) bool {
	_, ok := s.handles[name]
	return ok
}

func (s *Inproc) ResolveDataset(mesh, name string) (int, error) {
	h, ok := s.handles[name]
	if !ok {
		return 0, fmt.Errorf("dataset %q not configured", name)
	}
	return h, nil
}

func (s *Inproc) Start() error {
	if !s.registered {
		return errors.New("start before mesh registration")
	}
	if s.started {
		return errors.New("session already started")
	}
	s.started = true
	return nil
}

func (s *Inproc) InitialDataRequired() bool {
	return s.cfg.RequireInitialData && !s.fulfilled
}

func (s *Inproc) WriteInitial(handle int, nodeIDs []int, values []float64) error {
	s.WriteInitialCalls++
	return s.store(handle, nodeIDs, values)
}

func (s *Inproc) MarkInitialDataFulfilled() error {
	s.fulfilled = true
	return nil
}

func (s *Inproc) InitializeData() error {
	s.InitializeDataCalls++
	if s.cfg.RequireInitialData && !s.fulfilled {
		return errors.New("initial data required but not fulfilled")
	}
	s.produce()
	return nil
}

func (s *Inproc) ReadDataAvailable() bool { return s.readAvailable }

func (s *Inproc) WriteRequired(dt float64) bool {
	return s.started && !s.finalized && s.step < s.cfg.MaxSteps
}

func (s *Inproc) Write(handle int, nodeIDs []int, values []float64) error {
	s.WriteCalls++
	return s.store(handle, nodeIDs, values)
}

func (s *Inproc) Read(handle int, nodeIDs []int, out []float64) error {
	s.ReadCalls++
	if !s.readAvailable {
		return errors.New("no read data available")
	}
	if len(out) != len(s.readValues) {
		return fmt.Errorf("read buffer length %d, have %d values", len(out), len(s.readValues))
	}
	copy(out, s.readValues)
	return nil
}

func (s *Inproc) Advance(dt float64) (bool, error) {
	s.AdvanceCalls++
	if !s.started || s.finalized {
		return false, errors.New("advance outside active session")
	}
	if dt <= 0 {
		return false, fmt.Errorf("non-positive timestep %g", dt)
	}
	s.step++
	if s.cfg.FailAdvanceAt > 0 && s.step >= s.cfg.FailAdvanceAt {
		return false, errors.New("peer disconnected")
	}
	continuing := s.step < s.cfg.MaxSteps
	if continuing {
		s.produce()
	} else {
		s.readAvailable = false
	}
	return continuing, nil
}

func (s *Inproc) Finalize() error {
	s.finalized = true
	s.readAvailable = false
	return nil
}

// Step returns the number of committed coupling steps.
func (s *Inproc) Step() int { return s.step }

// LastWritten returns the most recent values written to a handle.
func (s *Inproc) LastWritten(handle int) []float64 { return s.written[handle] }

func (s *Inproc) store(handle int, nodeIDs []int, values []float64) error {
	if len(nodeIDs) != len(s.nodeIDs) {
		return fmt.Errorf("write with %d node ids, registered %d", len(nodeIDs), len(s.nodeIDs))
	}
	for i, id := range nodeIDs {
		if id != s.nodeIDs[i] {
			return fmt.Errorf("node id %d at position %d, registered %d", id, i, s.nodeIDs[i])
		}
	}
	buf := s.written[handle]
	if buf == nil {
		buf = make([]float64, len(values))
		s.written[handle] = buf
	}
	if len(values) != len(buf) {
		return fmt.Errorf("write of %d values, previously %d", len(values), len(buf))
	}
	copy(buf, values)
	return nil
}

// produce asks the scripted peer for the next exchange point's values. The
// peer sees the most recent write on any handle, which in the single read /
// single write setup is the participant's outgoing stream.
func (s *Inproc) produce() {
	if s.cfg.Peer == nil {
		return
	}
	var last []float64
	for _, buf := range s.written {
		last = buf
	}
	v := s.cfg.Peer(s.step, s.coords, last)
	if v == nil {
		s.readAvailable = false
		return
	}
	s.readValues = append(s.readValues[:0], v...)
	s.readAvailable = true
}
