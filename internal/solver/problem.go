// Package solver couples the Laplace problem to the co-simulation
// coordinator: it owns the main loop that assembles, solves and exchanges
// boundary data until the coordinator closes the coupling window.
package solver

import (
	"context"
	"fmt"

	"github.com/kspanier/cosolve/internal/config"
	"github.com/kspanier/cosolve/internal/coupling"
	"github.com/kspanier/cosolve/internal/fem"
)

// StepFunc observes one completed solve before the coupling step commits.
// Returning an error aborts the run.
type StepFunc func(step int, t float64, grid *fem.Grid, solution []float64) error

// Result summarizes one coupled run.
type Result struct {
	Steps          int
	CGIterations   int // accumulated over all solves
	Times          []float64
	BoundaryTrace  [][]float64 // solution at interface nodes, node order, per step
	InterfaceNodes int
	Solution       []float64 // final solution vector, indexed by DOF id
}

// Problem is the coupled Laplace participant.
type Problem struct {
	cfg      *config.Config
	runtime  coupling.Runtime
	grid     *fem.Grid
	protocol *coupling.Protocol

	// OnStep, when set, is called after every solve, before the coupling
	// step commits. Output writers hook in here.
	OnStep StepFunc
}

// New wires the problem to a coordinator session. The runtime handle
// identifies the local process in a multi-process run; the structured grid
// here is serial, so only rank 0 participates in output.
func New(cfg *config.Config, session coupling.Session, rt coupling.Runtime) *Problem {
	grid := fem.NewUnitSquare(cfg.Solver.Refine)
	gateway := coupling.NewGateway(session, cfg.Coupling.MeshName)
	protocol := coupling.NewProtocol(gateway, grid, 2, 1,
		cfg.Coupling.WriteDataset, cfg.Coupling.ReadDataset)
	return &Problem{cfg: cfg, runtime: rt, grid: grid, protocol: protocol}
}

// Grid exposes the mesh, e.g. for output writers.
func (p *Problem) Grid() *fem.Grid { return p.grid }

// Run executes the coupled run: initialize once, then assemble, solve,
// output and advance until the coordinator reports the coupling window
// closed. The solve always runs at least once; a window that closes on the
// first advance still yields exactly one solution.
func (p *Problem) Run(ctx context.Context) (*Result, error) {
	solution := make([]float64, p.grid.NumDofs())

	boundary, err := p.protocol.Initialize(fem.BoundaryInterface, solution)
	if err != nil {
		return nil, err
	}
	defer p.protocol.Finalize()

	imap := p.protocol.IndexMap()
	result := &Result{InterfaceNodes: imap.Size()}
	t := 0.0

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		sys := fem.Assemble(p.grid, RightHandSide)

		// The coupling values override the analytic condition on the two
		// shared corner nodes of the interface face.
		constraints := fem.InterpolateBoundary(p.grid, fem.BoundaryOuter, OuterBoundaryValue)
		for dof, v := range boundary {
			constraints[dof] = v
		}
		if err := sys.Constrain(constraints); err != nil {
			return result, err
		}

		var iters int
		solution, iters, err = sys.Solve(p.cfg.Solver.Tolerance, p.cfg.Solver.MaxIter)
		if err != nil {
			return result, fmt.Errorf("step %d: %w", result.Steps, err)
		}
		result.CGIterations += iters
		result.Steps++

		trace := make([]float64, imap.Size())
		for i := range trace {
			trace[i] = solution[imap.DofAt(i)]
		}
		result.BoundaryTrace = append(result.BoundaryTrace, trace)
		result.Times = append(result.Times, t)

		if p.OnStep != nil {
			if err := p.OnStep(result.Steps-1, t, p.grid, solution); err != nil {
				return result, err
			}
		}

		continuing, err := p.protocol.Advance(solution, p.cfg.Solver.Dt)
		if err != nil {
			return result, err
		}
		t += p.cfg.Solver.Dt
		if !continuing {
			break
		}
	}

	result.Solution = solution
	return result, nil
}
