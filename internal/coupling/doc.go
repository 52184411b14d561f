// Package coupling adapts the solver to an external co-simulation
// coordinator that exchanges boundary field data at synchronized time steps.
//
// The package maintains the correspondence between the solver's degree of
// freedom (DOF) numbering and the coordinator's flat, positionally addressed
// node arrays, and drives the initialize/exchange/advance protocol:
//
//   - [NodeIndexMap]: stable bijection between boundary DOF ids and
//     coordinator node positions
//   - [Marshaller]: packs and unpacks field values between solver vectors
//     and flat coordinator arrays
//   - [Gateway]: stateful wrapper over one coordinator [Session], enforcing
//     the forward-only lifecycle
//   - [Protocol]: orchestrates the above into the initialize-then-loop
//     lifecycle the solver's main loop calls into
//
// # Ordering
//
// The coordinator correlates data purely by array position. The boundary DOF
// ordering is therefore fixed once, at NodeIndexMap construction, and reused
// unchanged for registration and for every later read or write. No map
// iteration occurs anywhere on the marshalling path.
//
// # Thread safety
//
// All operations are single-threaded and synchronous. The only suspension
// point is [Gateway.Advance], which blocks until the coordinator reports all
// participants reached a consistent logical time. Adapter instances share no
// mutable state; one instance per coupling boundary.
package coupling
