// Package rendergraph compiles a declared set of GPU render/compute/copy
// passes into a scheduled, barriered, cross-queue-synchronized
// execution plan.
//
// A Graph aggregates the registry (resource identity and access
// control), the pass builder, the compiler/scheduler, the aliasing
// planner, the materialization manager, and the executor into one
// per-process instance — mirroring how a graphics device aggregates
// its subsystems behind a single façade.
package rendergraph
