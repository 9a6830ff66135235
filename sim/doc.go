// Package sim provides the core discrete-event simulation engine for authdefense-sim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: the (time, actor id) event ordering that drives the loop
//   - auth.go: the login pipeline (policy check → verify → policy update → log)
//   - simulator.go: the event loop that feeds login outcomes back to actors
//
// # Architecture
//
// The sim package defines interfaces and bridge types; implementations live in
// sub-packages:
//   - sim/defense/: defense policies (lockout, token bucket, backoff, hybrid)
//   - sim/actor/: attackers and normal users
//   - sim/store/: account stores (in-memory, bbolt-backed)
//   - sim/trace/: outcome records, CSV sinks, and per-trial metrics
//   - sim/scenario/: trial assembly, parameter sweeps, and aggregation
//
// sim/defense registers its constructor via init() into the package-level
// factory variable NewDefensePolicyFunc, so sim can build policies by name
// without importing its implementation package.
//
// # Key Interfaces
//
//   - DefensePolicy: admit or deny an attempt, then record its outcome
//   - Actor: produce credentials over time and react to login outcomes
//   - store.AccountStore: credential verification and per-account failure state
//
// All time is virtual and measured in seconds. The clock only moves when the
// simulator pops an event, so a day of traffic runs in well under a second.
package sim
