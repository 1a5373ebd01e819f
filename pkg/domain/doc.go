// Package domain defines the core vocabulary of the Waymark engine: workflow
// node tables, artifact summaries and snapshots, persisted per-project state,
// and the instruction types exchanged with the driving agent.
//
// Everything here is plain data. Behavior lives in the resolver, assembly,
// compiler and guard packages, which operate on these types as pure functions.
package domain
