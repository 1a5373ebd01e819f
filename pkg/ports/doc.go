// Package ports declares the interfaces between the engine core and its
// adapters: state/intent persistence, artifact sources, distributed locking,
// and the two-call orchestrator protocol exposed to driving surfaces.
package ports
