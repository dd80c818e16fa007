// Package interactionlog provides a fixed-capacity, thread-safe circular
// log of structured agent interactions.
//
// The log retains the most recent entries up to its capacity, overwriting
// the oldest once full. It is the memory-bounded backing store for the
// agent's diagnostics endpoints, heartbeat stats, and MCP observability
// tools. Construct one instance per process and share it by reference.
package interactionlog
