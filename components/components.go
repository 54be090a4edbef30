// Package components defines ECS components for the particle simulation.
package components

// Particle holds per-particle bookkeeping.
type Particle struct {
	Index    int   // Stable slot in the sampled particle buffer
	Age      int32 // Frames since (re-)emission
	Lifetime int32 // Frames before re-emission
	Emitted  int32 // Number of times this slot has been emitted
}
