// Package dynamo defines the contract between the frame layer and a
// deformable-body simulation engine.
//
// The frame layer only ever talks to an engine through these interfaces:
//
//   - [Engine]: stepping, topology queries, particle storage and solver setters
//   - [Grabbable]: staged grab commands used by interactive dragging
//   - [Squasher]: flattens the body in place, a reset variant
//
// # Particle storage
//
// [Engine.ParticlePositions] returns the engine's own position storage, not a
// copy. Implementations must allocate that storage once and never replace it
// for the lifetime of the engine: callers alias it for rendering and have no
// way to notice a relocation except at explicit validation points, where
// [ErrBufferRelocated] is reported.
//
// # Thread Safety
//
// Engines are NOT thread-safe. All calls happen on the frame loop.
package dynamo
