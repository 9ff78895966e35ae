// Package softbody implements a position-based (XPBD) tetrahedral soft body.
//
// The body is a procedural box of cubic cells, each split into six
// tetrahedra. Two constraint families hold it together:
//
//   - edge length constraints, softened by the edge compliance
//   - tetrahedral volume constraints, softened by the volume compliance
//
// Every [Simulation.Step] covers [DefaultDt] seconds and is subdivided into
// the configured number of substeps. Particles collide with a ground plane at
// y = 0.
//
// # Particle storage
//
// Positions live in a single []float32 allocated by [New] and never replaced;
// Reset and Squash rewrite it in place. Renderers may therefore alias it for
// the engine's whole lifetime.
package softbody
