// Package viz renders a soft-body demo in the terminal.
//
// The package implements the live view using the Bubble Tea framework:
//
//   - [Model]: frame loop, control sidebar and mouse grabbing for one demo
//   - [Scene]: Braille-canvas renderer implementing scene.Scene
//   - [Camera]: perspective look-at camera with Project and Unproject
//   - [NewMenu]: preset picker that launches a Model
//
// # Key Bindings
//
//	Space - Toggle animate
//	R     - Reset the body
//	S     - Squash the body
//	↑↓←→  - Select and adjust controls
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Grabbing
//
// Pressing the left mouse button over a particle grabs it; dragging moves
// it at constant view depth and releasing throws it.
package viz
