// Package analysis characterizes recorded soft-body motion.
//
//   - [PowerSpectrum] and [DominantFrequency]: wobble frequency of the
//     centroid height series
//   - [Summarize]: range, spread and settling time of a series
//   - [GeneratePhasePortrait]: height against vertical velocity
//
// A jelly preset dropped from rest typically shows one dominant peak:
//
//	hz, amp := analysis.DominantFrequency(heights, dt)
package analysis
