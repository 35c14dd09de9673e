// Package spatial provides stereo image utilities.
//
// Included processors:
//   - Rotation: Energy-preserving 2x2 rotation of a stereo pair.
package spatial
