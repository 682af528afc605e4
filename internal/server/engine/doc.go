// Package engine computes trading metrics, detects risky behaviour and
// scores it. It backs the analysis endpoints of the development server.
//
// The pipeline is Compute -> Detect -> Score; Analyze runs all three.
package engine
