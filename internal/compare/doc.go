// Package compare orchestrates one full comparison run: pairing, timeline
// synchronization, the four discrepancy detectors, and report aggregation.
//
// The engine is stateless; all policy comes from configuration and all
// output lands in the returned report. Detectors run concurrently on an
// errgroup and never see each other's output, so aggregation happens once,
// single-threaded, after the group finishes.
package compare
