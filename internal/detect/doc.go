// Package detect holds the four discrepancy detectors: the deleted-message
// finder, the edit-history comparer, the time-gap analyzer, and the
// screenshot verifier.
//
// The detectors are mutually independent, share no state, and read only
// their policy structs and input snapshots, so the engine runs them in
// parallel. None of them asserts cause: each record carries plausible
// explanations or an explicit reason and leaves the determination to human
// review.
package detect
