// Package identity canonicalizes participant identifiers and derives
// deterministic message fingerprints.
//
// A canonical phone is the last ten digits of the raw number with all
// non-digit characters stripped, which equates "+1 (555) 123-4567" with
// "5551234567". A message fingerprint combines the time-bucketed timestamp,
// the sorted canonical participant set, and a truncated normalized body, so
// the two devices' independently captured copies of the same message
// converge on one key despite clock skew and formatting differences.
//
// Everything in this package is a pure function; every matcher and detector
// above it depends on that determinism.
package identity
