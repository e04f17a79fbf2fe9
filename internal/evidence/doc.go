// Package evidence defines the typed records a comparison run consumes: one
// Snapshot per device holding the profile plus parser-normalized messages,
// contacts, and calls.
//
// Snapshots arrive as JSON from the format-specific parser layer. Decoding
// validates shape once at this boundary; a snapshot that is not an object or
// whose collections are not arrays fails the run. Individual records with
// missing timestamps are kept but excluded from time-based analysis by the
// consumers downstream. The engine never mutates a snapshot.
package evidence
