// Package match pairs contact records and message threads across two device
// snapshots.
//
// Contact matching keys on canonical phone numbers; thread matching keys on
// the sorted participant pair and compares fingerprint sets. Both matchers
// apply an explicit first-in-input-order tie-break when several records
// share a canonical key, since duplicates denote redundant data rather than
// distinct identities.
package match
