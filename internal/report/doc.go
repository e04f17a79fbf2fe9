// Package report defines the discrepancy records the detectors emit and the
// aggregated conflict report one comparison run produces.
//
// A Discrepancy is a tagged union: Kind names the variant and exactly one of
// the detail pointers is populated. The aggregator is deterministic given
// the same discrepancy set; recommendations are rule-based and advisory,
// never a legal determination.
package report
