// Package timeline merges two devices' chronological event streams, pairs
// corresponding events across devices, and detects silence gaps.
//
// A synchronization run moves through four states in order: unmerged,
// merged (events tagged and sorted), matched (cross-device pairs linked),
// gapped (silence intervals recorded). Sync quality is the fraction of
// events that found a partner on the other device; 1.0 means every event on
// both sides was accounted for.
package timeline
