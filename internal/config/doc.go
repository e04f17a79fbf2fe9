// Package config loads and validates crosscheck configuration.
//
// Every fuzzy-matching threshold the engine applies is policy, not intrinsic
// logic, so all of them live here: fingerprint bucket window, timeline match
// window and similarity floor, edit-detection band, screenshot authenticity
// thresholds, gap durations, and the active-hours window. Defaults match the
// calibration the detectors were developed against; jurisdictions or evidence
// types that need different sensitivity adjust the TOML file rather than the
// code.
package config
