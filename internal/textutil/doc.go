// Package textutil provides text processing utilities for cross-device
// content comparison: normalization, tokenization, similarity scoring,
// and compact change summaries.
//
// Message bodies captured from different platforms rarely match byte for
// byte even when the underlying message is the same, so every comparison
// in this package starts from Normalize: NFC unicode normalization,
// lowercasing, and whitespace collapsing. Similarity is a sequence-match
// ratio over the normalized rune streams.
package textutil
