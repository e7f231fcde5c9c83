// Package textutil provides text processing utilities for fingerprinting,
// similarity, and identifier slugs.
//
// Fingerprints use term frequency vectors normalized for efficient comparison.
// The tokenization process lowercases text, splits on non-alphanumeric
// characters, and filters tokens shorter than 3 characters. Cosine similarity
// over two fingerprints backs the advisory drift check on model-redacted
// speech text.
package textutil
