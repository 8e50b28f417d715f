// Package textutil provides text processing utilities for case folding,
// token similarity, and filename sanitization.
//
// The primary use cases are:
//   - Unicode-correct case-insensitive filename comparison
//   - Token-overlap similarity between orphan filenames and record content
//   - Sanitizing generated base filenames for safe filesystem use
//
// Token similarity uses term frequency vectors compared by cosine
// similarity. Tokenization lowercases text and splits on non-alphanumeric
// character sequences.
package textutil
