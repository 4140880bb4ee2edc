// Package search implements the hybrid vector + full-text retrieval
// pipeline used by the node catalog's search (§4.8): a dense vector index
// over embeddings, a full-text index over name/description/qualitative
// text, combined by a fixed weighted sum and re-ranked. Intent detection's
// candidate lookup (§4.10) queries a VectorIndex alone, without Hybrid.
package search
