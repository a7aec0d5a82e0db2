// Package dataset holds the contrast-pair and evaluation-prompt collections
// that feed extraction and evaluation. Datasets persist as single JSON files
// and carry free-form per-pair metadata; an optional Roaring-bitmap index
// selects pairs by category.
package dataset
