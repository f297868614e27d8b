// Package diag defines the diagnostic model shared by the compile and
// execute stages.
//
// Diagnostic is an immutable value record: a severity, a human-readable
// message, an optional primary source.Span and optional notes. Producers
// append diagnostics to a Bag in detection order; the Bag preserves that
// order and never reorders or deduplicates.
//
// Package diag performs no formatting and no IO. Rendering lives in
// internal/diagfmt; termination policy (which severities abort the pipeline)
// lives in internal/pipeline.
package diag
