// Package build drives a full site build: it discovers content files,
// resolves and renders them on a pool of workers sharing one renderer, writes
// the pages and records a manifest.
//
// All execution paths (CLI and tests) route through Builder.Run.
package build
