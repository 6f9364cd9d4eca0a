// Package render turns an install plan into an artifact.
//
// Backends are looked up by name in a Registry. The sh backend emits a
// self-contained POSIX shell installer built from the bundled preamble and
// trailer; the toml and yaml backends emit manifests that the native
// installer reads back with LoadManifest.
//
// Write buffers the whole artifact, so nothing reaches the output unless
// rendering succeeded.
package render
