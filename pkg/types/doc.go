// Package types defines the data model shared by the generator, the
// renderers and the installer runtime: collected tree entries, the
// instruction list that makes up an install plan, install modes and the
// filesystem interface the runtime mutates.
package types
