// Package filesystem provides implementations of types.FS: the real OS
// filesystem and a dry-run wrapper that reports mutations without
// performing them.
package filesystem
