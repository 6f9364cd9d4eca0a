// Package history resolves every content hash a file has had in version
// control, following renames.
//
// The VCS interface is the only thing the resolver needs from a backend.
// GitCLI implements it by shelling out to git; tests use a scripted fake.
// Each historical blob is hashed with SHA-256 so the result can be compared
// with a hash computed by sha256sum on the install target.
package history
