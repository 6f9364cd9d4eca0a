// Package collector walks a dotfiles tree and produces the sorted lists of
// directories and files an installer must deploy.
//
// Every candidate is canonicalised before it is recorded. A symlink is
// therefore recorded under the path it resolves to, and anything resolving
// outside the root aborts collection. Reserved names (the VCS metadata
// directory, the generated installer, the project config) are skipped at
// every depth.
package collector
