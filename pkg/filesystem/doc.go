// Package filesystem provides the filesystem abstraction used by pkgmerge.
//
// Content records, the mtime watcher and the bundled triggers all go through
// FS so they can run against the real disk (NewOS) or an in-memory afero
// filesystem in tests (NewAferoFS).
package filesystem
