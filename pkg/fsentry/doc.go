// Package fsentry models the filesystem objects a package can own:
// regular files, directories, symlinks, device nodes and fifos.
//
// Entries are immutable values. Deriving a modified entry goes through
// WithChanges, which returns a new entry and leaves the receiver alone.
//
// Identity is the location alone. Two entries at the same path compare
// equal (Equal) and collide when stored in a content set, whatever their
// kind, mode or mtime. Callers comparing metadata must do so explicitly.
//
// Construction is strict by default: mode, mtime, uid and gid must all be
// supplied, plus the variant specific fields. NonStrict() relaxes this for
// partial entries such as parsed records or directory probes; unset
// attributes then read as zero values and Has reports their absence.
package fsentry
