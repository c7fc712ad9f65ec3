// Package mtime records modification times of a set of locations and later
// reports whether any of them changed.
//
// A Watcher is unarmed until SetState takes a snapshot. CheckState compares
// the live state against that snapshot: a location counts as changed when
// its mtime differs, when it vanished, or when it appeared.
//
// Filesystems with whole-second mtimes can hide a change made in the same
// second as the snapshot. The watcher reports what it observes; callers that
// rely on a negative answer either enable WithForcedPast, which pushes
// recent mtimes back before recording them, or call SettleNextSecond before
// mutating.
package mtime
